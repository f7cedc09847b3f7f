package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/postsmith/internal/handler"
	"github.com/postsmith/internal/router"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web form and JSON API",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer application.Close()

		if application.cfg.GinMode != "" {
			gin.SetMode(application.cfg.GinMode)
		}

		api := handler.NewAPI(handler.Dependencies{
			Content:        application.content,
			Styles:         application.styles,
			Ledger:         application.ledger,
			Logger:         application.logger,
			MaxUploadBytes: application.cfg.MaxUploadBytes,
		})
		r := router.SetupRouter(api, router.Options{
			SessionSecret:  application.cfg.SessionSecret,
			CORSOrigins:    application.cfg.CORSOrigins,
			MaxUploadBytes: application.cfg.MaxUploadBytes,
			Registry:       application.metrics.Registry,
		})

		server := &http.Server{
			Addr:              application.cfg.ListenAddr,
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			application.logger.WithField("addr", server.Addr).Info("Server listening")
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		application.logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
