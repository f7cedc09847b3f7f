package main

import (
	"strings"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/postsmith/internal/config"
	"github.com/postsmith/internal/db"
	"github.com/postsmith/internal/logging"
	"github.com/postsmith/internal/search"
	"github.com/postsmith/internal/service"
)

// app 持有一次进程运行所需的全部服务实例。
type app struct {
	cfg     config.AppConfig
	logger  logging.Logger
	metrics *service.Metrics
	content *service.ContentService
	styles  *service.StyleAnalyzer
	ledger  *service.RunLedger
	conn    *gorm.DB
}

// newApp 加载配置并组装服务；缺少 API Key 时直接失败。
func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if override, _ := cmd.Flags().GetString("log-level"); strings.TrimSpace(override) != "" {
		cfg.LogLevel = override
	}

	logger := logging.NewLogger(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Error("Missing configuration")
		return nil, err
	}

	executor, err := service.NewOpenAIExecutor(service.OpenAIExecutorConfig{
		APIKey:  cfg.LLMAPIKey,
		BaseURL: cfg.LLMBaseURL,
		Model:   cfg.LLMModel,
		Timeout: cfg.LLMTimeout,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}

	var tools []service.Tool
	provider, err := search.NewProvider(search.Config{Provider: cfg.SearchProvider, APIURL: cfg.SearchAPIURL})
	if err != nil {
		logger.WithError(err).Warn("Search provider unavailable, research runs without tools")
	} else {
		tools = service.ResearchTools(provider, nil)
	}

	metrics := service.NewMetrics()

	// 运行记录只是运维信息，数据库不可用时不影响生成
	conn, err := db.Open(cfg.DatabasePath)
	if err != nil {
		logger.WithError(err).WithField("path", cfg.DatabasePath).Warn("Run ledger disabled")
		conn = nil
	}

	return &app{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
		content: service.NewContentService(service.ContentServiceConfig{
			Executor: executor,
			Tools:    tools,
			Model:    cfg.LLMModel,
			Logger:   logger,
			Metrics:  metrics,
		}),
		styles: service.NewStyleAnalyzer(logger, metrics, cfg.MaxUploadBytes),
		ledger: service.NewRunLedger(conn),
		conn:   conn,
	}, nil
}

func (a *app) Close() {
	if err := db.Close(a.conn); err != nil {
		a.logger.WithError(err).Warn("Failed to close database")
	}
}
