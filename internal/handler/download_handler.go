package handler

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/postsmith/internal/service"
)

const (
	msgNoPosts        = "No posts available to download."
	msgInvalidPayload = "Invalid posts data."
)

// Download 将页面回传的帖子列表导出为 CSV 附件，支持 GET 与 POST。
func (a *API) Download(c *gin.Context) {
	raw := strings.TrimSpace(formOrQuery(c, "posts"))
	if raw == "" {
		c.String(http.StatusOK, msgNoPosts)
		return
	}

	records, err := service.DecodeRecords(raw)
	if err != nil {
		if errors.Is(err, service.ErrEmptyExport) {
			c.String(http.StatusOK, msgNoPosts)
			return
		}
		a.logger.WithError(err).Warn("Rejected download payload")
		c.String(http.StatusBadRequest, msgInvalidPayload)
		return
	}

	var buf bytes.Buffer
	if err := service.WriteCSV(&buf, records); err != nil {
		if errors.Is(err, service.ErrEmptyExport) {
			c.String(http.StatusOK, msgNoPosts)
			return
		}
		a.logger.WithError(err).Error("Failed to write csv")
		c.String(http.StatusInternalServerError, "Failed to build CSV.")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", service.ExportFilename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
