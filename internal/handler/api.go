package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/postsmith/internal/locale"
	"github.com/postsmith/internal/logging"
	"github.com/postsmith/internal/service"
)

// Dependencies 汇总 HTTP 层依赖的服务。
type Dependencies struct {
	Content        *service.ContentService
	Styles         *service.StyleAnalyzer
	Ledger         *service.RunLedger
	Logger         logging.Logger
	MaxUploadBytes int64
}

// API bundles shared dependencies for HTTP handlers.
type API struct {
	content   *service.ContentService
	styles    *service.StyleAnalyzer
	ledger    *service.RunLedger
	logger    logging.Logger
	maxUpload int64
}

// NewAPI constructs a handler set with shared services.
func NewAPI(deps Dependencies) *API {
	logger := deps.Logger
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	styles := deps.Styles
	if styles == nil {
		styles = service.NewStyleAnalyzer(logger, nil, deps.MaxUploadBytes)
	}
	return &API{
		content:   deps.Content,
		styles:    styles,
		ledger:    deps.Ledger,
		logger:    logger,
		maxUpload: deps.MaxUploadBytes,
	}
}

func (a *API) renderHTML(c *gin.Context, status int, template string, data gin.H) {
	pref := a.requestLocale(c)

	payload := gin.H{}
	for key, value := range data {
		payload[key] = value
	}
	if _, exists := payload["labels"]; !exists {
		payload["labels"] = locale.LabelsFor(pref.Language)
	}
	if _, exists := payload["htmlLang"]; !exists {
		payload["htmlLang"] = pref.HTMLLang
	}
	if _, exists := payload["languageSwitch"]; !exists {
		payload["languageSwitch"] = buildLanguageSwitch(c)
	}

	c.HTML(status, template, payload)
}
