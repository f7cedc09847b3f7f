package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/postsmith/internal/service"
)

type generateRequest struct {
	Platform string `json:"platform"`
	Goal     string `json:"goal"`
	Tone     string `json:"tone"`
	Topic    string `json:"topic"`
	Count    int    `json:"count"`
}

// GenerateJSON 是表单流程的 JSON 版本，不支持风格语料上传。
func (a *API) GenerateJSON(c *gin.Context) {
	var payload generateRequest
	if !bindJSON(c, &payload, "invalid request body") {
		return
	}

	input := generateInput{
		Platform: payload.Platform,
		Goal:     payload.Goal,
		Tone:     payload.Tone,
		Topic:    payload.Topic,
		Count:    strconv.Itoa(payload.Count),
	}
	input.normalize()

	if messages := service.ValidateInputs(input.Platform, input.Goal, input.Tone, input.Topic, input.Count); len(messages) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": messages})
		return
	}

	batch, _, err := a.runBatch(c.Request.Context(), input, nil, service.RunSourceAPI)
	if err != nil {
		a.logger.WithError(err).Error("Batch generation failed")
		respondError(c, http.StatusInternalServerError, "content generation failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"posts": batch.Records})
}

// ListRuns 返回最近的生成运行记录。
func (a *API) ListRuns(c *gin.Context) {
	runs, err := a.ledger.Recent(c.Request.Context(), parseIntQuery(c, "limit", 0))
	if err != nil {
		a.logger.WithError(err).Error("Failed to list runs")
		respondError(c, http.StatusInternalServerError, "failed to list runs")
		return
	}

	items := make([]gin.H, 0, len(runs))
	for _, run := range runs {
		items = append(items, gin.H{
			"id":                  run.ID,
			"created_at":          run.CreatedAt,
			"platform":            run.Platform,
			"goal":                run.Goal,
			"tone":                run.Tone,
			"count":               run.Count,
			"persona_applied":     run.PersonaApplied,
			"research_fallbacks":  run.ResearchFallbacks,
			"analytics_fallbacks": run.AnalyticsFallbacks,
			"duration_ms":         run.DurationMillis,
			"source":              run.Source,
		})
	}
	c.JSON(http.StatusOK, gin.H{"runs": items})
}
