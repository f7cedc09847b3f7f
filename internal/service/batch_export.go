package service

import (
	"context"
	"time"

	"github.com/postsmith/internal/logging"
)

// TimestampLayout 是导出记录的时间格式。
const TimestampLayout = "2006-01-02 15:04:05"

// ExportRecord 是一条可导出的帖子记录，JSON 字段名与 CSV 表头一致。
type ExportRecord struct {
	Platform           string `json:"platform"`
	PostID             string `json:"post_id"`
	VariantA           string `json:"variant_a"`
	VariantB           string `json:"variant_b"`
	Timestamp          string `json:"timestamp"`
	AnalyticsALikes    int    `json:"analytics_a_likes"`
	AnalyticsAComments int    `json:"analytics_a_comments"`
	AnalyticsAShares   int    `json:"analytics_a_shares"`
	AnalyticsBLikes    int    `json:"analytics_b_likes"`
	AnalyticsBComments int    `json:"analytics_b_comments"`
	AnalyticsBShares   int    `json:"analytics_b_shares"`
}

// NewExportRecord 将一次生成结果展开为导出记录。
func NewExportRecord(platform string, result GenerationResult, stamp time.Time) ExportRecord {
	return ExportRecord{
		Platform:           platform,
		PostID:             result.PostID,
		VariantA:           normalizeLineBreaks(result.VariantA),
		VariantB:           normalizeLineBreaks(result.VariantB),
		Timestamp:          stamp.Format(TimestampLayout),
		AnalyticsALikes:    result.AnalyticsA.Likes,
		AnalyticsAComments: result.AnalyticsA.Comments,
		AnalyticsAShares:   result.AnalyticsA.Shares,
		AnalyticsBLikes:    result.AnalyticsB.Likes,
		AnalyticsBComments: result.AnalyticsB.Comments,
		AnalyticsBShares:   result.AnalyticsB.Shares,
	}
}

// BatchResult 汇总一次批量生成的记录与运行统计。
type BatchResult struct {
	Records            []ExportRecord
	ResearchFallbacks  int
	AnalyticsFallbacks int
	Duration           time.Duration
}

// GenerateBatch 顺序执行 count 次生成流程，每条记录的时间戳取该次生成完成的时刻。
// 每轮之间检查 ctx，被取消时返回 ctx 的错误。
func (s *ContentService) GenerateBatch(ctx context.Context, req GenerationRequest, count int) (BatchResult, error) {
	if count < MinPostCount || count > MaxPostCount {
		return BatchResult{}, &ValidationError{Messages: []string{msgCountRange}}
	}
	rule, err := LookupPlatform(req.Platform)
	if err != nil {
		return BatchResult{}, err
	}

	started := s.now()
	result := BatchResult{Records: make([]ExportRecord, 0, count)}

	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return BatchResult{}, err
		}

		generated, err := s.GenerateContent(ctx, req)
		if err != nil {
			return BatchResult{}, err
		}
		if generated.ResearchFallback {
			result.ResearchFallbacks++
		}
		if generated.AnalyticsFallback {
			result.AnalyticsFallbacks++
		}

		result.Records = append(result.Records, NewExportRecord(rule.Name, generated, s.now()))
		s.metrics.incPosts(rule.Name)
	}

	result.Duration = s.now().Sub(started)
	s.metrics.observeBatch(rule.Name, result.Duration.Seconds())

	s.logger.WithFields(logging.Fields{
		"platform":            rule.Name,
		"count":               count,
		"research_fallbacks":  result.ResearchFallbacks,
		"analytics_fallbacks": result.AnalyticsFallbacks,
		"duration":            result.Duration.String(),
	}).Info("Batch generation finished")

	return result, nil
}
