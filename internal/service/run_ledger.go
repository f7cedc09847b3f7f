package service

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/postsmith/internal/db"
)

const (
	RunSourceWeb = "web"
	RunSourceAPI = "api"
	RunSourceCLI = "cli"

	defaultRunLimit = 20
	maxRunLimit     = 200
)

// RunLedger 保存批量生成的运行记录，不涉及任何生成内容。
type RunLedger struct {
	db *gorm.DB
}

// NewRunLedger 构造运行记录服务，conn 为 nil 时所有操作为空操作。
func NewRunLedger(conn *gorm.DB) *RunLedger {
	return &RunLedger{db: conn}
}

// Record 写入一次批量生成的统计信息。
func (l *RunLedger) Record(ctx context.Context, source string, req GenerationRequest, batch BatchResult) error {
	if l == nil || l.db == nil {
		return nil
	}
	run := db.GenerationRun{
		Platform:           req.Platform,
		Goal:               req.Goal,
		Tone:               req.Tone,
		Count:              len(batch.Records),
		PersonaApplied:     req.Persona != nil,
		ResearchFallbacks:  batch.ResearchFallbacks,
		AnalyticsFallbacks: batch.AnalyticsFallbacks,
		DurationMillis:     batch.Duration.Milliseconds(),
		Source:             source,
	}
	if err := l.db.WithContext(ctx).Create(&run).Error; err != nil {
		return fmt.Errorf("record generation run: %w", err)
	}
	return nil
}

// Recent 按时间倒序返回最近的运行记录，limit 非法时使用默认值。
func (l *RunLedger) Recent(ctx context.Context, limit int) ([]db.GenerationRun, error) {
	if l == nil || l.db == nil {
		return []db.GenerationRun{}, nil
	}
	if limit <= 0 {
		limit = defaultRunLimit
	}
	if limit > maxRunLimit {
		limit = maxRunLimit
	}

	var runs []db.GenerationRun
	if err := l.db.WithContext(ctx).Order("id desc").Limit(limit).Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("list generation runs: %w", err)
	}
	return runs, nil
}
