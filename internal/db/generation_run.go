package db

import "gorm.io/gorm"

// GenerationRun 记录一次批量生成的运行信息。
// 只保存运维元数据，生成的正文、风格画像与帖子 ID 都不落库。
type GenerationRun struct {
	gorm.Model
	Platform           string `gorm:"size:32;index"`
	Goal               string `gorm:"size:32"`
	Tone               string `gorm:"size:32"`
	Count              int
	PersonaApplied     bool
	ResearchFallbacks  int
	AnalyticsFallbacks int
	DurationMillis     int64
	Source             string `gorm:"size:16"` // web, api, cli
}

// TableName 自定义表名以保持命名一致。
func (GenerationRun) TableName() string {
	return "generation_runs"
}
