package service

import "github.com/prometheus/client_golang/prometheus"

const (
	StageResearch  = "research"
	StageWrite     = "write"
	StageFormat    = "format"
	StageAnalytics = "analytics"

	OutcomeOK       = "ok"
	OutcomeFallback = "fallback"
)

// Metrics 汇总生成流程的 Prometheus 指标，nil 接收者上的方法均为空操作。
type Metrics struct {
	Registry       *prometheus.Registry
	StageCalls     *prometheus.CounterVec
	PostsGenerated *prometheus.CounterVec
	StyleAnalyses  *prometheus.CounterVec
	BatchDuration  *prometheus.HistogramVec
}

// NewMetrics 在独立的 registry 上注册全部指标。
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		StageCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "postsmith_stage_total",
			Help: "Pipeline stage executions by outcome.",
		}, []string{"stage", "outcome"}),
		PostsGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "postsmith_posts_generated_total",
			Help: "Generated posts by platform.",
		}, []string{"platform"}),
		StyleAnalyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "postsmith_style_analysis_total",
			Help: "Style analyses by outcome.",
		}, []string{"outcome"}),
		BatchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "postsmith_batch_duration_seconds",
			Help:    "Wall-clock duration of a batch generation.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}, []string{"platform"}),
	}
	m.Registry.MustRegister(m.StageCalls, m.PostsGenerated, m.StyleAnalyses, m.BatchDuration)
	return m
}

func (m *Metrics) observeStage(stage, outcome string) {
	if m == nil || m.StageCalls == nil {
		return
	}
	m.StageCalls.WithLabelValues(stage, outcome).Inc()
}

func (m *Metrics) incPosts(platform string) {
	if m == nil || m.PostsGenerated == nil {
		return
	}
	m.PostsGenerated.WithLabelValues(platform).Inc()
}

func (m *Metrics) incStyle(outcome string) {
	if m == nil || m.StyleAnalyses == nil {
		return
	}
	m.StyleAnalyses.WithLabelValues(outcome).Inc()
}

func (m *Metrics) observeBatch(platform string, seconds float64) {
	if m == nil || m.BatchDuration == nil {
		return
	}
	m.BatchDuration.WithLabelValues(platform).Observe(seconds)
}
