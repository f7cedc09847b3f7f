package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/postsmith/internal/logging"
)

// EngagementMetrics 是单个变体的互动预测。
type EngagementMetrics struct {
	Likes    int `json:"likes"`
	Comments int `json:"comments"`
	Shares   int `json:"shares"`
}

var (
	fallbackAnalyticsA = EngagementMetrics{Likes: 20, Comments: 5, Shares: 2}
	fallbackAnalyticsB = EngagementMetrics{Likes: 25, Comments: 10, Shares: 3}
)

// FallbackAnalytics 返回分析阶段失败时使用的固定预测值。
func FallbackAnalytics() (EngagementMetrics, EngagementMetrics) {
	return fallbackAnalyticsA, fallbackAnalyticsB
}

// GenerationRequest 描述生成单篇内容所需的输入，Tone 为空时使用平台默认语气。
type GenerationRequest struct {
	Platform string
	Goal     string
	Topic    string
	Tone     string
	Persona  *Persona
}

// GenerationResult 是一次流水线调用的产物，生成后不再修改。
type GenerationResult struct {
	PostID     string            `json:"post_id"`
	VariantA   string            `json:"variant_a"`
	VariantB   string            `json:"variant_b"`
	AnalyticsA EngagementMetrics `json:"analytics_a"`
	AnalyticsB EngagementMetrics `json:"analytics_b"`
	Reasoning  string            `json:"reasoning,omitempty"`

	ResearchFallback  bool `json:"-"`
	AnalyticsFallback bool `json:"-"`
}

// ContentServiceConfig 汇总 ContentService 的依赖。
type ContentServiceConfig struct {
	Executor PromptExecutor
	Tools    []Tool
	Model    string
	Logger   logging.Logger
	Metrics  *Metrics
	Now      func() time.Time
	NewID    func() string
}

// ContentService 顺序执行调研、写作、格式化与互动预测四个阶段。
type ContentService struct {
	executor PromptExecutor
	tools    []Tool
	model    string
	logger   logging.Logger
	metrics  *Metrics
	now      func() time.Time
	newID    func() string
}

// NewContentService 构造 ContentService。
func NewContentService(cfg ContentServiceConfig) *ContentService {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	newID := cfg.NewID
	if newID == nil {
		newID = func() string { return uuid.New().String() }
	}
	return &ContentService{
		executor: cfg.Executor,
		tools:    cfg.Tools,
		model:    cfg.Model,
		logger:   logger,
		metrics:  cfg.Metrics,
		now:      now,
		newID:    newID,
	}
}

type variantHook struct {
	label  string
	phrase string
}

var (
	variantHookA = variantHook{label: "A", phrase: "a bold, direct hook"}
	variantHookB = variantHook{label: "B", phrase: "a thought-provoking question"}
)

// GenerateContent 生成一篇内容的两个变体及其互动预测。
// 除平台未知外不会返回错误：生成服务的失败都被替换为兜底内容。
func (s *ContentService) GenerateContent(ctx context.Context, req GenerationRequest) (GenerationResult, error) {
	if s.executor == nil {
		return GenerationResult{}, errNilExecutor
	}
	rule, err := LookupPlatform(req.Platform)
	if err != nil {
		return GenerationResult{}, err
	}

	tone := strings.TrimSpace(req.Tone)
	if tone == "" {
		tone = rule.DefaultTone
	}
	toneDescription, err := LookupTone(tone)
	if err != nil {
		toneDescription = toneDescriptors[fallbackTone]
	}

	topic := strings.TrimSpace(req.Topic)
	log := s.logger.WithFields(logging.Fields{"platform": rule.Name, "goal": req.Goal, "tone": tone})

	result := GenerationResult{}

	research, err := s.executor.Run(ctx, researchAgent(s.model, s.tools), fmt.Sprintf("Find trending insights on %s.", topic))
	if err != nil {
		err = &GenerationServiceError{Stage: StageResearch, Err: err}
		log.WithError(err).Error("Research failed, using fallback")
		research = fmt.Sprintf("Failed to fetch trends: %v", err)
		result.ResearchFallback = true
		s.metrics.observeStage(StageResearch, OutcomeFallback)
	} else {
		s.metrics.observeStage(StageResearch, OutcomeOK)
	}

	result.VariantA = s.produceVariant(ctx, log, rule, req, topic, toneDescription, research, variantHookA)
	result.VariantB = s.produceVariant(ctx, log, rule, req, topic, toneDescription, research, variantHookB)

	result.AnalyticsA, result.AnalyticsB, result.Reasoning, result.AnalyticsFallback = s.predictAnalytics(ctx, log, rule, result.VariantA, result.VariantB)

	result.PostID = s.newID()
	return result, nil
}

func (s *ContentService) produceVariant(ctx context.Context, log logging.Entry, rule PlatformRule, req GenerationRequest, topic, toneDescription, research string, variant variantHook) string {
	writePrompt := buildWritePrompt(rule, req.Goal, topic, toneDescription, research, variant.phrase, req.Persona)

	draft, err := s.executor.Run(ctx, writerAgent(s.model), writePrompt)
	if err != nil {
		err = &GenerationServiceError{Stage: StageWrite, Err: err}
		log.WithError(err).WithField("variant", variant.label).Error("Writer failed, using fallback draft")
		draft = fallbackDraft(rule, topic, variant)
		s.metrics.observeStage(StageWrite, OutcomeFallback)
	} else {
		s.metrics.observeStage(StageWrite, OutcomeOK)
	}

	formatted, err := s.executor.Run(ctx, formatterAgent(s.model), buildFormatPrompt(rule, draft))
	if err != nil || strings.TrimSpace(formatted) == "" {
		if err == nil {
			err = ErrEmptyCompletion
		}
		err = &GenerationServiceError{Stage: StageFormat, Err: err}
		log.WithError(err).WithField("variant", variant.label).Error("Formatter failed, keeping unformatted draft")
		formatted = draft
		s.metrics.observeStage(StageFormat, OutcomeFallback)
	} else {
		s.metrics.observeStage(StageFormat, OutcomeOK)
	}

	formatted = strings.TrimSpace(normalizeLineBreaks(formatted))
	if rule.CharLimited() {
		formatted = ShortenText(formatted, rule.Limit, ellipsisPlaceholder)
	}
	if formatted == "" {
		formatted = fallbackDraft(rule, topic, variant)
		if rule.CharLimited() {
			formatted = ShortenText(formatted, rule.Limit, ellipsisPlaceholder)
		}
	}
	return formatted
}

// lineBreaks 把 CRLF 与单独的 CR 统一为 LF，保证导出的 CSV 读回后与原文一致。
var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n")

func normalizeLineBreaks(text string) string {
	return lineBreaks.Replace(text)
}

func (s *ContentService) predictAnalytics(ctx context.Context, log logging.Entry, rule PlatformRule, variantA, variantB string) (EngagementMetrics, EngagementMetrics, string, bool) {
	prompt := fmt.Sprintf("Predict engagement metrics for these variants on %s:\nVariant A: '%s'\nVariant B: '%s'", rule.Name, variantA, variantB)

	raw, err := s.executor.Run(ctx, analyticsAgent(s.model), prompt)
	if err == nil {
		var a, b EngagementMetrics
		var reasoning string
		a, b, reasoning, err = ParseAnalytics(raw)
		if err == nil {
			s.metrics.observeStage(StageAnalytics, OutcomeOK)
			return a, b, reasoning, false
		}
	}

	log.WithError(err).Error("Analytics parse error, using fallback")
	s.metrics.observeStage(StageAnalytics, OutcomeFallback)
	return fallbackAnalyticsA, fallbackAnalyticsB, "", true
}

func buildWritePrompt(rule PlatformRule, goal, topic, toneDescription, research, hook string, persona *Persona) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Using this research: '%s', write content for %s optimized for %s on %s. ", research, rule.Name, goal, topic)
	fmt.Fprintf(&b, "Use a %s tone with %s. Include a general summary of real-time social media trends.", toneDescription, hook)
	if persona != nil {
		fmt.Fprintf(&b, " Write like someone who uses %s sentences and has a %s tone.", persona.SentenceLength, persona.Sentiment)
	}
	if rule.LongForm() {
		b.WriteString(" Include a short heading and 2-3 concise paragraphs.")
	} else {
		b.WriteString(" Use short lines with clear breaks.")
	}
	return b.String()
}

func buildFormatPrompt(rule PlatformRule, draft string) string {
	hashtags := "no hashtags"
	if rule.Hashtags > 0 {
		hashtags = fmt.Sprintf("include %d hashtags", rule.Hashtags)
	}
	return fmt.Sprintf("Format this draft: '%s' for %s. Max %d %s, %s style, %s.", draft, rule.Name, rule.Limit, rule.LimitUnit, rule.Style, hashtags)
}

func fallbackDraft(rule PlatformRule, topic string, variant variantHook) string {
	opening := fmt.Sprintf("%s is trending right now.", topic)
	if variant == variantHookB {
		opening = fmt.Sprintf("What does %s mean for you?", topic)
	}
	if rule.LongForm() {
		return fmt.Sprintf("# %s\n\n%s Share your take and follow along for more.", topic, opening)
	}
	return fmt.Sprintf("%s\nShare your take below.", opening)
}

// ParseAnalytics 解析模型返回的互动预测。缺失的变体按 0 处理；无法解析时返回错误。
func ParseAnalytics(raw string) (EngagementMetrics, EngagementMetrics, string, error) {
	cleaned := cleanJSONResponse(raw)

	var payload struct {
		VariantA  *metricsPayload `json:"variant_a"`
		VariantB  *metricsPayload `json:"variant_b"`
		Reasoning json.RawMessage `json:"reasoning"`
	}
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return EngagementMetrics{}, EngagementMetrics{}, "", fmt.Errorf("parse analytics: %w", err)
	}
	if payload.VariantA == nil && payload.VariantB == nil {
		return EngagementMetrics{}, EngagementMetrics{}, "", errors.New("parse analytics: no variant metrics in response")
	}

	var reasoning string
	if len(payload.Reasoning) > 0 {
		_ = json.Unmarshal(payload.Reasoning, &reasoning)
	}

	return payload.VariantA.metrics(), payload.VariantB.metrics(), strings.TrimSpace(reasoning), nil
}

type metricsPayload struct {
	Likes    float64 `json:"likes"`
	Comments float64 `json:"comments"`
	Shares   float64 `json:"shares"`
}

func (p *metricsPayload) metrics() EngagementMetrics {
	if p == nil {
		return EngagementMetrics{}
	}
	return EngagementMetrics{
		Likes:    nonNegative(p.Likes),
		Comments: nonNegative(p.Comments),
		Shares:   nonNegative(p.Shares),
	}
}

// maxMetricValue 为单项预测指标的上限，避免超大浮点数转换为 int 时溢出。
const maxMetricValue = math.MaxInt32

func nonNegative(v float64) int {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= maxMetricValue {
		return maxMetricValue
	}
	return int(math.Round(v))
}

// cleanJSONResponse 去除代码块标记与 JSON 前后的说明文字。
func cleanJSONResponse(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start >= 0 && end > start {
		content = content[start : end+1]
	}
	return content
}

const ellipsisPlaceholder = "..."

// ShortenText 在文本超过 width 个字符时，折叠空白并按词截断，末尾追加占位符，
// 保证结果长度不超过 width。单个超长词会被硬截断。
func ShortenText(text string, width int, placeholder string) string {
	if width <= 0 {
		return ""
	}
	if utf8.RuneCountInString(text) <= width {
		return text
	}

	words := strings.Fields(text)
	collapsed := strings.Join(words, " ")
	if utf8.RuneCountInString(collapsed) <= width {
		return collapsed
	}

	placeholderRunes := utf8.RuneCountInString(placeholder)
	if placeholderRunes >= width {
		return string([]rune(placeholder)[:width])
	}
	budget := width - placeholderRunes

	var (
		kept  []string
		used  int
		first = true
	)
	for _, word := range words {
		n := utf8.RuneCountInString(word)
		if !first {
			n++
		}
		if used+n > budget {
			break
		}
		kept = append(kept, word)
		used += n
		first = false
	}

	if len(kept) == 0 {
		return string([]rune(words[0])[:budget]) + placeholder
	}
	return strings.Join(kept, " ") + placeholder
}

var errNilExecutor = errors.New("content service has no prompt executor")
