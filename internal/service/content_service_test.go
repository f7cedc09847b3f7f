package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"unicode/utf8"
)

func newTestContentService(executor PromptExecutor) *ContentService {
	ids := 0
	return NewContentService(ContentServiceConfig{
		Executor: executor,
		Model:    "test-model",
		NewID: func() string {
			ids++
			return "post-" + strings.Repeat("x", ids)
		},
	})
}

func TestGenerateContentHappyPath(t *testing.T) {
	executor := happyExecutor(t)
	svc := newTestContentService(executor)

	result, err := svc.GenerateContent(context.Background(), GenerationRequest{
		Platform: "instagram",
		Goal:     "engagement",
		Topic:    "morning routines",
		Tone:     "casual",
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if result.VariantA != "Own your mornings. #morning" {
		t.Fatalf("unexpected variant A %q", result.VariantA)
	}
	if result.VariantB != "What would you change about your mornings? #morning" {
		t.Fatalf("unexpected variant B %q", result.VariantB)
	}
	if result.AnalyticsA != (EngagementMetrics{Likes: 30, Comments: 6, Shares: 4}) {
		t.Fatalf("unexpected analytics A %+v", result.AnalyticsA)
	}
	if result.AnalyticsB != (EngagementMetrics{Likes: 41, Comments: 15, Shares: 5}) {
		t.Fatalf("unexpected analytics B %+v", result.AnalyticsB)
	}
	if result.Reasoning != "Variant B asks a question." {
		t.Fatalf("unexpected reasoning %q", result.Reasoning)
	}
	if result.PostID == "" || result.ResearchFallback || result.AnalyticsFallback {
		t.Fatalf("unexpected result metadata %+v", result)
	}

	research := executor.callsFor(agentResearch)
	if len(research) != 1 || research[0].Prompt != "Find trending insights on morning routines." {
		t.Fatalf("unexpected research calls %+v", research)
	}
	if len(executor.callsFor(agentWriter)) != 2 || len(executor.callsFor(agentFormatter)) != 2 {
		t.Fatalf("expected two writer and two formatter calls")
	}

	writes := executor.callsFor(agentWriter)
	if !strings.Contains(writes[0].Prompt, "a bold, direct hook") || !strings.Contains(writes[1].Prompt, "a thought-provoking question") {
		t.Fatalf("variant hooks not applied: %q / %q", writes[0].Prompt, writes[1].Prompt)
	}
	if !strings.Contains(writes[0].Prompt, "Using this research: 'Creators are sharing quick morning routines.'") {
		t.Fatalf("research not embedded in write prompt: %q", writes[0].Prompt)
	}
	if !strings.Contains(writes[0].Prompt, "Use short lines with clear breaks.") {
		t.Fatalf("short-form instruction missing: %q", writes[0].Prompt)
	}
	if strings.Contains(writes[0].Prompt, "Write like someone") {
		t.Fatalf("persona sentence must be absent without persona: %q", writes[0].Prompt)
	}

	format := executor.callsFor(agentFormatter)[0].Prompt
	if !strings.Contains(format, "for instagram. Max 150 chars, casual style, include 3 hashtags.") {
		t.Fatalf("unexpected format prompt %q", format)
	}
}

func TestGenerateContentLongFormWithPersona(t *testing.T) {
	executor := happyExecutor(t)
	svc := newTestContentService(executor)

	_, err := svc.GenerateContent(context.Background(), GenerationRequest{
		Platform: "article",
		Goal:     "branding",
		Topic:    "team rituals",
		Persona:  &Persona{SentenceLength: SentenceLengthShort, Sentiment: SentimentPositive},
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	write := executor.callsFor(agentWriter)[0].Prompt
	if !strings.Contains(write, "Write like someone who uses short sentences and has a positive tone.") {
		t.Fatalf("persona sentence missing: %q", write)
	}
	if !strings.Contains(write, "Include a short heading and 2-3 concise paragraphs.") {
		t.Fatalf("long-form instruction missing: %q", write)
	}
	// 未指定语气时使用平台默认语气
	if !strings.Contains(write, "formal, concise, polished, business-like") {
		t.Fatalf("default tone descriptor missing: %q", write)
	}

	format := executor.callsFor(agentFormatter)[0].Prompt
	if !strings.Contains(format, "Max 2000 words, formal style, no hashtags.") {
		t.Fatalf("unexpected format prompt %q", format)
	}
}

func TestGenerateContentTruncatesInstagram(t *testing.T) {
	long := strings.Repeat("sunrise coffee journaling stretching ", 20)
	executor := happyExecutor(t).on(agentFormatter, staticResponse(long))
	svc := newTestContentService(executor)

	result, err := svc.GenerateContent(context.Background(), GenerationRequest{
		Platform: "instagram", Goal: "engagement", Topic: "morning routines", Tone: "casual",
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	for name, variant := range map[string]string{"A": result.VariantA, "B": result.VariantB} {
		if n := utf8.RuneCountInString(variant); n > 150 {
			t.Fatalf("variant %s has %d runes, want <= 150", name, n)
		}
		if !strings.HasSuffix(variant, "...") {
			t.Fatalf("variant %s should end with the placeholder: %q", name, variant)
		}
	}
}

func TestGenerateContentFallbacks(t *testing.T) {
	executor := newFakeExecutor().
		on(agentResearch, failingResponse("rate limited")).
		on(agentWriter, failingResponse("rate limited")).
		on(agentFormatter, failingResponse("rate limited")).
		on(agentAnalytics, failingResponse("rate limited"))
	svc := newTestContentService(executor)

	result, err := svc.GenerateContent(context.Background(), GenerationRequest{
		Platform: "instagram", Goal: "engagement", Topic: "morning routines", Tone: "casual",
	})
	if err != nil {
		t.Fatalf("generate should not fail on service errors: %v", err)
	}

	if !result.ResearchFallback || !result.AnalyticsFallback {
		t.Fatalf("expected fallback flags, got %+v", result)
	}
	if strings.TrimSpace(result.VariantA) == "" || strings.TrimSpace(result.VariantB) == "" {
		t.Fatalf("variants must never be empty: %+v", result)
	}
	if utf8.RuneCountInString(result.VariantA) > 150 || utf8.RuneCountInString(result.VariantB) > 150 {
		t.Fatalf("fallback variants exceed the instagram limit: %+v", result)
	}

	wantA, wantB := FallbackAnalytics()
	if result.AnalyticsA != wantA || result.AnalyticsB != wantB {
		t.Fatalf("expected fallback analytics, got %+v / %+v", result.AnalyticsA, result.AnalyticsB)
	}

	write := executor.callsFor(agentWriter)[0].Prompt
	if !strings.Contains(write, "Failed to fetch trends: research stage: rate limited") {
		t.Fatalf("research fallback text not forwarded: %q", write)
	}
}

func TestGenerateContentUnparseableAnalytics(t *testing.T) {
	executor := happyExecutor(t).on(agentAnalytics, staticResponse("Variant B will probably win."))
	svc := newTestContentService(executor)

	result, err := svc.GenerateContent(context.Background(), GenerationRequest{
		Platform: "linkedin", Goal: "visibility", Topic: "remote hiring", Tone: "professional",
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if result.AnalyticsA != (EngagementMetrics{Likes: 20, Comments: 5, Shares: 2}) {
		t.Fatalf("unexpected fallback A %+v", result.AnalyticsA)
	}
	if result.AnalyticsB != (EngagementMetrics{Likes: 25, Comments: 10, Shares: 3}) {
		t.Fatalf("unexpected fallback B %+v", result.AnalyticsB)
	}
}

func TestGenerateContentNullAnalyticsFallsBack(t *testing.T) {
	executor := happyExecutor(t).on(agentAnalytics, staticResponse("null"))
	svc := newTestContentService(executor)

	result, err := svc.GenerateContent(context.Background(), GenerationRequest{
		Platform: "linkedin", Goal: "visibility", Topic: "remote hiring", Tone: "professional",
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	wantA, wantB := FallbackAnalytics()
	if !result.AnalyticsFallback || result.AnalyticsA != wantA || result.AnalyticsB != wantB {
		t.Fatalf("expected fallback analytics, got %+v", result)
	}
}

func TestGenerateContentNormalizesLineBreaks(t *testing.T) {
	executor := happyExecutor(t).on(agentFormatter, staticResponse("Hook line\r\n\r\nSecond line\rThird"))
	svc := newTestContentService(executor)

	result, err := svc.GenerateContent(context.Background(), GenerationRequest{
		Platform: "blog", Goal: "engagement", Topic: "morning routines", Tone: "humorous",
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if result.VariantA != "Hook line\n\nSecond line\nThird" {
		t.Fatalf("expected LF line breaks, got %q", result.VariantA)
	}
}

func TestGenerateContentEmptyFormatterKeepsDraft(t *testing.T) {
	executor := happyExecutor(t).on(agentFormatter, staticResponse("   "))
	svc := newTestContentService(executor)

	result, err := svc.GenerateContent(context.Background(), GenerationRequest{
		Platform: "blog", Goal: "engagement", Topic: "morning routines", Tone: "humorous",
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if result.VariantA != "Own your mornings." {
		t.Fatalf("expected unformatted draft, got %q", result.VariantA)
	}
}

func TestGenerateContentUnknownPlatform(t *testing.T) {
	svc := newTestContentService(happyExecutor(t))

	_, err := svc.GenerateContent(context.Background(), GenerationRequest{Platform: "myspace", Topic: "music"})
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
}

func TestParseAnalytics(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantA     EngagementMetrics
		wantB     EngagementMetrics
		reasoning string
		wantErr   bool
	}{
		{
			name:  "plain json",
			raw:   `{"variant_a": {"likes": 12, "comments": 3, "shares": 1}, "variant_b": {"likes": 18, "comments": 9, "shares": 2}}`,
			wantA: EngagementMetrics{Likes: 12, Comments: 3, Shares: 1},
			wantB: EngagementMetrics{Likes: 18, Comments: 9, Shares: 2},
		},
		{
			name:      "fenced with prose",
			raw:       "Here you go:\n```json\n{\"variant_a\": {\"likes\": 10.6, \"comments\": 2, \"shares\": 0}, \"variant_b\": {\"likes\": 20, \"comments\": 4, \"shares\": 1}, \"reasoning\": \"B wins\"}\n```",
			wantA:     EngagementMetrics{Likes: 11, Comments: 2},
			wantB:     EngagementMetrics{Likes: 20, Comments: 4, Shares: 1},
			reasoning: "B wins",
		},
		{
			name:  "missing variant decodes as zeros",
			raw:   `{"variant_a": {"likes": 5, "comments": 1, "shares": -3}}`,
			wantA: EngagementMetrics{Likes: 5, Comments: 1},
		},
		{
			name:  "oversized values are capped",
			raw:   `{"variant_a": {"likes": 1e20, "comments": 1, "shares": 0}, "variant_b": {"likes": 7}}`,
			wantA: EngagementMetrics{Likes: math.MaxInt32, Comments: 1},
			wantB: EngagementMetrics{Likes: 7},
		},
		{
			name:    "null payload",
			raw:     "null",
			wantErr: true,
		},
		{
			name:    "empty object",
			raw:     "```json\n{}\n```",
			wantErr: true,
		},
		{
			name:    "not json",
			raw:     "no numbers today",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b, reasoning, err := ParseAnalytics(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if a != tt.wantA || b != tt.wantB {
				t.Fatalf("expected %+v / %+v, got %+v / %+v", tt.wantA, tt.wantB, a, b)
			}
			if reasoning != tt.reasoning {
				t.Fatalf("expected reasoning %q, got %q", tt.reasoning, reasoning)
			}
		})
	}
}

func TestShortenText(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  string
	}{
		{name: "fits untouched", text: "keep   spacing", width: 20, want: "keep   spacing"},
		{name: "collapsed fits", text: "one    two   three", width: 13, want: "one two three"},
		{name: "word boundary", text: "alpha beta gamma delta", width: 14, want: "alpha beta..."},
		{name: "single long word", text: "supercalifragilistic", width: 10, want: "superca..."},
		{name: "multibyte", text: "咖啡 咖啡 咖啡 咖啡", width: 8, want: "咖啡 咖啡..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ShortenText(tt.text, tt.width, "...")
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
			if utf8.RuneCountInString(got) > tt.width {
				t.Fatalf("result %q exceeds width %d", got, tt.width)
			}
		})
	}
}
