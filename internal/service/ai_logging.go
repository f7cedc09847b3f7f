package service

import (
	"strings"
	"unicode/utf8"

	"github.com/postsmith/internal/logging"
)

const maxAILogSnippetRunes = 1024

// logAIExchange 用于输出 AI 请求与响应的关键信息，方便排查模型行为。
func logAIExchange(logger logging.Logger, agent, phase, content string) {
	if logger == nil {
		return
	}
	entry := logger.WithFields(logging.Fields{"agent": agent, "phase": phase})

	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		entry.Info("<empty>")
		return
	}

	runeCount := utf8.RuneCountInString(trimmed)
	entry.WithField("runes", runeCount).Info(truncateRunes(trimmed, maxAILogSnippetRunes))
}

// truncateRunes 按字符截断，超出部分以 "…(truncated)" 标注。
func truncateRunes(input string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(input)
	if len(runes) <= limit {
		return input
	}
	return string(runes[:limit]) + "…(truncated)"
}
