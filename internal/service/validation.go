package service

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	MinPostCount = 1
	MaxPostCount = 50

	minTopicRunes = 3
)

const (
	msgInvalidPlatform = "Invalid platform."
	msgInvalidGoal     = "Goal must be 'engagement', 'visibility', or 'branding'."
	msgInvalidTone     = "Invalid tone."
	msgTopicTooShort   = "Topic must be at least 3 characters long."
	msgCountRange      = "Count must be between 1 and 50."
	msgCountNotInteger = "Count must be a valid integer."
)

// ValidateInputs 校验表单字段并返回全部错误提示，不会在第一个错误处中断。
func ValidateInputs(platform, goal, tone, topic, count string) []string {
	var errs []string

	if _, ok := platformRules[platform]; !ok {
		errs = append(errs, msgInvalidPlatform)
	}
	if !isGoal(goal) {
		errs = append(errs, msgInvalidGoal)
	}
	if _, ok := toneDescriptors[tone]; !ok {
		errs = append(errs, msgInvalidTone)
	}
	if utf8.RuneCountInString(strings.TrimSpace(topic)) < minTopicRunes {
		errs = append(errs, msgTopicTooShort)
	}
	if _, msg := parseCount(count); msg != "" {
		errs = append(errs, msg)
	}

	return errs
}

// ParseCount 解析并校验生成数量。
func ParseCount(raw string) (int, error) {
	n, msg := parseCount(raw)
	if msg != "" {
		return 0, &ValidationError{Messages: []string{msg}}
	}
	return n, nil
}

func parseCount(raw string) (int, string) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, msgCountNotInteger
	}
	if n < MinPostCount || n > MaxPostCount {
		return n, msgCountRange
	}
	return n, ""
}

func isGoal(goal string) bool {
	for _, g := range goals {
		if g == goal {
			return true
		}
	}
	return false
}
