package service

import "sort"

const (
	// LimitUnitChars 表示按字符计数的长度上限。
	LimitUnitChars = "chars"
	// LimitUnitWords 表示按单词计数的长度上限。
	LimitUnitWords = "words"
)

// PlatformRule 描述单个发布平台的格式约束。
type PlatformRule struct {
	Name        string
	LimitUnit   string
	Limit       int
	Style       string
	Hashtags    int
	DefaultTone string
}

// CharLimited 报告长度上限是否按字符计算。
func (r PlatformRule) CharLimited() bool {
	return r.LimitUnit == LimitUnitChars
}

// LongForm 报告平台是否为长文（标题加段落）形式。
func (r PlatformRule) LongForm() bool {
	return r.LimitUnit == LimitUnitWords
}

var platformRules = map[string]PlatformRule{
	"instagram": {Name: "instagram", LimitUnit: LimitUnitChars, Limit: 150, Style: "casual", Hashtags: 3, DefaultTone: "casual"},
	"linkedin":  {Name: "linkedin", LimitUnit: LimitUnitChars, Limit: 3000, Style: "professional", Hashtags: 2, DefaultTone: "professional"},
	"blog":      {Name: "blog", LimitUnit: LimitUnitWords, Limit: 1000, Style: "informal", Hashtags: 0, DefaultTone: "casual"},
	"article":   {Name: "article", LimitUnit: LimitUnitWords, Limit: 2000, Style: "formal", Hashtags: 0, DefaultTone: "professional"},
}

var toneDescriptors = map[string]string{
	"professional": "formal, concise, polished, business-like",
	"casual":       "relaxed, friendly, conversational",
	"humorous":     "witty, playful, lighthearted",
}

// fallbackTone 在语气缺失时兜底使用。
const fallbackTone = "casual"

var goals = []string{"engagement", "visibility", "branding"}

// LookupPlatform 返回平台规则，未知平台返回 ConfigurationError。
func LookupPlatform(name string) (PlatformRule, error) {
	rule, ok := platformRules[name]
	if !ok {
		return PlatformRule{}, &ConfigurationError{Kind: "platform", Key: name}
	}
	return rule, nil
}

// LookupTone 返回语气对应的风格描述，未知语气返回 ConfigurationError。
func LookupTone(name string) (string, error) {
	descriptor, ok := toneDescriptors[name]
	if !ok {
		return "", &ConfigurationError{Kind: "tone", Key: name}
	}
	return descriptor, nil
}

// PlatformNames 返回排序后的平台名称列表。
func PlatformNames() []string {
	return sortedKeys(platformRules)
}

// ToneNames 返回排序后的语气名称列表。
func ToneNames() []string {
	return sortedKeys(toneDescriptors)
}

// GoalNames 返回支持的优化目标。
func GoalNames() []string {
	out := make([]string, len(goals))
	copy(out, goals)
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
