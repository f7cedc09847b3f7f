package locale

import "strings"

const (
	LanguageEnglish = "en"
	LanguageChinese = "zh"
)

// Preference 描述一次请求使用的界面语言。
type Preference struct {
	Language string
	HTMLLang string
}

// NormalizeLanguage 将语言标签归一为受支持的语言，无法识别时返回空串。
func NormalizeLanguage(raw string) string {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "zh") || trimmed == "cn" {
		return LanguageChinese
	}
	if strings.HasPrefix(trimmed, "en") {
		return LanguageEnglish
	}
	return ""
}

// LanguageFromAcceptLanguage 按出现顺序返回 Accept-Language 中第一个受支持的语言。
func LanguageFromAcceptLanguage(header string) string {
	for _, part := range strings.Split(header, ",") {
		tag, _, _ := strings.Cut(part, ";")
		if language := NormalizeLanguage(tag); language != "" {
			return language
		}
	}
	return ""
}

// PreferenceForLanguage 返回语言对应的偏好设置，默认英文。
func PreferenceForLanguage(language string) Preference {
	if NormalizeLanguage(language) == LanguageChinese {
		return Preference{Language: LanguageChinese, HTMLLang: "zh-CN"}
	}
	return Preference{Language: LanguageEnglish, HTMLLang: "en-US"}
}
