package locale

// Pick returns the text matching the request language, defaulting to English.
func Pick(language, english, chinese string) string {
	if NormalizeLanguage(language) == LanguageChinese && chinese != "" {
		return chinese
	}
	if english != "" {
		return english
	}
	return chinese
}

// Labels holds the static text of the generator page.
type Labels struct {
	Title         string
	Subtitle      string
	Platform      string
	Goal          string
	Tone          string
	ToneDefault   string
	Topic         string
	Count         string
	StyleFile     string
	StyleFileHint string
	Generate      string
	Results       string
	VariantA      string
	VariantB      string
	Likes         string
	Comments      string
	Shares        string
	Download      string
	PersonaNote   string
}

// LabelsFor returns the page labels for a language.
func LabelsFor(language string) Labels {
	pick := func(english, chinese string) string { return Pick(language, english, chinese) }
	return Labels{
		Title:         pick("Content Generator", "内容生成器"),
		Subtitle:      pick("Research, write and score social posts in one pass.", "一次完成调研、写作与互动预测。"),
		Platform:      pick("Platform", "平台"),
		Goal:          pick("Goal", "目标"),
		Tone:          pick("Tone", "语气"),
		ToneDefault:   pick("Platform default", "平台默认"),
		Topic:         pick("Topic", "主题"),
		Count:         pick("Number of posts", "生成数量"),
		StyleFile:     pick("Past posts (optional)", "历史帖子（可选）"),
		StyleFileHint: pick("A .csv with a 'content' column or a text file with one post per line.", "含 content 列的 .csv，或每行一篇的文本文件。"),
		Generate:      pick("Generate", "生成"),
		Results:       pick("Generated posts", "生成结果"),
		VariantA:      pick("Variant A", "版本 A"),
		VariantB:      pick("Variant B", "版本 B"),
		Likes:         pick("likes", "赞"),
		Comments:      pick("comments", "评论"),
		Shares:        pick("shares", "分享"),
		Download:      pick("Download CSV", "下载 CSV"),
		PersonaNote:   pick("Matched your writing style", "已匹配你的写作风格"),
	}
}
