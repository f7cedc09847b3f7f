package textstats

import (
	"strings"
	"sync"

	"github.com/jonreiter/govader"
)

var (
	analyzerOnce sync.Once
	analyzer     *govader.SentimentIntensityAnalyzer
)

func sentimentAnalyzer() *govader.SentimentIntensityAnalyzer {
	analyzerOnce.Do(func() {
		analyzer = govader.NewSentimentIntensityAnalyzer()
	})
	return analyzer
}

// apostrophes 将排版引号统一为 ASCII，否则 "isn’t" 之类的否定词无法识别。
var apostrophes = strings.NewReplacer("’", "'", "‘", "'")

// Polarity 使用 VADER 计算文本的情感极性，返回 [-1, 1] 区间的 compound 分值；中性或空文本返回 0。
func Polarity(text string) float64 {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}
	return clamp(sentimentAnalyzer().PolarityScores(apostrophes.Replace(text)).Compound)
}

func clamp(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
