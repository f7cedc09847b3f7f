// Package textstats 提供风格分析所需的轻量文本统计：分句与情感极性。
package textstats

import (
	"strings"
	"sync"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
)

var (
	tokenizerOnce sync.Once
	tokenizer     *sentences.DefaultSentenceTokenizer
	tokenizerErr  error
)

func sentenceTokenizer() (*sentences.DefaultSentenceTokenizer, error) {
	tokenizerOnce.Do(func() {
		tokenizer, tokenizerErr = english.NewSentenceTokenizer(nil)
	})
	return tokenizer, tokenizerErr
}

// Sentences 使用 punkt 英文模型切分句子，返回去除空白后的句子列表。
func Sentences(text string) ([]string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	tok, err := sentenceTokenizer()
	if err != nil {
		return nil, err
	}

	var out []string
	for _, s := range tok.Tokenize(text) {
		if trimmed := strings.TrimSpace(s.Text); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out, nil
}

// SentenceCount 返回文本中的句子数量。
func SentenceCount(text string) (int, error) {
	list, err := Sentences(text)
	if err != nil {
		return 0, err
	}
	return len(list), nil
}
