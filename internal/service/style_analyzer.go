package service

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/postsmith/internal/logging"
	"github.com/postsmith/internal/textstats"
)

const (
	SentenceLengthShort = "short"
	SentenceLengthLong  = "long"

	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"

	// shortSentenceThreshold 为平均句数的分界，低于该值视为短句风格。
	shortSentenceThreshold = 10

	contentColumn = "content"
)

// Persona 描述从历史帖子中提取的粗粒度写作风格，仅在单次请求内有效。
type Persona struct {
	SentenceLength string `json:"sentence_length"`
	Sentiment      string `json:"sentiment"`
}

// ParsePosts 将上传的语料解析为帖子列表：.csv 文件读取 content 列，其余按行切分。
func ParsePosts(filename string, r io.Reader) ([]string, error) {
	var (
		posts []string
		err   error
	)
	if strings.EqualFold(filepath.Ext(filename), ".csv") {
		posts, err = parseCSVPosts(r)
	} else {
		posts, err = parseTextPosts(r)
	}
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, &StyleAnalysisError{Reason: "file is empty"}
	}
	return posts, nil
}

func parseCSVPosts(r io.Reader) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &StyleAnalysisError{Reason: "file is empty"}
		}
		return nil, &StyleAnalysisError{Reason: "read csv header", Err: err}
	}

	column := -1
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if name == contentColumn {
			column = i
			break
		}
	}
	if column < 0 {
		return nil, &StyleAnalysisError{Reason: "CSV must have a 'content' column"}
	}

	var posts []string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &StyleAnalysisError{Reason: "read csv row", Err: err}
		}
		if column >= len(record) {
			continue
		}
		if post := strings.TrimSpace(record[column]); post != "" {
			posts = append(posts, post)
		}
	}
	return posts, nil
}

func parseTextPosts(r io.Reader) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &StyleAnalysisError{Reason: "read file", Err: err}
	}
	if !utf8.Valid(data) {
		return nil, &StyleAnalysisError{Reason: "file is not valid UTF-8"}
	}

	var posts []string
	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	scanner.Buffer(make([]byte, 0, 64*1024), len(data)+1)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			posts = append(posts, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, &StyleAnalysisError{Reason: "split lines", Err: err}
	}
	return posts, nil
}

// AnalyzeStyle 计算语料的平均句数与平均情感极性，并归入 Persona 分桶。
func AnalyzeStyle(filename string, r io.Reader) (*Persona, error) {
	posts, err := ParsePosts(filename, r)
	if err != nil {
		return nil, err
	}
	return PersonaFromPosts(posts)
}

// PersonaFromPosts 对已解析的帖子列表做风格归类。
func PersonaFromPosts(posts []string) (*Persona, error) {
	if len(posts) == 0 {
		return nil, &StyleAnalysisError{Reason: "file is empty"}
	}

	var sentenceTotal, polarityTotal float64
	for _, post := range posts {
		count, err := textstats.SentenceCount(post)
		if err != nil {
			return nil, &StyleAnalysisError{Reason: "sentence segmentation", Err: err}
		}
		sentenceTotal += float64(count)
		polarityTotal += textstats.Polarity(post)
	}

	n := float64(len(posts))
	avgSentences := sentenceTotal / n
	avgPolarity := polarityTotal / n

	persona := &Persona{SentenceLength: SentenceLengthLong, Sentiment: SentimentNeutral}
	if avgSentences < shortSentenceThreshold {
		persona.SentenceLength = SentenceLengthShort
	}
	switch {
	case avgPolarity > 0:
		persona.Sentiment = SentimentPositive
	case avgPolarity < 0:
		persona.Sentiment = SentimentNegative
	}
	return persona, nil
}

// StyleAnalyzer 是风格分析的软失败入口：任何错误都会被记录并返回 nil。
type StyleAnalyzer struct {
	logger   logging.Logger
	metrics  *Metrics
	maxBytes int64
}

// NewStyleAnalyzer 构造 StyleAnalyzer，maxBytes <= 0 时不限制上传大小。
func NewStyleAnalyzer(logger logging.Logger, metrics *Metrics, maxBytes int64) *StyleAnalyzer {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &StyleAnalyzer{logger: logger, metrics: metrics, maxBytes: maxBytes}
}

// Analyze 返回推导出的 Persona；语料不可用时返回 nil，不中断请求。
func (a *StyleAnalyzer) Analyze(filename string, r io.Reader) *Persona {
	if a.maxBytes > 0 {
		r = io.LimitReader(r, a.maxBytes+1)
		data, err := io.ReadAll(r)
		if err != nil {
			a.fail(filename, &StyleAnalysisError{Reason: "read upload", Err: err})
			return nil
		}
		if int64(len(data)) > a.maxBytes {
			a.fail(filename, &StyleAnalysisError{Reason: fmt.Sprintf("upload exceeds %d bytes", a.maxBytes)})
			return nil
		}
		r = strings.NewReader(string(data))
	}

	persona, err := AnalyzeStyle(filename, r)
	if err != nil {
		a.fail(filename, err)
		return nil
	}

	a.metrics.incStyle(OutcomeOK)
	a.logger.WithFields(logging.Fields{
		"file":            filename,
		"sentence_length": persona.SentenceLength,
		"sentiment":       persona.Sentiment,
	}).Info("Style analysis complete")
	return persona
}

func (a *StyleAnalyzer) fail(filename string, err error) {
	a.metrics.incStyle(OutcomeFallback)
	a.logger.WithError(err).WithField("file", filename).Error("Style analysis failed")
}
