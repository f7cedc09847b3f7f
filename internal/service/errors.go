package service

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyExport 表示没有可导出的帖子。
var ErrEmptyExport = errors.New("no posts available to download")

// ErrAIAPIKeyMissing 表示未提供生成服务所需的 API Key。
var ErrAIAPIKeyMissing = errors.New("api key is required")

// ErrEmptyCompletion 表示模型未返回可用内容。
var ErrEmptyCompletion = errors.New("generation service returned empty content")

// ConfigurationError 表示请求了静态表中不存在的键，属于程序不变量被破坏。
type ConfigurationError struct {
	Kind string
	Key  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("unknown %s %q", e.Kind, e.Key)
}

// ValidationError 汇总用户输入校验失败的全部提示。
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, "; ")
}

// StyleAnalysisError 表示上传语料无法用于风格分析。
type StyleAnalysisError struct {
	Reason string
	Err    error
}

func (e *StyleAnalysisError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("style analysis: %s: %v", e.Reason, e.Err)
	}
	return "style analysis: " + e.Reason
}

func (e *StyleAnalysisError) Unwrap() error {
	return e.Err
}

// GenerationServiceError 标记某个流水线阶段调用生成服务失败。
type GenerationServiceError struct {
	Stage string
	Err   error
}

func (e *GenerationServiceError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *GenerationServiceError) Unwrap() error {
	return e.Err
}
