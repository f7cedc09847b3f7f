package logging

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger 是服务间传递的日志实例类型。
type Logger = *logrus.Logger

// Entry 是附带字段的日志条目。
type Entry = *logrus.Entry

// Fields 表示结构化日志字段。
type Fields = logrus.Fields

// NewLogger 创建 JSON 格式的 logger，level 为空或无法识别时使用 info。
func NewLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(ParseLevel(level))
	return logger
}

// NewDiscardLogger 返回丢弃所有输出的 logger，主要用于测试。
func NewDiscardLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// ParseLevel 将配置中的字符串转换为 logrus 级别。
func ParseLevel(level string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}
