package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/postsmith/internal/logging"
)

const (
	defaultChatBaseURL = "https://api.groq.com/openai/v1"
	defaultChatModel   = "llama-3.3-70b-versatile"
	defaultChatTimeout = 3 * time.Minute

	// maxToolRounds 限制单次调用中执行工具的轮数；一次调用最多发出 maxToolRounds+1 个请求。
	maxToolRounds = 3
)

// OpenAIExecutorConfig 描述 OpenAIExecutor 的构造参数。
type OpenAIExecutorConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     logging.Logger
}

// OpenAIExecutor 通过 OpenAI 兼容的 /chat/completions 接口执行提示词，默认指向 Groq。
type OpenAIExecutor struct {
	client openai.Client
	model  string
	logger logging.Logger
}

// NewOpenAIExecutor 构造执行器，未提供 API Key 时返回 ErrAIAPIKeyMissing。
// SDK 自带的重试被关闭，失败由调用方替换为兜底内容。
func NewOpenAIExecutor(cfg OpenAIExecutorConfig) (*OpenAIExecutor, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, ErrAIAPIKeyMissing
	}

	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = defaultChatBaseURL
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultChatModel
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultChatTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(base+"/"),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
		option.WithHeader("User-Agent", "postsmith/1.0"),
	)

	return &OpenAIExecutor{client: client, model: model, logger: logger}, nil
}

// Model 返回默认模型名称。
func (e *OpenAIExecutor) Model() string {
	return e.model
}

// Run 执行一次生成调用；模型请求工具时执行工具并回传结果，直到得到文本回答。
func (e *OpenAIExecutor) Run(ctx context.Context, agent AgentSettings, prompt string) (string, error) {
	model := strings.TrimSpace(agent.Model)
	if model == "" {
		model = e.model
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if system := agent.SystemPrompt(); system != "" {
		messages = append(messages, openai.SystemMessage(system))
	}
	messages = append(messages, openai.UserMessage(prompt))

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(model),
		Messages: messages,
	}
	if agent.Temperature > 0 {
		params.Temperature = openai.Float(agent.Temperature)
	}
	if len(agent.Tools) > 0 {
		params.Tools = toolParams(agent.Tools)
	}

	logAIExchange(e.logger, agent.Name, "prompt", prompt)

	for round := 0; ; round++ {
		completion, err := e.client.Chat.Completions.New(ctx, params)
		if err != nil {
			return "", fmt.Errorf("%s chat completion: %w", strings.ToLower(agent.Name), err)
		}
		if len(completion.Choices) == 0 {
			return "", ErrEmptyCompletion
		}

		message := completion.Choices[0].Message
		content := strings.TrimSpace(message.Content)
		if len(message.ToolCalls) == 0 || round >= maxToolRounds {
			logAIExchange(e.logger, agent.Name, "response", content)
			if content == "" {
				if len(message.ToolCalls) > 0 {
					return "", fmt.Errorf("%s: tool calls after %d rounds: %w", strings.ToLower(agent.Name), maxToolRounds, ErrEmptyCompletion)
				}
				return "", ErrEmptyCompletion
			}
			return content, nil
		}

		params.Messages = append(params.Messages, message.ToParam())
		for _, call := range message.ToolCalls {
			output := e.invokeTool(ctx, agent, call.Function.Name, call.Function.Arguments)
			params.Messages = append(params.Messages, openai.ToolMessage(output, call.ID))
		}

		// 最后一轮不再提供工具，模型必须直接作答。
		if round+1 >= maxToolRounds {
			params.Tools = nil
		}
	}
}

func (e *OpenAIExecutor) invokeTool(ctx context.Context, agent AgentSettings, name, arguments string) string {
	var tool *Tool
	for i := range agent.Tools {
		if agent.Tools[i].Name == name {
			tool = &agent.Tools[i]
			break
		}
	}
	if tool == nil || tool.Invoke == nil {
		return fmt.Sprintf("Tool %q is not available.", name)
	}

	query := parseToolQuery(arguments)
	logAIExchange(e.logger, agent.Name, "tool "+name, query)

	output, err := tool.Invoke(ctx, query)
	if err != nil {
		e.logger.WithError(err).WithField("tool", name).Warn("Tool call failed")
		return fmt.Sprintf("Tool %s failed: %v", name, err)
	}
	return output
}

func parseToolQuery(arguments string) string {
	var args struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal([]byte(arguments), &args); err == nil && strings.TrimSpace(args.Query) != "" {
		return strings.TrimSpace(args.Query)
	}
	return strings.TrimSpace(arguments)
}

func toolParams(tools []Tool) []openai.ChatCompletionToolParam {
	out := make([]openai.ChatCompletionToolParam, 0, len(tools))
	for _, tool := range tools {
		out = append(out, openai.ChatCompletionToolParam{
			Function: openai.FunctionDefinitionParam{
				Name:        tool.Name,
				Description: openai.String(tool.Description),
				Parameters: openai.FunctionParameters{
					"type": "object",
					"properties": map[string]any{
						"query": map[string]any{
							"type":        "string",
							"description": "Search query",
						},
					},
					"required": []string{"query"},
				},
			},
		})
	}
	return out
}
