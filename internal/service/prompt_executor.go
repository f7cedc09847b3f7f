package service

import (
	"context"
	"strings"
)

// Tool 是暴露给模型的外部能力，接收一个查询字符串并返回文本。
type Tool struct {
	Name        string
	Description string
	Invoke      func(ctx context.Context, query string) (string, error)
}

// AgentSettings 描述一次生成调用的配置：模型、指令列表与可用工具。
// 各阶段只是不同的 AgentSettings 值，不存在继承关系。
type AgentSettings struct {
	Name         string
	Model        string
	Instructions []string
	Tools        []Tool
	Temperature  float64
}

// SystemPrompt 将指令列表渲染为系统消息。
func (a AgentSettings) SystemPrompt() string {
	var b strings.Builder
	for _, instruction := range a.Instructions {
		instruction = strings.TrimSpace(instruction)
		if instruction == "" {
			continue
		}
		b.WriteString("- ")
		b.WriteString(instruction)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// PromptExecutor 是生成服务的最小契约：给定配置与提示词，返回模型文本。
type PromptExecutor interface {
	Run(ctx context.Context, agent AgentSettings, prompt string) (string, error)
}

const (
	agentResearch  = "RESEARCH"
	agentWriter    = "WRITER"
	agentFormatter = "FORMATTER"
	agentAnalytics = "ANALYTICS"
)

func researchAgent(model string, tools []Tool) AgentSettings {
	return AgentSettings{
		Name:  agentResearch,
		Model: model,
		Tools: tools,
		Instructions: []string{
			"Use the web_search tool for trending data on the topic and the social_trends tool for real-time social media insights.",
			"Combine findings into a concise summary (100-150 words).",
			"Summarize social insights as a unique, topic-specific trend without quoting specific posts verbatim.",
			"Avoid overusing 'buzzing' or 'abuzz'; vary phrasing like 'users are raving,' 'trending online,' or 'hot on social feeds.'",
			"Focus on diverse, real-time insights and avoid repetition.",
		},
		Temperature: 0.4,
	}
}

func writerAgent(model string) AgentSettings {
	return AgentSettings{
		Name:  agentWriter,
		Model: model,
		Instructions: []string{
			"Write varied content using the research and user inputs (platform, goal, topic).",
			"Optimize for the goal: engagement (questions, hooks), visibility (keywords), branding (consistent tone).",
			"For blogs and articles, include a short heading followed by 2-3 concise paragraphs. For Instagram/LinkedIn, use short lines with clear breaks.",
			"Incorporate the social media trend summary creatively, avoiding repetitive phrases like 'buzzing'; use alternatives like 'trending hot,' 'users are hooked,' or 'online hype is real.'",
			"Avoid repeating phrases or ideas across drafts.",
		},
		Temperature: 0.9,
	}
}

func formatterAgent(model string) AgentSettings {
	return AgentSettings{
		Name:  agentFormatter,
		Model: model,
		Instructions: []string{
			"Polish the content to fit the platform's rules (length, style, hashtags).",
			"Remove duplicates and enforce max length strictly.",
			"Add specified hashtags naturally.",
			"Respond with only the finished post text.",
		},
		Temperature: 0.3,
	}
}

func analyticsAgent(model string) AgentSettings {
	return AgentSettings{
		Name:  agentAnalytics,
		Model: model,
		Instructions: []string{
			"Predict engagement metrics (likes, comments, shares) for two content variants based on their text.",
			"Consider factors like: presence of a question (boosts comments), bold hooks (boosts likes), trending keywords (boosts shares), and length (shorter boosts visibility).",
			"Assign realistic scores (e.g., 10-50 likes, 5-20 comments, 0-10 shares) for the given platform.",
			"Provide a brief reasoning (e.g., 'Variant B wins due to question driving comments').",
			`Return only a JSON object: {"variant_a": {"likes": X, "comments": Y, "shares": Z}, "variant_b": {"likes": X, "comments": Y, "shares": Z}, "reasoning": "..."}`,
		},
		Temperature: 0.2,
	}
}
