package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
)

// fakeExecutor 按阶段名称返回预设结果，并记录每次调用。
type fakeExecutor struct {
	mu        sync.Mutex
	responses map[string]func(prompt string) (string, error)
	calls     []fakeCall
}

type fakeCall struct {
	Agent  AgentSettings
	Prompt string
}

func newFakeExecutor() *fakeExecutor {
	return &fakeExecutor{responses: map[string]func(string) (string, error){}}
}

func (f *fakeExecutor) on(agent string, fn func(prompt string) (string, error)) *fakeExecutor {
	f.responses[agent] = fn
	return f
}

func (f *fakeExecutor) Run(_ context.Context, agent AgentSettings, prompt string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, fakeCall{Agent: agent, Prompt: prompt})
	fn := f.responses[agent.Name]
	f.mu.Unlock()

	if fn == nil {
		return "", fmt.Errorf("no response configured for %s", agent.Name)
	}
	return fn(prompt)
}

func (f *fakeExecutor) callsFor(agent string) []fakeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []fakeCall
	for _, call := range f.calls {
		if call.Agent.Name == agent {
			out = append(out, call)
		}
	}
	return out
}

func staticResponse(text string) func(string) (string, error) {
	return func(string) (string, error) { return text, nil }
}

func failingResponse(msg string) func(string) (string, error) {
	return func(string) (string, error) { return "", errors.New(msg) }
}

// happyExecutor 返回所有阶段都成功的执行器。
func happyExecutor(t *testing.T) *fakeExecutor {
	t.Helper()
	return newFakeExecutor().
		on(agentResearch, staticResponse("Creators are sharing quick morning routines.")).
		on(agentWriter, func(prompt string) (string, error) {
			if strings.Contains(prompt, "thought-provoking question") {
				return "What would you change about your mornings?", nil
			}
			return "Own your mornings.", nil
		}).
		on(agentFormatter, func(prompt string) (string, error) {
			start := strings.Index(prompt, "'")
			end := strings.Index(prompt[start+1:], "'")
			return prompt[start+1:start+1+end] + " #morning", nil
		}).
		on(agentAnalytics, staticResponse(`{"variant_a": {"likes": 30, "comments": 6, "shares": 4}, "variant_b": {"likes": 41, "comments": 15, "shares": 5}, "reasoning": "Variant B asks a question."}`))
}
