package planner

import (
	"context"
	"fmt"

	"rag-chat-be/internal/pkg/logger"
	"rag-chat-be/pkg/llm"
	"rag-chat-be/pkg/rag/message"
	"rag-chat-be/pkg/rag/prompt"
)

// historyWindow bounds how much recent conversation the planner sees.
const historyWindow = 4

// Planner produces a short natural-language retrieval plan for a question.
// On retry it is explicitly told to diversify phrasing; there is no other
// branching here.
type Planner struct {
	llmProvider llm.LLMProvider
	logger      logger.ILogger
}

func NewPlanner(llmProvider llm.LLMProvider, log logger.ILogger) *Planner {
	return &Planner{llmProvider: llmProvider, logger: log}
}

func (p *Planner) Plan(ctx context.Context, question string, history []message.Message, retryCount int) (string, error) {
	msgs := []llm.Message{
		{Role: "system", Content: prompt.QueryPlannerSystem},
	}

	for _, m := range message.Tail(history, historyWindow) {
		msgs = append(msgs, llm.Message{Role: string(m.Role), Content: m.Content})
	}

	if retryCount > 0 {
		msgs = append(msgs, llm.Message{Role: "user", Content: prompt.PlannerRetryInstruction})
	}

	msgs = append(msgs, llm.Message{
		Role:    "user",
		Content: fmt.Sprintf("User question: %s", question),
	})

	// A plan is a short rewritten query; allow some phrasing variety but cap
	// the length hard.
	plan, err := p.llmProvider.Chat(ctx, msgs,
		llm.WithTemperature(0.3),
		llm.WithMaxTokens(256),
	)
	if err != nil {
		return "", fmt.Errorf("planner generation failed: %w", err)
	}

	p.logger.Debug("Planner", "Plan generated", map[string]interface{}{
		"retry_count": retryCount,
		"plan_len":    len(plan),
	})

	return plan, nil
}
