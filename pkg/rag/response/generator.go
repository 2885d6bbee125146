package response

import (
	"context"
	"fmt"
	"strings"

	"rag-chat-be/internal/pkg/logger"
	"rag-chat-be/pkg/llm"
	"rag-chat-be/pkg/rag/message"
	"rag-chat-be/pkg/rag/prompt"
	"rag-chat-be/pkg/store"
)

const (
	// maxDocsInContext caps how much evidence reaches the prompt.
	maxDocsInContext = 10
	// maxDocChars bounds each evidence excerpt for prompt-size control.
	maxDocChars = 1000
	// historyWindow bounds recent conversation shown to the generator.
	historyWindow = 4
)

const (
	ClarifyEmptyQuestion = "What would you like to know? Please ask a question about the documents you ingested."
	ClarifyAmbiguous     = "Could you clarify what you mean, and what document/topic you want me to use? " +
		"For example: which file name and which section/page."
)

// Generator produces draft answers from grounded evidence, direct answers
// for smalltalk, and clarification prompts.
type Generator struct {
	llmProvider llm.LLMProvider
	logger      logger.ILogger
}

func NewGenerator(llmProvider llm.LLMProvider, log logger.ILogger) *Generator {
	return &Generator{llmProvider: llmProvider, logger: log}
}

// Reason drafts an answer to the question using only the supplied evidence.
// The grounding rule ("answer only from context, say when it is missing")
// is a prompt-level contract here; mechanical enforcement happens in the
// citation step.
func (g *Generator) Reason(ctx context.Context, question string, documents []store.Document, history []message.Message) (string, error) {
	contextBlock := formatDocsForPrompt(documents)

	msgs := []llm.Message{
		{Role: "system", Content: prompt.ReasoningSystem},
	}
	for _, m := range message.Tail(history, historyWindow) {
		msgs = append(msgs, llm.Message{Role: string(m.Role), Content: m.Content})
	}
	msgs = append(msgs, llm.Message{
		Role: "user",
		Content: fmt.Sprintf(
			"Using ONLY the context below, answer the user question.\n\nContext:\n%s\n\nQuestion: %s",
			contextBlock, question,
		),
	})

	answer, err := g.llmProvider.Chat(ctx, msgs)
	if err != nil {
		return "", fmt.Errorf("reasoning generation failed: %w", err)
	}

	g.logger.Debug("Response", "Draft answer generated", map[string]interface{}{
		"documents": len(documents),
	})

	return answer, nil
}

// DirectAnswer handles smalltalk and meta questions without retrieval.
func (g *Generator) DirectAnswer(ctx context.Context, question string, history []message.Message) (string, error) {
	msgs := []llm.Message{
		{Role: "system", Content: prompt.DirectAnswerSystem},
	}
	for _, m := range message.Tail(history, historyWindow) {
		msgs = append(msgs, llm.Message{Role: string(m.Role), Content: m.Content})
	}
	msgs = append(msgs, llm.Message{Role: "user", Content: strings.TrimSpace(question)})

	// Smalltalk reads better with a looser sampling temperature than the
	// grounded paths use.
	answer, err := g.llmProvider.Chat(ctx, msgs, llm.WithTemperature(0.7))
	if err != nil {
		return "", fmt.Errorf("direct answer generation failed: %w", err)
	}
	return strings.TrimSpace(answer), nil
}

// Clarify returns the fixed clarification text for an empty or ambiguous
// question. No generation call involved.
func (g *Generator) Clarify(question string) string {
	if strings.TrimSpace(question) == "" {
		return ClarifyEmptyQuestion
	}
	return ClarifyAmbiguous
}

func formatDocsForPrompt(documents []store.Document) string {
	var b strings.Builder
	for i, d := range documents {
		if i >= maxDocsInContext {
			break
		}
		if i > 0 {
			b.WriteString("\n\n")
		}
		content := d.Content
		if len(content) > maxDocChars {
			content = content[:maxDocChars]
		}
		locator := fmt.Sprintf("%d", d.Page)
		if d.Section != "" {
			locator = d.Section
		}
		b.WriteString(fmt.Sprintf("[%d] source=%s page=%s\n%s", i, d.Source, locator, content))
	}
	return b.String()
}
