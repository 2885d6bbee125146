package citation

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"rag-chat-be/internal/pkg/logger"
	"rag-chat-be/pkg/llm"
	"rag-chat-be/pkg/rag/prompt"
	"rag-chat-be/pkg/store"
)

const (
	maxDocsInContext = 10
	excerptChars     = 800
	snippetChars     = 240
	maxAttempts      = 2
)

const (
	RefusalNoDocuments = "I don't know based on the available documents."
	RefusalInvalid     = "I can't provide a properly cited answer with the current evidence."
)

// Validator rewrites a draft answer into a cited answer and verifies that
// every citation points at a real document from the retrieval set. Claims
// that cannot be tied to evidence are refused rather than passed through.
type Validator struct {
	llmProvider llm.LLMProvider
	logger      logger.ILogger
}

func NewValidator(llmProvider llm.LLMProvider, log logger.ILogger) *Validator {
	return &Validator{llmProvider: llmProvider, logger: log}
}

type citedAnswer struct {
	AnswerWithCitations string            `json:"answer_with_citations"`
	Citations           []json.RawMessage `json:"citations"`
}

// Validate produces the final answer plus structured citations. It gives the
// model one corrective re-prompt on malformed output, then refuses.
func (v *Validator) Validate(ctx context.Context, answerDraft string, documents []store.Document) (string, []store.Citation, string, error) {
	if len(documents) == 0 {
		return RefusalNoDocuments, nil, "no documents available, refusing to cite", nil
	}

	limit := len(documents)
	if limit > maxDocsInContext {
		limit = maxDocsInContext
	}

	contextBlock := formatNumberedContext(documents[:limit])
	userContent := fmt.Sprintf("Draft answer:\n%s\n\nNumbered context:\n%s", answerDraft, contextBlock)

	msgs := []llm.Message{
		{Role: "system", Content: prompt.CitationSystem},
		{Role: "user", Content: userContent},
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		raw, err := v.llmProvider.Chat(ctx, msgs)
		if err != nil {
			return "", nil, "", fmt.Errorf("citation generation failed: %w", err)
		}

		parsed, ok := decodeCitedAnswer(raw)
		if !ok {
			// Only unparseable output earns the corrective re-prompt.
			if attempt < maxAttempts {
				v.logger.Warn("Citation", "Malformed citation output, re-prompting", map[string]interface{}{
					"attempt": attempt,
				})
				msgs = append(msgs,
					llm.Message{Role: "assistant", Content: raw},
					llm.Message{Role: "user", Content: prompt.CitationReprompt},
				)
				continue
			}
			return RefusalInvalid, nil, "citation output unparseable after re-prompt, refusing", nil
		}

		answer := parsed.AnswerWithCitations
		if strings.TrimSpace(answer) == "" {
			answer = answerDraft
		}

		citations := v.normalizeCitations(parsed.Citations, documents[:limit])
		if len(citations) == 0 {
			return RefusalInvalid, nil, "no citation survived validation, refusing", nil
		}

		trace := fmt.Sprintf("validated %d citation(s) on attempt %d", len(citations), attempt)
		return answer, citations, trace, nil
	}

	return RefusalInvalid, nil, "citation output invalid after re-prompt, refusing", nil
}

func decodeCitedAnswer(raw string) (*citedAnswer, bool) {
	payload := extractJSON(raw)

	var parsed citedAnswer
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		return nil, false
	}
	return &parsed, true
}

// normalizeCitations checks each citation index against the numbered context
// and enriches survivors from the canonical document metadata. Invalid
// entries are dropped, not fatal.
func (v *Validator) normalizeCitations(entries []json.RawMessage, documents []store.Document) []store.Citation {
	citations := make([]store.Citation, 0, len(entries))
	for _, rawCit := range entries {
		idx, ok := decodeIndex(rawCit)
		if !ok || idx < 0 || idx >= len(documents) {
			v.logger.Debug("Citation", "Dropping invalid citation entry", map[string]interface{}{
				"entry": string(rawCit),
			})
			continue
		}
		doc := documents[idx]
		snippet := doc.Content
		if len(snippet) > snippetChars {
			snippet = snippet[:snippetChars]
		}
		citations = append(citations, store.Citation{
			Index:      idx,
			DocID:      doc.DocID,
			Source:     doc.Source,
			SourceName: doc.SourceName,
			Page:       doc.Page,
			Snippet:    snippet,
		})
	}
	return citations
}

// decodeIndex reads the index from an object citation ({"index": 0, ...}),
// tolerating indexes delivered as JSON strings. Non-object entries are
// rejected.
func decodeIndex(raw json.RawMessage) (int, bool) {
	var obj map[string]interface{}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return 0, false
	}
	val, exists := obj["index"]
	if !exists {
		return 0, false
	}
	return coerceIndex(val)
}

func coerceIndex(val interface{}) (int, bool) {
	switch n := val.(type) {
	case float64:
		return int(n), true
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

// extractJSON tolerates code-fenced model output by stripping markdown
// fences before decoding.
func extractJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if end := strings.LastIndex(s, "```"); end >= 0 {
			s = s[:end]
		}
		s = strings.TrimSpace(s)
	}

	if start := strings.Index(s, "{"); start > 0 {
		if end := strings.LastIndex(s, "}"); end > start {
			s = s[start : end+1]
		}
	}
	return s
}

func formatNumberedContext(documents []store.Document) string {
	var b strings.Builder
	for i, d := range documents {
		if i > 0 {
			b.WriteString("\n\n")
		}
		content := d.Content
		if len(content) > excerptChars {
			content = content[:excerptChars]
		}
		b.WriteString(fmt.Sprintf("[%d] doc_id=%s source=%s source_name=%s page=%d\n%s",
			i, d.DocID, d.Source, d.SourceName, d.Page, content))
	}
	return b.String()
}
