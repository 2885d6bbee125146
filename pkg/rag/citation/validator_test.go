package citation

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rag-chat-be/internal/pkg/logger"
	"rag-chat-be/pkg/llm"
	"rag-chat-be/pkg/store"
)

type scriptedLLM struct {
	responses []string
	calls     int
}

func (s *scriptedLLM) Chat(ctx context.Context, messages []llm.Message, opts ...llm.Option) (string, error) {
	if s.calls >= len(s.responses) {
		return "", nil
	}
	resp := s.responses[s.calls]
	s.calls++
	return resp, nil
}

func (s *scriptedLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return s.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

func sampleDocs() []store.Document {
	return []store.Document{
		{DocID: "d1", Source: "guide.md", SourceName: "guide", Page: 1, ChunkID: 0, Content: "Alpha content about setup."},
		{DocID: "d1", Source: "guide.md", SourceName: "guide", Page: 2, ChunkID: 1, Content: "Beta content about config."},
		{DocID: "d2", Source: "faq.txt", SourceName: "faq", Page: 1, ChunkID: 0, Content: strings.Repeat("x", 400)},
	}
}

func TestValidateNoDocumentsRefuses(t *testing.T) {
	fake := &scriptedLLM{}
	v := NewValidator(fake, logger.NewNop())

	answer, citations, _, err := v.Validate(context.Background(), "draft", nil)
	require.NoError(t, err)
	assert.Equal(t, RefusalNoDocuments, answer)
	assert.Empty(t, citations)
	assert.Equal(t, 0, fake.calls)
}

func TestValidateHappyPath(t *testing.T) {
	fake := &scriptedLLM{responses: []string{
		`{"answer_with_citations": "Setup is covered [0] and config too [1].", "citations": [{"index": 0}, {"index": 1}]}`,
	}}
	v := NewValidator(fake, logger.NewNop())

	answer, citations, _, err := v.Validate(context.Background(), "draft", sampleDocs())
	require.NoError(t, err)
	assert.Equal(t, "Setup is covered [0] and config too [1].", answer)
	require.Len(t, citations, 2)
	assert.Equal(t, 0, citations[0].Index)
	assert.Equal(t, "guide.md", citations[0].Source)
	assert.Equal(t, 1, citations[1].Index)
	assert.Equal(t, 2, citations[1].Page)
	assert.Equal(t, 1, fake.calls)
}

func TestValidateStripsCodeFences(t *testing.T) {
	fake := &scriptedLLM{responses: []string{
		"```json\n{\"answer_with_citations\": \"Fenced [0].\", \"citations\": [{\"index\": 0}]}\n```",
	}}
	v := NewValidator(fake, logger.NewNop())

	answer, citations, _, err := v.Validate(context.Background(), "draft", sampleDocs())
	require.NoError(t, err)
	assert.Equal(t, "Fenced [0].", answer)
	require.Len(t, citations, 1)
}

func TestValidateRepromptThenSuccess(t *testing.T) {
	fake := &scriptedLLM{responses: []string{
		"not json at all",
		`{"answer_with_citations": "Recovered [2].", "citations": [{"index": 2}]}`,
	}}
	v := NewValidator(fake, logger.NewNop())

	answer, citations, _, err := v.Validate(context.Background(), "draft", sampleDocs())
	require.NoError(t, err)
	assert.Equal(t, "Recovered [2].", answer)
	require.Len(t, citations, 1)
	assert.Equal(t, "d2", citations[0].DocID)
	assert.Equal(t, 2, fake.calls)
}

func TestValidateRefusesAfterTwoBadOutputs(t *testing.T) {
	fake := &scriptedLLM{responses: []string{"garbage", "more garbage"}}
	v := NewValidator(fake, logger.NewNop())

	answer, citations, _, err := v.Validate(context.Background(), "draft", sampleDocs())
	require.NoError(t, err)
	assert.Equal(t, RefusalInvalid, answer)
	assert.Empty(t, citations)
	assert.Equal(t, 2, fake.calls)
}

func TestValidateDropsInvalidEntriesKeepsSurvivors(t *testing.T) {
	fake := &scriptedLLM{responses: []string{
		`{"answer_with_citations": "Mixed [0][99].", "citations": [{"index": 0}, {"index": 99}, 3, {"note": "no index"}]}`,
	}}
	v := NewValidator(fake, logger.NewNop())

	answer, citations, _, err := v.Validate(context.Background(), "draft", sampleDocs())
	require.NoError(t, err)
	assert.Equal(t, "Mixed [0][99].", answer)
	require.Len(t, citations, 1)
	assert.Equal(t, 0, citations[0].Index)
	assert.Equal(t, 1, fake.calls)
}

func TestValidateRefusesWhenNoCitationSurvives(t *testing.T) {
	fake := &scriptedLLM{responses: []string{
		`{"answer_with_citations": "Bad [9].", "citations": [{"index": 9}, {"index": -1}]}`,
	}}
	v := NewValidator(fake, logger.NewNop())

	answer, citations, _, err := v.Validate(context.Background(), "draft", sampleDocs())
	require.NoError(t, err)
	assert.Equal(t, RefusalInvalid, answer)
	assert.Empty(t, citations)
	// Parseable output with no valid citation refuses without a re-prompt.
	assert.Equal(t, 1, fake.calls)
}

func TestValidateRefusesOnEmptyCitationList(t *testing.T) {
	fake := &scriptedLLM{responses: []string{
		`{"answer_with_citations": "No cites.", "citations": []}`,
	}}
	v := NewValidator(fake, logger.NewNop())

	answer, _, _, err := v.Validate(context.Background(), "draft", sampleDocs())
	require.NoError(t, err)
	assert.Equal(t, RefusalInvalid, answer)
	assert.Equal(t, 1, fake.calls)
}

func TestValidateEmptyAnswerFallsBackToDraft(t *testing.T) {
	fake := &scriptedLLM{responses: []string{
		`{"answer_with_citations": "", "citations": [{"index": 0}]}`,
	}}
	v := NewValidator(fake, logger.NewNop())

	answer, citations, _, err := v.Validate(context.Background(), "the original draft", sampleDocs())
	require.NoError(t, err)
	assert.Equal(t, "the original draft", answer)
	require.Len(t, citations, 1)
	assert.Equal(t, 1, fake.calls)
}

func TestValidateSnippetTruncated(t *testing.T) {
	fake := &scriptedLLM{responses: []string{
		`{"answer_with_citations": "Long [2].", "citations": [{"index": 2}]}`,
	}}
	v := NewValidator(fake, logger.NewNop())

	_, citations, _, err := v.Validate(context.Background(), "draft", sampleDocs())
	require.NoError(t, err)
	require.Len(t, citations, 1)
	assert.Len(t, citations[0].Snippet, 240)
}

func TestValidateCoercesStringIndex(t *testing.T) {
	fake := &scriptedLLM{responses: []string{
		`{"answer_with_citations": "String index [1].", "citations": [{"index": "1"}]}`,
	}}
	v := NewValidator(fake, logger.NewNop())

	_, citations, _, err := v.Validate(context.Background(), "draft", sampleDocs())
	require.NoError(t, err)
	require.Len(t, citations, 1)
	assert.Equal(t, 1, citations[0].Index)
}
