package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rag-chat-be/internal/dto"
	"rag-chat-be/internal/pkg/logger"
	"rag-chat-be/pkg/rag/orchestrator"
	"rag-chat-be/pkg/store"
)

type fakeRunner struct {
	gotState *orchestrator.TurnState
	err      error
}

func (f *fakeRunner) RunTurn(ctx context.Context, state *orchestrator.TurnState) error {
	f.gotState = state
	if f.err != nil {
		return f.err
	}
	state.Answer = "answer for " + state.Question
	state.Citations = []store.Citation{{Index: 0, Source: "guide.md"}}
	return nil
}

func TestChatSplitsQuestionFromHistory(t *testing.T) {
	runner := &fakeRunner{}
	svc := NewChatService(runner, logger.NewNop())

	res, err := svc.Chat(context.Background(), &dto.ChatRequest{
		SessionID: "s1",
		Messages: []dto.ChatMessageDTO{
			{Role: "user", Content: "earlier question"},
			{Role: "assistant", Content: "earlier answer"},
			{Role: "user", Content: "current question"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "current question", runner.gotState.Question)
	require.Len(t, runner.gotState.Messages, 2)
	assert.Equal(t, "earlier question", runner.gotState.Messages[0].Content)
	assert.Equal(t, "answer for current question", res.Answer)
	assert.Equal(t, "s1", res.SessionID)
	require.Len(t, res.Citations, 1)
}

func TestChatGeneratesSessionID(t *testing.T) {
	runner := &fakeRunner{}
	svc := NewChatService(runner, logger.NewNop())

	res, err := svc.Chat(context.Background(), &dto.ChatRequest{
		Messages: []dto.ChatMessageDTO{{Role: "user", Content: "q"}},
	})
	require.NoError(t, err)
	assert.Contains(t, res.SessionID, "session-")
	assert.Equal(t, res.SessionID, runner.gotState.SessionID)
}

func TestChatRejectsRequestWithoutUserMessage(t *testing.T) {
	svc := NewChatService(&fakeRunner{}, logger.NewNop())

	_, err := svc.Chat(context.Background(), &dto.ChatRequest{
		Messages: []dto.ChatMessageDTO{{Role: "assistant", Content: "hi"}},
	})
	require.Error(t, err)
}

func TestChatEmptyUserMessageIsValid(t *testing.T) {
	runner := &fakeRunner{}
	svc := NewChatService(runner, logger.NewNop())

	_, err := svc.Chat(context.Background(), &dto.ChatRequest{
		Messages: []dto.ChatMessageDTO{{Role: "user", Content: ""}},
	})
	require.NoError(t, err)
	assert.Equal(t, "", runner.gotState.Question)
}

func TestChatPropagatesTurnFailure(t *testing.T) {
	runner := &fakeRunner{err: errors.New("vector store unreachable")}
	svc := NewChatService(runner, logger.NewNop())

	_, err := svc.Chat(context.Background(), &dto.ChatRequest{
		Messages: []dto.ChatMessageDTO{{Role: "user", Content: "q"}},
	})
	require.Error(t, err)
}
