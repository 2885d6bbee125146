package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"rag-chat-be/internal/dto"
	"rag-chat-be/internal/pkg/logger"
	"rag-chat-be/pkg/rag/message"
	"rag-chat-be/pkg/rag/orchestrator"
)

type IChatService interface {
	Chat(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error)
}

type TurnRunner interface {
	RunTurn(ctx context.Context, state *orchestrator.TurnState) error
}

type chatService struct {
	runner TurnRunner
	logger logger.ILogger
}

func NewChatService(runner TurnRunner, log logger.ILogger) IChatService {
	return &chatService{runner: runner, logger: log}
}

// Chat runs one conversational turn. The last user message in the request is
// the question; anything before it rides along as history.
func (s *chatService) Chat(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	question, history, err := splitRequest(req.Messages)
	if err != nil {
		return nil, err
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = "session-" + uuid.NewString()
	}

	state := &orchestrator.TurnState{
		SessionID: sessionID,
		Question:  question,
		Messages:  history,
	}

	if err := s.runner.RunTurn(ctx, state); err != nil {
		s.logger.Error("ChatService", "Turn failed", map[string]interface{}{
			"session_id": sessionID, "error": err.Error(),
		})
		return nil, err
	}

	return &dto.ChatResponse{
		SessionID: sessionID,
		Answer:    state.Answer,
		Citations: state.Citations,
	}, nil
}

// splitRequest peels the trailing user message off as the question. An empty
// user message is still a valid turn (it routes to clarification), but a
// request with no user message at all is malformed.
func splitRequest(msgs []dto.ChatMessageDTO) (string, []message.Message, error) {
	lastUser := -1
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == string(message.RoleUser) {
			lastUser = i
			break
		}
	}
	if lastUser < 0 {
		return "", nil, fmt.Errorf("request must contain at least one user message")
	}

	history := make([]message.Message, 0, len(msgs)-1)
	for i, m := range msgs {
		if i == lastUser {
			continue
		}
		history = append(history, message.Message{Role: message.Role(m.Role), Content: m.Content})
	}
	return msgs[lastUser].Content, history, nil
}
