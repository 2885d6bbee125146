package dto

import "rag-chat-be/pkg/store"

type ChatMessageDTO struct {
	Role    string `json:"role" validate:"required,oneof=system user assistant"`
	// Content may be empty: an empty question routes to clarification.
	Content string `json:"content"`
}

type ChatRequest struct {
	SessionID string           `json:"session_id,omitempty"`
	Messages  []ChatMessageDTO `json:"messages" validate:"required,min=1,dive"`
}

type ChatResponse struct {
	SessionID string           `json:"session_id"`
	Answer    string           `json:"answer"`
	Citations []store.Citation `json:"citations"`
}
