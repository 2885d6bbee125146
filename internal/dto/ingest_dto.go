package dto

import "rag-chat-be/pkg/ingest"

type IngestRequest struct {
	Paths []string `json:"paths" validate:"required,min=1,dive,required"`
	// Async defers indexing to the background worker and returns immediately.
	Async bool `json:"async,omitempty"`
}

type IngestResponse struct {
	Accepted int                       `json:"accepted"`
	Queued   int                       `json:"queued,omitempty"`
	Results  []*ingest.IngestionResult `json:"results,omitempty"`
	Failures []IngestFailure           `json:"failures,omitempty"`
}

type IngestFailure struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

type RemoveResponse struct {
	Source  string `json:"source"`
	DocID   string `json:"doc_id"`
	Removed int64  `json:"removed"`
}

// PublishIndexMessage is the payload queued for the background indexer.
type PublishIndexMessage struct {
	Path string `json:"path"`
}
