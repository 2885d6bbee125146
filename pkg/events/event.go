package events

import "time"

const (
	// TypeDocumentIndexed fires after a document finishes indexing.
	TypeDocumentIndexed = "DOCUMENT_INDEXED"
	// TypeDocumentFailed fires when indexing a document fails.
	TypeDocumentFailed = "DOCUMENT_INDEX_FAILED"
)

// Event defines the contract for all system events.
type Event interface {
	EventType() string
	Payload() map[string]interface{}
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// NewDocumentIndexed describes a successfully indexed source file.
func NewDocumentIndexed(source, docID string, chunks int) Event {
	return BaseEvent{
		Type: TypeDocumentIndexed,
		Data: map[string]interface{}{
			"source": source,
			"doc_id": docID,
			"chunks": chunks,
		},
		OccurredAt: time.Now(),
	}
}

// NewDocumentFailed describes a source file that could not be indexed.
func NewDocumentFailed(source, reason string) Event {
	return BaseEvent{
		Type: TypeDocumentFailed,
		Data: map[string]interface{}{
			"source": source,
			"reason": reason,
		},
		OccurredAt: time.Now(),
	}
}
