package contract

import (
	"context"

	"rag-chat-be/internal/model"
	"rag-chat-be/pkg/store"
)

type ChunkRepository interface {
	// UpsertBulk inserts chunks, replacing rows that share a chunk UID so
	// re-ingesting the same file is idempotent.
	UpsertBulk(ctx context.Context, chunks []*model.DocumentChunk) error
	DeleteByDocID(ctx context.Context, docID string) error
	CountByDocID(ctx context.Context, docID string) (int64, error)
	// SearchSimilar returns the closest chunks by cosine distance.
	SearchSimilar(ctx context.Context, embedding []float32, limit int) ([]store.Document, error)
	// SearchLexical returns chunks whose content matches the query terms.
	SearchLexical(ctx context.Context, query string, limit int) ([]store.Document, error)
}
