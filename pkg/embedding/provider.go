package embedding

import "github.com/pgvector/pgvector-go"

type EmbeddingResponseEmbedding struct {
	Values []float32 `json:"values"`
}

type EmbeddingResponse struct {
	Embedding EmbeddingResponseEmbedding `json:"embedding"`
}

// EmbeddingProvider defines the interface for generating text embeddings.
// The same provider is used for queries and ingestion-time embedding so both
// live in the same vector space. Results are deterministic per model.
type EmbeddingProvider interface {
	Generate(text string, taskType string) (*EmbeddingResponse, error)
}

// ToVector adapts a provider response to the storage vector type.
func ToVector(resp *EmbeddingResponse) pgvector.Vector {
	if resp == nil {
		return pgvector.NewVector(nil)
	}
	return pgvector.NewVector(resp.Embedding.Values)
}
