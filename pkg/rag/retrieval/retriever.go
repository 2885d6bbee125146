package retrieval

import (
	"context"
	"fmt"

	"rag-chat-be/internal/pkg/logger"
	"rag-chat-be/pkg/embedding"
	"rag-chat-be/pkg/store"
)

// VectorSearcher runs nearest-neighbor search over the indexed corpus.
type VectorSearcher interface {
	SearchSimilar(ctx context.Context, vector []float32, limit int) ([]store.Document, error)
}

// LexicalSearcher runs substring/keyword matching over the same stored text.
type LexicalSearcher interface {
	SearchLexical(ctx context.Context, query string, limit int) ([]store.Document, error)
}

// Config encapsulates retrieval parameters
type Config struct {
	TopK     int
	DenseK   int
	LexicalK int
}

// DefaultConfig returns default retrieval configuration
func DefaultConfig() Config {
	return Config{
		TopK:     8,
		DenseK:   25,
		LexicalK: 25,
	}
}

// HybridRetriever merges dense (embedding) and lexical hits over one corpus,
// dedups them, and reranks the survivors.
type HybridRetriever struct {
	embedder embedding.EmbeddingProvider
	vector   VectorSearcher
	lexical  LexicalSearcher
	config   Config
	logger   logger.ILogger

	// Rerank defaults to TermOverlapRerank; replaceable at construction.
	Rerank Reranker
}

func NewHybridRetriever(
	embedder embedding.EmbeddingProvider,
	vector VectorSearcher,
	lexical LexicalSearcher,
	config Config,
	log logger.ILogger,
) *HybridRetriever {
	return &HybridRetriever{
		embedder: embedder,
		vector:   vector,
		lexical:  lexical,
		config:   config,
		logger:   log,
		Rerank:   TermOverlapRerank,
	}
}

// Retrieve runs both search passes, merges the candidates, and returns the
// reranked top results. A failure in either pass is turn-fatal and
// propagates to the caller; retry on weak results is decided one level up.
func (r *HybridRetriever) Retrieve(ctx context.Context, query string) ([]store.Document, error) {
	embeddingRes, err := r.embedder.Generate(query, "RETRIEVAL_QUERY")
	if err != nil {
		return nil, fmt.Errorf("embedding generation failed: %w", err)
	}

	dense, err := r.vector.SearchSimilar(ctx, embeddingRes.Embedding.Values, r.config.DenseK)
	if err != nil {
		return nil, fmt.Errorf("dense search failed: %w", err)
	}

	lexical, err := r.lexical.SearchLexical(ctx, query, r.config.LexicalK)
	if err != nil {
		return nil, fmt.Errorf("lexical search failed: %w", err)
	}

	merged := Merge(dense, lexical)

	r.logger.Debug("Retrieval", "Merged search candidates", map[string]interface{}{
		"dense":   len(dense),
		"lexical": len(lexical),
		"merged":  len(merged),
	})

	return r.Rerank(merged, query, r.config.TopK), nil
}
