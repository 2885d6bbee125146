package ingest

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"rag-chat-be/internal/model"
	"rag-chat-be/internal/pkg/logger"
	"rag-chat-be/internal/repository/contract"
	"rag-chat-be/pkg/embedding"
)

// chunkNamespace seeds the deterministic chunk UIDs. Changing it invalidates
// every stored chunk identity, so it never changes.
var chunkNamespace = uuid.MustParse("2b1c9b44-8bfe-4b18-9a3f-5db2b9de6e8a")

const uidContentPrefix = 120

type Config struct {
	ChunkSize    int
	ChunkOverlap int
}

func DefaultConfig() Config {
	return Config{ChunkSize: 1000, ChunkOverlap: 150}
}

// IngestionResult reports what one file contributed to the index.
type IngestionResult struct {
	Source  string `json:"source"`
	DocID   string `json:"doc_id"`
	Pages   int    `json:"pages"`
	Chunks  int    `json:"chunks"`
	Indexed int    `json:"indexed"`
}

// Indexer turns source files into embedded chunks in the vector store.
// Chunk identities are derived from content and position, so re-indexing an
// unchanged file rewrites the same rows instead of duplicating them.
type Indexer struct {
	chunks   contract.ChunkRepository
	embedder embedding.EmbeddingProvider
	config   Config
	logger   logger.ILogger
}

func NewIndexer(chunks contract.ChunkRepository, embedder embedding.EmbeddingProvider, config Config, log logger.ILogger) *Indexer {
	if config.ChunkSize <= 0 {
		config = DefaultConfig()
	}
	return &Indexer{chunks: chunks, embedder: embedder, config: config, logger: log}
}

// IndexFile loads, chunks, embeds and stores one file.
func (ix *Indexer) IndexFile(ctx context.Context, path string) (*IngestionResult, error) {
	pages, err := LoadFile(path)
	if err != nil {
		return nil, err
	}

	docID := DocID(pages[0].Source)
	result := &IngestionResult{Source: pages[0].Source, DocID: docID, Pages: len(pages)}

	var rows []*model.DocumentChunk
	for _, page := range pages {
		for _, chunk := range SplitPage(page, ix.config.ChunkSize, ix.config.ChunkOverlap) {
			result.Chunks++

			resp, err := ix.embedder.Generate(chunk.Content, "retrieval_document")
			if err != nil {
				return nil, fmt.Errorf("embed chunk %d of %s: %w", chunk.ChunkIndex, chunk.Source, err)
			}

			meta, _ := json.Marshal(map[string]interface{}{
				"chunk_index": chunk.ChunkIndex,
				"page":        chunk.Page,
			})

			rows = append(rows, &model.DocumentChunk{
				ChunkUID:   ChunkUID(docID, chunk.Page, chunk.ChunkIndex, chunk.Content),
				DocID:      docID,
				Source:     chunk.Source,
				SourceName: chunk.SourceName,
				Page:       chunk.Page,
				ChunkIndex: chunk.ChunkIndex,
				Content:    chunk.Content,
				Embedding:  embedding.ToVector(resp),
				Metadata:   datatypes.JSON(meta),
			})
		}
	}

	if err := ix.chunks.UpsertBulk(ctx, rows); err != nil {
		return nil, fmt.Errorf("store chunks for %s: %w", path, err)
	}
	result.Indexed = len(rows)

	ix.logger.Info("Ingest", "File indexed", map[string]interface{}{
		"source": result.Source,
		"chunks": result.Indexed,
	})
	return result, nil
}

// DocID derives a stable document identifier from the source name.
func DocID(source string) string {
	sum := sha1.Sum([]byte(source))
	return hex.EncodeToString(sum[:])
}

// ChunkUID derives a deterministic UUID for a chunk from its document,
// position and a content prefix. Same input, same row.
func ChunkUID(docID string, page, chunkIndex int, content string) uuid.UUID {
	prefix := content
	if len(prefix) > uidContentPrefix {
		prefix = prefix[:uidContentPrefix]
	}
	key := fmt.Sprintf("%s|%d|%d|%s", docID, page, chunkIndex, prefix)
	return uuid.NewSHA1(chunkNamespace, []byte(key))
}
