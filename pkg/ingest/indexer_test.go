package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rag-chat-be/internal/model"
	"rag-chat-be/internal/pkg/logger"
	"rag-chat-be/pkg/embedding"
	"rag-chat-be/pkg/store"
)

type fakeChunkRepo struct {
	rows []*model.DocumentChunk
}

func (f *fakeChunkRepo) UpsertBulk(ctx context.Context, chunks []*model.DocumentChunk) error {
	f.rows = append(f.rows, chunks...)
	return nil
}

func (f *fakeChunkRepo) DeleteByDocID(ctx context.Context, docID string) error { return nil }

func (f *fakeChunkRepo) CountByDocID(ctx context.Context, docID string) (int64, error) {
	return int64(len(f.rows)), nil
}

func (f *fakeChunkRepo) SearchSimilar(ctx context.Context, embedding []float32, limit int) ([]store.Document, error) {
	return nil, nil
}

func (f *fakeChunkRepo) SearchLexical(ctx context.Context, query string, limit int) ([]store.Document, error) {
	return nil, nil
}

type fakeEmbedder struct{}

func (fakeEmbedder) Generate(text, taskType string) (*embedding.EmbeddingResponse, error) {
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{0.1, 0.2, 0.3}},
	}, nil
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestChunkUIDDeterministic(t *testing.T) {
	a := ChunkUID("doc1", 1, 0, "some content here")
	b := ChunkUID("doc1", 1, 0, "some content here")
	c := ChunkUID("doc1", 1, 1, "some content here")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestChunkUIDUsesContentPrefix(t *testing.T) {
	base := strings.Repeat("x", 120)
	a := ChunkUID("doc1", 1, 0, base+"tail one")
	b := ChunkUID("doc1", 1, 0, base+"tail two")

	// Content beyond the prefix does not change the identity.
	assert.Equal(t, a, b)
}

func TestDocIDStable(t *testing.T) {
	assert.Equal(t, DocID("guide.md"), DocID("guide.md"))
	assert.NotEqual(t, DocID("guide.md"), DocID("other.md"))
	assert.Len(t, DocID("guide.md"), 40)
}

func TestSplitPageOverlap(t *testing.T) {
	page := LoadedPage{Source: "a.txt", Page: 1, Content: strings.Repeat("abcde", 100)}

	chunks := SplitPage(page, 200, 50)
	require.True(t, len(chunks) > 1)

	for i, c := range chunks {
		assert.Equal(t, i, c.ChunkIndex)
		assert.LessOrEqual(t, len(c.Content), 200)
	}
	// Consecutive chunks share the overlap region.
	assert.Equal(t, chunks[0].Content[150:], chunks[1].Content[:50])
}

func TestSplitPageShortContentSingleChunk(t *testing.T) {
	page := LoadedPage{Source: "a.txt", Page: 1, Content: "short"}
	chunks := SplitPage(page, 1000, 150)
	require.Len(t, chunks, 1)
	assert.Equal(t, "short", chunks[0].Content)
}

func TestLoadFileRejectsUnsupportedType(t *testing.T) {
	path := writeTempFile(t, "report.pdf", "%PDF-1.4")
	_, err := LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")
}

func TestLoadFileRejectsEmpty(t *testing.T) {
	path := writeTempFile(t, "empty.txt", "   \n")
	_, err := LoadFile(path)
	require.Error(t, err)
}

func TestIndexFileReindexKeepsIdentities(t *testing.T) {
	path := writeTempFile(t, "guide.md", strings.Repeat("retention policy details. ", 100))
	repo := &fakeChunkRepo{}
	ix := NewIndexer(repo, fakeEmbedder{}, Config{ChunkSize: 500, ChunkOverlap: 100}, logger.NewNop())

	first, err := ix.IndexFile(context.Background(), path)
	require.NoError(t, err)
	require.True(t, first.Indexed > 1)

	firstUIDs := make([]string, len(repo.rows))
	for i, r := range repo.rows {
		firstUIDs[i] = r.ChunkUID.String()
	}

	repo.rows = nil
	second, err := ix.IndexFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, first.Indexed, second.Indexed)

	for i, r := range repo.rows {
		assert.Equal(t, firstUIDs[i], r.ChunkUID.String())
	}
}
