package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rag-chat-be/internal/model"
	"rag-chat-be/internal/pkg/logger"
	"rag-chat-be/pkg/ingest"
	"rag-chat-be/pkg/store"
)

type fakeChunkRepo struct {
	counts       map[string]int64
	deletedDocID string
}

func (f *fakeChunkRepo) UpsertBulk(ctx context.Context, chunks []*model.DocumentChunk) error {
	return nil
}

func (f *fakeChunkRepo) DeleteByDocID(ctx context.Context, docID string) error {
	f.deletedDocID = docID
	return nil
}

func (f *fakeChunkRepo) CountByDocID(ctx context.Context, docID string) (int64, error) {
	return f.counts[docID], nil
}

func (f *fakeChunkRepo) SearchSimilar(ctx context.Context, embedding []float32, limit int) ([]store.Document, error) {
	return nil, nil
}

func (f *fakeChunkRepo) SearchLexical(ctx context.Context, query string, limit int) ([]store.Document, error) {
	return nil, nil
}

func TestRemoveDeletesIndexedDocument(t *testing.T) {
	docID := ingest.DocID("guide.md")
	repo := &fakeChunkRepo{counts: map[string]int64{docID: 7}}
	svc := NewIngestService(nil, repo, nil, "", logger.NewNop())

	res, err := svc.Remove(context.Background(), "guide.md")
	require.NoError(t, err)

	assert.Equal(t, "guide.md", res.Source)
	assert.Equal(t, docID, res.DocID)
	assert.Equal(t, int64(7), res.Removed)
	assert.Equal(t, docID, repo.deletedDocID)
}

func TestRemoveUnknownSourceFails(t *testing.T) {
	repo := &fakeChunkRepo{counts: map[string]int64{}}
	svc := NewIngestService(nil, repo, nil, "", logger.NewNop())

	_, err := svc.Remove(context.Background(), "missing.md")
	require.Error(t, err)
	assert.Empty(t, repo.deletedDocID)
}
