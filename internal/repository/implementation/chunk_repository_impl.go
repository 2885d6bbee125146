package implementation

import (
	"context"
	"strings"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"rag-chat-be/internal/model"
	"rag-chat-be/internal/repository/contract"
	"rag-chat-be/pkg/store"
)

type ChunkRepositoryImpl struct {
	db *gorm.DB
}

func NewChunkRepository(db *gorm.DB) contract.ChunkRepository {
	return &ChunkRepositoryImpl{db: db}
}

func (r *ChunkRepositoryImpl) UpsertBulk(ctx context.Context, chunks []*model.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "chunk_uid"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"content", "embedding", "page", "section", "source", "source_name", "metadata", "updated_at",
			}),
		}).
		Create(&chunks).Error
}

func (r *ChunkRepositoryImpl) DeleteByDocID(ctx context.Context, docID string) error {
	return r.db.WithContext(ctx).Where("doc_id = ?", docID).Delete(&model.DocumentChunk{}).Error
}

func (r *ChunkRepositoryImpl) CountByDocID(ctx context.Context, docID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.DocumentChunk{}).Where("doc_id = ?", docID).Count(&count).Error
	return count, err
}

func (r *ChunkRepositoryImpl) SearchSimilar(ctx context.Context, embedding []float32, limit int) ([]store.Document, error) {
	if limit <= 0 {
		limit = 5
	}
	var models []*model.DocumentChunk

	// pgvector cosine distance: embedding <=> vector
	err := r.db.WithContext(ctx).
		Order(gorm.Expr("embedding <=> ?", pgvector.NewVector(embedding))).
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return toDocuments(models), nil
}

func (r *ChunkRepositoryImpl) SearchLexical(ctx context.Context, query string, limit int) ([]store.Document, error) {
	if limit <= 0 {
		limit = 5
	}
	terms := strings.Fields(strings.TrimSpace(query))
	if len(terms) == 0 {
		return nil, nil
	}

	db := r.db.WithContext(ctx).Model(&model.DocumentChunk{})
	for _, term := range terms {
		db = db.Or("content ILIKE ?", "%"+term+"%")
	}

	var models []*model.DocumentChunk
	if err := db.Limit(limit).Find(&models).Error; err != nil {
		return nil, err
	}
	return toDocuments(models), nil
}

func toDocuments(models []*model.DocumentChunk) []store.Document {
	docs := make([]store.Document, len(models))
	for i, m := range models {
		docs[i] = store.Document{
			Content:    m.Content,
			Source:     m.Source,
			SourceName: m.SourceName,
			Page:       m.Page,
			Section:    m.Section,
			DocID:      m.DocID,
			ChunkID:    m.ChunkIndex,
			ChunkUID:   m.ChunkUID.String(),
		}
	}
	return docs
}
