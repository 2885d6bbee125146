package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type DocumentChunk struct {
	ChunkUID   uuid.UUID       `gorm:"type:uuid;primaryKey"`
	DocID      string          `gorm:"type:varchar(64);not null;index"`
	Source     string          `gorm:"type:text;not null"`
	SourceName string          `gorm:"type:text"`
	Page       int             `gorm:"default:1"`
	Section    string          `gorm:"type:text"`
	ChunkIndex int             `gorm:"default:0"` // 0-based position inside the document
	Content    string          `gorm:"type:text;not null"`
	Embedding  pgvector.Vector `gorm:"type:vector(768)"`
	Metadata   datatypes.JSON  `gorm:"type:jsonb"`
	CreatedAt  time.Time       `gorm:"autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"autoUpdateTime"`
}

func (DocumentChunk) TableName() string {
	return "document_chunks"
}
