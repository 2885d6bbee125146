package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"rag-chat-be/internal/dto"
	"rag-chat-be/internal/pkg/logger"
	"rag-chat-be/internal/repository/contract"
	"rag-chat-be/pkg/ingest"
)

type IIngestService interface {
	Ingest(ctx context.Context, req *dto.IngestRequest) (*dto.IngestResponse, error)
	Remove(ctx context.Context, source string) (*dto.RemoveResponse, error)
}

type ingestService struct {
	indexer   *ingest.Indexer
	chunks    contract.ChunkRepository
	pubSub    *gochannel.GoChannel
	topicName string
	logger    logger.ILogger
}

func NewIngestService(
	indexer *ingest.Indexer,
	chunks contract.ChunkRepository,
	pubSub *gochannel.GoChannel,
	topicName string,
	log logger.ILogger,
) IIngestService {
	return &ingestService{indexer: indexer, chunks: chunks, pubSub: pubSub, topicName: topicName, logger: log}
}

// Ingest indexes the requested files. Synchronous by default; with Async set
// the paths are queued for the background worker and the call returns once
// they are accepted.
func (s *ingestService) Ingest(ctx context.Context, req *dto.IngestRequest) (*dto.IngestResponse, error) {
	resp := &dto.IngestResponse{}

	if req.Async {
		for _, path := range req.Paths {
			payload, err := json.Marshal(dto.PublishIndexMessage{Path: path})
			if err != nil {
				resp.Failures = append(resp.Failures, dto.IngestFailure{Path: path, Reason: err.Error()})
				continue
			}
			msg := message.NewMessage(watermill.NewUUID(), payload)
			if err := s.pubSub.Publish(s.topicName, msg); err != nil {
				resp.Failures = append(resp.Failures, dto.IngestFailure{Path: path, Reason: err.Error()})
				continue
			}
			resp.Queued++
		}
		resp.Accepted = resp.Queued
		return resp, nil
	}

	for _, path := range req.Paths {
		result, err := s.indexer.IndexFile(ctx, path)
		if err != nil {
			s.logger.Warn("IngestService", "File rejected", map[string]interface{}{
				"path": path, "error": err.Error(),
			})
			resp.Failures = append(resp.Failures, dto.IngestFailure{Path: path, Reason: err.Error()})
			continue
		}
		resp.Results = append(resp.Results, result)
		resp.Accepted++
	}
	return resp, nil
}

// Remove deletes every chunk indexed from the named source file.
func (s *ingestService) Remove(ctx context.Context, source string) (*dto.RemoveResponse, error) {
	docID := ingest.DocID(source)

	count, err := s.chunks.CountByDocID(ctx, docID)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, fmt.Errorf("no indexed document found for source %q", source)
	}

	if err := s.chunks.DeleteByDocID(ctx, docID); err != nil {
		return nil, err
	}

	s.logger.Info("IngestService", "Document removed", map[string]interface{}{
		"source": source, "chunks": count,
	})
	return &dto.RemoveResponse{Source: source, DocID: docID, Removed: count}, nil
}
