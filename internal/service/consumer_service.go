package service

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"rag-chat-be/internal/dto"
	"rag-chat-be/internal/pkg/logger"
	"rag-chat-be/pkg/events"
	"rag-chat-be/pkg/ingest"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// EventPublisher announces indexing outcomes to interested listeners. Nil
// publishers are tolerated so the worker runs without a NATS deployment.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	indexer   *ingest.Indexer
	publisher EventPublisher
	logger    logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	indexer *ingest.Indexer,
	publisher EventPublisher,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		indexer:   indexer,
		publisher: publisher,
		logger:    log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishIndexMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("Consumer", "Undecodable index message", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // invalid payloads would retry forever otherwise
		return
	}

	cs.logger.Info("Consumer", "Indexing file", map[string]interface{}{"path": payload.Path})

	result, err := cs.indexer.IndexFile(ctx, payload.Path)
	if err != nil {
		cs.logger.Error("Consumer", "Indexing failed", map[string]interface{}{
			"path": payload.Path, "error": err.Error(),
		})
		cs.announce(ctx, events.NewDocumentFailed(payload.Path, err.Error()))
		msg.Ack() // broken files do not become healthier on retry
		return
	}

	cs.announce(ctx, events.NewDocumentIndexed(result.Source, result.DocID, result.Indexed))
	msg.Ack()
}

func (cs *consumerService) announce(ctx context.Context, event events.Event) {
	if cs.publisher == nil {
		return
	}
	if err := cs.publisher.Publish(ctx, event); err != nil {
		cs.logger.Warn("Consumer", "Event publish failed", map[string]interface{}{
			"type": event.EventType(), "error": err.Error(),
		})
	}
}
