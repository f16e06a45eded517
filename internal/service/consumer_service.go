package service

import (
	"context"
	"encoding/json"
	"errors"

	"cybot-be/internal/dto"
	"cybot-be/internal/pkg/logger"
	"cybot-be/pkg/document"

	"github.com/ThreeDotsLabs/watermill/message"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	indexer    IIndexerService
	logger     logger.ILogger
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	indexer IIndexerService,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		indexer:    indexer,
		logger:     log,
	}
}

// Consume processes index requests until ctx is done.
func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
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
	var payload dto.PublishIndexDocumentMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("INDEXER", "Failed to unmarshal index message", map[string]interface{}{"error": err.Error()})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	n, err := cs.indexer.IndexFile(ctx, payload.Path)
	switch {
	case errors.Is(err, document.ErrUnsupported), errors.Is(err, ErrOutsideDocuments):
		cs.logger.Warn("INDEXER", "Skipping document", map[string]interface{}{"path": payload.Path, "error": err.Error()})
		msg.Ack()
	case err != nil:
		cs.logger.Error("INDEXER", "Failed to index document", map[string]interface{}{"path": payload.Path, "error": err.Error()})
		msg.Nack()
	default:
		cs.logger.Debug("INDEXER", "Index message processed", map[string]interface{}{"path": payload.Path, "chunks": n})
		msg.Ack()
	}
}
