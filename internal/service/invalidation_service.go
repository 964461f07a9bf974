package service

import (
	"context"
	"encoding/json"

	"construction-assist-be/internal/constant"
	"construction-assist-be/internal/dto"
	"construction-assist-be/internal/pkg/logger"
	"construction-assist-be/pkg/contextcache"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IInvalidationService interface {
	Consume(ctx context.Context) error
}

// invalidationService maps document-changed events onto the context cache.
// A scoped event drops one conversation's entry; a global event flushes
// every entry, since a library-level deletion may affect any conversation.
type invalidationService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	cache     *contextcache.Cache
	logger    logger.ILogger
}

func NewInvalidationService(
	pubSub *gochannel.GoChannel,
	topicName string,
	cache *contextcache.Cache,
	logger logger.ILogger,
) IInvalidationService {
	return &invalidationService{
		pubSub:    pubSub,
		topicName: topicName,
		cache:     cache,
		logger:    logger,
	}
}

func (is *invalidationService) Consume(ctx context.Context) error {
	messages, err := is.pubSub.Subscribe(ctx, is.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			is.processMessage(msg)
		}
	}()

	return nil
}

func (is *invalidationService) processMessage(msg *message.Message) {
	var payload dto.DocumentChangedMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		is.logger.Error(constant.ModuleInvalidation, "Failed to unmarshal document event", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	if payload.Global {
		is.cache.InvalidateAll()
		is.logger.Info(constant.ModuleInvalidation, "Flushed context cache", nil)
	} else {
		is.cache.Invalidate(payload.ConversationId)
		is.logger.Info(constant.ModuleInvalidation, "Invalidated conversation context", map[string]interface{}{
			"conversation_id": payload.ConversationId.String(),
		})
	}
	msg.Ack()
}
