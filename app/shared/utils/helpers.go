// Package utils holds small message-plumbing helpers shared by the module
// routers and handlers.
package utils

import (
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
)

// TopicMetadataKey is where handlers record the topic a result message should
// be published to; the module router resolves it at publish time.
const TopicMetadataKey = "topic"

// Helpers abstracts message construction so handler tests can swap in fakes.
type Helpers interface {
	CreateResultMessage(original *message.Message, payload any, topic string) (*message.Message, error)
	CreateNewMessage(payload any, topic string) (*message.Message, error)
	UnmarshalPayload(msg *message.Message, target any) error
}

// MessageHelpers is the production Helpers implementation.
type MessageHelpers struct{}

func NewHelpers() *MessageHelpers { return &MessageHelpers{} }

// CreateResultMessage builds a new message carrying the payload, propagating
// the original message's correlation ID and tagging the publish topic.
func (h *MessageHelpers) CreateResultMessage(original *message.Message, payload any, topic string) (*message.Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result payload: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.Metadata.Set(TopicMetadataKey, topic)
	if original != nil {
		middleware.SetCorrelationID(middleware.MessageCorrelationID(original), msg)
	}
	return msg, nil
}

// CreateNewMessage builds a message with a fresh correlation ID.
func (h *MessageHelpers) CreateNewMessage(payload any, topic string) (*message.Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.Metadata.Set(TopicMetadataKey, topic)
	middleware.SetCorrelationID(watermill.NewUUID(), msg)
	return msg, nil
}

// UnmarshalPayload decodes a message payload into target.
func (h *MessageHelpers) UnmarshalPayload(msg *message.Message, target any) error {
	if err := json.Unmarshal(msg.Payload, target); err != nil {
		return fmt.Errorf("failed to unmarshal payload into %T: %w", target, err)
	}
	return nil
}
