package testutils

import (
	"context"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
)

// CapturingEventBus records published messages in memory so integration tests
// can assert on event flow without a broker.
type CapturingEventBus struct {
	mu        sync.Mutex
	Published map[string][]*message.Message
}

func NewCapturingEventBus() *CapturingEventBus {
	return &CapturingEventBus{Published: make(map[string][]*message.Message)}
}

func (b *CapturingEventBus) Publish(topic string, messages ...*message.Message) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Published[topic] = append(b.Published[topic], messages...)
	return nil
}

func (b *CapturingEventBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	ch := make(chan *message.Message)
	close(ch)
	return ch, nil
}

func (b *CapturingEventBus) Close() error { return nil }

// Count returns how many messages were published on a topic.
func (b *CapturingEventBus) Count(topic string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.Published[topic])
}
