package kafka

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// Producer buffers messages through an inbox channel so callers never block
// on the broker; order placement must not wait on notification delivery.
type Producer struct {
	w       *kafka.Writer
	write   func(ctx context.Context, msgs ...kafka.Message) error
	inbox   chan kafka.Message
	closeCh chan struct{}

	mu     sync.RWMutex
	closed bool
}

func NewProducer(brokers []string, topic string, buf int) *Producer {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Async:        true,
	}
	return &Producer{
		w:       w,
		write:   w.WriteMessages,
		inbox:   make(chan kafka.Message, buf),
		closeCh: make(chan struct{}),
	}
}

func (p *Producer) Start() {
	go func() {
		for m := range p.inbox {
			if err := p.write(context.Background(), m); err != nil {
				log.Printf("[kafka] write: %v", err)
			}
		}
		_ = p.w.Close()
		close(p.closeCh)
	}()
}

// Publish enqueues without blocking the caller; a full inbox or a closed
// producer drops the message (notifications are best-effort by contract).
func (p *Producer) Publish(key, value []byte, headers ...kafka.Header) {
	m := kafka.Message{Key: key, Value: value, Time: time.Now(), Headers: headers}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		log.Printf("[kafka] producer closed, dropping message key=%s", key)
		return
	}
	select {
	case p.inbox <- m:
	default:
		log.Printf("[kafka] inbox full, dropping message key=%s", key)
	}
}

// Close stops intake, flushes everything still buffered and blocks until
// the writer has shut down. Close is the only closer of the inbox, so a
// request that is still finishing while shutdown runs gets its Publish
// dropped rather than a panic.
func (p *Producer) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		<-p.closeCh
		return
	}
	p.closed = true
	close(p.inbox)
	p.mu.Unlock()
	<-p.closeCh
}
