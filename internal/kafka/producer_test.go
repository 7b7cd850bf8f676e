package kafka

import (
	"context"
	"sync"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type writeRecorder struct {
	mu   sync.Mutex
	msgs []kafka.Message
}

func (w *writeRecorder) write(ctx context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *writeRecorder) count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.msgs)
}

func TestProducer_CloseFlushesBuffered(t *testing.T) {
	rec := &writeRecorder{}
	p := NewProducer([]string{"localhost:9092"}, "test.topic", 8)
	p.write = rec.write

	p.Start()
	p.Publish([]byte("7"), []byte(`{"order_id":1}`))
	p.Publish([]byte("7"), []byte(`{"order_id":2}`))
	p.Close()

	require.Equal(t, 2, rec.count())
	assert.Equal(t, []byte("7"), rec.msgs[0].Key)
}

func TestProducer_PublishAfterCloseIsDropped(t *testing.T) {
	rec := &writeRecorder{}
	p := NewProducer([]string{"localhost:9092"}, "test.topic", 8)
	p.write = rec.write

	p.Start()
	p.Close()

	assert.NotPanics(t, func() {
		p.Publish([]byte("7"), []byte(`{"order_id":3}`))
	})
	assert.Equal(t, 0, rec.count())
}

func TestProducer_CloseTwice(t *testing.T) {
	p := NewProducer([]string{"localhost:9092"}, "test.topic", 8)
	p.write = (&writeRecorder{}).write

	p.Start()
	p.Close()
	assert.NotPanics(t, p.Close)
}
