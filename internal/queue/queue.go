package queue

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/unclebandit/customer-service/internal/model"
)

// CustomerEventsTopic carries model.CustomerEvent payloads.
const CustomerEventsTopic = "customer_events"

// Queue interface
type Queue interface {
	Publish(topic string, payload any) error
	Subscribe(topic string, handler func(payload any) error) error
}

// InMemoryQueue delivers to in-process subscribers with retry
type InMemoryQueue struct {
	mu         sync.Mutex
	handlers   map[string][]func(payload any) error
	log        *zap.Logger
	maxRetries int
	backoff    time.Duration
	wg         sync.WaitGroup
}

// NewInMemoryQueue creates a new queue
func NewInMemoryQueue(log *zap.Logger) *InMemoryQueue {
	if log == nil {
		log = zap.NewNop()
	}
	return &InMemoryQueue{
		handlers:   make(map[string][]func(payload any) error),
		log:        log.Named("queue.memory"),
		maxRetries: 3,
		backoff:    500 * time.Millisecond,
	}
}

// WithBackoff overrides the base retry delay.
func (q *InMemoryQueue) WithBackoff(d time.Duration) *InMemoryQueue {
	q.backoff = d
	return q
}

// jobPayload wraps a message payload with retry info
type jobPayload struct {
	Topic      string
	Payload    any
	RetryCount int
}

// Publish sends a message to all subscribers
func (q *InMemoryQueue) Publish(topic string, payload any) error {
	q.mu.Lock()
	handlers := append([]func(payload any) error(nil), q.handlers[topic]...)
	q.mu.Unlock()

	if len(handlers) == 0 {
		return fmt.Errorf("no subscribers for topic %s", topic)
	}

	for _, handler := range handlers {
		q.wg.Add(1)
		go q.processJob(handler, jobPayload{Topic: topic, Payload: payload})
	}
	return nil
}

// processJob handles retries and errors
func (q *InMemoryQueue) processJob(handler func(payload any) error, job jobPayload) {
	defer q.wg.Done()
	for {
		err := handler(job.Payload)
		if err == nil {
			return
		}

		job.RetryCount++
		if job.RetryCount > q.maxRetries {
			q.log.Error("job permanently failed",
				zap.String("topic", job.Topic),
				zap.Int("attempts", job.RetryCount),
				zap.Error(err),
			)
			return
		}
		q.log.Warn("job failed, retrying",
			zap.String("topic", job.Topic),
			zap.Int("attempt", job.RetryCount),
			zap.Int("max_retries", q.maxRetries),
			zap.Error(err),
		)
		time.Sleep(time.Duration(job.RetryCount) * q.backoff)
	}
}

// Subscribe adds a handler for a topic
func (q *InMemoryQueue) Subscribe(topic string, handler func(payload any) error) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.handlers[topic] = append(q.handlers[topic], handler)
	return nil
}

// Wait blocks until every in-flight delivery has finished.
func (q *InMemoryQueue) Wait() {
	q.wg.Wait()
}

// DecodeEvent accepts the payload shapes produced by both queue implementations.
func DecodeEvent(payload any) (model.CustomerEvent, error) {
	switch p := payload.(type) {
	case model.CustomerEvent:
		return p, nil
	case *model.CustomerEvent:
		if p == nil {
			return model.CustomerEvent{}, fmt.Errorf("nil customer event")
		}
		return *p, nil
	case []byte:
		var e model.CustomerEvent
		if err := json.Unmarshal(p, &e); err != nil {
			return model.CustomerEvent{}, fmt.Errorf("decode customer event: %w", err)
		}
		return e, nil
	default:
		return model.CustomerEvent{}, fmt.Errorf("unexpected payload type %T", payload)
	}
}
