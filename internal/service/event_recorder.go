package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/unclebandit/customer-service/internal/queue"
	"github.com/unclebandit/customer-service/internal/repository"
)

// EventRecorder stores customer events consumed from the queue.
type EventRecorder struct {
	EventRepo repository.CustomerEventRepositoryInterface
	Log       *zap.Logger
	Timeout   time.Duration
}

func NewEventRecorder(repo repository.CustomerEventRepositoryInterface, log *zap.Logger) *EventRecorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &EventRecorder{
		EventRepo: repo,
		Log:       log.Named("event.recorder"),
		Timeout:   10 * time.Second,
	}
}

// Handle records one payload. A returned error asks the queue to redeliver;
// payloads that can never be recorded are dropped with a log line instead.
func (r *EventRecorder) Handle(payload any) error {
	event, err := queue.DecodeEvent(payload)
	if err != nil {
		r.Log.Error("dropping undecodable event", zap.Error(err))
		return nil
	}
	if event.EventID == "" || event.Type == "" {
		r.Log.Error("dropping event without id or type", zap.Int64("customer_id", event.CustomerID))
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.Timeout)
	defer cancel()

	inserted, err := r.EventRepo.Insert(ctx, &event)
	if err != nil {
		return err
	}
	if !inserted {
		r.Log.Info("event already recorded", zap.String("event_id", event.EventID))
		return nil
	}
	r.Log.Info("event recorded",
		zap.String("event_id", event.EventID),
		zap.String("type", event.Type),
		zap.Int64("customer_id", event.CustomerID),
	)
	return nil
}

// NewEventLogger returns a subscriber that only logs events, for deployments
// without a broker and worker.
func NewEventLogger(log *zap.Logger) func(payload any) error {
	log = log.Named("event.audit")
	return func(payload any) error {
		event, err := queue.DecodeEvent(payload)
		if err != nil {
			log.Warn("undecodable event", zap.Error(err))
			return nil
		}
		log.Info("customer event",
			zap.String("event_id", event.EventID),
			zap.String("type", event.Type),
			zap.Int64("customer_id", event.CustomerID),
			zap.Time("occurred_at", event.OccurredAt),
		)
		return nil
	}
}
