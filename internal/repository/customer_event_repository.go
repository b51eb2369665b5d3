package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/unclebandit/customer-service/internal/model"
)

type CustomerEventRepositoryInterface interface {
	Insert(ctx context.Context, e *model.CustomerEvent) (bool, error)
}

type CustomerEventRepository struct {
	DB *sql.DB
}

// Insert records e once per event id. It reports false when the event was already recorded.
func (r *CustomerEventRepository) Insert(ctx context.Context, e *model.CustomerEvent) (bool, error) {
	if e.RecordedAt == nil {
		now := time.Now().UTC()
		e.RecordedAt = &now
	}
	payload := e.Payload
	if len(payload) == 0 {
		payload = json.RawMessage("{}")
	}

	query, args, err := psql.Insert("customer_events").
		Columns("event_id", "type", "customer_id", "payload", "occurred_at", "recorded_at").
		Values(e.EventID, e.Type, e.CustomerID, string(payload), e.OccurredAt, *e.RecordedAt).
		Suffix("ON CONFLICT (event_id) DO NOTHING RETURNING id").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("building insert query: %w", err)
	}

	if err := r.DB.QueryRowContext(ctx, query, args...).Scan(&e.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("inserting customer event %s: %w", e.EventID, err)
	}
	return true, nil
}

var _ CustomerEventRepositoryInterface = (*CustomerEventRepository)(nil)
