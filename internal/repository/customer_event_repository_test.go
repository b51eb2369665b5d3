package repository_test

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unclebandit/customer-service/internal/model"
	"github.com/unclebandit/customer-service/internal/repository"
)

func newEventRepo(t *testing.T) (*repository.CustomerEventRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return &repository.CustomerEventRepository{DB: db}, mock
}

func TestInsertEvent(t *testing.T) {
	repo, mock := newEventRepo(t)

	e := &model.CustomerEvent{
		EventID:    "5b0c1f3e-6a1d-4f43-9d8e-0b6f2d9e7c11",
		Type:       model.CustomerCreated,
		CustomerID: 1,
		Payload:    json.RawMessage(`{"firstName":"John"}`),
		OccurredAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO customer_events")).
		WithArgs(e.EventID, model.CustomerCreated, int64(1), `{"firstName":"John"}`, e.OccurredAt, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(10))

	inserted, err := repo.Insert(context.Background(), e)
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.Equal(t, int64(10), e.ID)
	assert.NotNil(t, e.RecordedAt)
}

func TestInsertEventDuplicate(t *testing.T) {
	repo, mock := newEventRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (event_id) DO NOTHING")).
		WithArgs(sqlmock.AnyArg(), model.CustomerDeleted, int64(2), "{}", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	inserted, err := repo.Insert(context.Background(), &model.CustomerEvent{
		EventID:    "dup",
		Type:       model.CustomerDeleted,
		CustomerID: 2,
		OccurredAt: time.Now(),
	})
	require.NoError(t, err)
	assert.False(t, inserted)
}
