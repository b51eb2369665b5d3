package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/unclebandit/customer-service/internal/model"
	"github.com/unclebandit/customer-service/internal/service"
)

type MockEventRepo struct {
	mock.Mock
}

func (m *MockEventRepo) Insert(ctx context.Context, e *model.CustomerEvent) (bool, error) {
	args := m.Called(ctx, e)
	return args.Bool(0), args.Error(1)
}

func sampleEvent() model.CustomerEvent {
	return model.CustomerEvent{
		EventID:    "0f8e4c0a-3a52-4a8b-9d5e-2f2c6c7f4b10",
		Type:       model.CustomerCreated,
		CustomerID: 1,
		Payload:    json.RawMessage(`{"customerId":1,"firstName":"John"}`),
		OccurredAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestEventRecorderRecordsJSONBody(t *testing.T) {
	repo := &MockEventRepo{}
	rec := service.NewEventRecorder(repo, zap.NewNop())

	repo.On("Insert", mock.Anything, mock.MatchedBy(func(e *model.CustomerEvent) bool {
		return e.EventID == sampleEvent().EventID && e.CustomerID == 1 && e.Type == model.CustomerCreated
	})).Return(true, nil)

	body, err := json.Marshal(sampleEvent())
	require.NoError(t, err)

	require.NoError(t, rec.Handle(body))
	repo.AssertExpectations(t)
}

func TestEventRecorderDuplicateIsAcknowledged(t *testing.T) {
	repo := &MockEventRepo{}
	rec := service.NewEventRecorder(repo, nil)

	repo.On("Insert", mock.Anything, mock.Anything).Return(false, nil)

	assert.NoError(t, rec.Handle(sampleEvent()))
}

func TestEventRecorderStoreFailureIsRetried(t *testing.T) {
	repo := &MockEventRepo{}
	rec := service.NewEventRecorder(repo, nil)
	boom := errors.New("db down")

	repo.On("Insert", mock.Anything, mock.Anything).Return(false, boom)

	assert.ErrorIs(t, rec.Handle(sampleEvent()), boom)
}

func TestEventRecorderDropsBadPayloads(t *testing.T) {
	repo := &MockEventRepo{}
	rec := service.NewEventRecorder(repo, nil)

	assert.NoError(t, rec.Handle([]byte("not json")))
	assert.NoError(t, rec.Handle(model.CustomerEvent{Type: model.CustomerDeleted}))
	assert.NoError(t, rec.Handle(3.14))
	repo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestEventLogger(t *testing.T) {
	handle := service.NewEventLogger(zap.NewNop())
	assert.NoError(t, handle(sampleEvent()))
	assert.NoError(t, handle("garbage"))
}
