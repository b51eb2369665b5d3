package cache_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/unclebandit/customer-service/internal/cache"
	"github.com/unclebandit/customer-service/internal/model"
	"github.com/unclebandit/customer-service/internal/repository"
)

// MockCustomerRepo implements repository.CustomerRepositoryInterface for testing
type MockCustomerRepo struct {
	mock.Mock
}

func (m *MockCustomerRepo) FindByFirstName(ctx context.Context, firstName string) (*model.Customer, error) {
	args := m.Called(ctx, firstName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Customer), args.Error(1)
}

func (m *MockCustomerRepo) FindByID(ctx context.Context, id int64) (*model.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Customer), args.Error(1)
}

func (m *MockCustomerRepo) FindPage(ctx context.Context, pageNumber, pageSize int) ([]model.Customer, int64, error) {
	args := m.Called(ctx, pageNumber, pageSize)
	return args.Get(0).([]model.Customer), args.Get(1).(int64), args.Error(2)
}

func (m *MockCustomerRepo) Save(ctx context.Context, c *model.Customer) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCustomerRepo) DeleteByID(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func setup(t *testing.T) (*cache.CustomerRepository, *MockCustomerRepo, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	inner := &MockCustomerRepo{}
	return cache.NewCustomerRepository(inner, client, time.Minute, nil), inner, mr
}

func TestFindByIDReadThrough(t *testing.T) {
	repo, inner, mr := setup(t)
	ctx := context.Background()
	john := &model.Customer{ID: 1, FirstName: "John", LastName: "Doe"}

	inner.On("FindByID", mock.Anything, int64(1)).Return(john, nil).Once()

	first, err := repo.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, john, first)
	assert.True(t, mr.Exists(cache.Key(1)))
	assert.Equal(t, time.Minute, mr.TTL(cache.Key(1)))

	second, err := repo.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, *john, *second)

	inner.AssertNumberOfCalls(t, "FindByID", 1)
}

func TestFindByIDFillKeepsNewerEntry(t *testing.T) {
	repo, inner, mr := setup(t)
	ctx := context.Background()
	stale := &model.Customer{ID: 1, FirstName: "John", LastName: "Doe"}
	fresh := model.Customer{ID: 1, FirstName: "John", LastName: "Smith"}

	inner.On("FindByID", mock.Anything, int64(1)).
		Run(func(mock.Arguments) {
			raw, err := json.Marshal(fresh)
			require.NoError(t, err)
			require.NoError(t, mr.Set(cache.Key(1), string(raw)))
		}).
		Return(stale, nil).Once()

	got, err := repo.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Doe", got.LastName)

	cached, err := repo.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Smith", cached.LastName)
	inner.AssertNumberOfCalls(t, "FindByID", 1)
}

func TestFindByIDAbsentIsNotCached(t *testing.T) {
	repo, inner, mr := setup(t)

	inner.On("FindByID", mock.Anything, int64(9)).Return(nil, nil).Twice()

	for range 2 {
		c, err := repo.FindByID(context.Background(), 9)
		require.NoError(t, err)
		assert.Nil(t, c)
	}
	assert.False(t, mr.Exists(cache.Key(9)))
	inner.AssertExpectations(t)
}

func TestSaveEvicts(t *testing.T) {
	repo, inner, mr := setup(t)
	require.NoError(t, mr.Set(cache.Key(1), `{"id":1,"first_name":"John"}`))

	c := &model.Customer{ID: 1, FirstName: "John", LastName: "Smith"}
	inner.On("Save", mock.Anything, c).Return(nil)

	require.NoError(t, repo.Save(context.Background(), c))
	assert.False(t, mr.Exists(cache.Key(1)))
}

func TestDeleteEvicts(t *testing.T) {
	repo, inner, mr := setup(t)
	require.NoError(t, mr.Set(cache.Key(4), `{"id":4}`))

	inner.On("DeleteByID", mock.Anything, int64(4)).Return(repository.ErrNotFound)

	err := repo.DeleteByID(context.Background(), 4)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.False(t, mr.Exists(cache.Key(4)))
}

func TestPassThroughQueries(t *testing.T) {
	repo, inner, _ := setup(t)
	page := []model.Customer{{ID: 1}, {ID: 2}}

	inner.On("FindByFirstName", mock.Anything, "John").Return(&model.Customer{ID: 1}, nil)
	inner.On("FindPage", mock.Anything, 0, 2).Return(page, int64(3), nil)

	c, err := repo.FindByFirstName(context.Background(), "John")
	require.NoError(t, err)
	assert.Equal(t, int64(1), c.ID)

	got, total, err := repo.FindPage(context.Background(), 0, 2)
	require.NoError(t, err)
	assert.Equal(t, page, got)
	assert.Equal(t, int64(3), total)
}

func TestRedisDownFallsThrough(t *testing.T) {
	repo, inner, mr := setup(t)
	mr.Close()

	inner.On("FindByID", mock.Anything, int64(2)).Return(&model.Customer{ID: 2}, nil)

	c, err := repo.FindByID(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), c.ID)
}
