package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/unclebandit/customer-service/internal/model"
	"github.com/unclebandit/customer-service/internal/repository"
)

const keyPrefix = "customer:"

// CustomerRepository caches FindByID results in redis and evicts them on writes.
// Redis failures are logged and the call falls through to the wrapped repository.
//
// Fills are not ordered against writes: a miss that reads the row before a
// concurrent Save or DeleteByID can cache the old row after the eviction, and
// it is served until the TTL expires. Fills never overwrite an existing entry.
type CustomerRepository struct {
	inner  repository.CustomerRepositoryInterface
	client redis.UniversalClient
	ttl    time.Duration
	log    *zap.Logger
}

func NewCustomerRepository(inner repository.CustomerRepositoryInterface, client redis.UniversalClient, ttl time.Duration, log *zap.Logger) *CustomerRepository {
	if log == nil {
		log = zap.NewNop()
	}
	return &CustomerRepository{
		inner:  inner,
		client: client,
		ttl:    ttl,
		log:    log.Named("customer.cache"),
	}
}

func Key(id int64) string {
	return keyPrefix + strconv.FormatInt(id, 10)
}

func (r *CustomerRepository) FindByID(ctx context.Context, id int64) (*model.Customer, error) {
	raw, err := r.client.Get(ctx, Key(id)).Bytes()
	switch {
	case err == nil:
		var c model.Customer
		if err := json.Unmarshal(raw, &c); err == nil {
			return &c, nil
		}
		r.log.Warn("discarding undecodable cache entry", zap.Int64("customer_id", id))
	case !errors.Is(err, redis.Nil):
		r.log.Warn("cache read failed", zap.Int64("customer_id", id), zap.Error(err))
	}

	c, err := r.inner.FindByID(ctx, id)
	if err != nil || c == nil {
		return c, err
	}

	if raw, err := json.Marshal(c); err == nil {
		if err := r.client.SetNX(ctx, Key(id), raw, r.ttl).Err(); err != nil {
			r.log.Warn("cache write failed", zap.Int64("customer_id", id), zap.Error(err))
		}
	}
	return c, nil
}

// FindByFirstName always reads the store so the duplicate check sees committed rows.
func (r *CustomerRepository) FindByFirstName(ctx context.Context, firstName string) (*model.Customer, error) {
	return r.inner.FindByFirstName(ctx, firstName)
}

func (r *CustomerRepository) FindPage(ctx context.Context, pageNumber, pageSize int) ([]model.Customer, int64, error) {
	return r.inner.FindPage(ctx, pageNumber, pageSize)
}

func (r *CustomerRepository) Save(ctx context.Context, c *model.Customer) error {
	if err := r.inner.Save(ctx, c); err != nil {
		return err
	}
	r.evict(ctx, c.ID)
	return nil
}

func (r *CustomerRepository) DeleteByID(ctx context.Context, id int64) error {
	err := r.inner.DeleteByID(ctx, id)
	// evict even on ErrNotFound, the row is gone either way
	if err == nil || errors.Is(err, repository.ErrNotFound) {
		r.evict(ctx, id)
	}
	return err
}

func (r *CustomerRepository) evict(ctx context.Context, id int64) {
	if err := r.client.Del(ctx, Key(id)).Err(); err != nil {
		r.log.Warn("cache eviction failed", zap.Int64("customer_id", id), zap.Error(err))
	}
}

var _ repository.CustomerRepositoryInterface = (*CustomerRepository)(nil)
