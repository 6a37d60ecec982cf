package cart

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	clienterrors "github.com/jrsteele09/etokisana-client/internal/errors"
	"github.com/pkg/errors"
)

const defaultRedisTimeout = 3 * time.Second

var _ Repo = (*RedisRepo)(nil)

// RedisRepo stores each cart as a JSON string under its key.
type RedisRepo struct {
	client  redis.UniversalClient
	timeout time.Duration
	ttl     time.Duration
}

type RedisOption func(*RedisRepo)

// WithRedisTimeout bounds every Redis call.
func WithRedisTimeout(timeout time.Duration) RedisOption {
	return func(r *RedisRepo) {
		r.timeout = timeout
	}
}

// WithTTL expires carts that were not saved for ttl. Zero keeps them forever.
func WithTTL(ttl time.Duration) RedisOption {
	return func(r *RedisRepo) {
		r.ttl = ttl
	}
}

func NewRedisRepo(client redis.UniversalClient, options ...RedisOption) *RedisRepo {
	r := &RedisRepo{client: client, timeout: defaultRedisTimeout}
	for _, opt := range options {
		opt(r)
	}
	return r
}

func (r *RedisRepo) Load(key string) ([]Item, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, clienterrors.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "RedisRepo.Load Get")
	}

	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, errors.Wrap(err, "RedisRepo.Load Unmarshal")
	}
	return items, nil
}

func (r *RedisRepo) Save(key string, items []Item) error {
	if items == nil {
		items = []Item{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return errors.Wrap(err, "RedisRepo.Save Marshal")
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	return errors.Wrap(r.client.Set(ctx, key, data, r.ttl).Err(), "RedisRepo.Save Set")
}
