package kvstore

import (
	"context"
	"time"

	"github.com/go-stack/stack"
	"github.com/redis/go-redis/v9"

	"github.com/TeamNorCal/ledsense/errors"
)

// Redis is a Store backed by a Redis server. Every namespace is one hash,
// optionally behind a key prefix, and commits are applied as a single
// MULTI/EXEC transaction.
type Redis struct {
	client  redis.UniversalClient
	prefix  string
	timeout time.Duration
}

// NewRedis wraps an existing client. Keys are stored as <prefix><namespace>.
func NewRedis(client redis.UniversalClient, prefix string) (store *Redis) {
	return &Redis{
		client:  client,
		prefix:  prefix,
		timeout: 5 * time.Second,
	}
}

// DialRedis connects to the server at addr and checks it answers.
func DialRedis(addr string, prefix string) (store *Redis, err errors.Error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if errGo := client.Ping(ctx).Err(); errGo != nil {
		client.Close()
		return nil, errors.Wrap(errGo).With("addr", addr).With("stack", stack.Trace().TrimRuntime())
	}
	return NewRedis(client, prefix), nil
}

// Close releases the client.
func (r *Redis) Close() error {
	return r.client.Close()
}

// Open implements Store.
func (r *Redis) Open(namespace string) (Bucket, error) {
	return &redisBucket{store: r, key: r.prefix + namespace}, nil
}

type redisBucket struct {
	store *Redis
	key   string
	staged
}

func (b *redisBucket) Set(key, value string) error {
	b.stage(key, value)
	return nil
}

func (b *redisBucket) GetString(key string) (string, bool, error) {
	if v, ok := b.lookup(key); ok {
		return v, true, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.store.timeout)
	defer cancel()

	v, errGo := b.store.client.HGet(ctx, b.key, key).Result()
	if errGo == redis.Nil {
		return "", false, nil
	}
	if errGo != nil {
		return "", false, errors.Wrap(errGo).With("hash", b.key).With("field", key).With("stack", stack.Trace().TrimRuntime())
	}
	return v, true, nil
}

func (b *redisBucket) Commit() error {
	pending := b.take()
	if len(pending) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.store.timeout)
	defer cancel()

	_, errGo := b.store.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for k, v := range pending {
			pipe.HSet(ctx, b.key, k, v)
		}
		return nil
	})
	if errGo != nil {
		return errors.Wrap(errGo).With("hash", b.key).With("stack", stack.Trace().TrimRuntime())
	}
	return nil
}
