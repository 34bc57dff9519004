// Package kvstore implements the key value persistence used for sensor
// calibration records.
//
// A Store hands out Buckets for a namespace. Writes made through a Bucket are
// staged and only become visible to other Buckets once Commit succeeds.
package kvstore

import (
	"sync"
)

// Store opens namespaces.
type Store interface {
	Open(namespace string) (Bucket, error)
}

// Bucket is an open namespace.
type Bucket interface {
	// Set stages value under key.
	Set(key, value string) error
	// GetString returns the value for key, staged writes included. ok is false
	// when the key is absent.
	GetString(key string) (value string, ok bool, err error)
	// Commit makes the staged writes durable in one step.
	Commit() error
}

// staged is the write buffer shared by every Bucket implementation.
type staged struct {
	pending map[string]string
}

func (s *staged) stage(key, value string) {
	if s.pending == nil {
		s.pending = map[string]string{}
	}
	s.pending[key] = value
}

func (s *staged) lookup(key string) (value string, ok bool) {
	value, ok = s.pending[key]
	return value, ok
}

func (s *staged) take() (pending map[string]string) {
	pending, s.pending = s.pending, nil
	return pending
}

// Memory is a Store kept in process memory.
type Memory struct {
	namespaces map[string]map[string]string
	sync.Mutex
}

// NewMemory returns an empty in memory Store.
func NewMemory() (store *Memory) {
	return &Memory{
		namespaces: map[string]map[string]string{},
	}
}

// Open implements Store.
func (m *Memory) Open(namespace string) (Bucket, error) {
	return &memBucket{store: m, namespace: namespace}, nil
}

type memBucket struct {
	store     *Memory
	namespace string
	staged
}

func (b *memBucket) Set(key, value string) error {
	b.stage(key, value)
	return nil
}

func (b *memBucket) GetString(key string) (string, bool, error) {
	if v, ok := b.lookup(key); ok {
		return v, true, nil
	}
	b.store.Lock()
	defer b.store.Unlock()
	v, ok := b.store.namespaces[b.namespace][key]
	return v, ok, nil
}

func (b *memBucket) Commit() error {
	pending := b.take()
	if len(pending) == 0 {
		return nil
	}
	b.store.Lock()
	defer b.store.Unlock()
	ns := b.store.namespaces[b.namespace]
	if ns == nil {
		ns = map[string]string{}
		b.store.namespaces[b.namespace] = ns
	}
	for k, v := range pending {
		ns[k] = v
	}
	return nil
}
