package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// TypedStore keeps JSON-encoded values of type T under "<namespace>:<key>".
// An empty namespace stores bare keys.
type TypedStore[T any] struct {
	client    *Client
	namespace string
}

func NewTypedStore[T any](client *Client, namespace string) *TypedStore[T] {
	return &TypedStore[T]{client: client, namespace: namespace}
}

func (s *TypedStore[T]) key(k string) string {
	if s.namespace == "" {
		return k
	}
	return fmt.Sprintf("%s:%s", s.namespace, k)
}

// Load returns nil without error for a missing or expired key.
func (s *TypedStore[T]) Load(ctx context.Context, k string) (*T, error) {
	raw, err := s.client.Get(ctx, s.key(k))
	switch {
	case IsMiss(err):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("load %s: %w", s.key(k), err)
	}
	v := new(T)
	if err := json.Unmarshal(raw, v); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.key(k), err)
	}
	return v, nil
}

// Save overwrites the value at k. ttl 0 keeps it forever.
func (s *TypedStore[T]) Save(ctx context.Context, k string, v *T, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.key(k), err)
	}
	if err := s.client.Set(ctx, s.key(k), raw, ttl); err != nil {
		return fmt.Errorf("save %s: %w", s.key(k), err)
	}
	return nil
}

func (s *TypedStore[T]) Delete(ctx context.Context, k string) error {
	if err := s.client.Del(ctx, s.key(k)); err != nil {
		return fmt.Errorf("delete %s: %w", s.key(k), err)
	}
	return nil
}
