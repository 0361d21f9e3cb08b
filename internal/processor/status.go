package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kalaconnect/kalaconnect-backend/pkg/redis"
)

const statusKeyScope = "media"

// RedisStatusStore keeps processing event records in Redis as JSON values.
// Claim relies on SETNX so at most one concurrent claimant proceeds.
type RedisStatusStore struct {
	kv        redis.KV
	retention time.Duration
}

// NewRedisStatusStore builds the store. retention bounds how long records
// live; zero keeps them forever.
func NewRedisStatusStore(kv redis.KV, retention time.Duration) (*RedisStatusStore, error) {
	if kv == nil {
		return nil, errors.New("redis kv is required")
	}
	if retention < 0 {
		return nil, errors.New("retention must not be negative")
	}
	return &RedisStatusStore{kv: kv, retention: retention}, nil
}

func (s *RedisStatusStore) Get(ctx context.Context, eventID string) (*Record, error) {
	raw, err := s.kv.Get(ctx, s.key(eventID))
	if err != nil {
		if redis.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading event status: %w", err)
	}

	var rec Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, fmt.Errorf("decoding event status: %w", err)
	}
	return &rec, nil
}

func (s *RedisStatusStore) Claim(ctx context.Context, eventID string, rec *Record) (bool, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return false, fmt.Errorf("encoding event status: %w", err)
	}
	claimed, err := s.kv.SetNX(ctx, s.key(eventID), string(raw), s.retention)
	if err != nil {
		return false, fmt.Errorf("claiming event: %w", err)
	}
	return claimed, nil
}

// Reclaim overwrites a previously stored record, but only while it still
// equals prev, so concurrent redeliveries of a failed event race through at
// most one reclaim. Record marshaling is deterministic, so comparing the
// serialized forms is an exact match on the stored value.
func (s *RedisStatusStore) Reclaim(ctx context.Context, eventID string, prev, next *Record) (bool, error) {
	oldRaw, err := json.Marshal(prev)
	if err != nil {
		return false, fmt.Errorf("encoding event status: %w", err)
	}
	nextRaw, err := json.Marshal(next)
	if err != nil {
		return false, fmt.Errorf("encoding event status: %w", err)
	}
	swapped, err := s.kv.CompareAndSwap(ctx, s.key(eventID), string(oldRaw), string(nextRaw), s.retention)
	if err != nil {
		return false, fmt.Errorf("reclaiming event: %w", err)
	}
	return swapped, nil
}

func (s *RedisStatusStore) Update(ctx context.Context, eventID string, rec *Record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding event status: %w", err)
	}
	if err := s.kv.Set(ctx, s.key(eventID), string(raw), s.retention); err != nil {
		return fmt.Errorf("updating event status: %w", err)
	}
	return nil
}

func (s *RedisStatusStore) key(eventID string) string {
	return s.kv.EventKey(statusKeyScope, eventID)
}
