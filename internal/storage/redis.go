package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"doccompliance/internal/models"
	"doccompliance/internal/redis"
)

// RedisStore keeps one JSON value per session under <prefix>session:<id>.
// Creation times are indexed in a sorted set so Sweep can find old sessions
// and clear their on-disk artifacts, even after redis expired the record.
type RedisStore struct {
	rdb       *redis.Client
	prefix    string
	ttl       time.Duration
	artifacts *artifactDir
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore builds the store. A ttl of zero keeps records until swept.
func NewRedisStore(rdb *redis.Client, prefix string, ttl time.Duration, artifacts *artifactDir) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: prefix, ttl: ttl, artifacts: artifacts}
}

func (s *RedisStore) key(id string) string {
	return s.prefix + "session:" + id
}

func (s *RedisStore) indexKey() string {
	return s.prefix + "sessions:created"
}

func (s *RedisStore) Create(ctx context.Context, sess *models.Session) error {
	if !ValidID(sess.ID) {
		return fmt.Errorf("create session %q: invalid id", sess.ID)
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	ok, err := s.rdb.SetNX(ctx, s.key(sess.ID), data, s.ttl)
	if err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	if !ok {
		return ErrSessionExists
	}
	if err := s.rdb.ZAdd(ctx, s.indexKey(), float64(sess.CreatedAt.Unix()), sess.ID); err != nil {
		return fmt.Errorf("index session: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*models.Session, error) {
	if !ValidID(id) {
		return nil, ErrSessionNotFound
	}
	raw, err := s.rdb.Get(ctx, s.key(id))
	if err != nil {
		if errors.Is(err, redis.ErrCacheMiss) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	var sess models.Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &sess, nil
}

func (s *RedisStore) Update(ctx context.Context, sess *models.Session) error {
	if !ValidID(sess.ID) {
		return ErrSessionNotFound
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	ok, err := s.rdb.SetXX(ctx, s.key(sess.ID), data, redis.KeepTTL)
	if err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	if !ok {
		return ErrSessionNotFound
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if !ValidID(id) {
		return ErrSessionNotFound
	}
	if err := s.artifacts.removeAll(id); err != nil {
		return fmt.Errorf("remove modified files: %w", err)
	}
	if err := s.rdb.Del(ctx, s.key(id)); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return s.rdb.ZRem(ctx, s.indexKey(), id)
}

func (s *RedisStore) SaveModified(ctx context.Context, id, name, text string) error {
	return s.artifacts.save(id, name, text)
}

func (s *RedisStore) ModifiedPath(ctx context.Context, id, name string) (string, error) {
	return s.artifacts.lookup(id, name)
}

func (s *RedisStore) Sweep(ctx context.Context, cutoff time.Time) (int, error) {
	// Exclusive bound: sessions created exactly at cutoff are kept.
	maxScore := "(" + strconv.FormatInt(cutoff.Unix(), 10)
	ids, err := s.rdb.ZRangeByScore(ctx, s.indexKey(), "-inf", maxScore)
	if err != nil {
		return 0, fmt.Errorf("list expired sessions: %w", err)
	}
	removed := 0
	for _, id := range ids {
		if err := s.Delete(ctx, id); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}
