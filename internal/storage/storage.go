package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"doccompliance/internal/config"
	"doccompliance/internal/models"
	"doccompliance/internal/redis"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionExists    = errors.New("session already exists")
	ErrArtifactNotFound = errors.New("modified file not found")
)

// Store owns session records and the rewritten-text artifacts that hang off them.
// Every write replaces the whole record; there is no locking, so concurrent
// updates of one session resolve last-write-wins.
type Store interface {
	Create(ctx context.Context, s *models.Session) error
	Get(ctx context.Context, id string) (*models.Session, error)
	Update(ctx context.Context, s *models.Session) error
	Delete(ctx context.Context, id string) error

	// SaveModified writes the rewritten text for the session, replacing any earlier artifact of the same name.
	SaveModified(ctx context.Context, id, name, text string) error
	// ModifiedPath returns the on-disk location of a stored artifact.
	ModifiedPath(ctx context.Context, id, name string) (string, error)

	// Sweep drops sessions created before cutoff together with their artifacts.
	Sweep(ctx context.Context, cutoff time.Time) (int, error)
}

// Open builds the configured session backend. Artifacts always live under
// the processed directory; rdb is only needed for the redis backend.
func Open(cfg config.StorageConfig, redisCfg config.RedisConfig, rdb *redis.Client) (Store, error) {
	artifacts, err := newArtifactDir(cfg.ProcessedDir)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(cfg.Backend) {
	case "", "file":
		return NewFileStore(cfg.ProcessedDir, artifacts)
	case "redis":
		if rdb == nil {
			return nil, errors.New("redis backend requires a redis client")
		}
		return NewRedisStore(rdb, redisCfg.KeyPrefix, cfg.SessionTTL, artifacts), nil
	default:
		return nil, fmt.Errorf("unsupported session backend: %s", cfg.Backend)
	}
}

// ValidID reports whether id is a canonical uuid. Ids reach the filesystem,
// so anything else is treated as an unknown session.
func ValidID(id string) bool {
	if len(id) != 36 {
		return false
	}
	parsed, err := uuid.Parse(id)
	return err == nil && parsed.String() == id
}
