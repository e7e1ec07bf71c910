package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"doccompliance/internal/models"
)

const sessionFileSuffix = "_session.json"

// FileStore keeps one JSON record per session at <dir>/<id>_session.json.
type FileStore struct {
	dir       string
	artifacts *artifactDir
}

var _ Store = (*FileStore)(nil)

func NewFileStore(dir string, artifacts *artifactDir) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	if artifacts == nil {
		var err error
		if artifacts, err = newArtifactDir(dir); err != nil {
			return nil, err
		}
	}
	return &FileStore{dir: dir, artifacts: artifacts}, nil
}

func (s *FileStore) recordPath(id string) (string, error) {
	if !ValidID(id) {
		return "", ErrSessionNotFound
	}
	return filepath.Join(s.dir, id+sessionFileSuffix), nil
}

func (s *FileStore) Create(ctx context.Context, sess *models.Session) error {
	path, err := s.recordPath(sess.ID)
	if err != nil {
		return fmt.Errorf("create session %q: invalid id", sess.ID)
	}
	if _, err := os.Stat(path); err == nil {
		return ErrSessionExists
	}
	return s.write(path, sess)
}

func (s *FileStore) Get(ctx context.Context, id string) (*models.Session, error) {
	path, err := s.recordPath(id)
	if err != nil {
		return nil, err
	}
	return readRecord(path)
}

func (s *FileStore) Update(ctx context.Context, sess *models.Session) error {
	path, err := s.recordPath(sess.ID)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("stat session: %w", err)
	}
	return s.write(path, sess)
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	path, err := s.recordPath(id)
	if err != nil {
		return err
	}
	if err := s.artifacts.removeAll(id); err != nil {
		return fmt.Errorf("remove modified files: %w", err)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

func (s *FileStore) SaveModified(ctx context.Context, id, name, text string) error {
	return s.artifacts.save(id, name, text)
}

func (s *FileStore) ModifiedPath(ctx context.Context, id, name string) (string, error) {
	return s.artifacts.lookup(id, name)
}

func (s *FileStore) Sweep(ctx context.Context, cutoff time.Time) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("list sessions: %w", err)
	}
	removed := 0
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, sessionFileSuffix) {
			continue
		}
		id := strings.TrimSuffix(name, sessionFileSuffix)
		if !ValidID(id) {
			continue
		}
		sess, err := readRecord(filepath.Join(s.dir, name))
		if err != nil {
			continue
		}
		if !sess.CreatedAt.Before(cutoff) {
			continue
		}
		if err := s.Delete(ctx, id); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

func (s *FileStore) write(path string, sess *models.Session) error {
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := writeFileAtomic(path, data); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

func readRecord(path string) (*models.Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("read session: %w", err)
	}
	var sess models.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &sess, nil
}
