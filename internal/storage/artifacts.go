package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// artifactDir keeps rewritten documents as <root>/<id>_<name>.
type artifactDir struct {
	root string
}

func newArtifactDir(root string) (*artifactDir, error) {
	if root == "" {
		return nil, errors.New("processed directory must be configured")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create processed dir: %w", err)
	}
	return &artifactDir{root: root}, nil
}

func (a *artifactDir) path(id, name string) (string, error) {
	if !ValidID(id) {
		return "", ErrSessionNotFound
	}
	if name == "" || name != filepath.Base(name) || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid artifact name %q", name)
	}
	return filepath.Join(a.root, id+"_"+name), nil
}

func (a *artifactDir) save(id, name, text string) error {
	path, err := a.path(id, name)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(path, []byte(text)); err != nil {
		return fmt.Errorf("write modified file: %w", err)
	}
	return nil
}

func (a *artifactDir) lookup(id, name string) (string, error) {
	path, err := a.path(id, name)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrArtifactNotFound
		}
		return "", fmt.Errorf("stat modified file: %w", err)
	}
	if info.IsDir() {
		return "", ErrArtifactNotFound
	}
	return path, nil
}

// removeAll drops every artifact stored for id.
func (a *artifactDir) removeAll(id string) error {
	if !ValidID(id) {
		return ErrSessionNotFound
	}
	matches, err := filepath.Glob(filepath.Join(a.root, id+"_*"))
	if err != nil {
		return err
	}
	for _, m := range matches {
		if strings.HasSuffix(m, sessionFileSuffix) {
			continue
		}
		if err := os.Remove(m); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}

// writeFileAtomic replaces path with data via a sibling temp file and rename,
// so readers never observe a half-written file.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
