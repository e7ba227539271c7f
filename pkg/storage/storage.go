package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/dentavia/dentavia/internal/config"
)

// Local is a filesystem blob store for uploaded documents (CVs, fiche
// attachments). Stored names are randomized; the returned path is relative
// to the upload root and is what gets persisted on the owning row.
type Local struct {
	root string
}

func NewLocal(cfg config.StorageConfig) (*Local, error) {
	if err := os.MkdirAll(cfg.UploadDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating upload dir: %w", err)
	}
	return &Local{root: cfg.UploadDir}, nil
}

func (l *Local) Save(subdir, filename string, data []byte) (string, error) {
	dir := filepath.Join(l.root, filepath.Base(subdir))
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("creating subdir: %w", err)
	}

	ext := filepath.Ext(filepath.Base(filename))
	name := uuid.NewString() + ext
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o640); err != nil {
		return "", fmt.Errorf("writing file: %w", err)
	}

	return filepath.Join(filepath.Base(subdir), name), nil
}

func (l *Local) Load(path string) ([]byte, error) {
	full, err := l.resolve(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return data, nil
}

func (l *Local) Delete(path string) error {
	full, err := l.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing file: %w", err)
	}
	return nil
}

// resolve rejects paths escaping the upload root.
func (l *Local) resolve(path string) (string, error) {
	full := filepath.Join(l.root, path)
	rel, err := filepath.Rel(l.root, full)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("invalid storage path %q", path)
	}
	return full, nil
}
