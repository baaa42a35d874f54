package attachment

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// PreviewStore pairs every acquired preview handle with exactly one release.
// The file-backed store mirrors the browser object-URL lifecycle: acquire
// writes a servable file, release deletes it.
type PreviewStore interface {
	Acquire(id uuid.UUID, name string, content []byte) (string, error)
	Release(path string) error
}

type FilePreviewStore struct {
	dir string
}

func NewFilePreviewStore(dir string) (*FilePreviewStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create preview dir: %w", err)
	}
	return &FilePreviewStore{dir: dir}, nil
}

func (s *FilePreviewStore) Acquire(id uuid.UUID, name string, content []byte) (string, error) {
	path := filepath.Join(s.dir, id.String()+"_"+filepath.Base(name))
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (s *FilePreviewStore) Release(path string) error {
	err := os.Remove(path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
