package playground

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Storage writes uploaded and generated images under a media root. Stored
// paths are always relative (e.g. "selfies/2f0c....jpg") so the root can move
// between deployments; URLs are served from /media/.
type Storage struct {
	Root string
}

func NewStorage(root string) *Storage {
	return &Storage{Root: root}
}

// SaveBytes stores raw bytes under dir with a random file name and the given
// extension, returning the relative path recorded in the database.
func (s *Storage) SaveBytes(dir, extension string, data []byte) (string, error) {
	extension = strings.TrimPrefix(extension, ".")
	if extension == "" {
		extension = "bin"
	}
	rel := filepath.Join(dir, fmt.Sprintf("%s.%s", uuid.New().String(), extension))
	abs := filepath.Join(s.Root, rel)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}
	if err := os.WriteFile(abs, data, 0o644); err != nil {
		return "", fmt.Errorf("write media file: %w", err)
	}
	return filepath.ToSlash(rel), nil
}

// AbsPath resolves a stored relative path to a filesystem path.
func (s *Storage) AbsPath(rel string) string {
	return filepath.Join(s.Root, filepath.FromSlash(rel))
}

// Delete removes a stored file; a missing file is not an error.
func (s *Storage) Delete(rel string) error {
	if rel == "" {
		return nil
	}
	err := os.Remove(s.AbsPath(rel))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// URLFor maps a stored relative path to its public URL.
func URLFor(rel string) string {
	if rel == "" {
		return ""
	}
	return "/media/" + rel
}
