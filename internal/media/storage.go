package media

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

const nameAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// Storage keeps uploaded images on disk under a single media directory.
// File names are generated server side so client-supplied names never touch
// the filesystem.
type Storage struct {
	dir    string
	logger *zap.SugaredLogger
}

// NewStorage creates the media directory if needed
func NewStorage(dir string, logger *zap.SugaredLogger) (*Storage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media dir: %w", err)
	}
	return &Storage{dir: dir, logger: logger}, nil
}

// Dir returns the root media directory
func (s *Storage) Dir() string {
	return s.dir
}

// GenerateName builds an image title from the owning post's ID plus a random
// suffix, matching the pattern image<postID><suffix>.
func GenerateName(postID string) string {
	suffix := make([]byte, 8)
	for i := range suffix {
		suffix[i] = nameAlphabet[rand.Intn(len(nameAlphabet))]
	}
	return "image" + strings.ReplaceAll(postID, "-", "") + string(suffix)
}

// Save writes an uploaded file under a generated name and returns the title
// and the path relative to the media directory.
func (s *Storage) Save(postID string, src io.Reader, originalName string) (title, relPath string, err error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp":
	default:
		ext = ".png"
	}

	title = GenerateName(postID)
	relPath = title + ext

	dst, err := os.Create(filepath.Join(s.dir, relPath))
	if err != nil {
		return "", "", fmt.Errorf("failed to create media file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		_ = os.Remove(dst.Name())
		return "", "", fmt.Errorf("failed to write media file: %w", err)
	}

	return title, relPath, nil
}

// Remove deletes a stored file. Missing files are not an error, so deleting
// a post whose image was already swept stays idempotent.
func (s *Storage) Remove(relPath string) error {
	if relPath == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, filepath.Clean(relPath)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove media file: %w", err)
	}
	return nil
}

// List returns the relative paths of every stored file
func (s *Storage) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read media dir: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		paths = append(paths, entry.Name())
	}
	return paths, nil
}
