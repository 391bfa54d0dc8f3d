package storage

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// DefaultImage is the placeholder used when no acceptable image was sent.
// It is never written or deleted.
const DefaultImage = "default.png"

// ImageStore names, writes and removes entity images.
type ImageStore struct {
	files   *LocalStorage
	allowed map[string]struct{}
	maxSize int64
}

// NewImageStore builds an image store rooted at dir.
func NewImageStore(dir string, allowedExts []string, maxSize int64) (*ImageStore, error) {
	files, err := NewLocalStorage(dir)
	if err != nil {
		return nil, err
	}
	if len(allowedExts) == 0 {
		allowedExts = []string{".jpg", ".jpeg", ".png", ".gif"}
	}
	allowed := make(map[string]struct{}, len(allowedExts))
	for _, ext := range allowedExts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		allowed[ext] = struct{}{}
	}
	return &ImageStore{files: files, allowed: allowed, maxSize: maxSize}, nil
}

// Accepts reports whether the original filename has an allowed extension.
func (s *ImageStore) Accepts(filename string) bool {
	_, ok := s.allowed[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// Save stores the upload under a fresh "<uuid><ext>" name and returns it.
// A missing upload or a disallowed extension yields DefaultImage and
// nothing is written.
func (s *ImageStore) Save(filename string, r io.Reader) (string, error) {
	if r == nil || filename == "" || !s.Accepts(filename) {
		return DefaultImage, nil
	}
	name := uuid.NewString() + strings.ToLower(filepath.Ext(filename))
	if _, err := s.files.SaveStream(name, r, s.maxSize); err != nil {
		return "", fmt.Errorf("save image: %w", err)
	}
	return name, nil
}

// Remove deletes a stored image. DefaultImage and empty names are ignored.
func (s *ImageStore) Remove(name string) error {
	if name == "" || name == DefaultImage {
		return nil
	}
	return s.files.Delete(name)
}

// Open returns the stored image for streaming.
func (s *ImageStore) Open(name string) (io.ReadCloser, error) {
	file, err := s.files.Open(name)
	if err != nil {
		return nil, err
	}
	return file, nil
}
