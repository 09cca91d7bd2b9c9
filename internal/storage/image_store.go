package storage

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"glalex-shop/internal/domain"
)

// MaxImageSize caps product image uploads at 2 MiB.
const MaxImageSize = 2 << 20

// ImageStore saves product images to disk under a base directory. Stored
// names are random so a hostile original filename never reaches the
// filesystem.
type ImageStore struct {
	basePath string
}

// NewImageStore creates the base directory if missing.
func NewImageStore(basePath string) (*ImageStore, error) {
	if strings.TrimSpace(basePath) == "" {
		return nil, fmt.Errorf("image store base path is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create image dir: %w", err)
	}
	return &ImageStore{basePath: basePath}, nil
}

// Save validates and writes an uploaded image, returning the relative path
// to record on the product. Uploads above MaxImageSize or without an
// image/* content type are rejected with a ValidationError.
func (s *ImageStore) Save(r io.Reader, originalName string) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxImageSize+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if len(data) > MaxImageSize {
		return "", domain.NewValidationError("image", "image larger than 2MB")
	}
	if len(data) == 0 {
		return "", domain.NewValidationError("image", "empty upload")
	}
	if !strings.HasPrefix(http.DetectContentType(data), "image/") {
		return "", domain.NewValidationError("image", "file is not an image")
	}

	name := uuid.NewString() + ext(originalName)
	target := filepath.Join(s.basePath, name)
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return name, nil
}

// Open returns the stored image for serving.
func (s *ImageStore) Open(path string) (io.ReadCloser, error) {
	clean := filepath.Base(path)
	f, err := os.Open(filepath.Join(s.basePath, clean))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("open image: %w", err)
	}
	return f, nil
}

// Delete removes a stored image; a missing file is not an error.
func (s *ImageStore) Delete(path string) error {
	if path == "" {
		return nil
	}
	clean := filepath.Base(path)
	if err := os.Remove(filepath.Join(s.basePath, clean)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete image: %w", err)
	}
	return nil
}

func ext(name string) string {
	e := strings.ToLower(filepath.Ext(filepath.Base(name)))
	switch e {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		return e
	}
	return ".img"
}
