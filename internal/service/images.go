package service

import (
	"errors"
	"io"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/teachspace-api/pkg/errors"
	"github.com/noah-isme/teachspace-api/pkg/storage"
)

// ImageUpload is an optional file sent alongside a form.
type ImageUpload struct {
	Filename string
	Content  io.Reader
}

type imageStore interface {
	Save(filename string, r io.Reader) (string, error)
	Remove(name string) error
}

// storeUpload writes the upload and returns the stored name. No upload, or
// one with an unsupported extension, yields the default image.
func storeUpload(store imageStore, metrics *MetricsService, upload *ImageUpload) (string, error) {
	if upload == nil {
		return storage.DefaultImage, nil
	}
	name, err := store.Save(upload.Filename, upload.Content)
	if err != nil {
		if errors.Is(err, storage.ErrTooLarge) {
			return "", appErrors.FieldError("image", "image exceeds the maximum upload size")
		}
		return "", appErrors.Internal(err, "failed to store image")
	}
	if name != storage.DefaultImage {
		metrics.RecordImageStored()
	}
	return name, nil
}

// discardImage removes an image that is no longer referenced.
func discardImage(store imageStore, logger *zap.Logger, name string) {
	if err := store.Remove(name); err != nil {
		logger.Warn("failed to remove image", zap.String("image", name), zap.Error(err))
	}
}
