package handler

import (
	"errors"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/teachspace-api/pkg/errors"
	"github.com/noah-isme/teachspace-api/pkg/response"
)

type imageOpener interface {
	Open(name string) (io.ReadCloser, error)
}

// ImageHandler streams stored entity images.
type ImageHandler struct {
	images imageOpener
}

// NewImageHandler constructs ImageHandler.
func NewImageHandler(images imageOpener) *ImageHandler {
	return &ImageHandler{images: images}
}

// Serve godoc
// @Summary Download an entity image
// @Tags Images
// @Produce image/png
// @Produce image/jpeg
// @Produce image/gif
// @Param name path string true "Stored image name"
// @Success 200 {file} file
// @Router /images/{name} [get]
func (h *ImageHandler) Serve(c *gin.Context) {
	name := filepath.Base(c.Param("name"))
	file, err := h.images.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "image not found"))
			return
		}
		response.Error(c, appErrors.Internal(err, "failed to read image"))
		return
	}
	defer file.Close()

	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Cache-Control", "public, max-age=86400")
	c.DataFromReader(http.StatusOK, -1, contentType, file, nil)
}
