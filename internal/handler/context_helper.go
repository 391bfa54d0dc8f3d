package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/teachspace-api/internal/middleware"
	"github.com/noah-isme/teachspace-api/internal/models"
	"github.com/noah-isme/teachspace-api/internal/service"
	appErrors "github.com/noah-isme/teachspace-api/pkg/errors"
)

const imageField = "image"

// flasher stores and retrieves the one-shot message of a session.
type flasher interface {
	Set(ctx context.Context, sessionID string, flash *models.Flash)
	Pop(ctx context.Context, sessionID string) *models.Flash
}

func sessionID(c *gin.Context) string {
	return middleware.SessionID(c)
}

func popFlash(c *gin.Context, flashes flasher) *models.Flash {
	if flashes == nil {
		return nil
	}
	return flashes.Pop(c.Request.Context(), sessionID(c))
}

func setFlash(c *gin.Context, flashes flasher, flash *models.Flash) {
	if flashes == nil {
		return
	}
	flashes.Set(c.Request.Context(), sessionID(c), flash)
}

func pageParam(c *gin.Context) int {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		return 1
	}
	return models.NormalizePage(page)
}

func returnTarget(c *gin.Context) models.ReturnTarget {
	return models.ParseReturnTarget(c.Query("returnTo"), c.Query("deptId"), c.Query("courseId"))
}

func invalidPayload(err error) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload")
}

// bindPayload accepts JSON, urlencoded and multipart bodies.
func bindPayload(c *gin.Context, dest interface{}) error {
	if err := c.ShouldBind(dest); err != nil {
		return invalidPayload(err)
	}
	return nil
}

// imageUpload returns the optional "image" part of a multipart form. The
// returned closer must be called once the service is done with the reader.
func imageUpload(c *gin.Context) (*service.ImageUpload, func(), error) {
	noop := func() {}
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return nil, noop, nil
	}
	header, err := c.FormFile(imageField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, noop, nil
		}
		return nil, noop, invalidPayload(err)
	}
	if header.Size == 0 {
		return nil, noop, nil
	}
	file, err := header.Open()
	if err != nil {
		return nil, noop, appErrors.Internal(err, "failed to read uploaded image")
	}
	return &service.ImageUpload{Filename: header.Filename, Content: file}, func() { _ = file.Close() }, nil
}
