package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/teachspace-api/internal/models"
	appErrors "github.com/noah-isme/teachspace-api/pkg/errors"
)

// Envelope represents the common response contract.
type Envelope struct {
	Data       interface{}            `json:"data,omitempty"`
	Error      *appErrors.Error       `json:"error,omitempty"`
	Pagination *models.Pagination     `json:"pagination,omitempty"`
	Flash      *models.Flash          `json:"flash,omitempty"`
	Redirect   string                 `json:"redirect,omitempty"`
	Meta       map[string]interface{} `json:"meta,omitempty"`
}

// Option decorates an envelope before it is written.
type Option func(*Envelope)

// WithFlash attaches a one-shot message.
func WithFlash(flash *models.Flash) Option {
	return func(e *Envelope) {
		if flash != nil {
			e.Flash = flash
		}
	}
}

// WithRedirect tells the client where to navigate next.
func WithRedirect(location string) Option {
	return func(e *Envelope) {
		e.Redirect = location
	}
}

// WithMeta attaches free-form metadata.
func WithMeta(meta map[string]interface{}) Option {
	return func(e *Envelope) {
		if meta != nil {
			e.Meta = meta
		}
	}
}

func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
}

// JSON sends a success response with optional pagination metadata.
func JSON(c *gin.Context, status int, data interface{}, pagination *models.Pagination, opts ...Option) {
	noStore(c)
	envelope := Envelope{Data: data, Pagination: pagination}
	for _, opt := range opts {
		opt(&envelope)
	}
	c.JSON(status, envelope)
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, data interface{}, opts ...Option) {
	JSON(c, http.StatusCreated, data, nil, opts...)
}

// Error sends an error response converting the error to the common structure.
func Error(c *gin.Context, err error, opts ...Option) {
	appErr := appErrors.FromError(err)
	noStore(c)
	envelope := Envelope{Error: appErr}
	for _, opt := range opts {
		opt(&envelope)
	}
	c.JSON(appErr.Status, envelope)
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
