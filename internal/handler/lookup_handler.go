package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/teachspace-api/internal/models"
	"github.com/noah-isme/teachspace-api/pkg/response"
)

type lookupService interface {
	Departments(ctx context.Context) ([]models.LookupItem, error)
	Courses(ctx context.Context) ([]models.LookupItem, error)
}

// LookupHandler serves dropdown data.
type LookupHandler struct {
	lookups lookupService
}

// NewLookupHandler constructs LookupHandler.
func NewLookupHandler(lookups lookupService) *LookupHandler {
	return &LookupHandler{lookups: lookups}
}

// Departments godoc
// @Summary Department dropdown values
// @Tags Lookups
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /lookups/departments [get]
func (h *LookupHandler) Departments(c *gin.Context) {
	items, err := h.lookups.Departments(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Courses godoc
// @Summary Course dropdown values
// @Tags Lookups
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /lookups/courses [get]
func (h *LookupHandler) Courses(c *gin.Context) {
	items, err := h.lookups.Courses(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}
