package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/teachspace-api/internal/models"
	"github.com/noah-isme/teachspace-api/internal/service"
	appErrors "github.com/noah-isme/teachspace-api/pkg/errors"
	"github.com/noah-isme/teachspace-api/pkg/response"
)

const (
	wizardCoursePath     = "/courses/wizard"
	wizardInstructorPath = "/courses/wizard/instructor"
)

type wizardService interface {
	Start(ctx context.Context, sessionID string, req service.CourseRequest) (*models.PendingCourse, error)
	Pending(ctx context.Context, sessionID string) (*models.PendingCourse, error)
	Complete(ctx context.Context, sessionID string, req service.WizardInstructorRequest) (*models.Course, *models.Instructor, error)
	Cancel(ctx context.Context, sessionID string) error
}

type departmentLookup interface {
	Departments(ctx context.Context) ([]models.LookupItem, error)
}

// WizardStep is the payload of the instructor step.
type WizardStep struct {
	Course      *models.PendingCourse `json:"course"`
	Departments []models.LookupItem   `json:"departments"`
}

// WizardResult is returned once the course and its instructor exist.
type WizardResult struct {
	Course     *models.Course     `json:"course"`
	Instructor *models.Instructor `json:"instructor"`
}

// WizardHandler exposes the two step course creation flow.
type WizardHandler struct {
	wizard  wizardService
	lookups departmentLookup
	flashes flasher
}

// NewWizardHandler constructs WizardHandler.
func NewWizardHandler(wizard wizardService, lookups departmentLookup, flashes flasher) *WizardHandler {
	return &WizardHandler{wizard: wizard, lookups: lookups, flashes: flashes}
}

// Start godoc
// @Summary Course wizard step one: draft the course
// @Tags Course Wizard
// @Accept json
// @Produce json
// @Param payload body service.CourseRequest true "Course payload"
// @Success 200 {object} response.Envelope
// @Router /courses/wizard [post]
func (h *WizardHandler) Start(c *gin.Context) {
	var req service.CourseRequest
	if err := bindPayload(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	pending, err := h.wizard.Start(c.Request.Context(), sessionID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pending, nil, response.WithRedirect(wizardInstructorPath))
}

// Pending godoc
// @Summary Course wizard step two: show the drafted course
// @Tags Course Wizard
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /courses/wizard/instructor [get]
func (h *WizardHandler) Pending(c *gin.Context) {
	ctx := c.Request.Context()
	pending, err := h.wizard.Pending(ctx, sessionID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	departments, err := h.lookups.Departments(ctx)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, WizardStep{Course: pending, Departments: departments}, nil,
		response.WithFlash(popFlash(c, h.flashes)))
}

// Complete godoc
// @Summary Course wizard step two: add the first instructor and save
// @Tags Course Wizard
// @Accept json
// @Produce json
// @Param payload body service.WizardInstructorRequest true "Instructor payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /courses/wizard/instructor [post]
func (h *WizardHandler) Complete(c *gin.Context) {
	var req service.WizardInstructorRequest
	if err := bindPayload(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	course, instructor, err := h.wizard.Complete(c.Request.Context(), sessionID(c), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	setFlash(c, h.flashes, models.SuccessFlash("Course and instructor created successfully"))
	response.Created(c, WizardResult{Course: course, Instructor: instructor},
		response.WithRedirect(models.ReturnToCourse(course.ID).Resolve(coursesPath)))
}

// Cancel godoc
// @Summary Discard the drafted course
// @Tags Course Wizard
// @Success 204
// @Router /courses/wizard [delete]
func (h *WizardHandler) Cancel(c *gin.Context) {
	if err := h.wizard.Cancel(c.Request.Context(), sessionID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// fail sends the user back to step one when the draft is gone.
func (h *WizardHandler) fail(c *gin.Context, err error) {
	if errors.Is(err, appErrors.ErrSessionExpired) {
		response.Error(c, err,
			response.WithFlash(models.ErrorFlash(appErrors.FromError(err).Message)),
			response.WithRedirect(wizardCoursePath))
		return
	}
	response.Error(c, err)
}
