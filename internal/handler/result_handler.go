package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/teachspace-api/internal/models"
	"github.com/noah-isme/teachspace-api/internal/service"
	"github.com/noah-isme/teachspace-api/pkg/response"
)

type enrollmentService interface {
	Enroll(ctx context.Context, courseID string, req service.EnrollRequest) (*models.Enrollment, error)
	UpdateDegree(ctx context.Context, courseID, traineeID string, req service.DegreeRequest) (*models.Enrollment, error)
	GetResult(ctx context.Context, courseID, traineeID string) (*service.ResultView, error)
	ListAvailableTrainees(ctx context.Context, courseID string) ([]models.AvailableTrainee, error)
	Roster(ctx context.Context, filter models.RosterFilter) (*models.CourseRoster, *models.Pagination, error)
}

type rosterExporter interface {
	Roster(ctx context.Context, courseID, format, sortBy string) (*service.ExportFile, error)
}

// ResultHandler exposes enrollment and result endpoints nested under a course.
type ResultHandler struct {
	enrollments enrollmentService
	exports     rosterExporter
	flashes     flasher
}

// NewResultHandler constructs ResultHandler.
func NewResultHandler(enrollments enrollmentService, exports rosterExporter, flashes flasher) *ResultHandler {
	return &ResultHandler{enrollments: enrollments, exports: exports, flashes: flashes}
}

func resultsPath(courseID string) string {
	return "/courses/" + courseID + "/results"
}

// Roster godoc
// @Summary List the results of a course
// @Tags Results
// @Produce json
// @Param id path string true "Course ID"
// @Param page query int false "Page"
// @Param sort query string false "name (default) or department"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/results [get]
func (h *ResultHandler) Roster(c *gin.Context) {
	filter := models.RosterFilter{CourseID: c.Param("id"), Page: pageParam(c), SortBy: c.Query("sort")}
	roster, pagination, err := h.enrollments.Roster(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, roster, pagination, response.WithFlash(popFlash(c, h.flashes)))
}

// Available godoc
// @Summary List trainees not yet enrolled in the course
// @Tags Results
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/results/available [get]
func (h *ResultHandler) Available(c *gin.Context) {
	trainees, err := h.enrollments.ListAvailableTrainees(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, trainees, nil)
}

// Enroll godoc
// @Summary Register a trainee in the course with a degree
// @Tags Results
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param payload body service.EnrollRequest true "Enrollment payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /courses/{id}/results [post]
func (h *ResultHandler) Enroll(c *gin.Context) {
	var req service.EnrollRequest
	if err := bindPayload(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	courseID := c.Param("id")
	enrollment, err := h.enrollments.Enroll(c.Request.Context(), courseID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	setFlash(c, h.flashes, models.SuccessFlash("Trainee added to the course successfully"))
	response.Created(c, enrollment, response.WithRedirect(resultsPath(courseID)))
}

// Get godoc
// @Summary Get one result for editing
// @Tags Results
// @Produce json
// @Param id path string true "Course ID"
// @Param traineeId path string true "Trainee ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/results/{traineeId} [get]
func (h *ResultHandler) Get(c *gin.Context) {
	result, err := h.enrollments.GetResult(c.Request.Context(), c.Param("id"), c.Param("traineeId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// UpdateDegree godoc
// @Summary Change the degree of a result
// @Tags Results
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param traineeId path string true "Trainee ID"
// @Param payload body service.DegreeRequest true "Degree payload"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/results/{traineeId} [put]
func (h *ResultHandler) UpdateDegree(c *gin.Context) {
	var req service.DegreeRequest
	if err := bindPayload(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	courseID := c.Param("id")
	enrollment, err := h.enrollments.UpdateDegree(c.Request.Context(), courseID, c.Param("traineeId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	setFlash(c, h.flashes, models.SuccessFlash("Degree updated successfully"))
	response.JSON(c, http.StatusOK, enrollment, nil, response.WithRedirect(resultsPath(courseID)))
}

// Export godoc
// @Summary Download the results of a course
// @Tags Results
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Course ID"
// @Param format query string false "csv (default) or pdf"
// @Param sort query string false "name (default) or department"
// @Success 200 {file} file
// @Router /courses/{id}/results/export [get]
func (h *ResultHandler) Export(c *gin.Context) {
	file, err := h.exports.Roster(c.Request.Context(), c.Param("id"), c.Query("format"), c.Query("sort"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
