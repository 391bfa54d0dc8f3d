package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/teachspace-api/internal/models"
	"github.com/noah-isme/teachspace-api/internal/service"
	"github.com/noah-isme/teachspace-api/pkg/response"
)

const coursesPath = "/courses"

type courseService interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.CourseDetail, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.CourseDetail, error)
	Update(ctx context.Context, id string, req service.UpdateCourseRequest) (*models.Course, error)
	Delete(ctx context.Context, id string) error
}

type instructorLister interface {
	List(ctx context.Context, filter models.InstructorFilter) ([]models.InstructorDetail, *models.Pagination, error)
}

// CourseHandler exposes course endpoints. New courses are created through
// the wizard.
type CourseHandler struct {
	courses     courseService
	instructors instructorLister
	flashes     flasher
}

// NewCourseHandler constructs CourseHandler.
func NewCourseHandler(courses courseService, instructors instructorLister, flashes flasher) *CourseHandler {
	return &CourseHandler{courses: courses, instructors: instructors, flashes: flashes}
}

// List godoc
// @Summary List courses
// @Tags Courses
// @Produce json
// @Param page query int false "Page"
// @Success 200 {object} response.Envelope
// @Router /courses [get]
func (h *CourseHandler) List(c *gin.Context) {
	courses, pagination, err := h.courses.List(c.Request.Context(), models.CourseFilter{Page: pageParam(c)})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, pagination, response.WithFlash(popFlash(c, h.flashes)))
}

// Get godoc
// @Summary Get course detail
// @Tags Courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id} [get]
func (h *CourseHandler) Get(c *gin.Context) {
	course, err := h.courses.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course, nil, response.WithFlash(popFlash(c, h.flashes)))
}

// Instructors godoc
// @Summary List the instructors of a course
// @Tags Courses
// @Produce json
// @Param id path string true "Course ID"
// @Param page query int false "Page"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/instructors [get]
func (h *CourseHandler) Instructors(c *gin.Context) {
	filter := models.InstructorFilter{CourseID: c.Param("id"), Page: pageParam(c)}
	instructors, pagination, err := h.instructors.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, instructors, pagination, response.WithFlash(popFlash(c, h.flashes)))
}

// Update godoc
// @Summary Update course
// @Description Send expected_updated_at to reject the edit when the course changed meanwhile.
// @Tags Courses
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param payload body service.UpdateCourseRequest true "Course payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /courses/{id} [put]
func (h *CourseHandler) Update(c *gin.Context) {
	var req service.UpdateCourseRequest
	if err := bindPayload(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	course, err := h.courses.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	setFlash(c, h.flashes, models.SuccessFlash("Course updated successfully"))
	response.JSON(c, http.StatusOK, course, nil, response.WithRedirect(coursesPath))
}

// Delete godoc
// @Summary Delete course without recorded results
// @Tags Courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /courses/{id} [delete]
func (h *CourseHandler) Delete(c *gin.Context) {
	if err := h.courses.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	setFlash(c, h.flashes, models.SuccessFlash("Course deleted successfully"))
	response.JSON(c, http.StatusOK, nil, nil, response.WithRedirect(coursesPath))
}
