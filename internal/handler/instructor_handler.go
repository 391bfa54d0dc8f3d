package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/teachspace-api/internal/models"
	"github.com/noah-isme/teachspace-api/internal/service"
	"github.com/noah-isme/teachspace-api/pkg/response"
)

const instructorsPath = "/instructors"

type instructorService interface {
	List(ctx context.Context, filter models.InstructorFilter) ([]models.InstructorDetail, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.InstructorDetail, error)
	Create(ctx context.Context, req service.InstructorRequest, upload *service.ImageUpload) (*models.Instructor, error)
	Update(ctx context.Context, id string, req service.InstructorRequest, upload *service.ImageUpload) (*models.Instructor, error)
	Delete(ctx context.Context, id string) error
}

// InstructorHandler exposes instructor endpoints.
type InstructorHandler struct {
	instructors instructorService
	flashes     flasher
}

// NewInstructorHandler constructs InstructorHandler.
func NewInstructorHandler(instructors instructorService, flashes flasher) *InstructorHandler {
	return &InstructorHandler{instructors: instructors, flashes: flashes}
}

// List godoc
// @Summary List instructors
// @Tags Instructors
// @Produce json
// @Param courseId query string false "Only instructors of this course"
// @Param page query int false "Page"
// @Success 200 {object} response.Envelope
// @Router /instructors [get]
func (h *InstructorHandler) List(c *gin.Context) {
	filter := models.InstructorFilter{CourseID: c.Query("courseId"), Page: pageParam(c)}
	instructors, pagination, err := h.instructors.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, instructors, pagination, response.WithFlash(popFlash(c, h.flashes)))
}

// Get godoc
// @Summary Get instructor detail
// @Tags Instructors
// @Produce json
// @Param id path string true "Instructor ID"
// @Success 200 {object} response.Envelope
// @Router /instructors/{id} [get]
func (h *InstructorHandler) Get(c *gin.Context) {
	instructor, err := h.instructors.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, instructor, nil)
}

// Create godoc
// @Summary Create instructor
// @Tags Instructors
// @Accept multipart/form-data
// @Produce json
// @Param name formData string true "Name"
// @Param salary formData number false "Salary"
// @Param address formData string false "Address"
// @Param department_id formData string false "Department, defaults to the course's"
// @Param course_id formData string false "Course"
// @Param image formData file false "Photo"
// @Param returnTo query string false "list, department or course"
// @Param deptId query string false "Department to return to"
// @Param courseId query string false "Course to return to"
// @Success 201 {object} response.Envelope
// @Router /instructors [post]
func (h *InstructorHandler) Create(c *gin.Context) {
	var req service.InstructorRequest
	if err := bindPayload(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	upload, done, err := imageUpload(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer done()

	instructor, err := h.instructors.Create(c.Request.Context(), req, upload)
	if err != nil {
		response.Error(c, err)
		return
	}
	setFlash(c, h.flashes, models.SuccessFlash("Instructor added successfully"))
	response.Created(c, instructor, response.WithRedirect(returnTarget(c).Resolve(instructorsPath)))
}

// Update godoc
// @Summary Update instructor
// @Tags Instructors
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Instructor ID"
// @Param name formData string true "Name"
// @Param salary formData number false "Salary"
// @Param address formData string false "Address"
// @Param department_id formData string false "Department"
// @Param course_id formData string false "Course"
// @Param image formData file false "Replacement photo"
// @Param returnTo query string false "list, department or course"
// @Success 200 {object} response.Envelope
// @Router /instructors/{id} [put]
func (h *InstructorHandler) Update(c *gin.Context) {
	var req service.InstructorRequest
	if err := bindPayload(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	upload, done, err := imageUpload(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer done()

	instructor, err := h.instructors.Update(c.Request.Context(), c.Param("id"), req, upload)
	if err != nil {
		response.Error(c, err)
		return
	}
	setFlash(c, h.flashes, models.SuccessFlash("Instructor updated successfully"))
	response.JSON(c, http.StatusOK, instructor, nil, response.WithRedirect(returnTarget(c).Resolve(instructorsPath)))
}

// Delete godoc
// @Summary Delete instructor
// @Tags Instructors
// @Produce json
// @Param id path string true "Instructor ID"
// @Param returnTo query string false "list, department or course"
// @Success 200 {object} response.Envelope
// @Router /instructors/{id} [delete]
func (h *InstructorHandler) Delete(c *gin.Context) {
	if err := h.instructors.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	setFlash(c, h.flashes, models.SuccessFlash("Instructor deleted successfully"))
	response.JSON(c, http.StatusOK, nil, nil, response.WithRedirect(returnTarget(c).Resolve(instructorsPath)))
}
