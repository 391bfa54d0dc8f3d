package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/teachspace-api/internal/models"
	"github.com/noah-isme/teachspace-api/internal/service"
	"github.com/noah-isme/teachspace-api/pkg/response"
)

const traineesPath = "/trainees"

type traineeService interface {
	List(ctx context.Context, filter models.TraineeFilter) ([]models.TraineeDetail, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.TraineeProfile, error)
	Create(ctx context.Context, req service.TraineeRequest, upload *service.ImageUpload) (*models.Trainee, error)
	Update(ctx context.Context, id string, req service.TraineeRequest, upload *service.ImageUpload) (*models.Trainee, error)
	Delete(ctx context.Context, id string) error
}

// TraineeHandler exposes trainee endpoints.
type TraineeHandler struct {
	trainees traineeService
	flashes  flasher
}

// NewTraineeHandler constructs TraineeHandler.
func NewTraineeHandler(trainees traineeService, flashes flasher) *TraineeHandler {
	return &TraineeHandler{trainees: trainees, flashes: flashes}
}

// List godoc
// @Summary List trainees ordered by department and name
// @Tags Trainees
// @Produce json
// @Param page query int false "Page"
// @Success 200 {object} response.Envelope
// @Router /trainees [get]
func (h *TraineeHandler) List(c *gin.Context) {
	trainees, pagination, err := h.trainees.List(c.Request.Context(), models.TraineeFilter{Page: pageParam(c)})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, trainees, pagination, response.WithFlash(popFlash(c, h.flashes)))
}

// Get godoc
// @Summary Get trainee detail with course results
// @Tags Trainees
// @Produce json
// @Param id path string true "Trainee ID"
// @Success 200 {object} response.Envelope
// @Router /trainees/{id} [get]
func (h *TraineeHandler) Get(c *gin.Context) {
	trainee, err := h.trainees.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, trainee, nil)
}

// Create godoc
// @Summary Create trainee
// @Tags Trainees
// @Accept multipart/form-data
// @Produce json
// @Param name formData string true "Name"
// @Param address formData string false "Address"
// @Param department_id formData string true "Department"
// @Param image formData file false "Photo"
// @Param returnTo query string false "list, department or course"
// @Param deptId query string false "Department to return to"
// @Success 201 {object} response.Envelope
// @Router /trainees [post]
func (h *TraineeHandler) Create(c *gin.Context) {
	var req service.TraineeRequest
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

	trainee, err := h.trainees.Create(c.Request.Context(), req, upload)
	if err != nil {
		response.Error(c, err)
		return
	}
	setFlash(c, h.flashes, models.SuccessFlash("Trainee added successfully"))
	response.Created(c, trainee, response.WithRedirect(returnTarget(c).Resolve(traineesPath)))
}

// Update godoc
// @Summary Update trainee
// @Tags Trainees
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Trainee ID"
// @Param name formData string true "Name"
// @Param address formData string false "Address"
// @Param department_id formData string true "Department"
// @Param image formData file false "Replacement photo"
// @Param returnTo query string false "list, department or course"
// @Success 200 {object} response.Envelope
// @Router /trainees/{id} [put]
func (h *TraineeHandler) Update(c *gin.Context) {
	var req service.TraineeRequest
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

	trainee, err := h.trainees.Update(c.Request.Context(), c.Param("id"), req, upload)
	if err != nil {
		response.Error(c, err)
		return
	}
	setFlash(c, h.flashes, models.SuccessFlash("Trainee updated successfully"))
	response.JSON(c, http.StatusOK, trainee, nil, response.WithRedirect(returnTarget(c).Resolve(traineesPath)))
}

// Delete godoc
// @Summary Delete trainee and their results
// @Tags Trainees
// @Produce json
// @Param id path string true "Trainee ID"
// @Param returnTo query string false "list, department or course"
// @Success 200 {object} response.Envelope
// @Router /trainees/{id} [delete]
func (h *TraineeHandler) Delete(c *gin.Context) {
	if err := h.trainees.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	setFlash(c, h.flashes, models.SuccessFlash("Trainee deleted successfully"))
	response.JSON(c, http.StatusOK, nil, nil, response.WithRedirect(returnTarget(c).Resolve(traineesPath)))
}
