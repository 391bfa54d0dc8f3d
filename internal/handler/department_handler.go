package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/teachspace-api/internal/models"
	"github.com/noah-isme/teachspace-api/internal/service"
	"github.com/noah-isme/teachspace-api/pkg/response"
)

const departmentsPath = "/departments"

type departmentService interface {
	List(ctx context.Context, filter models.DepartmentFilter) ([]models.Department, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.DepartmentDetail, error)
	Create(ctx context.Context, req service.DepartmentRequest) (*models.Department, error)
	Update(ctx context.Context, id string, req service.DepartmentRequest) (*models.Department, error)
	Delete(ctx context.Context, id string) error
}

// DepartmentHandler exposes department endpoints.
type DepartmentHandler struct {
	departments departmentService
	flashes     flasher
}

// NewDepartmentHandler constructs DepartmentHandler.
func NewDepartmentHandler(departments departmentService, flashes flasher) *DepartmentHandler {
	return &DepartmentHandler{departments: departments, flashes: flashes}
}

// List godoc
// @Summary List departments
// @Tags Departments
// @Produce json
// @Param page query int false "Page"
// @Success 200 {object} response.Envelope
// @Router /departments [get]
func (h *DepartmentHandler) List(c *gin.Context) {
	departments, pagination, err := h.departments.List(c.Request.Context(), models.DepartmentFilter{Page: pageParam(c)})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, departments, pagination, response.WithFlash(popFlash(c, h.flashes)))
}

// Get godoc
// @Summary Get department detail with its instructors and trainees
// @Tags Departments
// @Produce json
// @Param id path string true "Department ID"
// @Success 200 {object} response.Envelope
// @Router /departments/{id} [get]
func (h *DepartmentHandler) Get(c *gin.Context) {
	department, err := h.departments.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, department, nil, response.WithFlash(popFlash(c, h.flashes)))
}

// Create godoc
// @Summary Create department
// @Tags Departments
// @Accept json
// @Produce json
// @Param payload body service.DepartmentRequest true "Department payload"
// @Success 201 {object} response.Envelope
// @Router /departments [post]
func (h *DepartmentHandler) Create(c *gin.Context) {
	var req service.DepartmentRequest
	if err := bindPayload(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	department, err := h.departments.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	setFlash(c, h.flashes, models.SuccessFlash("Department created successfully"))
	response.Created(c, department, response.WithRedirect(departmentsPath))
}

// Update godoc
// @Summary Update department
// @Tags Departments
// @Accept json
// @Produce json
// @Param id path string true "Department ID"
// @Param payload body service.DepartmentRequest true "Department payload"
// @Success 200 {object} response.Envelope
// @Router /departments/{id} [put]
func (h *DepartmentHandler) Update(c *gin.Context) {
	var req service.DepartmentRequest
	if err := bindPayload(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	department, err := h.departments.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	setFlash(c, h.flashes, models.SuccessFlash("Department updated successfully"))
	response.JSON(c, http.StatusOK, department, nil, response.WithRedirect(departmentsPath))
}

// Delete godoc
// @Summary Delete department without courses, instructors or trainees
// @Tags Departments
// @Produce json
// @Param id path string true "Department ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /departments/{id} [delete]
func (h *DepartmentHandler) Delete(c *gin.Context) {
	if err := h.departments.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	setFlash(c, h.flashes, models.SuccessFlash("Department deleted successfully"))
	response.JSON(c, http.StatusOK, nil, nil, response.WithRedirect(departmentsPath))
}
