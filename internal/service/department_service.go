package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/teachspace-api/internal/models"
	"github.com/noah-isme/teachspace-api/internal/repository"
	appErrors "github.com/noah-isme/teachspace-api/pkg/errors"
)

type departmentRepository interface {
	List(ctx context.Context, filter models.DepartmentFilter) ([]models.Department, int, error)
	FindByID(ctx context.Context, id string) (*models.Department, error)
	ListInstructors(ctx context.Context, id string) ([]models.DepartmentInstructor, error)
	ListTrainees(ctx context.Context, id string) ([]models.DepartmentTrainee, error)
	CountDependents(ctx context.Context, id string) (models.DepartmentDependents, error)
	Create(ctx context.Context, department *models.Department) error
	Update(ctx context.Context, department *models.Department) error
	Delete(ctx context.Context, id string) error
}

// DepartmentRequest is the create/update payload for departments.
type DepartmentRequest struct {
	Name    string `json:"name" form:"name" validate:"required,max=100"`
	Manager string `json:"manager" form:"manager" validate:"max=100"`
}

// DepartmentService handles department use-cases.
type DepartmentService struct {
	repo      departmentRepository
	lookups   lookupInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewDepartmentService constructs the department service.
func NewDepartmentService(repo departmentRepository, lookups lookupInvalidator, validate *validator.Validate, logger *zap.Logger) *DepartmentService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DepartmentService{repo: repo, lookups: lookupsOrNoop(lookups), validator: validate, logger: logger}
}

// List returns departments and pagination metadata.
func (s *DepartmentService) List(ctx context.Context, filter models.DepartmentFilter) ([]models.Department, *models.Pagination, error) {
	departments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list departments")
	}
	if departments == nil {
		departments = []models.Department{}
	}
	return departments, models.NewPagination(filter.Page, models.DepartmentPageSize, total), nil
}

// Get returns a department with its instructors and trainees.
func (s *DepartmentService) Get(ctx context.Context, id string) (*models.DepartmentDetail, error) {
	department, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	instructors, err := s.repo.ListInstructors(ctx, id)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load department instructors")
	}
	trainees, err := s.repo.ListTrainees(ctx, id)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load department trainees")
	}
	if instructors == nil {
		instructors = []models.DepartmentInstructor{}
	}
	if trainees == nil {
		trainees = []models.DepartmentTrainee{}
	}
	return &models.DepartmentDetail{Department: *department, Instructors: instructors, Trainees: trainees}, nil
}

// Create registers a new department.
func (s *DepartmentService) Create(ctx context.Context, req DepartmentRequest) (*models.Department, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid department payload")
	}
	department := &models.Department{Name: req.Name, Manager: req.Manager}
	if err := s.repo.Create(ctx, department); err != nil {
		return nil, appErrors.Internal(err, "failed to create department")
	}
	s.lookups.Invalidate(ctx)
	return department, nil
}

// Update modifies an existing department.
func (s *DepartmentService) Update(ctx context.Context, id string, req DepartmentRequest) (*models.Department, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid department payload")
	}
	department, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	department.Name = req.Name
	department.Manager = req.Manager
	if err := s.repo.Update(ctx, department); err != nil {
		return nil, appErrors.Internal(err, "failed to update department")
	}
	s.lookups.Invalidate(ctx)
	return department, nil
}

// Delete removes a department that nothing references any more.
func (s *DepartmentService) Delete(ctx context.Context, id string) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	deps, err := s.repo.CountDependents(ctx, id)
	if err != nil {
		return appErrors.Internal(err, "failed to check department usage")
	}
	if deps.Any() {
		return dependentsConflict(deps)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrForeignKey) {
			// a dependent row was added after the count
			return appErrors.Clone(appErrors.ErrConflict, "department is still referenced and cannot be deleted")
		}
		return appErrors.Internal(err, "failed to delete department")
	}
	s.lookups.Invalidate(ctx)
	s.logger.Info("department deleted", zap.String("department_id", id))
	return nil
}

func (s *DepartmentService) find(ctx context.Context, id string) (*models.Department, error) {
	department, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "department not found")
		}
		return nil, appErrors.Internal(err, "failed to load department")
	}
	return department, nil
}

func dependentsConflict(deps models.DepartmentDependents) *appErrors.Error {
	e := appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf(
		"department still has %d course(s), %d instructor(s) and %d trainee(s)",
		deps.Courses, deps.Instructors, deps.Trainees))
	e.Fields = map[string]string{
		"courses":     fmt.Sprint(deps.Courses),
		"instructors": fmt.Sprint(deps.Instructors),
		"trainees":    fmt.Sprint(deps.Trainees),
	}
	return e
}
