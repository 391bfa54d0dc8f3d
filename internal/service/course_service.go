package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/teachspace-api/internal/models"
	"github.com/noah-isme/teachspace-api/internal/repository"
	appErrors "github.com/noah-isme/teachspace-api/pkg/errors"
)

const msgMinAboveMax = "minimum passing degree cannot be greater than maximum degree"

type courseRepository interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.CourseDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.Course, error)
	FindDetail(ctx context.Context, id string) (*models.CourseDetail, error)
	Update(ctx context.Context, course *models.Course, expected *time.Time) error
	Delete(ctx context.Context, id string) error
	CountEnrollments(ctx context.Context, id string) (int, error)
	MaxEnrolledDegree(ctx context.Context, id string) (int, error)
}

type departmentFinder interface {
	FindByID(ctx context.Context, id string) (*models.Department, error)
}

type courseFinder interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

// CourseRequest carries the editable course fields.
type CourseRequest struct {
	Name          string `json:"name" form:"name" validate:"required,max=100"`
	MaxDegree     int    `json:"max_degree" form:"max_degree" validate:"gt=0"`
	MinPassDegree int    `json:"min_pass_degree" form:"min_pass_degree" validate:"gte=0"`
	DepartmentID  string `json:"department_id" form:"department_id" validate:"required"`
}

// UpdateCourseRequest adds an optional optimistic concurrency token.
type UpdateCourseRequest struct {
	CourseRequest
	ExpectedUpdatedAt *time.Time `json:"expected_updated_at,omitempty" form:"expected_updated_at"`
}

// CourseService handles course use-cases.
type CourseService struct {
	repo        courseRepository
	departments departmentFinder
	lookups     lookupInvalidator
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewCourseService constructs the course service.
func NewCourseService(repo courseRepository, departments departmentFinder, lookups lookupInvalidator, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, departments: departments, lookups: lookupsOrNoop(lookups), validator: validate, logger: logger}
}

// List returns courses and pagination metadata.
func (s *CourseService) List(ctx context.Context, filter models.CourseFilter) ([]models.CourseDetail, *models.Pagination, error) {
	courses, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list courses")
	}
	if courses == nil {
		courses = []models.CourseDetail{}
	}
	return courses, models.NewPagination(filter.Page, models.CoursePageSize, total), nil
}

// Get returns course details.
func (s *CourseService) Get(ctx context.Context, id string) (*models.CourseDetail, error) {
	course, err := s.repo.FindDetail(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Internal(err, "failed to load course")
	}
	return course, nil
}

// Update modifies a course. With ExpectedUpdatedAt set, a concurrent change
// since that instant yields a conflict.
func (s *CourseService) Update(ctx context.Context, id string, req UpdateCourseRequest) (*models.Course, error) {
	if err := validateCourse(s.validator, req.CourseRequest); err != nil {
		return nil, err
	}
	course, err := findCourse(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	if _, err := findDepartment(ctx, s.departments, req.DepartmentID); err != nil {
		return nil, err
	}
	if req.MaxDegree < course.MaxDegree {
		highest, err := s.repo.MaxEnrolledDegree(ctx, id)
		if err != nil {
			return nil, appErrors.Internal(err, "failed to check recorded degrees")
		}
		if highest > req.MaxDegree {
			return nil, appErrors.FieldError("max_degree",
				fmt.Sprintf("maximum degree cannot be lower than a recorded degree of %d", highest))
		}
	}

	course.Name = req.Name
	course.MaxDegree = req.MaxDegree
	course.MinPassDegree = req.MinPassDegree
	course.DepartmentID = req.DepartmentID
	if err := s.repo.Update(ctx, course, req.ExpectedUpdatedAt); err != nil {
		if errors.Is(err, repository.ErrStaleWrite) {
			return nil, s.staleWrite(ctx, id)
		}
		if errors.Is(err, repository.ErrAboveMax) {
			return nil, appErrors.FieldError("max_degree", "maximum degree cannot be lower than a recorded degree")
		}
		return nil, persistError(err, "department no longer exists", "failed to update course")
	}
	s.lookups.Invalidate(ctx)
	return course, nil
}

// staleWrite tells a deleted course apart from one edited concurrently.
func (s *CourseService) staleWrite(ctx context.Context, id string) error {
	if _, err := findCourse(ctx, s.repo, id); err != nil {
		return err
	}
	return appErrors.Clone(appErrors.ErrConflict, "the record you attempted to edit was modified by another user")
}

// Delete removes a course without recorded results.
func (s *CourseService) Delete(ctx context.Context, id string) error {
	if _, err := findCourse(ctx, s.repo, id); err != nil {
		return err
	}
	count, err := s.repo.CountEnrollments(ctx, id)
	if err != nil {
		return appErrors.Internal(err, "failed to check course results")
	}
	if count > 0 {
		return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("course has %d recorded result(s) and cannot be deleted", count))
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrForeignKey) {
			return appErrors.Clone(appErrors.ErrConflict, "course is still referenced and cannot be deleted")
		}
		return appErrors.Internal(err, "failed to delete course")
	}
	s.lookups.Invalidate(ctx)
	return nil
}

func validateCourse(v *validator.Validate, req CourseRequest) error {
	if err := v.Struct(req); err != nil {
		return validationError(err, "invalid course payload")
	}
	if req.MinPassDegree > req.MaxDegree {
		return appErrors.FieldError("min_pass_degree", msgMinAboveMax)
	}
	return nil
}

func findCourse(ctx context.Context, repo courseFinder, id string) (*models.Course, error) {
	course, err := repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Internal(err, "failed to load course")
	}
	return course, nil
}

// persistError reports a write that lost a referenced row to a concurrent
// delete as NotFound.
func persistError(err error, gone, message string) error {
	if errors.Is(err, repository.ErrForeignKey) {
		return appErrors.Clone(appErrors.ErrNotFound, gone)
	}
	return appErrors.Internal(err, message)
}

func findDepartment(ctx context.Context, repo departmentFinder, id string) (*models.Department, error) {
	department, err := repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "department not found")
		}
		return nil, appErrors.Internal(err, "failed to load department")
	}
	return department, nil
}
