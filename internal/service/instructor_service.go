package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/teachspace-api/internal/models"
	appErrors "github.com/noah-isme/teachspace-api/pkg/errors"
)

type instructorRepository interface {
	List(ctx context.Context, filter models.InstructorFilter) ([]models.InstructorDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.InstructorDetail, error)
	Create(ctx context.Context, instructor *models.Instructor) error
	Update(ctx context.Context, instructor *models.Instructor) error
	Delete(ctx context.Context, id string) error
}

// InstructorRequest is the create/update payload for instructors.
type InstructorRequest struct {
	Name         string  `json:"name" form:"name" validate:"required,max=100"`
	Salary       float64 `json:"salary" form:"salary" validate:"gte=0"`
	Address      string  `json:"address" form:"address" validate:"max=255"`
	DepartmentID string  `json:"department_id" form:"department_id"`
	CourseID     string  `json:"course_id" form:"course_id"`
}

// InstructorService handles instructor use-cases.
type InstructorService struct {
	repo        instructorRepository
	courses     courseFinder
	departments departmentFinder
	images      imageStore
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewInstructorService constructs the instructor service.
func NewInstructorService(repo instructorRepository, courses courseFinder, departments departmentFinder, images imageStore,
	metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *InstructorService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstructorService{repo: repo, courses: courses, departments: departments, images: images, metrics: metrics, validator: validate, logger: logger}
}

// List returns instructors, optionally those of one course, with pagination.
func (s *InstructorService) List(ctx context.Context, filter models.InstructorFilter) ([]models.InstructorDetail, *models.Pagination, error) {
	if filter.CourseID != "" {
		if _, err := findCourse(ctx, s.courses, filter.CourseID); err != nil {
			return nil, nil, err
		}
	}
	instructors, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list instructors")
	}
	if instructors == nil {
		instructors = []models.InstructorDetail{}
	}
	return instructors, models.NewPagination(filter.Page, models.InstructorPageSize, total), nil
}

// Get returns instructor details.
func (s *InstructorService) Get(ctx context.Context, id string) (*models.InstructorDetail, error) {
	instructor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "instructor not found")
		}
		return nil, appErrors.Internal(err, "failed to load instructor")
	}
	return instructor, nil
}

// Create adds an instructor. When a course is given and no department, the
// course's department is used.
func (s *InstructorService) Create(ctx context.Context, req InstructorRequest, upload *ImageUpload) (*models.Instructor, error) {
	if err := s.resolveRefs(ctx, &req); err != nil {
		return nil, err
	}
	image, err := storeUpload(s.images, s.metrics, upload)
	if err != nil {
		return nil, err
	}
	instructor := &models.Instructor{
		Name:         req.Name,
		Salary:       req.Salary,
		Address:      req.Address,
		Image:        image,
		DepartmentID: req.DepartmentID,
		CourseID:     optionalID(req.CourseID),
	}
	if err := s.repo.Create(ctx, instructor); err != nil {
		discardImage(s.images, s.logger, image)
		return nil, persistError(err, "department or course no longer exists", "failed to create instructor")
	}
	return instructor, nil
}

// Update modifies an instructor. A new upload replaces the previous image.
func (s *InstructorService) Update(ctx context.Context, id string, req InstructorRequest, upload *ImageUpload) (*models.Instructor, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.resolveRefs(ctx, &req); err != nil {
		return nil, err
	}
	instructor := current.Instructor
	previous := instructor.Image
	if upload != nil {
		if instructor.Image, err = storeUpload(s.images, s.metrics, upload); err != nil {
			return nil, err
		}
	}
	instructor.Name = req.Name
	instructor.Salary = req.Salary
	instructor.Address = req.Address
	instructor.DepartmentID = req.DepartmentID
	instructor.CourseID = optionalID(req.CourseID)
	if err := s.repo.Update(ctx, &instructor); err != nil {
		if instructor.Image != previous {
			discardImage(s.images, s.logger, instructor.Image)
		}
		return nil, persistError(err, "department or course no longer exists", "failed to update instructor")
	}
	if instructor.Image != previous {
		discardImage(s.images, s.logger, previous)
	}
	return &instructor, nil
}

// Delete removes an instructor and their image.
func (s *InstructorService) Delete(ctx context.Context, id string) error {
	current, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Internal(err, "failed to delete instructor")
	}
	discardImage(s.images, s.logger, current.Image)
	return nil
}

func (s *InstructorService) resolveRefs(ctx context.Context, req *InstructorRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return validationError(err, "invalid instructor payload")
	}
	if req.CourseID != "" {
		course, err := findCourse(ctx, s.courses, req.CourseID)
		if err != nil {
			return err
		}
		if req.DepartmentID == "" {
			req.DepartmentID = course.DepartmentID
		}
	}
	if req.DepartmentID == "" {
		return appErrors.FieldError("department_id", "department_id is required")
	}
	_, err := findDepartment(ctx, s.departments, req.DepartmentID)
	return err
}

func optionalID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}
