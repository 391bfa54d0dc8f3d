package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/teachspace-api/internal/models"
	appErrors "github.com/noah-isme/teachspace-api/pkg/errors"
)

type traineeRepository interface {
	List(ctx context.Context, filter models.TraineeFilter) ([]models.TraineeDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.TraineeDetail, error)
	ListResults(ctx context.Context, id string) ([]models.TraineeCourseResult, error)
	Create(ctx context.Context, trainee *models.Trainee) error
	Update(ctx context.Context, trainee *models.Trainee) error
	Delete(ctx context.Context, id string) error
}

// TraineeRequest is the create/update payload for trainees.
type TraineeRequest struct {
	Name         string `json:"name" form:"name" validate:"required,max=100"`
	Address      string `json:"address" form:"address" validate:"max=255"`
	DepartmentID string `json:"department_id" form:"department_id" validate:"required"`
}

// TraineeService handles trainee use-cases.
type TraineeService struct {
	repo        traineeRepository
	departments departmentFinder
	images      imageStore
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewTraineeService constructs the trainee service.
func NewTraineeService(repo traineeRepository, departments departmentFinder, images imageStore, metrics *MetricsService,
	validate *validator.Validate, logger *zap.Logger) *TraineeService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TraineeService{repo: repo, departments: departments, images: images, metrics: metrics, validator: validate, logger: logger}
}

// List returns trainees and pagination metadata.
func (s *TraineeService) List(ctx context.Context, filter models.TraineeFilter) ([]models.TraineeDetail, *models.Pagination, error) {
	trainees, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list trainees")
	}
	if trainees == nil {
		trainees = []models.TraineeDetail{}
	}
	return trainees, models.NewPagination(filter.Page, models.TraineePageSize, total), nil
}

// Get returns the trainee with their course history.
func (s *TraineeService) Get(ctx context.Context, id string) (*models.TraineeProfile, error) {
	trainee, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	results, err := s.repo.ListResults(ctx, id)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load trainee results")
	}
	for i := range results {
		results[i].Status = statusFor(results[i].Degree, results[i].MinPassDegree)
	}
	if results == nil {
		results = []models.TraineeCourseResult{}
	}
	return &models.TraineeProfile{TraineeDetail: *trainee, Courses: results}, nil
}

// Create registers a trainee. The image is written first and removed again
// if the insert fails.
func (s *TraineeService) Create(ctx context.Context, req TraineeRequest, upload *ImageUpload) (*models.Trainee, error) {
	if err := s.validate(ctx, req); err != nil {
		return nil, err
	}
	image, err := storeUpload(s.images, s.metrics, upload)
	if err != nil {
		return nil, err
	}
	trainee := &models.Trainee{
		Name:         req.Name,
		Address:      req.Address,
		Image:        image,
		DepartmentID: req.DepartmentID,
	}
	if err := s.repo.Create(ctx, trainee); err != nil {
		discardImage(s.images, s.logger, image)
		return nil, persistError(err, "department no longer exists", "failed to create trainee")
	}
	return trainee, nil
}

// Update modifies a trainee. A new upload replaces the previous image.
func (s *TraineeService) Update(ctx context.Context, id string, req TraineeRequest, upload *ImageUpload) (*models.Trainee, error) {
	current, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.validate(ctx, req); err != nil {
		return nil, err
	}
	trainee := current.Trainee
	previous := trainee.Image
	if upload != nil {
		if trainee.Image, err = storeUpload(s.images, s.metrics, upload); err != nil {
			return nil, err
		}
	}
	trainee.Name = req.Name
	trainee.Address = req.Address
	trainee.DepartmentID = req.DepartmentID
	if err := s.repo.Update(ctx, &trainee); err != nil {
		if trainee.Image != previous {
			discardImage(s.images, s.logger, trainee.Image)
		}
		return nil, persistError(err, "department no longer exists", "failed to update trainee")
	}
	if trainee.Image != previous {
		discardImage(s.images, s.logger, previous)
	}
	return &trainee, nil
}

// Delete removes a trainee, their results and their image.
func (s *TraineeService) Delete(ctx context.Context, id string) error {
	current, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Internal(err, "failed to delete trainee")
	}
	discardImage(s.images, s.logger, current.Image)
	return nil
}

func (s *TraineeService) validate(ctx context.Context, req TraineeRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return validationError(err, "invalid trainee payload")
	}
	_, err := findDepartment(ctx, s.departments, req.DepartmentID)
	return err
}

func (s *TraineeService) find(ctx context.Context, id string) (*models.TraineeDetail, error) {
	trainee, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "trainee not found")
		}
		return nil, appErrors.Internal(err, "failed to load trainee")
	}
	return trainee, nil
}
