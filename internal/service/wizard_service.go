package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/teachspace-api/internal/models"
	appErrors "github.com/noah-isme/teachspace-api/pkg/errors"
	"github.com/noah-isme/teachspace-api/pkg/storage"
)

const (
	wizardSlot           = "course-wizard"
	msgWizardExpired     = "Session expired. Please start creating the course again."
	wizardStepCourse     = "course"
	wizardStepInstructor = "instructor"
)

type courseCreator interface {
	CreateWithInstructor(ctx context.Context, course *models.Course, instructor *models.Instructor) error
}

// WizardInstructorRequest is the first instructor entered in step two.
type WizardInstructorRequest struct {
	Name         string  `json:"name" form:"name" validate:"required,max=100"`
	Salary       float64 `json:"salary" form:"salary" validate:"gte=0"`
	Address      string  `json:"address" form:"address" validate:"max=255"`
	DepartmentID string  `json:"department_id" form:"department_id"`
}

// WizardService drives the two step course creation flow. The course drafted
// in step one lives in the session's transient store until step two commits
// it together with its first instructor.
type WizardService struct {
	store       TransientStore
	courses     courseCreator
	departments departmentFinder
	lookups     lookupInvalidator
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
	ttl         time.Duration
	now         func() time.Time
}

// NewWizardService constructs the course wizard.
func NewWizardService(store TransientStore, courses courseCreator, departments departmentFinder, lookups lookupInvalidator,
	metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, ttl time.Duration) *WizardService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 20 * time.Minute
	}
	return &WizardService{
		store:       store,
		courses:     courses,
		departments: departments,
		lookups:     lookupsOrNoop(lookups),
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
		ttl:         ttl,
		now:         time.Now,
	}
}

// Start validates the course draft and parks it for step two, replacing any
// earlier draft of the same session.
func (s *WizardService) Start(ctx context.Context, sessionID string, req CourseRequest) (*models.PendingCourse, error) {
	if err := validateCourse(s.validator, req); err != nil {
		s.metrics.RecordWizardStep(wizardStepCourse, "invalid")
		return nil, err
	}
	department, err := findDepartment(ctx, s.departments, req.DepartmentID)
	if err != nil {
		return nil, err
	}
	pending := &models.PendingCourse{
		Name:           req.Name,
		MaxDegree:      req.MaxDegree,
		MinPassDegree:  req.MinPassDegree,
		DepartmentID:   department.ID,
		DepartmentName: department.Name,
		StartedAt:      s.now().UTC(),
	}
	if err := s.store.Put(ctx, sessionKey(sessionID, wizardSlot), pending, s.ttl); err != nil {
		return nil, appErrors.Internal(err, "failed to store course draft")
	}
	s.metrics.RecordWizardStep(wizardStepCourse, "stored")
	return pending, nil
}

// Pending returns the parked draft and keeps it alive for the next step.
func (s *WizardService) Pending(ctx context.Context, sessionID string) (*models.PendingCourse, error) {
	key := sessionKey(sessionID, wizardSlot)
	var pending models.PendingCourse
	if err := s.store.Peek(ctx, key, &pending); err != nil {
		return nil, s.readError(err)
	}
	s.keep(ctx, key)
	return &pending, nil
}

// Complete creates the drafted course and its first instructor in one
// transaction. Invalid input and store failures leave the draft in place.
func (s *WizardService) Complete(ctx context.Context, sessionID string, req WizardInstructorRequest) (*models.Course, *models.Instructor, error) {
	key := sessionKey(sessionID, wizardSlot)
	var pending models.PendingCourse
	if err := s.store.Peek(ctx, key, &pending); err != nil {
		return nil, nil, s.readError(err)
	}

	if req.DepartmentID == "" {
		req.DepartmentID = pending.DepartmentID
	}
	if err := s.validator.Struct(req); err != nil {
		s.keep(ctx, key)
		s.metrics.RecordWizardStep(wizardStepInstructor, "invalid")
		return nil, nil, validationError(err, "invalid instructor payload")
	}
	if _, err := findDepartment(ctx, s.departments, req.DepartmentID); err != nil {
		s.keep(ctx, key)
		return nil, nil, err
	}

	// Claim the draft so a concurrent submit cannot commit it twice.
	if err := s.store.Take(ctx, key, &pending); err != nil {
		return nil, nil, s.readError(err)
	}

	course := &models.Course{
		Name:          pending.Name,
		MaxDegree:     pending.MaxDegree,
		MinPassDegree: pending.MinPassDegree,
		DepartmentID:  pending.DepartmentID,
	}
	instructor := &models.Instructor{
		Name:         req.Name,
		Salary:       req.Salary,
		Address:      req.Address,
		Image:        storage.DefaultImage,
		DepartmentID: req.DepartmentID,
	}
	if err := s.courses.CreateWithInstructor(ctx, course, instructor); err != nil {
		if putErr := s.store.Put(ctx, key, pending, s.ttl); putErr != nil {
			s.logger.Warn("failed to restore course draft", zap.Error(putErr))
		}
		s.metrics.RecordWizardStep(wizardStepInstructor, "failed")
		return nil, nil, persistError(err, "department no longer exists", "failed to save course and instructor")
	}
	s.lookups.Invalidate(ctx)
	s.metrics.RecordWizardStep(wizardStepInstructor, "committed")
	s.logger.Info("course created via wizard", zap.String("course_id", course.ID), zap.String("instructor_id", instructor.ID))
	return course, instructor, nil
}

// Cancel discards the session's draft.
func (s *WizardService) Cancel(ctx context.Context, sessionID string) error {
	if err := s.store.Delete(ctx, sessionKey(sessionID, wizardSlot)); err != nil {
		return appErrors.Internal(err, "failed to discard course draft")
	}
	return nil
}

func (s *WizardService) keep(ctx context.Context, key string) {
	if err := s.store.Touch(ctx, key, s.ttl); err != nil && !errors.Is(err, appErrors.ErrCacheMiss) {
		s.logger.Warn("failed to extend course draft", zap.Error(err))
	}
}

func (s *WizardService) readError(err error) error {
	if errors.Is(err, appErrors.ErrCacheMiss) {
		s.metrics.RecordWizardStep(wizardStepInstructor, "expired")
		return appErrors.Clone(appErrors.ErrSessionExpired, msgWizardExpired)
	}
	return appErrors.Internal(err, "failed to read course draft")
}
