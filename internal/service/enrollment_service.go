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

const msgAlreadyRegistered = "trainee is already registered in this course"

type enrollmentRepository interface {
	Exists(ctx context.Context, courseID, traineeID string) (bool, error)
	FindByPair(ctx context.Context, courseID, traineeID string) (*models.Enrollment, error)
	Create(ctx context.Context, enrollment *models.Enrollment) error
	UpdateDegree(ctx context.Context, enrollment *models.Enrollment) error
	ListByCourse(ctx context.Context, filter models.RosterFilter) ([]models.EnrollmentDetail, int, error)
}

type enrollmentTraineeReader interface {
	FindByID(ctx context.Context, id string) (*models.TraineeDetail, error)
	ListNotEnrolled(ctx context.Context, courseID string) ([]models.AvailableTrainee, error)
}

type enrollmentCourseReader interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
	FindDetail(ctx context.Context, id string) (*models.CourseDetail, error)
}

// EnrollRequest registers a trainee in a course with an initial degree.
type EnrollRequest struct {
	TraineeID string `json:"trainee_id" form:"trainee_id" validate:"required"`
	Degree    *int   `json:"degree" form:"degree" validate:"required"`
}

// DegreeRequest changes the degree of an existing result.
type DegreeRequest struct {
	Degree *int `json:"degree" form:"degree" validate:"required"`
}

// ResultView is a single result as shown on the edit form.
type ResultView struct {
	models.Enrollment
	TraineeName   string              `json:"trainee_name"`
	CourseName    string              `json:"course_name"`
	MaxDegree     int                 `json:"max_degree"`
	MinPassDegree int                 `json:"min_pass_degree"`
	Status        models.ResultStatus `json:"status"`
}

// EnrollmentService owns the trainee/course result lifecycle.
type EnrollmentService struct {
	repo      enrollmentRepository
	courses   enrollmentCourseReader
	trainees  enrollmentTraineeReader
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnrollmentService constructs the enrollment service.
func NewEnrollmentService(repo enrollmentRepository, courses enrollmentCourseReader, trainees enrollmentTraineeReader,
	metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{repo: repo, courses: courses, trainees: trainees, metrics: metrics, validator: validate, logger: logger}
}

// ComputeStatus derives the outcome of an enrollment against its course.
func ComputeStatus(enrollment models.Enrollment, course models.Course) models.ResultStatus {
	return statusFor(enrollment.Degree, course.MinPassDegree)
}

func statusFor(degree, minPass int) models.ResultStatus {
	if degree >= minPass {
		return models.ResultStatusPass
	}
	return models.ResultStatusFail
}

// checkDegree enforces 0 <= degree <= course maximum.
func checkDegree(degree int, course *models.Course) error {
	if degree < 0 {
		return appErrors.FieldError("degree", "degree cannot be negative")
	}
	if degree > course.MaxDegree {
		return appErrors.FieldError("degree", fmt.Sprintf("degree cannot exceed the course maximum of %d", course.MaxDegree))
	}
	return nil
}

// Enroll registers a trainee in a course.
func (s *EnrollmentService) Enroll(ctx context.Context, courseID string, req EnrollRequest) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid enrollment payload")
	}
	course, err := findCourse(ctx, s.courses, courseID)
	if err != nil {
		return nil, err
	}
	if _, err := s.findTrainee(ctx, req.TraineeID); err != nil {
		return nil, err
	}
	if err := checkDegree(*req.Degree, course); err != nil {
		s.metrics.RecordEnrollment("rejected")
		return nil, err
	}
	exists, err := s.repo.Exists(ctx, courseID, req.TraineeID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to check enrollment")
	}
	if exists {
		s.metrics.RecordEnrollment("duplicate")
		return nil, appErrors.Clone(appErrors.ErrConflict, msgAlreadyRegistered)
	}

	enrollment := &models.Enrollment{CourseID: courseID, TraineeID: req.TraineeID, Degree: *req.Degree}
	if err := s.repo.Create(ctx, enrollment); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			s.metrics.RecordEnrollment("duplicate")
			return nil, appErrors.Clone(appErrors.ErrConflict, msgAlreadyRegistered)
		}
		if errors.Is(err, repository.ErrForeignKey) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course or trainee no longer exists")
		}
		if errors.Is(err, repository.ErrAboveMax) {
			s.metrics.RecordEnrollment("rejected")
			return nil, s.ceilingChanged(ctx, courseID, *req.Degree)
		}
		return nil, appErrors.Internal(err, "failed to create enrollment")
	}
	s.metrics.RecordEnrollment("created")
	return enrollment, nil
}

// UpdateDegree overwrites the degree of an existing result. The ceiling is
// re-read from the course on every call.
func (s *EnrollmentService) UpdateDegree(ctx context.Context, courseID, traineeID string, req DegreeRequest) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid degree payload")
	}
	enrollment, err := s.findEnrollment(ctx, courseID, traineeID)
	if err != nil {
		return nil, err
	}
	course, err := findCourse(ctx, s.courses, courseID)
	if err != nil {
		return nil, err
	}
	if err := checkDegree(*req.Degree, course); err != nil {
		return nil, err
	}
	enrollment.Degree = *req.Degree
	if err := s.repo.UpdateDegree(ctx, enrollment); err != nil {
		if errors.Is(err, repository.ErrAboveMax) {
			return nil, s.ceilingChanged(ctx, courseID, *req.Degree)
		}
		if errors.Is(err, repository.ErrForeignKey) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course no longer exists")
		}
		return nil, appErrors.Internal(err, "failed to update degree")
	}
	return enrollment, nil
}

// ceilingChanged reports a degree rejected because the course maximum was
// lowered after it was first read.
func (s *EnrollmentService) ceilingChanged(ctx context.Context, courseID string, degree int) error {
	course, err := findCourse(ctx, s.courses, courseID)
	if err != nil {
		return err
	}
	if err := checkDegree(degree, course); err != nil {
		return err
	}
	return appErrors.FieldError("degree", "degree cannot exceed the course maximum")
}

// GetResult returns one result with the context needed to edit it.
func (s *EnrollmentService) GetResult(ctx context.Context, courseID, traineeID string) (*ResultView, error) {
	enrollment, err := s.findEnrollment(ctx, courseID, traineeID)
	if err != nil {
		return nil, err
	}
	course, err := findCourse(ctx, s.courses, courseID)
	if err != nil {
		return nil, err
	}
	trainee, err := s.findTrainee(ctx, traineeID)
	if err != nil {
		return nil, err
	}
	return &ResultView{
		Enrollment:    *enrollment,
		TraineeName:   trainee.Name,
		CourseName:    course.Name,
		MaxDegree:     course.MaxDegree,
		MinPassDegree: course.MinPassDegree,
		Status:        ComputeStatus(*enrollment, *course),
	}, nil
}

// ListAvailableTrainees returns trainees not yet enrolled in the course,
// ordered by name and labelled for a dropdown.
func (s *EnrollmentService) ListAvailableTrainees(ctx context.Context, courseID string) ([]models.AvailableTrainee, error) {
	if _, err := findCourse(ctx, s.courses, courseID); err != nil {
		return nil, err
	}
	trainees, err := s.trainees.ListNotEnrolled(ctx, courseID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list available trainees")
	}
	for i := range trainees {
		t := &trainees[i]
		t.Label = fmt.Sprintf("%s (%s) - #%s", t.Name, t.DepartmentName, shortID(t.ID))
	}
	if trainees == nil {
		trainees = []models.AvailableTrainee{}
	}
	return trainees, nil
}

// Roster returns one page of a course's results with the course header.
func (s *EnrollmentService) Roster(ctx context.Context, filter models.RosterFilter) (*models.CourseRoster, *models.Pagination, error) {
	course, err := s.courses.FindDetail(ctx, filter.CourseID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, nil, appErrors.Internal(err, "failed to load course")
	}
	rows, total, err := s.repo.ListByCourse(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list course results")
	}
	for i := range rows {
		rows[i].Status = ComputeStatus(rows[i].Enrollment, course.Course)
	}
	if rows == nil {
		rows = []models.EnrollmentDetail{}
	}
	roster := &models.CourseRoster{
		CourseID:       course.ID,
		CourseName:     course.Name,
		MaxDegree:      course.MaxDegree,
		MinPassDegree:  course.MinPassDegree,
		DepartmentName: course.DepartmentName,
		Results:        rows,
	}
	return roster, models.NewPagination(filter.Page, models.RosterPageSize, total), nil
}

func (s *EnrollmentService) findTrainee(ctx context.Context, id string) (*models.TraineeDetail, error) {
	trainee, err := s.trainees.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "trainee not found")
		}
		return nil, appErrors.Internal(err, "failed to load trainee")
	}
	return trainee, nil
}

func (s *EnrollmentService) findEnrollment(ctx context.Context, courseID, traineeID string) (*models.Enrollment, error) {
	enrollment, err := s.repo.FindByPair(ctx, courseID, traineeID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "result not found")
		}
		return nil, appErrors.Internal(err, "failed to load result")
	}
	return enrollment, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
