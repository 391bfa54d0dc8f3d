package service

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/teachspace-api/internal/models"
	appErrors "github.com/noah-isme/teachspace-api/pkg/errors"
	"github.com/noah-isme/teachspace-api/pkg/export"
)

var rosterHeaders = []string{"Trainee", "Department", "Degree", "Max Degree", "Status"}

var unsafeFilename = regexp.MustCompile(`[^a-z0-9]+`)

type rosterSource interface {
	ListAllByCourse(ctx context.Context, courseID, sortBy string) ([]models.EnrollmentDetail, error)
}

// ExportFile is a rendered document ready to be streamed.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders course rosters as downloadable files.
type ExportService struct {
	results rosterSource
	courses enrollmentCourseReader
	logger  *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(results rosterSource, courses enrollmentCourseReader, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{results: results, courses: courses, logger: logger}
}

// Roster renders every result of a course in the requested format.
func (s *ExportService) Roster(ctx context.Context, courseID, format, sortBy string) (*ExportFile, error) {
	f, err := export.ParseFormat(format)
	if err != nil {
		return nil, appErrors.FieldError("format", "format must be one of [csv pdf]")
	}
	course, err := s.courses.FindDetail(ctx, courseID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Internal(err, "failed to load course")
	}
	rows, err := s.results.ListAllByCourse(ctx, courseID, sortBy)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load course results")
	}

	dataset := export.Dataset{
		Title: "Results: " + course.Name,
		Caption: []string{
			"Department: " + course.DepartmentName,
			fmt.Sprintf("Pass mark: %d / %d", course.MinPassDegree, course.MaxDegree),
		},
		Headers: rosterHeaders,
		Rows:    make([]map[string]string, 0, len(rows)),
	}
	for _, row := range rows {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Trainee":    row.TraineeName,
			"Department": row.DepartmentName,
			"Degree":     strconv.Itoa(row.Degree),
			"Max Degree": strconv.Itoa(course.MaxDegree),
			"Status":     string(ComputeStatus(row.Enrollment, course.Course)),
		})
	}

	data, err := export.RendererFor(f).Render(dataset)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render export")
	}
	s.logger.Info("roster exported", zap.String("course_id", courseID), zap.String("format", string(f)), zap.Int("rows", len(rows)))
	return &ExportFile{
		Filename:    rosterFilename(course.Name) + f.Extension(),
		ContentType: f.ContentType(),
		Data:        data,
	}, nil
}

func rosterFilename(courseName string) string {
	slug := strings.Trim(unsafeFilename.ReplaceAllString(strings.ToLower(courseName), "-"), "-")
	if slug == "" {
		slug = "course"
	}
	return slug + "-results"
}
