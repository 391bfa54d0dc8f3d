package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/teachspace-api/internal/models"
	"github.com/noah-isme/teachspace-api/internal/repository"
	appErrors "github.com/noah-isme/teachspace-api/pkg/errors"
)

type mockInstructorRepo struct {
	items      map[string]models.InstructorDetail
	lastFilter models.InstructorFilter
	deleted    []string
	writeErr   error
}

func (m *mockInstructorRepo) List(ctx context.Context, filter models.InstructorFilter) ([]models.InstructorDetail, int, error) {
	m.lastFilter = filter
	var out []models.InstructorDetail
	for _, i := range m.items {
		if filter.CourseID != "" && (i.CourseID == nil || *i.CourseID != filter.CourseID) {
			continue
		}
		out = append(out, i)
	}
	return out, len(out), nil
}

func (m *mockInstructorRepo) FindByID(ctx context.Context, id string) (*models.InstructorDetail, error) {
	i, ok := m.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &i, nil
}

func (m *mockInstructorRepo) Create(ctx context.Context, instructor *models.Instructor) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	instructor.ID = fmt.Sprintf("i%d", len(m.items)+1)
	m.items[instructor.ID] = models.InstructorDetail{Instructor: *instructor}
	return nil
}

func (m *mockInstructorRepo) Update(ctx context.Context, instructor *models.Instructor) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	m.items[instructor.ID] = models.InstructorDetail{Instructor: *instructor}
	return nil
}

func (m *mockInstructorRepo) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	delete(m.items, id)
	return nil
}

func newInstructorFixture() (*InstructorService, *mockInstructorRepo, *mockImageStore) {
	departments := newMockDepartmentRepo(models.Department{ID: "d1", Name: "Engineering"}, models.Department{ID: "d2", Name: "Design"})
	courses := newMockCourseRepo(departments, models.Course{ID: "c1", Name: "Go", MaxDegree: 100, DepartmentID: "d2"})
	repo := &mockInstructorRepo{items: map[string]models.InstructorDetail{}}
	images := &mockImageStore{}
	return NewInstructorService(repo, courses, departments, images, NewMetricsService(), NewValidator(), zap.NewNop()), repo, images
}

func TestInstructorCreateDefaultsDepartmentFromCourse(t *testing.T) {
	svc, _, _ := newInstructorFixture()
	ctx := context.Background()

	instructor, err := svc.Create(ctx, InstructorRequest{Name: "Mona", Salary: 4000, CourseID: "c1"}, upload("me.jpeg"))
	require.NoError(t, err)
	assert.Equal(t, "d2", instructor.DepartmentID)
	require.NotNil(t, instructor.CourseID)
	assert.Equal(t, "c1", *instructor.CourseID)
	assert.Equal(t, "img-1.jpeg", instructor.Image)

	explicit, err := svc.Create(ctx, InstructorRequest{Name: "Omar", CourseID: "c1", DepartmentID: "d1"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "d1", explicit.DepartmentID)
}

func TestInstructorCreateValidation(t *testing.T) {
	svc, _, images := newInstructorFixture()
	ctx := context.Background()

	_, err := svc.Create(ctx, InstructorRequest{Name: "Mona"}, nil)
	require.Error(t, err)
	assert.Equal(t, "department_id is required", appErrors.FromError(err).Fields["department_id"])

	_, err = svc.Create(ctx, InstructorRequest{Name: "Mona", CourseID: "ghost"}, upload("a.png"))
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	_, err = svc.Create(ctx, InstructorRequest{Name: "Mona", Salary: -10, DepartmentID: "d1"}, nil)
	require.Error(t, err)
	assert.Contains(t, appErrors.FromError(err).Fields, "salary")
	assert.Empty(t, images.saved)
}

func TestInstructorListByCourse(t *testing.T) {
	svc, repo, _ := newInstructorFixture()
	ctx := context.Background()
	course := "c1"
	repo.items["i1"] = models.InstructorDetail{Instructor: models.Instructor{ID: "i1", Name: "Mona", CourseID: &course}}
	repo.items["i2"] = models.InstructorDetail{Instructor: models.Instructor{ID: "i2", Name: "Omar"}}

	items, page, err := svc.List(ctx, models.InstructorFilter{CourseID: "c1"})
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, 1, page.TotalCount)
	assert.Equal(t, "c1", repo.lastFilter.CourseID)

	_, _, err = svc.List(ctx, models.InstructorFilter{CourseID: "unknown"})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestInstructorUpdateAndDelete(t *testing.T) {
	svc, repo, images := newInstructorFixture()
	ctx := context.Background()
	repo.items["i1"] = models.InstructorDetail{Instructor: models.Instructor{ID: "i1", Name: "Mona", Image: "mona.png", DepartmentID: "d1"}}

	updated, err := svc.Update(ctx, "i1", InstructorRequest{Name: "Mona A", DepartmentID: "d1"}, upload("mona2.png"))
	require.NoError(t, err)
	assert.Equal(t, "img-1.png", updated.Image)
	assert.Nil(t, updated.CourseID)
	assert.Equal(t, []string{"mona.png"}, images.removed)

	require.NoError(t, svc.Delete(ctx, "i1"))
	assert.Equal(t, []string{"mona.png", "img-1.png"}, images.removed)
	assert.True(t, errors.Is(svc.Delete(ctx, "i1"), appErrors.ErrNotFound))
}

func TestInstructorWriteAfterReferenceDeleted(t *testing.T) {
	svc, repo, images := newInstructorFixture()
	ctx := context.Background()
	repo.items["i1"] = models.InstructorDetail{Instructor: models.Instructor{ID: "i1", Name: "Mona", Image: "mona.png", DepartmentID: "d1"}}
	repo.writeErr = fmt.Errorf("update instructor: %w (instructors_course_id_fkey)", repository.ErrForeignKey)

	_, err := svc.Update(ctx, "i1", InstructorRequest{Name: "Mona", CourseID: "c1"}, upload("mona2.png"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
	assert.Equal(t, "department or course no longer exists", appErrors.FromError(err).Message)
	assert.Equal(t, []string{"img-1.png"}, images.removed)

	_, err = svc.Create(ctx, InstructorRequest{Name: "Omar", DepartmentID: "d1"}, nil)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}
