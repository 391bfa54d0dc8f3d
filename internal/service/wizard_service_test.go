package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/teachspace-api/internal/models"
	"github.com/noah-isme/teachspace-api/internal/repository"
	appErrors "github.com/noah-isme/teachspace-api/pkg/errors"
	"github.com/noah-isme/teachspace-api/pkg/storage"
)

func newWizardFixture(store TransientStore) (*WizardService, *mockCourseRepo, *mockLookups) {
	departments := newMockDepartmentRepo(models.Department{ID: "d1", Name: "Engineering"}, models.Department{ID: "d2", Name: "Design"})
	courses := newMockCourseRepo(departments)
	lookups := &mockLookups{}
	svc := NewWizardService(store, courses, departments, lookups, NewMetricsService(), NewValidator(), zap.NewNop(), time.Minute)
	return svc, courses, lookups
}

func validCourseRequest() CourseRequest {
	return CourseRequest{Name: "Go Basics", MaxDegree: 100, MinPassDegree: 50, DepartmentID: "d1"}
}

func TestWizardStartAndPending(t *testing.T) {
	svc, _, _ := newWizardFixture(repository.NewMemoryTransientRepository())
	ctx := context.Background()

	pending, err := svc.Start(ctx, "sid", validCourseRequest())
	require.NoError(t, err)
	assert.Equal(t, "Engineering", pending.DepartmentName)

	again, err := svc.Pending(ctx, "sid")
	require.NoError(t, err)
	assert.Equal(t, "Go Basics", again.Name)
	assert.Equal(t, 100, again.MaxDegree)

	_, err = svc.Pending(ctx, "other")
	assert.True(t, errors.Is(err, appErrors.ErrSessionExpired))
}

func TestWizardStartValidation(t *testing.T) {
	svc, _, _ := newWizardFixture(repository.NewMemoryTransientRepository())
	ctx := context.Background()

	req := validCourseRequest()
	req.MinPassDegree = 120
	_, err := svc.Start(ctx, "sid", req)
	require.Error(t, err)
	assert.Equal(t, msgMinAboveMax, appErrors.FromError(err).Fields["min_pass_degree"])

	req = validCourseRequest()
	req.DepartmentID = "missing"
	_, err = svc.Start(ctx, "sid", req)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	_, err = svc.Pending(ctx, "sid")
	assert.True(t, errors.Is(err, appErrors.ErrSessionExpired))
}

func TestWizardCompleteInvalidKeepsDraft(t *testing.T) {
	svc, courses, _ := newWizardFixture(repository.NewMemoryTransientRepository())
	ctx := context.Background()
	_, err := svc.Start(ctx, "sid", validCourseRequest())
	require.NoError(t, err)

	_, _, err = svc.Complete(ctx, "sid", WizardInstructorRequest{Salary: -1})
	require.Error(t, err)
	fields := appErrors.FromError(err).Fields
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "salary")
	assert.Empty(t, courses.items)

	pending, err := svc.Pending(ctx, "sid")
	require.NoError(t, err)
	assert.Equal(t, "Go Basics", pending.Name)
}

func TestWizardCompleteCommitsAndConsumes(t *testing.T) {
	svc, courses, lookups := newWizardFixture(repository.NewMemoryTransientRepository())
	ctx := context.Background()
	_, err := svc.Start(ctx, "sid", validCourseRequest())
	require.NoError(t, err)

	course, instructor, err := svc.Complete(ctx, "sid", WizardInstructorRequest{Name: "Mona", Salary: 5000})
	require.NoError(t, err)
	assert.NotEmpty(t, course.ID)
	assert.Equal(t, "d1", instructor.DepartmentID)
	assert.Equal(t, storage.DefaultImage, instructor.Image)
	require.NotNil(t, instructor.CourseID)
	assert.Equal(t, course.ID, *instructor.CourseID)
	assert.Len(t, courses.created, 1)
	assert.Equal(t, 1, lookups.invalidated)

	_, _, err = svc.Complete(ctx, "sid", WizardInstructorRequest{Name: "Mona", Salary: 5000})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrSessionExpired))
	assert.Equal(t, msgWizardExpired, appErrors.FromError(err).Message)
	assert.Len(t, courses.created, 1)
}

func TestWizardCompleteOtherDepartment(t *testing.T) {
	svc, _, _ := newWizardFixture(repository.NewMemoryTransientRepository())
	ctx := context.Background()
	_, err := svc.Start(ctx, "sid", validCourseRequest())
	require.NoError(t, err)

	course, instructor, err := svc.Complete(ctx, "sid", WizardInstructorRequest{Name: "Omar", DepartmentID: "d2"})
	require.NoError(t, err)
	assert.Equal(t, "d1", course.DepartmentID)
	assert.Equal(t, "d2", instructor.DepartmentID)
}

func TestWizardStoreFailureRestoresDraft(t *testing.T) {
	svc, courses, _ := newWizardFixture(repository.NewMemoryTransientRepository())
	ctx := context.Background()
	_, err := svc.Start(ctx, "sid", validCourseRequest())
	require.NoError(t, err)

	courses.createErr = errBoom
	_, _, err = svc.Complete(ctx, "sid", WizardInstructorRequest{Name: "Mona"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrInternal))

	courses.createErr = nil
	course, _, err := svc.Complete(ctx, "sid", WizardInstructorRequest{Name: "Mona"})
	require.NoError(t, err)
	assert.Equal(t, "Go Basics", course.Name)
}

func TestWizardExpiredDraft(t *testing.T) {
	store := repository.NewMemoryTransientRepository()
	svc, _, _ := newWizardFixture(store)
	ctx := context.Background()
	svc.ttl = time.Millisecond
	_, err := svc.Start(ctx, "sid", validCourseRequest())
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	_, _, err = svc.Complete(ctx, "sid", WizardInstructorRequest{Name: "Mona"})
	assert.True(t, errors.Is(err, appErrors.ErrSessionExpired))
}

func TestWizardStartStoreError(t *testing.T) {
	store := &failingTransient{TransientStore: repository.NewMemoryTransientRepository(), putErr: errBoom}
	svc, _, _ := newWizardFixture(store)
	_, err := svc.Start(context.Background(), "sid", validCourseRequest())
	assert.True(t, errors.Is(err, appErrors.ErrInternal))
}

func TestWizardCancel(t *testing.T) {
	svc, _, _ := newWizardFixture(repository.NewMemoryTransientRepository())
	ctx := context.Background()
	_, err := svc.Start(ctx, "sid", validCourseRequest())
	require.NoError(t, err)
	require.NoError(t, svc.Cancel(ctx, "sid"))
	_, err = svc.Pending(ctx, "sid")
	assert.True(t, errors.Is(err, appErrors.ErrSessionExpired))
}
