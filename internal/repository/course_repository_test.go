package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/teachspace-api/internal/models"
)

func TestCourseRepositoryListIncludesDepartment(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "name", "max_degree", "min_pass_degree", "department_id", "created_at", "updated_at", "department_name", "instructor_count", "trainee_count"}).
		AddRow("c1", "Go Basics", 100, 50, "d1", now, now, "Engineering", 1, 12)
	mock.ExpectQuery(regexp.QuoteMeta("FROM courses c JOIN departments d ON d.id = c.department_id ORDER BY c.name ASC, c.id ASC LIMIT 10 OFFSET 0")).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM courses")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	courses, total, err := repo.List(context.Background(), models.CourseFilter{Page: -3})
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "Engineering", courses[0].DepartmentName)
	assert.Equal(t, 100, courses[0].MaxDegree)
	assert.Equal(t, 12, courses[0].TraineeCount)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryCreateWithInstructorCommits(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO courses").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO instructors").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	course := &models.Course{Name: "Go Basics", MaxDegree: 100, MinPassDegree: 50, DepartmentID: "d1"}
	instructor := &models.Instructor{Name: "Rob", DepartmentID: "d1", Image: "default.png"}
	require.NoError(t, repo.CreateWithInstructor(context.Background(), course, instructor))
	assert.NotEmpty(t, course.ID)
	require.NotNil(t, instructor.CourseID)
	assert.Equal(t, course.ID, *instructor.CourseID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryCreateWithInstructorRollsBack(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO courses").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO instructors").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := repo.CreateWithInstructor(context.Background(), &models.Course{Name: "Go"}, &models.Instructor{Name: "Rob"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert course instructor")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryUpdateStale(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	expected := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	expectCourseLock(mock, "c1", 90)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE courses SET name = $1, max_degree = $2, min_pass_degree = $3, department_id = $4, updated_at = $5 WHERE id = $6 AND updated_at = $7")).
		WithArgs("Go", 100, 50, "d1", sqlmock.AnyArg(), "c1", expected).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Update(context.Background(), &models.Course{ID: "c1", Name: "Go", MaxDegree: 100, MinPassDegree: 50, DepartmentID: "d1"}, &expected)
	assert.ErrorIs(t, err, ErrStaleWrite)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryUpdateWithoutCheck(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectBegin()
	expectCourseLock(mock, "c1", 0)
	mock.ExpectExec(regexp.QuoteMeta("WHERE id = $6")).
		WithArgs("Go", 100, 50, "d1", sqlmock.AnyArg(), "c1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	course := &models.Course{ID: "c1", Name: "Go", MaxDegree: 100, MinPassDegree: 50, DepartmentID: "d1"}
	require.NoError(t, repo.Update(context.Background(), course, nil))
	assert.False(t, course.UpdatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryUpdateBelowRecordedDegree(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectBegin()
	expectCourseLock(mock, "c1", 75)
	mock.ExpectRollback()

	course := &models.Course{ID: "c1", Name: "Go", MaxDegree: 60, MinPassDegree: 30, DepartmentID: "d1"}
	assert.ErrorIs(t, repo.Update(context.Background(), course, nil), ErrAboveMax)
	assert.True(t, course.UpdatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryUpdateMissingCourse(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM courses WHERE id = $1 FOR UPDATE")).
		WithArgs("c9").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	err := repo.Update(context.Background(), &models.Course{ID: "c9", Name: "Go", MaxDegree: 60, DepartmentID: "d1"}, nil)
	assert.ErrorIs(t, err, ErrStaleWrite)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func expectCourseLock(mock sqlmock.Sqlmock, courseID string, highest int) {
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM courses WHERE id = $1 FOR UPDATE")).
		WithArgs(courseID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(courseID))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(MAX(degree), 0) FROM enrollments WHERE course_id = $1")).
		WithArgs(courseID).
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(highest))
}
