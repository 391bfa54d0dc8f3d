package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/teachspace-api/internal/models"
)

const courseDetailSelect = `SELECT c.id, c.name, c.max_degree, c.min_pass_degree, c.department_id, c.created_at, c.updated_at,
    d.name AS department_name,
    (SELECT COUNT(*) FROM instructors i WHERE i.course_id = c.id) AS instructor_count,
    (SELECT COUNT(*) FROM enrollments e WHERE e.course_id = c.id) AS trainee_count
FROM courses c JOIN departments d ON d.id = c.department_id`

// CourseRepository handles persistence for courses.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository creates a new repository instance.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// List returns one page of courses ordered by name with the total count.
func (r *CourseRepository) List(ctx context.Context, filter models.CourseFilter) ([]models.CourseDetail, int, error) {
	limit, offset := pageBounds(filter.Page, models.CoursePageSize)
	query := fmt.Sprintf("%s ORDER BY c.name ASC, c.id ASC LIMIT %d OFFSET %d", courseDetailSelect, limit, offset)
	var courses []models.CourseDetail
	if err := r.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, 0, fmt.Errorf("list courses: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM courses"); err != nil {
		return nil, 0, fmt.Errorf("count courses: %w", err)
	}
	return courses, total, nil
}

// Lookup returns every course as a dropdown item.
func (r *CourseRepository) Lookup(ctx context.Context) ([]models.LookupItem, error) {
	const query = `SELECT id AS value, name AS text FROM courses ORDER BY name ASC`
	var items []models.LookupItem
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("lookup courses: %w", err)
	}
	return items, nil
}

// FindByID returns a course by id.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	const query = `SELECT id, name, max_degree, min_pass_degree, department_id, created_at, updated_at FROM courses WHERE id = $1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, lookupErr(err)
	}
	return &course, nil
}

// FindDetail returns a course with department name and counts.
func (r *CourseRepository) FindDetail(ctx context.Context, id string) (*models.CourseDetail, error) {
	var course models.CourseDetail
	if err := r.db.GetContext(ctx, &course, courseDetailSelect+" WHERE c.id = $1", id); err != nil {
		return nil, lookupErr(err)
	}
	return &course, nil
}

// CreateWithInstructor inserts a course and its first instructor atomically.
// The instructor is attached to the new course.
func (r *CourseRepository) CreateWithInstructor(ctx context.Context, course *models.Course, instructor *models.Instructor) (err error) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	course.CreatedAt, course.UpdatedAt = now, now
	if instructor.ID == "" {
		instructor.ID = uuid.NewString()
	}
	instructor.CourseID = &course.ID
	instructor.CreatedAt, instructor.UpdatedAt = now, now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin course transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const courseQuery = `INSERT INTO courses (id, name, max_degree, min_pass_degree, department_id, created_at, updated_at)
VALUES (:id, :name, :max_degree, :min_pass_degree, :department_id, :created_at, :updated_at)`
	if _, err = tx.NamedExecContext(ctx, courseQuery, course); err != nil {
		return classify("insert course", err)
	}
	if _, err = tx.NamedExecContext(ctx, instructorInsert, instructor); err != nil {
		return classify("insert course instructor", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit course: %w", err)
	}
	return nil
}

// Update modifies a course. When expected is non-nil the write only applies
// if updated_at still matches it. ErrStaleWrite is returned when no row was
// changed. The course row is locked before the recorded degrees are compared
// with the new maximum, which serializes the edit against enrollment writes;
// a maximum below a recorded degree yields ErrAboveMax. Timestamps are kept at
// microsecond precision to round-trip through PostgreSQL.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course, expected *time.Time) (err error) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin course update: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var locked string
	if err = tx.GetContext(ctx, &locked, `SELECT id FROM courses WHERE id = $1 FOR UPDATE`, course.ID); err != nil {
		if lookupErr(err) == sql.ErrNoRows {
			return ErrStaleWrite
		}
		return fmt.Errorf("lock course: %w", err)
	}
	var highest int
	if err = tx.GetContext(ctx, &highest, `SELECT COALESCE(MAX(degree), 0) FROM enrollments WHERE course_id = $1`, course.ID); err != nil {
		return fmt.Errorf("max enrolled degree: %w", err)
	}
	if highest > course.MaxDegree {
		return ErrAboveMax
	}

	query := `UPDATE courses SET name = $1, max_degree = $2, min_pass_degree = $3, department_id = $4, updated_at = $5 WHERE id = $6`
	args := []interface{}{course.Name, course.MaxDegree, course.MinPassDegree, course.DepartmentID, now, course.ID}
	if expected != nil {
		query += " AND updated_at = $7"
		args = append(args, expected.UTC())
	}

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return classify("update course", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update course rows: %w", err)
	}
	if affected == 0 {
		return ErrStaleWrite
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit course update: %w", err)
	}
	course.UpdatedAt = now
	return nil
}

// Delete removes a course record.
func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id); err != nil {
		return classify("delete course", err)
	}
	return nil
}

// CountEnrollments returns the number of enrollments referencing the course.
func (r *CourseRepository) CountEnrollments(ctx context.Context, id string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM enrollments WHERE course_id = $1`, id); err != nil {
		return 0, fmt.Errorf("count course enrollments: %w", err)
	}
	return count, nil
}

// MaxEnrolledDegree returns the highest degree recorded for the course, or 0.
func (r *CourseRepository) MaxEnrolledDegree(ctx context.Context, id string) (int, error) {
	var highest int
	if err := r.db.GetContext(ctx, &highest, `SELECT COALESCE(MAX(degree), 0) FROM enrollments WHERE course_id = $1`, id); err != nil {
		return 0, fmt.Errorf("max enrolled degree: %w", err)
	}
	return highest, nil
}
