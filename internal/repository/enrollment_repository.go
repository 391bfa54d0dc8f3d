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

const rosterSelect = `SELECT e.id, e.course_id, e.trainee_id, e.degree, e.created_at, e.updated_at,
    t.name AS trainee_name, t.image AS trainee_image, d.name AS department_name, c.name AS course_name
FROM enrollments e
JOIN trainees t ON t.id = e.trainee_id
JOIN departments d ON d.id = t.department_id
JOIN courses c ON c.id = e.course_id
WHERE e.course_id = $1`

// EnrollmentRepository handles persistence for course results.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository creates a new repository instance.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// Exists reports whether the trainee already has a result in the course.
func (r *EnrollmentRepository) Exists(ctx context.Context, courseID, traineeID string) (bool, error) {
	var exists int
	err := r.db.GetContext(ctx, &exists, `SELECT 1 FROM enrollments WHERE course_id = $1 AND trainee_id = $2 LIMIT 1`, courseID, traineeID)
	if err != nil {
		if lookupErr(err) == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return true, nil
}

// FindByPair returns the enrollment of a trainee in a course.
func (r *EnrollmentRepository) FindByPair(ctx context.Context, courseID, traineeID string) (*models.Enrollment, error) {
	const query = `SELECT id, course_id, trainee_id, degree, created_at, updated_at FROM enrollments WHERE course_id = $1 AND trainee_id = $2`
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, courseID, traineeID); err != nil {
		return nil, lookupErr(err)
	}
	return &enrollment, nil
}

// Create persists a new enrollment. The course row is share-locked while the
// degree is checked against its maximum, so a concurrent edit of the course
// cannot lower the ceiling underneath the insert. A duplicate pair surfaces
// as ErrDuplicate and a degree above the maximum as ErrAboveMax.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) (err error) {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	enrollment.CreatedAt, enrollment.UpdatedAt = now, now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin enrollment transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = checkCeiling(ctx, tx, enrollment.CourseID, enrollment.Degree); err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}
	const query = `INSERT INTO enrollments (id, course_id, trainee_id, degree, created_at, updated_at)
VALUES (:id, :course_id, :trainee_id, :degree, :created_at, :updated_at)`
	if _, err = tx.NamedExecContext(ctx, query, enrollment); err != nil {
		return classify("create enrollment", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit enrollment: %w", err)
	}
	return nil
}

// UpdateDegree overwrites the degree of an existing enrollment under the
// same course lock as Create.
func (r *EnrollmentRepository) UpdateDegree(ctx context.Context, enrollment *models.Enrollment) (err error) {
	updatedAt := time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin degree transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = checkCeiling(ctx, tx, enrollment.CourseID, enrollment.Degree); err != nil {
		return fmt.Errorf("update enrollment degree: %w", err)
	}
	const query = `UPDATE enrollments SET degree = $1, updated_at = $2 WHERE id = $3`
	if _, err = tx.ExecContext(ctx, query, enrollment.Degree, updatedAt, enrollment.ID); err != nil {
		return fmt.Errorf("update enrollment degree: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit enrollment degree: %w", err)
	}
	enrollment.UpdatedAt = updatedAt
	return nil
}

// checkCeiling share-locks the course row and compares degree to its maximum.
// A missing course is reported as ErrForeignKey.
func checkCeiling(ctx context.Context, tx *sqlx.Tx, courseID string, degree int) error {
	var maxDegree int
	err := tx.GetContext(ctx, &maxDegree, `SELECT max_degree FROM courses WHERE id = $1 FOR SHARE`, courseID)
	if err != nil {
		if lookupErr(err) == sql.ErrNoRows {
			return ErrForeignKey
		}
		return fmt.Errorf("lock course: %w", err)
	}
	if degree > maxDegree {
		return ErrAboveMax
	}
	return nil
}

func rosterOrder(sortBy string) string {
	if sortBy == models.RosterSortDepartment {
		return "d.name ASC, t.name ASC, e.id ASC"
	}
	return "t.name ASC, e.id ASC"
}

// ListByCourse returns one page of a course roster with the total count.
func (r *EnrollmentRepository) ListByCourse(ctx context.Context, filter models.RosterFilter) ([]models.EnrollmentDetail, int, error) {
	limit, offset := pageBounds(filter.Page, models.RosterPageSize)
	query := fmt.Sprintf("%s ORDER BY %s LIMIT %d OFFSET %d", rosterSelect, rosterOrder(filter.SortBy), limit, offset)
	var rows []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &rows, query, filter.CourseID); err != nil {
		return nil, 0, fmt.Errorf("list course roster: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM enrollments WHERE course_id = $1`, filter.CourseID); err != nil {
		return nil, 0, fmt.Errorf("count course roster: %w", err)
	}
	return rows, total, nil
}

// ListAllByCourse returns the whole roster for exports.
func (r *EnrollmentRepository) ListAllByCourse(ctx context.Context, courseID, sortBy string) ([]models.EnrollmentDetail, error) {
	var rows []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &rows, rosterSelect+" ORDER BY "+rosterOrder(sortBy), courseID); err != nil {
		return nil, fmt.Errorf("list full course roster: %w", err)
	}
	return rows, nil
}
