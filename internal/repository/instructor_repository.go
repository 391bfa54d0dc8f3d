package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/teachspace-api/internal/models"
)

const instructorInsert = `INSERT INTO instructors (id, name, salary, address, image, department_id, course_id, created_at, updated_at)
VALUES (:id, :name, :salary, :address, :image, :department_id, :course_id, :created_at, :updated_at)`

const instructorDetailSelect = `SELECT i.id, i.name, i.salary, i.address, i.image, i.department_id, i.course_id, i.created_at, i.updated_at,
    d.name AS department_name, c.name AS course_name
FROM instructors i JOIN departments d ON d.id = i.department_id LEFT JOIN courses c ON c.id = i.course_id`

// InstructorRepository handles persistence for instructors.
type InstructorRepository struct {
	db *sqlx.DB
}

// NewInstructorRepository creates a new repository instance.
func NewInstructorRepository(db *sqlx.DB) *InstructorRepository {
	return &InstructorRepository{db: db}
}

// List returns one page of instructors, optionally narrowed to a course.
func (r *InstructorRepository) List(ctx context.Context, filter models.InstructorFilter) ([]models.InstructorDetail, int, error) {
	var conditions []string
	var args []interface{}
	if filter.CourseID != "" {
		conditions = append(conditions, fmt.Sprintf("i.course_id = $%d", len(args)+1))
		args = append(args, filter.CourseID)
	}
	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	limit, offset := pageBounds(filter.Page, models.InstructorPageSize)
	query := fmt.Sprintf("%s%s ORDER BY i.name ASC, i.id ASC LIMIT %d OFFSET %d", instructorDetailSelect, where, limit, offset)
	var instructors []models.InstructorDetail
	if err := r.db.SelectContext(ctx, &instructors, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list instructors: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM instructors i"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count instructors: %w", err)
	}
	return instructors, total, nil
}

// FindByID returns an instructor with department and course names.
func (r *InstructorRepository) FindByID(ctx context.Context, id string) (*models.InstructorDetail, error) {
	var instructor models.InstructorDetail
	if err := r.db.GetContext(ctx, &instructor, instructorDetailSelect+" WHERE i.id = $1", id); err != nil {
		return nil, lookupErr(err)
	}
	return &instructor, nil
}

// Create persists a new instructor.
func (r *InstructorRepository) Create(ctx context.Context, instructor *models.Instructor) error {
	if instructor.ID == "" {
		instructor.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	instructor.CreatedAt, instructor.UpdatedAt = now, now
	if _, err := r.db.NamedExecContext(ctx, instructorInsert, instructor); err != nil {
		return classify("create instructor", err)
	}
	return nil
}

// Update modifies an instructor.
func (r *InstructorRepository) Update(ctx context.Context, instructor *models.Instructor) error {
	instructor.UpdatedAt = time.Now().UTC()
	const query = `UPDATE instructors SET name = :name, salary = :salary, address = :address, image = :image,
    department_id = :department_id, course_id = :course_id, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, instructor); err != nil {
		return classify("update instructor", err)
	}
	return nil
}

// Delete removes an instructor record.
func (r *InstructorRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM instructors WHERE id = $1`, id); err != nil {
		return classify("delete instructor", err)
	}
	return nil
}
