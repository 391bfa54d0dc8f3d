package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/teachspace-api/internal/models"
)

// DepartmentRepository handles persistence for departments.
type DepartmentRepository struct {
	db *sqlx.DB
}

// NewDepartmentRepository creates a new repository instance.
func NewDepartmentRepository(db *sqlx.DB) *DepartmentRepository {
	return &DepartmentRepository{db: db}
}

// List returns one page of departments ordered by name with the total count.
func (r *DepartmentRepository) List(ctx context.Context, filter models.DepartmentFilter) ([]models.Department, int, error) {
	limit, offset := pageBounds(filter.Page, models.DepartmentPageSize)
	query := fmt.Sprintf("SELECT id, name, manager, created_at, updated_at FROM departments ORDER BY name ASC, id ASC LIMIT %d OFFSET %d", limit, offset)
	var departments []models.Department
	if err := r.db.SelectContext(ctx, &departments, query); err != nil {
		return nil, 0, fmt.Errorf("list departments: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM departments"); err != nil {
		return nil, 0, fmt.Errorf("count departments: %w", err)
	}
	return departments, total, nil
}

// Lookup returns every department as a dropdown item.
func (r *DepartmentRepository) Lookup(ctx context.Context) ([]models.LookupItem, error) {
	const query = `SELECT id AS value, name AS text FROM departments ORDER BY name ASC`
	var items []models.LookupItem
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("lookup departments: %w", err)
	}
	return items, nil
}

// FindByID returns a department by id.
func (r *DepartmentRepository) FindByID(ctx context.Context, id string) (*models.Department, error) {
	const query = `SELECT id, name, manager, created_at, updated_at FROM departments WHERE id = $1`
	var department models.Department
	if err := r.db.GetContext(ctx, &department, query, id); err != nil {
		return nil, lookupErr(err)
	}
	return &department, nil
}

// ListInstructors returns the instructors of a department with their course names.
func (r *DepartmentRepository) ListInstructors(ctx context.Context, id string) ([]models.DepartmentInstructor, error) {
	const query = `SELECT i.id, i.name, c.name AS course_name, i.image
FROM instructors i LEFT JOIN courses c ON c.id = i.course_id
WHERE i.department_id = $1 ORDER BY i.name ASC`
	var instructors []models.DepartmentInstructor
	if err := r.db.SelectContext(ctx, &instructors, query, id); err != nil {
		return nil, fmt.Errorf("list department instructors: %w", err)
	}
	return instructors, nil
}

// ListTrainees returns the trainees of a department.
func (r *DepartmentRepository) ListTrainees(ctx context.Context, id string) ([]models.DepartmentTrainee, error) {
	const query = `SELECT id, name, image FROM trainees WHERE department_id = $1 ORDER BY name ASC`
	var trainees []models.DepartmentTrainee
	if err := r.db.SelectContext(ctx, &trainees, query, id); err != nil {
		return nil, fmt.Errorf("list department trainees: %w", err)
	}
	return trainees, nil
}

// CountDependents counts rows that still reference the department.
func (r *DepartmentRepository) CountDependents(ctx context.Context, id string) (models.DepartmentDependents, error) {
	const query = `SELECT
    (SELECT COUNT(*) FROM courses WHERE department_id = $1) AS courses,
    (SELECT COUNT(*) FROM instructors WHERE department_id = $1) AS instructors,
    (SELECT COUNT(*) FROM trainees WHERE department_id = $1) AS trainees`
	var deps models.DepartmentDependents
	if err := r.db.GetContext(ctx, &deps, query, id); err != nil {
		return deps, fmt.Errorf("count department dependents: %w", err)
	}
	return deps, nil
}

// Create persists a new department.
func (r *DepartmentRepository) Create(ctx context.Context, department *models.Department) error {
	if department.ID == "" {
		department.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if department.CreatedAt.IsZero() {
		department.CreatedAt = now
	}
	department.UpdatedAt = now

	const query = `INSERT INTO departments (id, name, manager, created_at, updated_at) VALUES (:id, :name, :manager, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, department); err != nil {
		return classify("create department", err)
	}
	return nil
}

// Update modifies a department.
func (r *DepartmentRepository) Update(ctx context.Context, department *models.Department) error {
	department.UpdatedAt = time.Now().UTC()
	const query = `UPDATE departments SET name = :name, manager = :manager, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, department); err != nil {
		return classify("update department", err)
	}
	return nil
}

// Delete removes a department record.
func (r *DepartmentRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM departments WHERE id = $1`, id); err != nil {
		return classify("delete department", err)
	}
	return nil
}
