package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/teachspace-api/internal/models"
)

const traineeDetailSelect = `SELECT t.id, t.name, t.address, t.image, t.department_id, t.created_at, t.updated_at,
    d.name AS department_name
FROM trainees t JOIN departments d ON d.id = t.department_id`

// TraineeRepository handles persistence for trainees.
type TraineeRepository struct {
	db *sqlx.DB
}

// NewTraineeRepository creates a new repository instance.
func NewTraineeRepository(db *sqlx.DB) *TraineeRepository {
	return &TraineeRepository{db: db}
}

// List returns one page of trainees ordered by department then name.
func (r *TraineeRepository) List(ctx context.Context, filter models.TraineeFilter) ([]models.TraineeDetail, int, error) {
	limit, offset := pageBounds(filter.Page, models.TraineePageSize)
	query := fmt.Sprintf("%s ORDER BY d.name ASC, t.name ASC, t.id ASC LIMIT %d OFFSET %d", traineeDetailSelect, limit, offset)
	var trainees []models.TraineeDetail
	if err := r.db.SelectContext(ctx, &trainees, query); err != nil {
		return nil, 0, fmt.Errorf("list trainees: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM trainees"); err != nil {
		return nil, 0, fmt.Errorf("count trainees: %w", err)
	}
	return trainees, total, nil
}

// FindByID returns a trainee with the department name.
func (r *TraineeRepository) FindByID(ctx context.Context, id string) (*models.TraineeDetail, error) {
	var trainee models.TraineeDetail
	if err := r.db.GetContext(ctx, &trainee, traineeDetailSelect+" WHERE t.id = $1", id); err != nil {
		return nil, lookupErr(err)
	}
	return &trainee, nil
}

// ListResults returns every course result recorded for a trainee.
func (r *TraineeRepository) ListResults(ctx context.Context, id string) ([]models.TraineeCourseResult, error) {
	const query = `SELECT e.course_id, c.name AS course_name, e.degree, c.max_degree, c.min_pass_degree
FROM enrollments e JOIN courses c ON c.id = e.course_id
WHERE e.trainee_id = $1 ORDER BY c.name ASC`
	var results []models.TraineeCourseResult
	if err := r.db.SelectContext(ctx, &results, query, id); err != nil {
		return nil, fmt.Errorf("list trainee results: %w", err)
	}
	return results, nil
}

// ListNotEnrolled returns trainees without an enrollment in the course, by name.
func (r *TraineeRepository) ListNotEnrolled(ctx context.Context, courseID string) ([]models.AvailableTrainee, error) {
	const query = `SELECT t.id, t.name, d.name AS department_name
FROM trainees t JOIN departments d ON d.id = t.department_id
WHERE NOT EXISTS (SELECT 1 FROM enrollments e WHERE e.course_id = $1 AND e.trainee_id = t.id)
ORDER BY t.name ASC, t.id ASC`
	var trainees []models.AvailableTrainee
	if err := r.db.SelectContext(ctx, &trainees, query, courseID); err != nil {
		return nil, fmt.Errorf("list available trainees: %w", err)
	}
	return trainees, nil
}

// Create persists a new trainee.
func (r *TraineeRepository) Create(ctx context.Context, trainee *models.Trainee) error {
	if trainee.ID == "" {
		trainee.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	trainee.CreatedAt, trainee.UpdatedAt = now, now

	const query = `INSERT INTO trainees (id, name, address, image, department_id, created_at, updated_at)
VALUES (:id, :name, :address, :image, :department_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, trainee); err != nil {
		return classify("create trainee", err)
	}
	return nil
}

// Update modifies a trainee.
func (r *TraineeRepository) Update(ctx context.Context, trainee *models.Trainee) error {
	trainee.UpdatedAt = time.Now().UTC()
	const query = `UPDATE trainees SET name = :name, address = :address, image = :image, department_id = :department_id, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, trainee); err != nil {
		return classify("update trainee", err)
	}
	return nil
}

// Delete removes a trainee and, through the schema, their enrollments.
func (r *TraineeRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM trainees WHERE id = $1`, id); err != nil {
		return classify("delete trainee", err)
	}
	return nil
}
