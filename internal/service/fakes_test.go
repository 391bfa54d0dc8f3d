package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/noah-isme/teachspace-api/internal/models"
	"github.com/noah-isme/teachspace-api/internal/repository"
	"github.com/noah-isme/teachspace-api/pkg/storage"
)

type mockDepartmentRepo struct {
	items       map[string]models.Department
	deps        map[string]models.DepartmentDependents
	instructors []models.DepartmentInstructor
	trainees    []models.DepartmentTrainee
	deleted     []string
	deleteErr   error
}

func newMockDepartmentRepo(departments ...models.Department) *mockDepartmentRepo {
	m := &mockDepartmentRepo{items: map[string]models.Department{}, deps: map[string]models.DepartmentDependents{}}
	for _, d := range departments {
		m.items[d.ID] = d
	}
	return m
}

func (m *mockDepartmentRepo) List(ctx context.Context, filter models.DepartmentFilter) ([]models.Department, int, error) {
	out := make([]models.Department, 0, len(m.items))
	for _, d := range m.items {
		out = append(out, d)
	}
	return out, len(out), nil
}

func (m *mockDepartmentRepo) FindByID(ctx context.Context, id string) (*models.Department, error) {
	d, ok := m.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &d, nil
}

func (m *mockDepartmentRepo) ListInstructors(ctx context.Context, id string) ([]models.DepartmentInstructor, error) {
	return m.instructors, nil
}

func (m *mockDepartmentRepo) ListTrainees(ctx context.Context, id string) ([]models.DepartmentTrainee, error) {
	return m.trainees, nil
}

func (m *mockDepartmentRepo) CountDependents(ctx context.Context, id string) (models.DepartmentDependents, error) {
	return m.deps[id], nil
}

func (m *mockDepartmentRepo) Create(ctx context.Context, department *models.Department) error {
	if department.ID == "" {
		department.ID = fmt.Sprintf("dept-%d", len(m.items)+1)
	}
	m.items[department.ID] = *department
	return nil
}

func (m *mockDepartmentRepo) Update(ctx context.Context, department *models.Department) error {
	m.items[department.ID] = *department
	return nil
}

func (m *mockDepartmentRepo) Delete(ctx context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, id)
	delete(m.items, id)
	return nil
}

type mockCourseRepo struct {
	items       map[string]models.Course
	departments *mockDepartmentRepo
	enrollments map[string]int
	maxDegree   map[string]int
	updateErr   error
	dropOnWrite bool
	createErr   error
	created     []models.Instructor
	deleted     []string
}

func newMockCourseRepo(departments *mockDepartmentRepo, courses ...models.Course) *mockCourseRepo {
	m := &mockCourseRepo{items: map[string]models.Course{}, departments: departments, enrollments: map[string]int{}, maxDegree: map[string]int{}}
	for _, c := range courses {
		m.items[c.ID] = c
	}
	return m
}

func (m *mockCourseRepo) List(ctx context.Context, filter models.CourseFilter) ([]models.CourseDetail, int, error) {
	out := make([]models.CourseDetail, 0, len(m.items))
	for id := range m.items {
		detail, _ := m.FindDetail(ctx, id)
		out = append(out, *detail)
	}
	return out, len(out), nil
}

func (m *mockCourseRepo) FindByID(ctx context.Context, id string) (*models.Course, error) {
	c, ok := m.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &c, nil
}

func (m *mockCourseRepo) FindDetail(ctx context.Context, id string) (*models.CourseDetail, error) {
	c, ok := m.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	detail := models.CourseDetail{Course: c, TraineeCount: m.enrollments[id]}
	if m.departments != nil {
		detail.DepartmentName = m.departments.items[c.DepartmentID].Name
	}
	return &detail, nil
}

func (m *mockCourseRepo) Update(ctx context.Context, course *models.Course, expected *time.Time) error {
	if m.dropOnWrite {
		delete(m.items, course.ID)
	}
	if m.updateErr != nil {
		return m.updateErr
	}
	current, ok := m.items[course.ID]
	if !ok {
		return repository.ErrStaleWrite
	}
	if expected != nil && !current.UpdatedAt.Equal(*expected) {
		return repository.ErrStaleWrite
	}
	course.UpdatedAt = current.UpdatedAt.Add(time.Second)
	m.items[course.ID] = *course
	return nil
}

func (m *mockCourseRepo) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	delete(m.items, id)
	return nil
}

func (m *mockCourseRepo) CountEnrollments(ctx context.Context, id string) (int, error) {
	return m.enrollments[id], nil
}

func (m *mockCourseRepo) MaxEnrolledDegree(ctx context.Context, id string) (int, error) {
	return m.maxDegree[id], nil
}

func (m *mockCourseRepo) CreateWithInstructor(ctx context.Context, course *models.Course, instructor *models.Instructor) error {
	if m.createErr != nil {
		return m.createErr
	}
	course.ID = fmt.Sprintf("course-%d", len(m.items)+1)
	instructor.ID = fmt.Sprintf("instructor-%d", len(m.created)+1)
	instructor.CourseID = &course.ID
	m.items[course.ID] = *course
	m.created = append(m.created, *instructor)
	return nil
}

func (m *mockCourseRepo) Lookup(ctx context.Context) ([]models.LookupItem, error) {
	return []models.LookupItem{{Value: "c1", Text: "Go Basics"}}, nil
}

type mockTraineeRepo struct {
	items     map[string]models.TraineeDetail
	results   map[string][]models.TraineeCourseResult
	enrolled  map[string]map[string]bool
	createErr error
	updateErr error
	deleted   []string
}

func newMockTraineeRepo(trainees ...models.TraineeDetail) *mockTraineeRepo {
	m := &mockTraineeRepo{items: map[string]models.TraineeDetail{}, results: map[string][]models.TraineeCourseResult{}, enrolled: map[string]map[string]bool{}}
	for _, t := range trainees {
		m.items[t.ID] = t
	}
	return m
}

func (m *mockTraineeRepo) List(ctx context.Context, filter models.TraineeFilter) ([]models.TraineeDetail, int, error) {
	out := make([]models.TraineeDetail, 0, len(m.items))
	for _, t := range m.items {
		out = append(out, t)
	}
	return out, len(out), nil
}

func (m *mockTraineeRepo) FindByID(ctx context.Context, id string) (*models.TraineeDetail, error) {
	t, ok := m.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &t, nil
}

func (m *mockTraineeRepo) ListResults(ctx context.Context, id string) ([]models.TraineeCourseResult, error) {
	return append([]models.TraineeCourseResult(nil), m.results[id]...), nil
}

func (m *mockTraineeRepo) ListNotEnrolled(ctx context.Context, courseID string) ([]models.AvailableTrainee, error) {
	var out []models.AvailableTrainee
	for _, t := range m.items {
		if m.enrolled[courseID][t.ID] {
			continue
		}
		out = append(out, models.AvailableTrainee{ID: t.ID, Name: t.Name, DepartmentName: t.DepartmentName})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *mockTraineeRepo) Create(ctx context.Context, trainee *models.Trainee) error {
	if m.createErr != nil {
		return m.createErr
	}
	trainee.ID = fmt.Sprintf("trainee-%d", len(m.items)+1)
	m.items[trainee.ID] = models.TraineeDetail{Trainee: *trainee}
	return nil
}

func (m *mockTraineeRepo) Update(ctx context.Context, trainee *models.Trainee) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.items[trainee.ID] = models.TraineeDetail{Trainee: *trainee}
	return nil
}

func (m *mockTraineeRepo) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	delete(m.items, id)
	return nil
}

type mockEnrollmentRepo struct {
	items     map[string]models.Enrollment
	trainees  *mockTraineeRepo
	createErr error
	skipCheck bool
	seq       int
	// courses, when set, is consulted for the maximum at write time, after
	// beforeWrite has run.
	courses     *mockCourseRepo
	beforeWrite func()
}

func (m *mockEnrollmentRepo) lockedCeiling(enrollment *models.Enrollment) error {
	if m.beforeWrite != nil {
		m.beforeWrite()
	}
	if m.courses == nil {
		return nil
	}
	course, ok := m.courses.items[enrollment.CourseID]
	if !ok {
		return repository.ErrForeignKey
	}
	if enrollment.Degree > course.MaxDegree {
		return fmt.Errorf("write enrollment: %w", repository.ErrAboveMax)
	}
	return nil
}

func newMockEnrollmentRepo(trainees *mockTraineeRepo) *mockEnrollmentRepo {
	return &mockEnrollmentRepo{items: map[string]models.Enrollment{}, trainees: trainees}
}

func pairKey(courseID, traineeID string) string { return courseID + "|" + traineeID }

func (m *mockEnrollmentRepo) Exists(ctx context.Context, courseID, traineeID string) (bool, error) {
	if m.skipCheck {
		return false, nil
	}
	_, ok := m.items[pairKey(courseID, traineeID)]
	return ok, nil
}

func (m *mockEnrollmentRepo) FindByPair(ctx context.Context, courseID, traineeID string) (*models.Enrollment, error) {
	e, ok := m.items[pairKey(courseID, traineeID)]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &e, nil
}

func (m *mockEnrollmentRepo) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if m.createErr != nil {
		return m.createErr
	}
	if err := m.lockedCeiling(enrollment); err != nil {
		return err
	}
	if _, ok := m.items[pairKey(enrollment.CourseID, enrollment.TraineeID)]; ok {
		return fmt.Errorf("create enrollment: %w", repository.ErrDuplicate)
	}
	m.seq++
	enrollment.ID = fmt.Sprintf("enrollment-%d", m.seq)
	m.items[pairKey(enrollment.CourseID, enrollment.TraineeID)] = *enrollment
	if m.trainees != nil {
		if m.trainees.enrolled[enrollment.CourseID] == nil {
			m.trainees.enrolled[enrollment.CourseID] = map[string]bool{}
		}
		m.trainees.enrolled[enrollment.CourseID][enrollment.TraineeID] = true
	}
	return nil
}

func (m *mockEnrollmentRepo) UpdateDegree(ctx context.Context, enrollment *models.Enrollment) error {
	if err := m.lockedCeiling(enrollment); err != nil {
		return err
	}
	m.items[pairKey(enrollment.CourseID, enrollment.TraineeID)] = *enrollment
	return nil
}

func (m *mockEnrollmentRepo) ListByCourse(ctx context.Context, filter models.RosterFilter) ([]models.EnrollmentDetail, int, error) {
	var out []models.EnrollmentDetail
	for _, e := range m.items {
		if e.CourseID != filter.CourseID {
			continue
		}
		detail := models.EnrollmentDetail{Enrollment: e}
		if m.trainees != nil {
			detail.TraineeName = m.trainees.items[e.TraineeID].Name
			detail.DepartmentName = m.trainees.items[e.TraineeID].DepartmentName
		}
		out = append(out, detail)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TraineeName < out[j].TraineeName })
	total := len(out)
	offset := models.PageOffset(filter.Page, models.RosterPageSize)
	if offset > total {
		offset = total
	}
	end := offset + models.RosterPageSize
	if end > total {
		end = total
	}
	return out[offset:end], total, nil
}

func (m *mockEnrollmentRepo) ListAllByCourse(ctx context.Context, courseID, sortBy string) ([]models.EnrollmentDetail, error) {
	var out []models.EnrollmentDetail
	for page := 1; ; page++ {
		rows, total, err := m.ListByCourse(ctx, models.RosterFilter{CourseID: courseID, SortBy: sortBy, Page: page})
		if err != nil {
			return nil, err
		}
		out = append(out, rows...)
		if len(out) >= total {
			return out, nil
		}
	}
}

type mockImageStore struct {
	saved   []string
	removed []string
	saveErr error
	seq     int
}

func (m *mockImageStore) Save(filename string, r io.Reader) (string, error) {
	if m.saveErr != nil {
		return "", m.saveErr
	}
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif":
	default:
		return storage.DefaultImage, nil
	}
	m.seq++
	name := fmt.Sprintf("img-%d%s", m.seq, ext)
	m.saved = append(m.saved, name)
	return name, nil
}

func (m *mockImageStore) Remove(name string) error {
	if name == storage.DefaultImage {
		return nil
	}
	m.removed = append(m.removed, name)
	return nil
}

type mockLookups struct {
	invalidated int
}

func (m *mockLookups) Invalidate(ctx context.Context) { m.invalidated++ }

// failingTransient wraps a real store and fails selected operations.
type failingTransient struct {
	TransientStore
	putErr error
}

func (f *failingTransient) Put(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if f.putErr != nil {
		return f.putErr
	}
	return f.TransientStore.Put(ctx, key, value, ttl)
}

var errBoom = errors.New("boom")

func degree(n int) *int {
	return &n
}
