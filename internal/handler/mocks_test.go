package handler

import (
	"context"

	"github.com/noah-isme/teachspace-api/internal/models"
	"github.com/noah-isme/teachspace-api/internal/service"
)

type flashMock struct {
	set       []*models.Flash
	sessionID string
	pending   *models.Flash
}

func (m *flashMock) Set(ctx context.Context, sessionID string, flash *models.Flash) {
	m.sessionID = sessionID
	m.set = append(m.set, flash)
}

func (m *flashMock) Pop(ctx context.Context, sessionID string) *models.Flash {
	m.sessionID = sessionID
	flash := m.pending
	m.pending = nil
	return flash
}

type departmentServiceMock struct {
	listResp   []models.Department
	lastFilter models.DepartmentFilter
	createReq  service.DepartmentRequest
	deleteErr  error
}

func (m *departmentServiceMock) List(ctx context.Context, filter models.DepartmentFilter) ([]models.Department, *models.Pagination, error) {
	m.lastFilter = filter
	return m.listResp, models.NewPagination(filter.Page, models.DepartmentPageSize, len(m.listResp)), nil
}

func (m *departmentServiceMock) Get(ctx context.Context, id string) (*models.DepartmentDetail, error) {
	return &models.DepartmentDetail{Department: models.Department{ID: id}}, nil
}

func (m *departmentServiceMock) Create(ctx context.Context, req service.DepartmentRequest) (*models.Department, error) {
	m.createReq = req
	return &models.Department{ID: "d1", Name: req.Name, Manager: req.Manager}, nil
}

func (m *departmentServiceMock) Update(ctx context.Context, id string, req service.DepartmentRequest) (*models.Department, error) {
	return &models.Department{ID: id, Name: req.Name}, nil
}

func (m *departmentServiceMock) Delete(ctx context.Context, id string) error {
	return m.deleteErr
}

type wizardServiceMock struct {
	pending     *models.PendingCourse
	err         error
	completeReq service.WizardInstructorRequest
	sessionID   string
}

func (m *wizardServiceMock) Start(ctx context.Context, sessionID string, req service.CourseRequest) (*models.PendingCourse, error) {
	m.sessionID = sessionID
	if m.err != nil {
		return nil, m.err
	}
	return &models.PendingCourse{Name: req.Name, MaxDegree: req.MaxDegree, DepartmentID: req.DepartmentID}, nil
}

func (m *wizardServiceMock) Pending(ctx context.Context, sessionID string) (*models.PendingCourse, error) {
	m.sessionID = sessionID
	return m.pending, m.err
}

func (m *wizardServiceMock) Complete(ctx context.Context, sessionID string, req service.WizardInstructorRequest) (*models.Course, *models.Instructor, error) {
	m.sessionID = sessionID
	m.completeReq = req
	if m.err != nil {
		return nil, nil, m.err
	}
	course := &models.Course{ID: "c9", Name: "Go"}
	return course, &models.Instructor{ID: "i1", Name: req.Name, CourseID: &course.ID}, nil
}

func (m *wizardServiceMock) Cancel(ctx context.Context, sessionID string) error {
	m.sessionID = sessionID
	return nil
}

type lookupServiceMock struct{}

func (lookupServiceMock) Departments(ctx context.Context) ([]models.LookupItem, error) {
	return []models.LookupItem{{Value: "d1", Text: "Engineering"}}, nil
}

func (lookupServiceMock) Courses(ctx context.Context) ([]models.LookupItem, error) {
	return []models.LookupItem{{Value: "c1", Text: "Go"}}, nil
}

type traineeServiceMock struct {
	createReq  service.TraineeRequest
	uploadName string
	uploadBody string
}

func (m *traineeServiceMock) List(ctx context.Context, filter models.TraineeFilter) ([]models.TraineeDetail, *models.Pagination, error) {
	return nil, models.NewPagination(filter.Page, models.TraineePageSize, 0), nil
}

func (m *traineeServiceMock) Get(ctx context.Context, id string) (*models.TraineeProfile, error) {
	return &models.TraineeProfile{}, nil
}

func (m *traineeServiceMock) Create(ctx context.Context, req service.TraineeRequest, upload *service.ImageUpload) (*models.Trainee, error) {
	m.createReq = req
	if upload != nil {
		m.uploadName = upload.Filename
		buf := make([]byte, 64)
		n, _ := upload.Content.Read(buf)
		m.uploadBody = string(buf[:n])
	}
	return &models.Trainee{ID: "t1", Name: req.Name, DepartmentID: req.DepartmentID}, nil
}

func (m *traineeServiceMock) Update(ctx context.Context, id string, req service.TraineeRequest, upload *service.ImageUpload) (*models.Trainee, error) {
	return &models.Trainee{ID: id, Name: req.Name}, nil
}

func (m *traineeServiceMock) Delete(ctx context.Context, id string) error {
	return nil
}

type enrollmentServiceMock struct {
	enrollReq  service.EnrollRequest
	degreeReq  service.DegreeRequest
	enrollErr  error
	lastFilter models.RosterFilter
}

func (m *enrollmentServiceMock) Enroll(ctx context.Context, courseID string, req service.EnrollRequest) (*models.Enrollment, error) {
	m.enrollReq = req
	if m.enrollErr != nil {
		return nil, m.enrollErr
	}
	return &models.Enrollment{ID: "e1", CourseID: courseID, TraineeID: req.TraineeID, Degree: valueOf(req.Degree)}, nil
}

func (m *enrollmentServiceMock) UpdateDegree(ctx context.Context, courseID, traineeID string, req service.DegreeRequest) (*models.Enrollment, error) {
	m.degreeReq = req
	return &models.Enrollment{CourseID: courseID, TraineeID: traineeID, Degree: valueOf(req.Degree)}, nil
}

func valueOf(n *int) int {
	if n == nil {
		return 0
	}
	return *n
}

func (m *enrollmentServiceMock) GetResult(ctx context.Context, courseID, traineeID string) (*service.ResultView, error) {
	return &service.ResultView{}, nil
}

func (m *enrollmentServiceMock) ListAvailableTrainees(ctx context.Context, courseID string) ([]models.AvailableTrainee, error) {
	return []models.AvailableTrainee{{ID: "t1", Label: "Sara (Engineering) - #t1"}}, nil
}

func (m *enrollmentServiceMock) Roster(ctx context.Context, filter models.RosterFilter) (*models.CourseRoster, *models.Pagination, error) {
	m.lastFilter = filter
	return &models.CourseRoster{CourseID: filter.CourseID}, models.NewPagination(filter.Page, models.RosterPageSize, 21), nil
}

type exporterMock struct {
	format string
}

func (m *exporterMock) Roster(ctx context.Context, courseID, format, sortBy string) (*service.ExportFile, error) {
	m.format = format
	return &service.ExportFile{Filename: "go-results.csv", ContentType: "text/csv; charset=utf-8", Data: []byte("Trainee\n")}, nil
}

type instructorListerMock struct {
	lastFilter models.InstructorFilter
}

func (m *instructorListerMock) List(ctx context.Context, filter models.InstructorFilter) ([]models.InstructorDetail, *models.Pagination, error) {
	m.lastFilter = filter
	return nil, models.NewPagination(filter.Page, models.InstructorPageSize, 0), nil
}
