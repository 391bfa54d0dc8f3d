package models

import "time"

// ResultStatus is the derived pass/fail outcome of an enrollment.
type ResultStatus string

// Possible result statuses.
const (
	ResultStatusPass ResultStatus = "PASS"
	ResultStatusFail ResultStatus = "FAIL"
)

// Enrollment links one trainee to one course with a degree.
type Enrollment struct {
	ID        string    `db:"id" json:"id"`
	CourseID  string    `db:"course_id" json:"course_id"`
	TraineeID string    `db:"trainee_id" json:"trainee_id"`
	Degree    int       `db:"degree" json:"degree"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// EnrollmentDetail is a roster row.
type EnrollmentDetail struct {
	Enrollment
	TraineeName    string       `db:"trainee_name" json:"trainee_name"`
	TraineeImage   string       `db:"trainee_image" json:"trainee_image"`
	DepartmentName string       `db:"department_name" json:"department_name"`
	CourseName     string       `db:"course_name" json:"course_name"`
	Status         ResultStatus `db:"-" json:"status"`
}

// Roster sort orders.
const (
	RosterSortName       = "name"
	RosterSortDepartment = "department"
)

// RosterFilter holds listing parameters for a course roster.
type RosterFilter struct {
	CourseID string
	Page     int
	SortBy   string
}

// CourseRoster is the per-course results view.
type CourseRoster struct {
	CourseID       string             `json:"course_id"`
	CourseName     string             `json:"course_name"`
	MaxDegree      int                `json:"max_degree"`
	MinPassDegree  int                `json:"min_pass_degree"`
	DepartmentName string             `json:"department_name"`
	Results        []EnrollmentDetail `json:"results"`
}
