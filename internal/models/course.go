package models

import "time"

// Course is a unit of study with its own grading scale.
type Course struct {
	ID            string    `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	MaxDegree     int       `db:"max_degree" json:"max_degree"`
	MinPassDegree int       `db:"min_pass_degree" json:"min_pass_degree"`
	DepartmentID  string    `db:"department_id" json:"department_id"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// CourseDetail enriches Course with department and roster counts.
type CourseDetail struct {
	Course
	DepartmentName  string `db:"department_name" json:"department_name"`
	InstructorCount int    `db:"instructor_count" json:"instructor_count"`
	TraineeCount    int    `db:"trainee_count" json:"trainee_count"`
}

// CourseFilter holds listing parameters for courses.
type CourseFilter struct {
	Page int
}

// PendingCourse is step one of the course wizard, held until the first
// instructor is supplied.
type PendingCourse struct {
	Name           string    `json:"name"`
	MaxDegree      int       `json:"max_degree"`
	MinPassDegree  int       `json:"min_pass_degree"`
	DepartmentID   string    `json:"department_id"`
	DepartmentName string    `json:"department_name"`
	StartedAt      time.Time `json:"started_at"`
}
