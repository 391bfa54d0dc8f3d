package models

import "time"

// Trainee is a learner registered in a department.
type Trainee struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Address      string    `db:"address" json:"address"`
	Image        string    `db:"image" json:"image"`
	DepartmentID string    `db:"department_id" json:"department_id"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// TraineeDetail adds the department name.
type TraineeDetail struct {
	Trainee
	DepartmentName string `db:"department_name" json:"department_name"`
}

// TraineeFilter holds listing parameters for trainees.
type TraineeFilter struct {
	Page int
}

// TraineeCourseResult is one line of a trainee's academic history.
type TraineeCourseResult struct {
	CourseID      string       `db:"course_id" json:"course_id"`
	CourseName    string       `db:"course_name" json:"course_name"`
	Degree        int          `db:"degree" json:"degree"`
	MaxDegree     int          `db:"max_degree" json:"max_degree"`
	MinPassDegree int          `db:"min_pass_degree" json:"min_pass_degree"`
	Status        ResultStatus `db:"-" json:"status"`
}

// TraineeProfile is the trainee detail view.
type TraineeProfile struct {
	TraineeDetail
	Courses []TraineeCourseResult `json:"courses"`
}

// AvailableTrainee is a trainee that can still be enrolled in a course.
type AvailableTrainee struct {
	ID             string `db:"id" json:"id"`
	Name           string `db:"name" json:"name"`
	DepartmentName string `db:"department_name" json:"department_name"`
	Label          string `db:"-" json:"label"`
}
