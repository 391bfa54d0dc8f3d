package models

import "time"

// Department groups instructors, trainees and courses.
type Department struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Manager   string    `db:"manager" json:"manager"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// DepartmentFilter holds listing parameters for departments.
type DepartmentFilter struct {
	Page int
}

// DepartmentInstructor is an instructor row on the department detail view.
type DepartmentInstructor struct {
	ID         string  `db:"id" json:"id"`
	Name       string  `db:"name" json:"name"`
	CourseName *string `db:"course_name" json:"course_name,omitempty"`
	Image      string  `db:"image" json:"image"`
}

// DepartmentTrainee is a trainee row on the department detail view.
type DepartmentTrainee struct {
	ID    string `db:"id" json:"id"`
	Name  string `db:"name" json:"name"`
	Image string `db:"image" json:"image"`
}

// DepartmentDetail is a department with its people.
type DepartmentDetail struct {
	Department
	Instructors []DepartmentInstructor `json:"instructors"`
	Trainees    []DepartmentTrainee    `json:"trainees"`
}

// DepartmentDependents counts rows that reference a department.
type DepartmentDependents struct {
	Courses     int `db:"courses" json:"courses"`
	Instructors int `db:"instructors" json:"instructors"`
	Trainees    int `db:"trainees" json:"trainees"`
}

// Any reports whether anything still references the department.
func (d DepartmentDependents) Any() bool {
	return d.Courses+d.Instructors+d.Trainees > 0
}
