package models

import "time"

// Instructor teaches at most one course and belongs to one department.
type Instructor struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Salary       float64   `db:"salary" json:"salary"`
	Address      string    `db:"address" json:"address"`
	Image        string    `db:"image" json:"image"`
	DepartmentID string    `db:"department_id" json:"department_id"`
	CourseID     *string   `db:"course_id" json:"course_id,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// InstructorDetail adds department and course names.
type InstructorDetail struct {
	Instructor
	DepartmentName string  `db:"department_name" json:"department_name"`
	CourseName     *string `db:"course_name" json:"course_name,omitempty"`
}

// InstructorFilter holds listing parameters for instructors.
type InstructorFilter struct {
	CourseID string
	Page     int
}
