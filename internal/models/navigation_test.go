package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseReturnTarget(t *testing.T) {
	cases := []struct {
		name                       string
		returnTo, deptID, courseID string
		want                       string
	}{
		{name: "default", want: "/trainees"},
		{name: "department", returnTo: "Department", deptID: "d7", want: "/departments/d7"},
		{name: "department without id", returnTo: "department", want: "/trainees"},
		{name: "course", returnTo: "Course", courseID: " c3 ", want: "/courses/c3/instructors"},
		{name: "unknown", returnTo: "Elsewhere", deptID: "d7", want: "/trainees"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			target := ParseReturnTarget(tc.returnTo, tc.deptID, tc.courseID)
			assert.Equal(t, tc.want, target.Resolve("/trainees"))
		})
	}
	assert.True(t, ReturnToList().IsList())
	assert.False(t, ReturnToCourse("c1").IsList())
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(0, RosterPageSize, 21)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 2, p.TotalPages)

	empty := NewPagination(3, DepartmentPageSize, 0)
	assert.Equal(t, 0, empty.TotalPages)
	assert.Equal(t, 3, empty.Page)

	assert.Equal(t, 0, PageOffset(-4, 10))
	assert.Equal(t, 20, PageOffset(2, 20))
}

func TestDepartmentDependentsAny(t *testing.T) {
	assert.False(t, DepartmentDependents{}.Any())
	assert.True(t, DepartmentDependents{Trainees: 1}.Any())
}
