package models

import "strings"

type returnKind int

const (
	returnGlobalList returnKind = iota
	returnDepartmentDetail
	returnCourseDetail
)

// ReturnTarget is where a mutating action sends the user afterwards.
// Only the constructors below produce values, so the set of targets is closed.
type ReturnTarget struct {
	kind returnKind
	id   string
}

// ReturnToList targets the global list of the acting resource.
func ReturnToList() ReturnTarget {
	return ReturnTarget{kind: returnGlobalList}
}

// ReturnToDepartment targets a department detail page.
func ReturnToDepartment(id string) ReturnTarget {
	if id == "" {
		return ReturnToList()
	}
	return ReturnTarget{kind: returnDepartmentDetail, id: id}
}

// ReturnToCourse targets a course's instructor roster.
func ReturnToCourse(id string) ReturnTarget {
	if id == "" {
		return ReturnToList()
	}
	return ReturnTarget{kind: returnCourseDetail, id: id}
}

// ParseReturnTarget reads the returnTo/deptId/courseId query triple.
func ParseReturnTarget(returnTo, departmentID, courseID string) ReturnTarget {
	switch strings.ToLower(strings.TrimSpace(returnTo)) {
	case "department":
		return ReturnToDepartment(strings.TrimSpace(departmentID))
	case "course":
		return ReturnToCourse(strings.TrimSpace(courseID))
	default:
		return ReturnToList()
	}
}

// Resolve maps the target to a path; listPath is used for the global list.
func (t ReturnTarget) Resolve(listPath string) string {
	switch t.kind {
	case returnDepartmentDetail:
		return "/departments/" + t.id
	case returnCourseDetail:
		return "/courses/" + t.id + "/instructors"
	default:
		return listPath
	}
}

// IsList reports whether the target is the global list.
func (t ReturnTarget) IsList() bool {
	return t.kind == returnGlobalList
}
