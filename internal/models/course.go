package models

import "time"

// CourseStatus indicates whether a course accepts enrollments.
type CourseStatus string

const (
	CourseStatusAvailable   CourseStatus = "Available"
	CourseStatusUnavailable CourseStatus = "Unavailable"
)

// Valid reports whether the status is a known value.
func (s CourseStatus) Valid() bool {
	return s == CourseStatusAvailable || s == CourseStatusUnavailable
}

// Course is a catalog entry owned by a department.
type Course struct {
	ID              string       `db:"id" json:"id"`
	Name            string       `db:"name" json:"name"`
	Code            string       `db:"code" json:"code"`
	Description     string       `db:"description" json:"description"`
	Credits         int          `db:"credits" json:"credits"`
	TypicalSemester int          `db:"typical_semester" json:"typical_semester"`
	MaxSeats        int          `db:"max_seats" json:"max_seats"`
	Status          CourseStatus `db:"status" json:"status"`
	DepartmentID    string       `db:"department_id" json:"department_id"`
	CreatedAt       time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time    `db:"updated_at" json:"updated_at"`
}

// CoursePrerequisite is a directed edge course -> prerequisite course.
type CoursePrerequisite struct {
	CourseID             string `db:"course_id" json:"course_id"`
	PrerequisiteCourseID string `db:"prerequisite_course_id" json:"prerequisite_course_id"`
	PrerequisiteName     string `db:"prerequisite_name" json:"prerequisite_name,omitempty"`
}

// CourseDivision tags a course as mandatory or elective within a division.
type CourseDivision struct {
	CourseID    string `db:"course_id" json:"course_id"`
	DivisionID  string `db:"division_id" json:"division_id"`
	IsMandatory bool   `db:"is_mandatory" json:"is_mandatory"`
}

// DivisionCourse is a course as offered to one division.
type DivisionCourse struct {
	Course
	IsMandatory bool `db:"is_mandatory" json:"is_mandatory"`
}

// Division groups students inside a department.
type Division struct {
	ID           string `db:"id" json:"id"`
	Name         string `db:"name" json:"name"`
	DepartmentID string `db:"department_id" json:"department_id"`
}

// CourseFilter provides filters for listing courses.
type CourseFilter struct {
	Search       string
	DepartmentID string
	Status       CourseStatus
	Page         int
	PageSize     int
}

// CourseGradeStat aggregates historical total grades for a course.
type CourseGradeStat struct {
	CourseID    string  `db:"course_id" json:"course_id"`
	MeanTotal   float64 `db:"mean_total" json:"mean_total"`
	SampleCount int     `db:"sample_count" json:"sample_count"`
}
