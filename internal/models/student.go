package models

import "time"

// MaxTrackedSemesters is the number of per-semester GPA slots stored per student.
const MaxTrackedSemesters = 8

// StudentStatus represents whether a student is currently registered.
type StudentStatus string

const (
	StudentStatusActive   StudentStatus = "active"
	StudentStatusInactive StudentStatus = "inactive"
)

// Valid reports whether the status is a known value.
func (s StudentStatus) Valid() bool {
	return s == StudentStatusActive || s == StudentStatusInactive
}

// Student represents a learner registered in a division.
type Student struct {
	ID               string        `db:"id" json:"id"`
	Name             string        `db:"name" json:"name"`
	DivisionID       string        `db:"division_id" json:"division_id"`
	CurrentSemester  int           `db:"current_semester" json:"current_semester"`
	CreditsCompleted int           `db:"credits_completed" json:"credits_completed"`
	GPASem1          *float64      `db:"gpa_sem1" json:"gpa_sem1,omitempty"`
	GPASem2          *float64      `db:"gpa_sem2" json:"gpa_sem2,omitempty"`
	GPASem3          *float64      `db:"gpa_sem3" json:"gpa_sem3,omitempty"`
	GPASem4          *float64      `db:"gpa_sem4" json:"gpa_sem4,omitempty"`
	GPASem5          *float64      `db:"gpa_sem5" json:"gpa_sem5,omitempty"`
	GPASem6          *float64      `db:"gpa_sem6" json:"gpa_sem6,omitempty"`
	GPASem7          *float64      `db:"gpa_sem7" json:"gpa_sem7,omitempty"`
	GPASem8          *float64      `db:"gpa_sem8" json:"gpa_sem8,omitempty"`
	Status           StudentStatus `db:"status" json:"status"`
	CreatedAt        time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time     `db:"updated_at" json:"updated_at"`
}

// SemesterGPAs returns the sparse per-semester GPA slots, index 0 = semester 1.
func (s Student) SemesterGPAs() [MaxTrackedSemesters]*float64 {
	return [MaxTrackedSemesters]*float64{s.GPASem1, s.GPASem2, s.GPASem3, s.GPASem4, s.GPASem5, s.GPASem6, s.GPASem7, s.GPASem8}
}

// SetSemesterGPA assigns the GPA slot for a 1-based semester.
func (s *Student) SetSemesterGPA(semester int, gpa *float64) bool {
	slots := []**float64{&s.GPASem1, &s.GPASem2, &s.GPASem3, &s.GPASem4, &s.GPASem5, &s.GPASem6, &s.GPASem7, &s.GPASem8}
	if semester < 1 || semester > len(slots) {
		return false
	}
	*slots[semester-1] = gpa
	return true
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search     string
	DivisionID string
	Status     StudentStatus
	Page       int
	PageSize   int
}
