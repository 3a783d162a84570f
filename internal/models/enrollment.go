package models

import "time"

// EnrollmentStatus represents the lifecycle of an enrollment. Transitions out
// of InProgress are one-way.
type EnrollmentStatus string

// Possible enrollment statuses.
const (
	EnrollmentStatusInProgress EnrollmentStatus = "InProgress"
	EnrollmentStatusCompleted  EnrollmentStatus = "Completed"
	EnrollmentStatusFailed     EnrollmentStatus = "Failed"
	EnrollmentStatusCancelled  EnrollmentStatus = "Cancelled"
)

// Valid reports whether the status is a known value.
func (s EnrollmentStatus) Valid() bool {
	switch s {
	case EnrollmentStatusInProgress, EnrollmentStatusCompleted, EnrollmentStatusFailed, EnrollmentStatusCancelled:
		return true
	}
	return false
}

// Grade bounds for the three assessment components.
const (
	MaxExam1Grade  = 30
	MaxExam2Grade  = 30
	MaxFinalGrade  = 90
	MaxTotalGrade  = 150
	PassTotalGrade = 75
)

// Enrollment captures a student's registration to a course within a term.
type Enrollment struct {
	ID            string           `db:"id" json:"id"`
	StudentID     string           `db:"student_id" json:"student_id"`
	CourseID      string           `db:"course_id" json:"course_id"`
	SemesterLabel string           `db:"semester_label" json:"semester_label"`
	Exam1Grade    *float64         `db:"exam1_grade" json:"exam1_grade"`
	Exam2Grade    *float64         `db:"exam2_grade" json:"exam2_grade"`
	FinalGrade    *float64         `db:"final_grade" json:"final_grade"`
	AddedDate     time.Time        `db:"added_date" json:"added_date"`
	CancelledDate *time.Time       `db:"cancelled_date" json:"cancelled_date,omitempty"`
	Status        EnrollmentStatus `db:"completion_status" json:"completion_status"`
}

// TotalGrade sums the three components; ok is false while any is missing.
func (e Enrollment) TotalGrade() (total float64, ok bool) {
	if e.Exam1Grade == nil || e.Exam2Grade == nil || e.FinalGrade == nil {
		return 0, false
	}
	return *e.Exam1Grade + *e.Exam2Grade + *e.FinalGrade, true
}

// Passed reports whether a fully graded enrollment meets the pass threshold.
func (e Enrollment) Passed() bool {
	total, ok := e.TotalGrade()
	return ok && total >= PassTotalGrade
}

// EnrollmentDetail enriches Enrollment with course info.
type EnrollmentDetail struct {
	Enrollment
	CourseName    string `db:"course_name" json:"course_name"`
	CourseCode    string `db:"course_code" json:"course_code"`
	CourseCredits int    `db:"course_credits" json:"course_credits"`
	IsMandatory   bool   `db:"is_mandatory" json:"is_mandatory"`
}

// EnrollmentFilter provides filters for listing enrollments.
type EnrollmentFilter struct {
	StudentID     string
	CourseID      string
	SemesterLabel string
	Status        EnrollmentStatus
	Page          int
	PageSize      int
}

// AdmissionLimits are re-checked under lock immediately before insertion.
type AdmissionLimits struct {
	MaxCredits int
	MaxSeats   int
	Credits    int
}
