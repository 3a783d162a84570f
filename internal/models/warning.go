package models

import "time"

// WarningType enumerates the kinds of academic warnings.
type WarningType string

const (
	WarningTypeLowGPA          WarningType = "low_gpa"
	WarningTypeFailingCourses  WarningType = "failing_courses"
	WarningTypeDismissalRisk   WarningType = "dismissal_risk"
	WarningTypeCreditShortfall WarningType = "credit_shortfall"
	WarningTypeProbation       WarningType = "probation"
	WarningTypeAdministrative  WarningType = "administrative"
)

// Valid reports whether the type is a known value.
func (t WarningType) Valid() bool {
	switch t {
	case WarningTypeLowGPA, WarningTypeFailingCourses, WarningTypeDismissalRisk,
		WarningTypeCreditShortfall, WarningTypeProbation, WarningTypeAdministrative:
		return true
	}
	return false
}

// Manual reports whether the type is only ever issued by staff.
func (t WarningType) Manual() bool {
	return t == WarningTypeProbation || t == WarningTypeAdministrative
}

// WarningStatus is the lifecycle state of a warning record.
type WarningStatus string

const (
	WarningStatusActive     WarningStatus = "Active"
	WarningStatusResolved   WarningStatus = "Resolved"
	WarningStatusSuperseded WarningStatus = "Superseded"
)

// Warning severity bounds.
const (
	MinWarningLevel = 1
	MaxWarningLevel = 4
)

// AcademicWarning is one issued warning for a student.
type AcademicWarning struct {
	ID             string        `db:"id" json:"id"`
	StudentID      string        `db:"student_id" json:"student_id"`
	Type           WarningType   `db:"warning_type" json:"warning_type"`
	Level          int           `db:"warning_level" json:"warning_level"`
	Description    string        `db:"description" json:"description"`
	SemesterLabel  string        `db:"semester_label" json:"semester_label"`
	IssueDate      time.Time     `db:"issue_date" json:"issue_date"`
	ResolvedDate   *time.Time    `db:"resolved_date" json:"resolved_date,omitempty"`
	Status         WarningStatus `db:"status" json:"status"`
	ActionRequired string        `db:"action_required" json:"action_required"`
	Notes          string        `db:"notes" json:"notes"`
}

// WarningDetail adds the student name for listings and exports.
type WarningDetail struct {
	AcademicWarning
	StudentName string `db:"student_name" json:"student_name"`
}

// WarningFilter provides filters for listing warnings.
type WarningFilter struct {
	StudentID string
	Type      WarningType
	Status    WarningStatus
	MinLevel  int
	Page      int
	PageSize  int
}
