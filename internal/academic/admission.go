package academic

import (
	"fmt"
	"strings"

	"github.com/noah-isme/academic-progression-api/internal/models"
)

// RejectionReason identifies which admission gate failed.
type RejectionReason string

const (
	ReasonPeriodClosed         RejectionReason = "period_closed"
	ReasonAlreadyEnrolled      RejectionReason = "already_enrolled"
	ReasonAlreadyCompleted     RejectionReason = "already_completed"
	ReasonCreditLimit          RejectionReason = "credit_limit"
	ReasonCourseUnavailable    RejectionReason = "course_unavailable"
	ReasonNotOffered           RejectionReason = "not_offered_to_division"
	ReasonPrerequisitesMissing RejectionReason = "prerequisites_missing"
	ReasonCourseFull           RejectionReason = "course_full"
	ReasonInvalidTransition    RejectionReason = "invalid_transition"
)

// Rejection is a structured, human-readable refusal.
type Rejection struct {
	Reason  RejectionReason `json:"reason"`
	Message string          `json:"message"`
	Missing []string        `json:"missing,omitempty"`
}

// Error implements error so a rejection can travel through error returns.
func (r *Rejection) Error() string {
	return r.Message
}

// PeriodClosed is the rejection for a request outside every enrollment period.
func PeriodClosed() *Rejection {
	return &Rejection{Reason: ReasonPeriodClosed, Message: "enrollment period is closed"}
}

// AdmissionInput is the snapshot the admission gates evaluate.
type AdmissionInput struct {
	PeriodOpen bool
	Student    models.Student
	Course     models.Course
	// Statuses of the student's existing enrollments in this course.
	ExistingStatuses []models.EnrollmentStatus
	// Credits of the student's InProgress enrollments in the current term.
	TermCredits int
	CreditCap   int
	Offered     bool
	Completed   map[string]bool
	// Prerequisite edges of the course, with names.
	Prerequisites []models.CoursePrerequisite
	// InProgress enrollments of the course in the current term.
	SeatsTaken int
}

// EvaluateAdmission applies the ordered admission gates and returns the first
// failure, or nil when the student may enroll. Existence of the student and
// course is the caller's concern.
func EvaluateAdmission(in AdmissionInput) *Rejection {
	if !in.PeriodOpen {
		return PeriodClosed()
	}
	if r := DuplicateGate(in.ExistingStatuses); r != nil {
		return r
	}
	if r := CreditLimitGate(in.TermCredits, in.Course.Credits, in.CreditCap); r != nil {
		return r
	}
	if in.Course.Status != models.CourseStatusAvailable {
		return &Rejection{Reason: ReasonCourseUnavailable, Message: fmt.Sprintf("course %s is not available", in.Course.Code)}
	}
	if !in.Offered {
		return &Rejection{Reason: ReasonNotOffered, Message: fmt.Sprintf("course %s is not offered to the student's division", in.Course.Code)}
	}
	if missing := MissingPrerequisites(in.Prerequisites, in.Completed); len(missing) > 0 {
		return &Rejection{
			Reason:  ReasonPrerequisitesMissing,
			Message: "missing prerequisites: " + strings.Join(missing, ", "),
			Missing: missing,
		}
	}
	if r := SeatGate(in.SeatsTaken, in.Course.MaxSeats); r != nil {
		return r
	}
	return nil
}

// DuplicateGate rejects when the student is taking or has passed the course.
func DuplicateGate(statuses []models.EnrollmentStatus) *Rejection {
	for _, st := range statuses {
		switch st {
		case models.EnrollmentStatusInProgress:
			return &Rejection{Reason: ReasonAlreadyEnrolled, Message: "student is already enrolled in this course"}
		case models.EnrollmentStatusCompleted:
			return &Rejection{Reason: ReasonAlreadyCompleted, Message: "student has already completed this course"}
		}
	}
	return nil
}

// CreditLimitGate rejects when the new course would push term credits past the cap.
func CreditLimitGate(termCredits, courseCredits, creditCap int) *Rejection {
	if termCredits+courseCredits > creditCap {
		return &Rejection{
			Reason:  ReasonCreditLimit,
			Message: fmt.Sprintf("credit limit exceeded: %d + %d credits exceeds the %d credit cap", termCredits, courseCredits, creditCap),
		}
	}
	return nil
}

// SeatGate rejects when the course has no seats left in the term.
func SeatGate(seatsTaken, maxSeats int) *Rejection {
	if seatsTaken >= maxSeats {
		return &Rejection{Reason: ReasonCourseFull, Message: fmt.Sprintf("course is full (%d/%d seats taken)", seatsTaken, maxSeats)}
	}
	return nil
}

// MissingPrerequisites lists prerequisite names not in the completed set.
func MissingPrerequisites(prereqs []models.CoursePrerequisite, completed map[string]bool) []string {
	var missing []string
	for _, p := range prereqs {
		if completed[p.PrerequisiteCourseID] {
			continue
		}
		name := p.PrerequisiteName
		if name == "" {
			name = p.PrerequisiteCourseID
		}
		missing = append(missing, name)
	}
	return missing
}

// CanCancel only allows InProgress -> Cancelled.
func CanCancel(status models.EnrollmentStatus) *Rejection {
	if status == models.EnrollmentStatusInProgress {
		return nil
	}
	return &Rejection{
		Reason:  ReasonInvalidTransition,
		Message: fmt.Sprintf("enrollment cannot be cancelled from status %s", status),
	}
}
