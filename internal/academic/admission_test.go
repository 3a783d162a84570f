package academic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academic-progression-api/internal/models"
)

func baseAdmission() AdmissionInput {
	return AdmissionInput{
		PeriodOpen: true,
		Student:    studentWithGPAs(3, 3.0, 3.2),
		Course: models.Course{
			ID: "c-db2", Code: "DB2", Name: "Databases II", Credits: 3, MaxSeats: 30,
			Status: models.CourseStatusAvailable,
		},
		CreditCap: FullCreditCap,
		Offered:   true,
		Completed: map[string]bool{"c-db1": true},
		Prerequisites: []models.CoursePrerequisite{
			{CourseID: "c-db2", PrerequisiteCourseID: "c-db1", PrerequisiteName: "Databases I"},
		},
		SeatsTaken: 10,
	}
}

func TestEvaluateAdmissionAccepts(t *testing.T) {
	assert.Nil(t, EvaluateAdmission(baseAdmission()))
}

func TestEvaluateAdmissionGates(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*AdmissionInput)
		reason RejectionReason
	}{
		{"period closed", func(in *AdmissionInput) { in.PeriodOpen = false }, ReasonPeriodClosed},
		{"already enrolled", func(in *AdmissionInput) {
			in.ExistingStatuses = []models.EnrollmentStatus{models.EnrollmentStatusCancelled, models.EnrollmentStatusInProgress}
		}, ReasonAlreadyEnrolled},
		{"already completed", func(in *AdmissionInput) {
			in.ExistingStatuses = []models.EnrollmentStatus{models.EnrollmentStatusCompleted}
		}, ReasonAlreadyCompleted},
		{"credit limit", func(in *AdmissionInput) { in.TermCredits = 16 }, ReasonCreditLimit},
		{"unavailable", func(in *AdmissionInput) { in.Course.Status = models.CourseStatusUnavailable }, ReasonCourseUnavailable},
		{"not offered", func(in *AdmissionInput) { in.Offered = false }, ReasonNotOffered},
		{"prerequisite", func(in *AdmissionInput) { in.Completed = map[string]bool{} }, ReasonPrerequisitesMissing},
		{"full", func(in *AdmissionInput) { in.SeatsTaken = 30 }, ReasonCourseFull},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := baseAdmission()
			tc.mutate(&in)
			r := EvaluateAdmission(in)
			require.NotNil(t, r)
			assert.Equal(t, tc.reason, r.Reason)
			assert.NotEmpty(t, r.Error())
		})
	}
}

func TestEvaluateAdmissionFailedCourseMayBeRetaken(t *testing.T) {
	in := baseAdmission()
	in.ExistingStatuses = []models.EnrollmentStatus{models.EnrollmentStatusFailed, models.EnrollmentStatusCancelled}
	assert.Nil(t, EvaluateAdmission(in))
}

func TestEvaluateAdmissionFirstFailureWins(t *testing.T) {
	in := baseAdmission()
	in.TermCredits = 18
	in.SeatsTaken = 30
	in.Offered = false
	r := EvaluateAdmission(in)
	require.NotNil(t, r)
	assert.Equal(t, ReasonCreditLimit, r.Reason)
}

func TestEvaluateAdmissionCourseFull(t *testing.T) {
	in := baseAdmission()
	in.SeatsTaken = 30
	r := EvaluateAdmission(in)
	require.NotNil(t, r)
	assert.Equal(t, ReasonCourseFull, r.Reason)
	assert.Contains(t, r.Message, "course is full")
}

func TestEvaluateAdmissionNamesMissingPrerequisite(t *testing.T) {
	in := baseAdmission()
	in.Completed = nil
	r := EvaluateAdmission(in)
	require.NotNil(t, r)
	assert.Equal(t, []string{"Databases I"}, r.Missing)
	assert.Contains(t, r.Message, "Databases I")
}

func TestCreditLimitGateAllowsExactCap(t *testing.T) {
	assert.Nil(t, CreditLimitGate(15, 3, 18))
	assert.NotNil(t, CreditLimitGate(8, 3, ReducedCreditCap))
}

func TestCanCancel(t *testing.T) {
	assert.Nil(t, CanCancel(models.EnrollmentStatusInProgress))
	for _, st := range []models.EnrollmentStatus{models.EnrollmentStatusCompleted, models.EnrollmentStatusFailed, models.EnrollmentStatusCancelled} {
		r := CanCancel(st)
		require.NotNil(t, r)
		assert.Equal(t, ReasonInvalidTransition, r.Reason)
		assert.Contains(t, r.Message, string(st))
	}
}
