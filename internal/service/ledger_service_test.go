package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/academic-progression-api/internal/academic"
	"github.com/noah-isme/academic-progression-api/internal/models"
	"github.com/noah-isme/academic-progression-api/pkg/clock"
	appErrors "github.com/noah-isme/academic-progression-api/pkg/errors"
)

func newLedgerFixture(w *world) *LedgerService {
	return NewLedgerService(fakeStudents{w}, fakeEnrollments{w}, fakeCourses{w}, fakeWarnings{w}, clock.Fixed(openNow), nil)
}

func TestLedgerServiceSummary(t *testing.T) {
	w := newWorld()
	w.addStudent(models.Student{ID: "stu-1", Name: "Ada", CurrentSemester: 2, GPASem1: ptr(3.8)})
	svc := newLedgerFixture(w)

	summary, err := svc.Summary(context.Background(), "stu-1")
	require.NoError(t, err)
	assert.Equal(t, 3.8, summary.CumulativeGPA)
	assert.Equal(t, academic.FullCreditCap, summary.CreditTier)
	assert.Equal(t, []float64{3.8}, summary.GPAHistory)
	assert.Equal(t, academic.StatusExcellent, summary.Status)
	assert.Equal(t, academic.TrendInsufficientData, summary.Trend)
	assert.Equal(t, fallTerm, summary.SemesterLabel)
	assert.Empty(t, summary.ActiveWarnings)
}

func TestLedgerServiceSummaryLogsStanding(t *testing.T) {
	w := newWorld()
	w.addStudent(models.Student{ID: "stu-1", Name: "Ada", CurrentSemester: 2, GPASem1: ptr(3.8)})
	core, logs := observer.New(zapcore.DebugLevel)
	svc := NewLedgerService(fakeStudents{w}, fakeEnrollments{w}, fakeCourses{w}, fakeWarnings{w}, clock.Fixed(openNow), zap.New(core))

	_, err := svc.Summary(context.Background(), "stu-1")
	require.NoError(t, err)

	entries := logs.FilterMessage("academic summary computed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "stu-1", fields["student_id"])
	assert.Equal(t, 3.8, fields["cumulative_gpa"])
	assert.Equal(t, string(academic.StatusExcellent), fields["academic_status"])
	assert.EqualValues(t, 0, fields["active_warnings"])
}

func TestLedgerServiceCreditsAndGraduation(t *testing.T) {
	w := newWorld()
	w.addStudent(models.Student{ID: "stu-1", CurrentSemester: 4, GPASem1: ptr(1.9), GPASem2: ptr(1.8), GPASem3: ptr(1.7)})
	w.addCourse(models.Course{ID: "m1", Code: "M1", Credits: 4}, true)
	w.addCourse(models.Course{ID: "m2", Code: "M2", Credits: 3}, true)
	w.addCourse(models.Course{ID: "e1", Code: "E1", Credits: 2}, false)
	w.addCourse(models.Course{ID: "e2", Code: "E2", Credits: 2}, false)
	w.addEnrollment("stu-1", "m1", models.EnrollmentStatusCompleted, "Fall 2023", openNow.AddDate(-1, 0, 0))
	// A repeated completion counts once.
	w.addEnrollment("stu-1", "m1", models.EnrollmentStatusCompleted, "Spring 2024", openNow.AddDate(0, -5, 0))
	w.addEnrollment("stu-1", "e1", models.EnrollmentStatusCompleted, "Spring 2024", openNow.AddDate(0, -5, 0))
	w.addEnrollment("stu-1", "m2", models.EnrollmentStatusFailed, "Spring 2024", openNow.AddDate(0, -5, 0))
	w.warnings = []models.AcademicWarning{{ID: "wrn-1", StudentID: "stu-1", Type: models.WarningTypeLowGPA, Level: 3, Status: models.WarningStatusActive}}
	svc := newLedgerFixture(w)

	summary, err := svc.Summary(context.Background(), "stu-1")
	require.NoError(t, err)
	assert.Equal(t, 1.8, summary.CumulativeGPA)
	assert.Equal(t, academic.ReducedCreditCap, summary.CreditTier)
	assert.Equal(t, academic.StatusAtRisk, summary.Status)
	assert.Equal(t, academic.TrendDeclining, summary.Trend)
	assert.Equal(t, 1, summary.FailingCourses)

	credits := summary.Credits
	assert.Equal(t, 6, credits.CompletedCredits)
	assert.Equal(t, 4, credits.MandatoryCompleted)
	assert.Equal(t, 2, credits.ElectiveCompleted)
	assert.Equal(t, 92, credits.MandatoryRemaining)
	require.Len(t, credits.RemainingMandatory, 1)
	assert.Equal(t, "m2", credits.RemainingMandatory[0].CourseID)
	require.Len(t, credits.RemainingElective, 1)
	assert.Equal(t, "e2", credits.RemainingElective[0].CourseID)

	assert.False(t, summary.Graduation.Eligible)
	assert.Contains(t, summary.Graduation.Unmet, "failed mandatory courses outstanding")
	require.Len(t, summary.ActiveWarnings, 1)
}

func TestLedgerServiceStoredCreditsOverride(t *testing.T) {
	w := newWorld()
	w.addStudent(models.Student{ID: "stu-1", CurrentSemester: 9, CreditsCompleted: 136})
	svc := newLedgerFixture(w)

	summary, err := svc.Summary(context.Background(), "stu-1")
	require.NoError(t, err)
	assert.True(t, summary.Credits.StoredOverride)
	assert.Equal(t, 96, summary.Credits.MandatoryCompleted)
	assert.Equal(t, 40, summary.Credits.ElectiveCompleted)
	assert.Equal(t, 100.0, summary.Credits.CompletionPercentage)
	assert.True(t, summary.Graduation.Eligible)
	assert.Equal(t, 0.0, summary.CumulativeGPA)
}

func TestLedgerServiceNotFound(t *testing.T) {
	svc := newLedgerFixture(newWorld())
	_, err := svc.Summary(context.Background(), "missing")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}
