package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/academic-progression-api/internal/academic"
	"github.com/noah-isme/academic-progression-api/internal/models"
	"github.com/noah-isme/academic-progression-api/pkg/clock"
	appErrors "github.com/noah-isme/academic-progression-api/pkg/errors"
)

type activeWarningReader interface {
	ListActiveByStudent(ctx context.Context, studentID string) ([]models.AcademicWarning, error)
}

// AcademicSummary is a student's standing against the degree requirements.
type AcademicSummary struct {
	StudentID       string                   `json:"student_id"`
	Name            string                   `json:"name"`
	CurrentSemester int                      `json:"current_semester"`
	SemesterLabel   string                   `json:"semester_label"`
	CumulativeGPA   float64                  `json:"cumulative_gpa"`
	CreditTier      int                      `json:"credit_tier"`
	GPAHistory      []float64                `json:"gpa_history"`
	Status          academic.AcademicStatus  `json:"academic_status"`
	Trend           academic.Trend           `json:"trend"`
	FailingCourses  int                      `json:"failing_courses"`
	Credits         academic.CreditsAnalysis `json:"credits"`
	Graduation      academic.Graduation      `json:"graduation"`
	ActiveWarnings  []models.AcademicWarning `json:"active_warnings"`
}

// LedgerService computes GPA and credit standing.
type LedgerService struct {
	records  recordLoader
	warnings activeWarningReader
	clock    clock.Clock
	logger   *zap.Logger
}

// NewLedgerService constructs LedgerService.
func NewLedgerService(students studentReader, enrollments enrollmentHistoryReader, catalog divisionCatalogReader, warnings activeWarningReader, clk clock.Clock, logger *zap.Logger) *LedgerService {
	if clk == nil {
		clk = clock.System{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerService{
		records:  recordLoader{students: students, enrollments: enrollments, catalog: catalog},
		warnings: warnings,
		clock:    clk,
		logger:   logger,
	}
}

// Summary returns the student's cumulative GPA, credit tier, credit analysis,
// graduation eligibility and active warnings.
func (s *LedgerService) Summary(ctx context.Context, studentID string) (*AcademicSummary, error) {
	rec, err := s.records.load(ctx, studentID)
	if err != nil {
		return nil, err
	}
	active, err := s.warnings.ListActiveByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Computation(err, "failed to load active warnings")
	}
	if active == nil {
		active = []models.AcademicWarning{}
	}

	gpa := academic.CumulativeGPA(rec.Student)
	failing := rec.failingIDs()
	credits := rec.credits()
	summary := &AcademicSummary{
		StudentID:       rec.Student.ID,
		Name:            rec.Student.Name,
		CurrentSemester: rec.Student.CurrentSemester,
		SemesterLabel:   academic.SemesterLabel(s.clock.Now()),
		CumulativeGPA:   gpa,
		CreditTier:      academic.StudentCreditTier(rec.Student),
		GPAHistory:      academic.GPAHistory(rec.Student),
		Status:          academic.ClassifyStatus(gpa, len(failing)),
		Trend:           academic.StudentTrend(rec.Student),
		FailingCourses:  len(failing),
		Credits:         credits,
		Graduation:      academic.GraduationEligibility(credits, rec.failingMandatory()),
		ActiveWarnings:  active,
	}
	s.logger.Debug("academic summary computed",
		zap.String("student_id", summary.StudentID),
		zap.Float64("cumulative_gpa", gpa),
		zap.Int("credit_tier", summary.CreditTier),
		zap.String("academic_status", string(summary.Status)),
		zap.Int("failing_courses", summary.FailingCourses),
		zap.Int("active_warnings", len(active)),
		zap.Bool("graduation_eligible", summary.Graduation.Eligible))
	return summary, nil
}
