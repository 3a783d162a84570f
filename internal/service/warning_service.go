package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-progression-api/internal/academic"
	"github.com/noah-isme/academic-progression-api/internal/models"
	"github.com/noah-isme/academic-progression-api/pkg/clock"
	appErrors "github.com/noah-isme/academic-progression-api/pkg/errors"
	"github.com/noah-isme/academic-progression-api/pkg/export"
)

type warningRepository interface {
	List(ctx context.Context, filter models.WarningFilter) ([]models.WarningDetail, int, error)
	ListActive(ctx context.Context) ([]models.WarningDetail, error)
	FindByID(ctx context.Context, id string) (*models.AcademicWarning, error)
	ListActiveByStudent(ctx context.Context, studentID string) ([]models.AcademicWarning, error)
	Resolve(ctx context.Context, id, note string, at time.Time) error
	Issue(ctx context.Context, warning *models.AcademicWarning) error
	ApplyPlan(ctx context.Context, studentID, semesterLabel string, plan academic.WarningPlan, now time.Time) ([]models.AcademicWarning, error)
}

type activeStudentLister interface {
	studentReader
	ListActive(ctx context.Context) ([]models.Student, error)
}

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// IssueWarningRequest is a staff-issued probation or administrative warning.
type IssueWarningRequest struct {
	StudentID      string             `json:"student_id" validate:"required"`
	Type           models.WarningType `json:"warning_type" validate:"required,oneof=probation administrative"`
	Level          int                `json:"warning_level" validate:"required,min=1,max=4"`
	Description    string             `json:"description" validate:"required"`
	ActionRequired string             `json:"action_required"`
	Notes          string             `json:"notes"`
}

// ResolveWarningRequest closes a warning manually.
type ResolveWarningRequest struct {
	Notes string `json:"notes" validate:"required"`
}

// EvaluationResult describes the changes one evaluation pass made.
type EvaluationResult struct {
	StudentID     string                   `json:"student_id"`
	SemesterLabel string                   `json:"semester_label"`
	Issued        []models.AcademicWarning `json:"issued"`
	Resolved      []string                 `json:"resolved"`
}

// SweepResult aggregates a batch evaluation over every active student.
type SweepResult struct {
	SemesterLabel string        `json:"semester_label"`
	Issued        int           `json:"issued"`
	Resolved      int           `json:"resolved"`
	Processed     int           `json:"processed"`
	Failed        int           `json:"failed"`
	Duration      time.Duration `json:"duration"`
}

// ExportFile is a rendered warning report.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// WarningService runs the academic warning state machine.
type WarningService struct {
	repo      warningRepository
	students  activeStudentLister
	records   recordLoader
	clock     clock.Clock
	metrics   *MetricsService
	csv       datasetRenderer
	pdf       datasetRenderer
	validator *validator.Validate
	logger    *zap.Logger
}

// WarningServiceDeps groups the collaborators of WarningService.
type WarningServiceDeps struct {
	Repo        warningRepository
	Students    activeStudentLister
	Enrollments enrollmentHistoryReader
	Catalog     divisionCatalogReader
	Clock       clock.Clock
	Metrics     *MetricsService
	CSV         datasetRenderer
	PDF         datasetRenderer
	Validator   *validator.Validate
	Logger      *zap.Logger
}

// NewWarningService constructs WarningService.
func NewWarningService(deps WarningServiceDeps) *WarningService {
	if deps.Clock == nil {
		deps.Clock = clock.System{}
	}
	if deps.CSV == nil {
		deps.CSV = export.NewCSVExporter()
	}
	if deps.PDF == nil {
		deps.PDF = export.NewPDFExporter()
	}
	if deps.Validator == nil {
		deps.Validator = validator.New()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &WarningService{
		repo:      deps.Repo,
		students:  deps.Students,
		records:   recordLoader{students: deps.Students, enrollments: deps.Enrollments, catalog: deps.Catalog},
		clock:     deps.Clock,
		metrics:   deps.Metrics,
		csv:       deps.CSV,
		pdf:       deps.PDF,
		validator: deps.Validator,
		logger:    deps.Logger,
	}
}

// EvaluateStudent runs one full evaluation pass for a student: auto-resolve,
// then issue. Running it twice without data changes changes nothing.
func (s *WarningService) EvaluateStudent(ctx context.Context, studentID string) (*EvaluationResult, error) {
	rec, err := s.records.load(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return s.evaluate(ctx, rec, academic.SemesterLabel(s.clock.Now()))
}

func (s *WarningService) evaluate(ctx context.Context, rec *studentRecord, semesterLabel string) (*EvaluationResult, error) {
	active, err := s.repo.ListActiveByStudent(ctx, rec.Student.ID)
	if err != nil {
		return nil, appErrors.Computation(err, "failed to load active warnings")
	}
	plan := academic.PlanWarnings(active, rec.warningInput())
	result := &EvaluationResult{
		StudentID:     rec.Student.ID,
		SemesterLabel: semesterLabel,
		Issued:        []models.AcademicWarning{},
		Resolved:      []string{},
	}
	if plan.Empty() {
		return result, nil
	}

	issued, err := s.repo.ApplyPlan(ctx, rec.Student.ID, semesterLabel, plan, s.clock.Now())
	if err != nil {
		return nil, appErrors.Computation(err, "failed to persist warning evaluation")
	}
	for _, res := range plan.Resolve {
		result.Resolved = append(result.Resolved, res.Warning.ID)
		s.metrics.RecordWarningResolved(string(res.Warning.Type))
	}
	for _, w := range issued {
		s.metrics.RecordWarningIssued(string(w.Type), w.Level)
	}
	result.Issued = issued
	s.logger.Info("warnings evaluated",
		zap.String("student_id", rec.Student.ID),
		zap.Int("issued", len(issued)),
		zap.Int("resolved", len(plan.Resolve)))
	return result, nil
}

// EvaluateAllActiveStudents evaluates every active student sequentially. A
// failure or panic for one student is logged and counted, and the sweep moves on.
// An empty semesterLabel uses the current term.
func (s *WarningService) EvaluateAllActiveStudents(ctx context.Context, semesterLabel string) (*SweepResult, error) {
	start := time.Now()
	if semesterLabel == "" {
		semesterLabel = academic.SemesterLabel(s.clock.Now())
	}
	students, err := s.students.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Computation(err, "failed to list active students")
	}

	result := &SweepResult{SemesterLabel: semesterLabel}
	for _, student := range students {
		if err := ctx.Err(); err != nil {
			s.logger.Warn("warning sweep interrupted", zap.Int("processed", result.Processed), zap.Error(err))
			break
		}
		eval, err := s.evaluateSafely(ctx, student, semesterLabel)
		if err != nil {
			result.Failed++
			s.logger.Error("warning evaluation failed", zap.String("student_id", student.ID), zap.Error(err))
			continue
		}
		result.Processed++
		result.Issued += len(eval.Issued)
		result.Resolved += len(eval.Resolved)
	}
	result.Duration = time.Since(start)
	s.metrics.ObserveSweep(result.Duration, result.Processed, result.Failed)
	s.logger.Info("warning sweep finished",
		zap.String("semester_label", semesterLabel),
		zap.Int("processed", result.Processed),
		zap.Int("failed", result.Failed),
		zap.Int("issued", result.Issued),
		zap.Int("resolved", result.Resolved),
		zap.Duration("duration", result.Duration))
	return result, nil
}

func (s *WarningService) evaluateSafely(ctx context.Context, student models.Student, semesterLabel string) (eval *EvaluationResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic evaluating student %s: %v", student.ID, r)
		}
	}()
	rec, err := s.records.loadFor(ctx, student)
	if err != nil {
		return nil, err
	}
	return s.evaluate(ctx, rec, semesterLabel)
}

// Resolve marks any existing warning Resolved, appending notes. Resolving an
// already Resolved or Superseded warning refreshes its resolved date.
func (s *WarningService) Resolve(ctx context.Context, id string, req ResolveWarningRequest) (*models.AcademicWarning, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "invalid resolve payload")
	}
	warning, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "warning not found", "failed to load warning")
	}
	now := s.clock.Now()
	if err := s.repo.Resolve(ctx, id, req.Notes, now); err != nil {
		return nil, appErrors.Computation(err, "failed to resolve warning")
	}
	if warning.Status == models.WarningStatusActive {
		s.metrics.RecordWarningResolved(string(warning.Type))
	}
	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "warning not found", "failed to load warning")
	}
	return updated, nil
}

// IssueManual records a probation or administrative warning, superseding any
// Active warning of the same type for the student.
func (s *WarningService) IssueManual(ctx context.Context, req IssueWarningRequest) (*models.AcademicWarning, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "invalid warning payload")
	}
	if !req.Type.Manual() {
		return nil, appErrors.Clone(appErrors.ErrInvalidInput, "only probation and administrative warnings can be issued manually")
	}
	if _, err := s.students.FindByID(ctx, req.StudentID); err != nil {
		return nil, lookupError(err, "student not found", "failed to load student")
	}
	now := s.clock.Now()
	warning := &models.AcademicWarning{
		StudentID:      req.StudentID,
		Type:           req.Type,
		Level:          req.Level,
		Description:    req.Description,
		SemesterLabel:  academic.SemesterLabel(now),
		IssueDate:      now,
		ActionRequired: req.ActionRequired,
		Notes:          req.Notes,
	}
	if err := s.repo.Issue(ctx, warning); err != nil {
		return nil, appErrors.Computation(err, "failed to issue warning")
	}
	s.metrics.RecordWarningIssued(string(warning.Type), warning.Level)
	return warning, nil
}

// List returns warnings with pagination metadata.
func (s *WarningService) List(ctx context.Context, filter models.WarningFilter) ([]models.WarningDetail, *models.Pagination, error) {
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrInvalidInput, "invalid warning type")
	}
	warnings, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Computation(err, "failed to list warnings")
	}
	return warnings, pagination(filter.Page, filter.PageSize, total), nil
}

var warningExportColumns = []export.Column{
	{Key: "student", Label: "Student", Width: 3},
	{Key: "type", Label: "Type", Width: 2},
	{Key: "level", Label: "Level", Width: 1},
	{Key: "semester", Label: "Semester", Width: 2},
	{Key: "issued", Label: "Issued", Width: 2},
	{Key: "description", Label: "Description", Width: 5},
	{Key: "action", Label: "Action Required", Width: 4},
}

// ExportActive renders every Active warning as CSV or PDF.
func (s *WarningService) ExportActive(ctx context.Context, format string) (*ExportFile, error) {
	f, err := export.ParseFormat(format)
	if err != nil {
		return nil, invalid(err, err.Error())
	}
	warnings, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Computation(err, "failed to list active warnings")
	}
	now := s.clock.Now()
	dataset := export.Dataset{
		Title:   "Active Academic Warnings - " + academic.SemesterLabel(now),
		Columns: warningExportColumns,
		Rows:    make([]map[string]string, 0, len(warnings)),
	}
	for _, w := range warnings {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"student":     w.StudentName,
			"type":        string(w.Type),
			"level":       strconv.Itoa(w.Level),
			"semester":    w.SemesterLabel,
			"issued":      w.IssueDate.Format("2006-01-02"),
			"description": w.Description,
			"action":      w.ActionRequired,
		})
	}

	renderer := s.csv
	if f == export.FormatPDF {
		renderer = s.pdf
	}
	body, err := renderer.Render(dataset)
	if err != nil {
		return nil, appErrors.Computation(err, "failed to render warning report")
	}
	return &ExportFile{
		Filename:    fmt.Sprintf("active_warnings_%s.%s", now.Format("20060102"), f),
		ContentType: f.ContentType(),
		Body:        body,
	}, nil
}
