package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/academic-progression-api/internal/academic"
	"github.com/noah-isme/academic-progression-api/internal/models"
	"github.com/noah-isme/academic-progression-api/pkg/database"
)

const warningColumns = `w.id, w.student_id, w.warning_type, w.warning_level, w.description, w.semester_label,
        w.issue_date, w.resolved_date, w.status, w.action_required, w.notes`

// WarningRepository persists the academic warning lifecycle.
type WarningRepository struct {
	db *sqlx.DB
}

// NewWarningRepository constructs a WarningRepository.
func NewWarningRepository(db *sqlx.DB) *WarningRepository {
	return &WarningRepository{db: db}
}

// List returns warnings with student names, most severe and newest first.
func (r *WarningRepository) List(ctx context.Context, filter models.WarningFilter) ([]models.WarningDetail, int, error) {
	var conditions []string
	var args []interface{}

	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("w.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.Type != "" {
		conditions = append(conditions, fmt.Sprintf("w.warning_type = $%d", len(args)+1))
		args = append(args, filter.Type)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("w.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.MinLevel > 0 {
		conditions = append(conditions, fmt.Sprintf("w.warning_level >= $%d", len(args)+1))
		args = append(args, filter.MinLevel)
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}
	page, size := models.NormalizePage(filter.Page, filter.PageSize)
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s, s.name AS student_name FROM academic_warnings w
        JOIN students s ON s.id = w.student_id%s
        ORDER BY w.warning_level DESC, w.issue_date DESC, w.id LIMIT %d OFFSET %d`, warningColumns, clause, size, offset)
	var warnings []models.WarningDetail
	if err := r.db.SelectContext(ctx, &warnings, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list warnings: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM academic_warnings w"+clause, args...); err != nil {
		return nil, 0, fmt.Errorf("count warnings: %w", err)
	}
	return warnings, total, nil
}

// ListActive returns every Active warning with student names, for reports.
func (r *WarningRepository) ListActive(ctx context.Context) ([]models.WarningDetail, error) {
	query := fmt.Sprintf(`SELECT %s, s.name AS student_name FROM academic_warnings w
        JOIN students s ON s.id = w.student_id
        WHERE w.status = $1 ORDER BY w.warning_level DESC, s.name, w.warning_type`, warningColumns)
	var warnings []models.WarningDetail
	if err := r.db.SelectContext(ctx, &warnings, query, models.WarningStatusActive); err != nil {
		return nil, fmt.Errorf("list active warnings: %w", err)
	}
	return warnings, nil
}

// FindByID fetches one warning.
func (r *WarningRepository) FindByID(ctx context.Context, id string) (*models.AcademicWarning, error) {
	query := fmt.Sprintf("SELECT %s FROM academic_warnings w WHERE w.id = $1", warningColumns)
	var warning models.AcademicWarning
	if err := r.db.GetContext(ctx, &warning, query, id); err != nil {
		return nil, err
	}
	return &warning, nil
}

// ListActiveByStudent returns a student's Active warnings.
func (r *WarningRepository) ListActiveByStudent(ctx context.Context, studentID string) ([]models.AcademicWarning, error) {
	query := fmt.Sprintf("SELECT %s FROM academic_warnings w WHERE w.student_id = $1 AND w.status = $2 ORDER BY w.issue_date", warningColumns)
	var warnings []models.AcademicWarning
	if err := r.db.SelectContext(ctx, &warnings, query, studentID, models.WarningStatusActive); err != nil {
		return nil, fmt.Errorf("list student warnings: %w", err)
	}
	return warnings, nil
}

// Resolve marks a warning Resolved and appends note to its notes.
func (r *WarningRepository) Resolve(ctx context.Context, id, note string, at time.Time) error {
	return resolveWarning(ctx, r.db, id, note, at, false)
}

// Issue supersedes every Active warning of the same type for the student and
// inserts the new Active warning, atomically.
func (r *WarningRepository) Issue(ctx context.Context, warning *models.AcademicWarning) error {
	return database.WithTx(ctx, r.db, nil, func(tx *sqlx.Tx) error {
		return supersedeAndInsert(ctx, tx, warning)
	})
}

// ApplyPlan writes one evaluation pass for a student in a single transaction:
// resolutions first, then each issued candidate. It returns the inserted warnings.
func (r *WarningRepository) ApplyPlan(ctx context.Context, studentID, semesterLabel string, plan academic.WarningPlan, now time.Time) ([]models.AcademicWarning, error) {
	issued := make([]models.AcademicWarning, 0, len(plan.Issue))
	err := database.WithTx(ctx, r.db, nil, func(tx *sqlx.Tx) error {
		for _, res := range plan.Resolve {
			if err := resolveWarning(ctx, tx, res.Warning.ID, res.Note, now, true); err != nil {
				return err
			}
		}
		for _, c := range plan.Issue {
			w := models.AcademicWarning{
				StudentID:      studentID,
				Type:           c.Type,
				Level:          c.Level,
				Description:    c.Description,
				SemesterLabel:  semesterLabel,
				IssueDate:      now,
				ActionRequired: c.ActionRequired,
			}
			if err := supersedeAndInsert(ctx, tx, &w); err != nil {
				return err
			}
			issued = append(issued, w)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return issued, nil
}

func resolveWarning(ctx context.Context, exec sqlx.ExecerContext, id, note string, at time.Time, activeOnly bool) error {
	query := `UPDATE academic_warnings SET status = $2, resolved_date = $3,
        notes = CASE WHEN notes = '' THEN $4 ELSE notes || E'\n' || $4 END WHERE id = $1`
	args := []interface{}{id, models.WarningStatusResolved, at, note}
	if activeOnly {
		query += " AND status = $5"
		args = append(args, models.WarningStatusActive)
	}
	if _, err := exec.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("resolve warning: %w", err)
	}
	return nil
}

func supersedeAndInsert(ctx context.Context, tx *sqlx.Tx, w *models.AcademicWarning) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	if w.IssueDate.IsZero() {
		w.IssueDate = time.Now().UTC()
	}
	w.Status = models.WarningStatusActive

	const supersede = `UPDATE academic_warnings SET status = $1, resolved_date = $2
        WHERE student_id = $3 AND warning_type = $4 AND status = $5`
	if _, err := tx.ExecContext(ctx, supersede, models.WarningStatusSuperseded, w.IssueDate, w.StudentID, w.Type, models.WarningStatusActive); err != nil {
		return fmt.Errorf("supersede warnings: %w", err)
	}
	const insert = `INSERT INTO academic_warnings (id, student_id, warning_type, warning_level, description, semester_label,
        issue_date, resolved_date, status, action_required, notes)
        VALUES (:id, :student_id, :warning_type, :warning_level, :description, :semester_label,
        :issue_date, :resolved_date, :status, :action_required, :notes)`
	if _, err := tx.NamedExecContext(ctx, insert, w); err != nil {
		return fmt.Errorf("insert warning: %w", err)
	}
	return nil
}
