package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/academic-progression-api/internal/models"
)

const periodColumns = `id, semester_label, start_date, end_date`

// EnrollmentPeriodRepository stores enrollment windows.
type EnrollmentPeriodRepository struct {
	db *sqlx.DB
}

// NewEnrollmentPeriodRepository constructs an EnrollmentPeriodRepository.
func NewEnrollmentPeriodRepository(db *sqlx.DB) *EnrollmentPeriodRepository {
	return &EnrollmentPeriodRepository{db: db}
}

// List returns all periods, newest first.
func (r *EnrollmentPeriodRepository) List(ctx context.Context) ([]models.EnrollmentPeriod, error) {
	query := fmt.Sprintf("SELECT %s FROM enrollment_periods ORDER BY start_date DESC", periodColumns)
	var periods []models.EnrollmentPeriod
	if err := r.db.SelectContext(ctx, &periods, query); err != nil {
		return nil, fmt.Errorf("list enrollment periods: %w", err)
	}
	return periods, nil
}

// ListCovering returns periods whose dates may contain t. The end date is
// compared by day so callers still apply EnrollmentPeriod.Contains.
func (r *EnrollmentPeriodRepository) ListCovering(ctx context.Context, t time.Time) ([]models.EnrollmentPeriod, error) {
	query := fmt.Sprintf("SELECT %s FROM enrollment_periods WHERE start_date <= $1 AND end_date >= $2 ORDER BY start_date", periodColumns)
	day := models.StartOfDay(t)
	var periods []models.EnrollmentPeriod
	if err := r.db.SelectContext(ctx, &periods, query, t, day); err != nil {
		return nil, fmt.Errorf("find enrollment period: %w", err)
	}
	return periods, nil
}

// ListOverlapping returns periods sharing any calendar day with [start, end].
func (r *EnrollmentPeriodRepository) ListOverlapping(ctx context.Context, start, end time.Time) ([]models.EnrollmentPeriod, error) {
	query := fmt.Sprintf("SELECT %s FROM enrollment_periods WHERE start_date < $2 AND end_date >= $1", periodColumns)
	window := models.EnrollmentPeriod{StartDate: start, EndDate: end}
	var periods []models.EnrollmentPeriod
	if err := r.db.SelectContext(ctx, &periods, query, window.StartDay(), window.EndExclusive()); err != nil {
		return nil, fmt.Errorf("find overlapping periods: %w", err)
	}
	return periods, nil
}

// Create inserts a period.
func (r *EnrollmentPeriodRepository) Create(ctx context.Context, period *models.EnrollmentPeriod) error {
	if period.ID == "" {
		period.ID = uuid.NewString()
	}
	const query = `INSERT INTO enrollment_periods (id, semester_label, start_date, end_date) VALUES (:id, :semester_label, :start_date, :end_date)`
	if _, err := r.db.NamedExecContext(ctx, query, period); err != nil {
		return fmt.Errorf("create enrollment period: %w", err)
	}
	return nil
}
