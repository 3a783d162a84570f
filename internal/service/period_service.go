package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-progression-api/internal/academic"
	"github.com/noah-isme/academic-progression-api/internal/models"
	"github.com/noah-isme/academic-progression-api/pkg/clock"
	appErrors "github.com/noah-isme/academic-progression-api/pkg/errors"
)

type periodRepository interface {
	List(ctx context.Context) ([]models.EnrollmentPeriod, error)
	ListCovering(ctx context.Context, t time.Time) ([]models.EnrollmentPeriod, error)
	ListOverlapping(ctx context.Context, start, end time.Time) ([]models.EnrollmentPeriod, error)
	Create(ctx context.Context, period *models.EnrollmentPeriod) error
}

// CreatePeriodRequest opens a new enrollment window.
type CreatePeriodRequest struct {
	SemesterLabel string    `json:"semester_label" validate:"required"`
	StartDate     time.Time `json:"start_date" validate:"required"`
	EndDate       time.Time `json:"end_date" validate:"required"`
}

// PeriodService manages enrollment periods and answers whether one is open.
type PeriodService struct {
	repo      periodRepository
	clock     clock.Clock
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPeriodService constructs PeriodService.
func NewPeriodService(repo periodRepository, clk clock.Clock, validate *validator.Validate, logger *zap.Logger) *PeriodService {
	if clk == nil {
		clk = clock.System{}
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PeriodService{repo: repo, clock: clk, validator: validate, logger: logger}
}

// List returns every enrollment period by start date.
func (s *PeriodService) List(ctx context.Context) ([]models.EnrollmentPeriod, error) {
	periods, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Computation(err, "failed to list enrollment periods")
	}
	return periods, nil
}

// Create validates and stores a period. Overlapping an existing period is a
// business rule violation.
func (s *PeriodService) Create(ctx context.Context, req CreatePeriodRequest) (*models.EnrollmentPeriod, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "invalid enrollment period payload")
	}
	if req.EndDate.Before(req.StartDate) {
		return nil, appErrors.Clone(appErrors.ErrInvalidInput, "end_date must not be before start_date")
	}
	overlapping, err := s.repo.ListOverlapping(ctx, req.StartDate, req.EndDate)
	if err != nil {
		return nil, appErrors.Computation(err, "failed to check enrollment periods")
	}
	if len(overlapping) > 0 {
		return nil, appErrors.BusinessRule(nil, "enrollment period overlaps "+overlapping[0].SemesterLabel, overlapping)
	}
	period := &models.EnrollmentPeriod{SemesterLabel: req.SemesterLabel, StartDate: req.StartDate, EndDate: req.EndDate}
	if err := s.repo.Create(ctx, period); err != nil {
		return nil, appErrors.Computation(err, "failed to create enrollment period")
	}
	s.logger.Info("enrollment period created", zap.String("period_id", period.ID), zap.String("semester_label", period.SemesterLabel))
	return period, nil
}

// Current returns the period containing now, or false when enrollment is closed.
func (s *PeriodService) Current(ctx context.Context) (models.EnrollmentPeriod, bool, error) {
	now := s.clock.Now()
	periods, err := s.repo.ListCovering(ctx, now)
	if err != nil {
		return models.EnrollmentPeriod{}, false, appErrors.Computation(err, "failed to load enrollment periods")
	}
	period, ok := academic.ActivePeriod(periods, now)
	return period, ok, nil
}
