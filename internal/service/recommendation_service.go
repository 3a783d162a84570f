package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/noah-isme/academic-progression-api/internal/academic"
	"github.com/noah-isme/academic-progression-api/internal/models"
	"github.com/noah-isme/academic-progression-api/pkg/clock"
	appErrors "github.com/noah-isme/academic-progression-api/pkg/errors"
)

type catalogStatsReader interface {
	divisionCatalogReader
	ListPrerequisitesByDivision(ctx context.Context, divisionID string) ([]models.CoursePrerequisite, error)
	DependentCounts(ctx context.Context) (map[string]int, error)
	GradeStats(ctx context.Context) ([]models.CourseGradeStat, error)
}

// ClosedPeriodNotice is returned instead of scores outside enrollment periods.
const ClosedPeriodNotice = "Enrollment is currently closed; recommendations are available during an open enrollment period."

// RecommendationResult is the response of a recommendation request.
type RecommendationResult struct {
	StudentID       string                    `json:"student_id"`
	EnrollmentOpen  bool                      `json:"enrollment_open"`
	Notice          string                    `json:"notice,omitempty"`
	SemesterLabel   string                    `json:"semester_label"`
	Period          *models.EnrollmentPeriod  `json:"period,omitempty"`
	Recommendations *academic.Recommendations `json:"recommendations,omitempty"`
	GeneratedAt     time.Time                 `json:"generated_at"`
}

// RecommendationConfig tunes list sizes and caching.
type RecommendationConfig struct {
	Limit    int
	CacheTTL time.Duration
}

// RecommendationService scores course recommendations for a student.
type RecommendationService struct {
	records recordLoader
	catalog catalogStatsReader
	periods periodChecker
	scorer  academic.Scorer
	cache   *CacheService
	clock   clock.Clock
	cfg     RecommendationConfig
	logger  *zap.Logger
	group   singleflight.Group
}

// NewRecommendationService constructs RecommendationService.
func NewRecommendationService(students studentReader, enrollments enrollmentHistoryReader, catalog catalogStatsReader, periods periodChecker,
	scorer academic.Scorer, cache *CacheService, clk clock.Clock, cfg RecommendationConfig, logger *zap.Logger) *RecommendationService {
	if clk == nil {
		clk = clock.System{}
	}
	if cfg.Limit <= 0 {
		cfg.Limit = academic.DefaultRecommendationLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecommendationService{
		records: recordLoader{students: students, enrollments: enrollments, catalog: catalog},
		catalog: catalog,
		periods: periods,
		scorer:  scorer,
		cache:   cache,
		clock:   clk,
		cfg:     cfg,
		logger:  logger,
	}
}

// Recommend returns all four recommendation categories for a student. Outside
// an enrollment period it returns a closed notice without computing scores.
// Concurrent requests for the same student and period share one computation.
func (s *RecommendationService) Recommend(ctx context.Context, studentID string) (*RecommendationResult, error) {
	now := s.clock.Now()
	periods, err := s.periods.ListCovering(ctx, now)
	if err != nil {
		return nil, appErrors.Computation(err, "failed to load enrollment periods")
	}
	period, open := academic.ActivePeriod(periods, now)
	if !open {
		return &RecommendationResult{
			StudentID:      studentID,
			EnrollmentOpen: false,
			Notice:         ClosedPeriodNotice,
			SemesterLabel:  academic.SemesterLabel(now),
			GeneratedAt:    now,
		}, nil
	}

	key := recommendationKey(studentID, period.ID)
	var cached RecommendationResult
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	v, err, shared := s.group.Do(key, func() (interface{}, error) {
		result, err := s.compute(ctx, studentID, period, now)
		if err != nil {
			return nil, err
		}
		s.cache.Set(ctx, key, result, s.cfg.CacheTTL)
		return result, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.logger.Debug("recommendation computation shared", zap.String("student_id", studentID))
	}
	result := *v.(*RecommendationResult)
	return &result, nil
}

func (s *RecommendationService) compute(ctx context.Context, studentID string, period models.EnrollmentPeriod, now time.Time) (*RecommendationResult, error) {
	rec, err := s.records.load(ctx, studentID)
	if err != nil {
		return nil, err
	}
	courses, err := s.catalogCourses(ctx, rec)
	if err != nil {
		return nil, err
	}
	recs := academic.Recommend(rec.snapshot(), courses, s.scorer, s.cfg.Limit)
	return &RecommendationResult{
		StudentID:       studentID,
		EnrollmentOpen:  true,
		SemesterLabel:   academic.SemesterLabel(now),
		Period:          &period,
		Recommendations: &recs,
		GeneratedAt:     now,
	}, nil
}

func (s *RecommendationService) catalogCourses(ctx context.Context, rec *studentRecord) ([]academic.CatalogCourse, error) {
	prereqs, err := s.catalog.ListPrerequisitesByDivision(ctx, rec.Student.DivisionID)
	if err != nil {
		return nil, appErrors.Computation(err, "failed to load prerequisites")
	}
	dependents, err := s.catalog.DependentCounts(ctx)
	if err != nil {
		return nil, appErrors.Computation(err, "failed to count course dependents")
	}
	stats, err := s.catalog.GradeStats(ctx)
	if err != nil {
		return nil, appErrors.Computation(err, "failed to load grade statistics")
	}

	prereqIDs := make(map[string][]string)
	for _, p := range prereqs {
		prereqIDs[p.CourseID] = append(prereqIDs[p.CourseID], p.PrerequisiteCourseID)
	}
	means := make(map[string]float64, len(stats))
	for _, st := range stats {
		means[st.CourseID] = st.MeanTotal
	}

	courses := make([]academic.CatalogCourse, 0, len(rec.Catalog))
	for _, c := range rec.Catalog {
		cc := academic.CatalogCourse{
			DivisionCourse:  c,
			PrerequisiteIDs: prereqIDs[c.ID],
			Dependents:      dependents[c.ID],
		}
		if mean, ok := means[c.ID]; ok {
			m := mean
			cc.MeanTotal = &m
		}
		courses = append(courses, cc)
	}
	return courses, nil
}
