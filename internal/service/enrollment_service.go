package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-progression-api/internal/academic"
	"github.com/noah-isme/academic-progression-api/internal/models"
	"github.com/noah-isme/academic-progression-api/pkg/clock"
	appErrors "github.com/noah-isme/academic-progression-api/pkg/errors"
	"github.com/noah-isme/academic-progression-api/pkg/middleware/requestid"
)

type enrollmentRepository interface {
	List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.Enrollment, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error)
	StatusesForCourse(ctx context.Context, studentID, courseID string) ([]models.EnrollmentStatus, error)
	TermCredits(ctx context.Context, studentID, semesterLabel string) (int, error)
	CountInProgress(ctx context.Context, courseID, semesterLabel string) (int, error)
	Admit(ctx context.Context, enrollment *models.Enrollment, limits models.AdmissionLimits) error
	Cancel(ctx context.Context, id string, at time.Time) (bool, error)
	Delete(ctx context.Context, id string) error
}

type catalogReader interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
	ListPrerequisites(ctx context.Context, courseID string) ([]models.CoursePrerequisite, error)
	IsOffered(ctx context.Context, courseID, divisionID string) (bool, error)
}

type periodChecker interface {
	ListCovering(ctx context.Context, t time.Time) ([]models.EnrollmentPeriod, error)
}

// EnrollRequest asks to admit a student into a course for the current term.
type EnrollRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	CourseID  string `json:"course_id" validate:"required"`
}

// EnrollmentService runs admission control and the enrollment lifecycle.
type EnrollmentService struct {
	repo      enrollmentRepository
	students  studentReader
	courses   catalogReader
	periods   periodChecker
	cache     *CacheService
	metrics   *MetricsService
	clock     clock.Clock
	validator *validator.Validate
	logger    *zap.Logger
}

// EnrollmentServiceDeps groups the collaborators of EnrollmentService.
type EnrollmentServiceDeps struct {
	Repo      enrollmentRepository
	Students  studentReader
	Courses   catalogReader
	Periods   periodChecker
	Cache     *CacheService
	Metrics   *MetricsService
	Clock     clock.Clock
	Validator *validator.Validate
	Logger    *zap.Logger
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(deps EnrollmentServiceDeps) *EnrollmentService {
	if deps.Clock == nil {
		deps.Clock = clock.System{}
	}
	if deps.Validator == nil {
		deps.Validator = validator.New()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &EnrollmentService{
		repo:      deps.Repo,
		students:  deps.Students,
		courses:   deps.Courses,
		periods:   deps.Periods,
		cache:     deps.Cache,
		metrics:   deps.Metrics,
		clock:     deps.Clock,
		validator: deps.Validator,
		logger:    deps.Logger,
	}
}

// CurrentSemesterLabel derives the term label from the wall clock.
func (s *EnrollmentService) CurrentSemesterLabel() string {
	return academic.SemesterLabel(s.clock.Now())
}

// List returns enrollments with pagination metadata.
func (s *EnrollmentService) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, *models.Pagination, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrInvalidInput, "invalid enrollment status")
	}
	enrollments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Computation(err, "failed to list enrollments")
	}
	return enrollments, pagination(filter.Page, filter.PageSize, total), nil
}

// Enroll applies the admission gates in order and creates an InProgress
// enrollment. The duplicate, credit and seat gates are re-checked under row
// locks at insert time.
func (s *EnrollmentService) Enroll(ctx context.Context, req EnrollRequest) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "invalid enrollment payload")
	}
	now := s.clock.Now()
	periods, err := s.periods.ListCovering(ctx, now)
	if err != nil {
		return nil, appErrors.Computation(err, "failed to load enrollment periods")
	}
	_, open := academic.ActivePeriod(periods, now)
	if !open {
		return nil, s.reject(academic.PeriodClosed())
	}

	student, err := s.students.FindByID(ctx, req.StudentID)
	if err != nil {
		return nil, lookupError(err, "student not found", "failed to load student")
	}
	course, err := s.courses.FindByID(ctx, req.CourseID)
	if err != nil {
		return nil, lookupError(err, "course not found", "failed to load course")
	}

	label := academic.SemesterLabel(now)
	in, err := s.admissionInput(ctx, *student, *course, label)
	if err != nil {
		return nil, err
	}
	if rej := academic.EvaluateAdmission(in); rej != nil {
		return nil, s.reject(rej)
	}

	enrollment := &models.Enrollment{
		StudentID:     student.ID,
		CourseID:      course.ID,
		SemesterLabel: label,
		AddedDate:     now,
	}
	limits := models.AdmissionLimits{MaxCredits: in.CreditCap, MaxSeats: course.MaxSeats, Credits: course.Credits}
	if err := s.repo.Admit(ctx, enrollment, limits); err != nil {
		var rej *academic.Rejection
		if errors.As(err, &rej) {
			return nil, s.reject(rej)
		}
		return nil, appErrors.Computation(err, "failed to create enrollment")
	}

	s.metrics.RecordAdmission("accepted")
	s.cache.InvalidateStudent(ctx, student.ID)
	s.logger.Info("student enrolled",
		zap.String("enrollment_id", enrollment.ID),
		zap.String("student_id", student.ID),
		zap.String("course_id", course.ID),
		zap.String("semester_label", label),
		zap.String("request_id", requestid.FromContext(ctx)))
	return enrollment, nil
}

func (s *EnrollmentService) admissionInput(ctx context.Context, student models.Student, course models.Course, label string) (academic.AdmissionInput, error) {
	in := academic.AdmissionInput{
		PeriodOpen: true,
		Student:    student,
		Course:     course,
		CreditCap:  academic.StudentCreditTier(student),
		Completed:  make(map[string]bool),
	}
	var err error
	if in.ExistingStatuses, err = s.repo.StatusesForCourse(ctx, student.ID, course.ID); err != nil {
		return in, appErrors.Computation(err, "failed to load existing enrollments")
	}
	if in.TermCredits, err = s.repo.TermCredits(ctx, student.ID, label); err != nil {
		return in, appErrors.Computation(err, "failed to load term credits")
	}
	if in.Offered, err = s.courses.IsOffered(ctx, course.ID, student.DivisionID); err != nil {
		return in, appErrors.Computation(err, "failed to check course offering")
	}
	if in.Prerequisites, err = s.courses.ListPrerequisites(ctx, course.ID); err != nil {
		return in, appErrors.Computation(err, "failed to load prerequisites")
	}
	history, err := s.repo.ListByStudent(ctx, student.ID)
	if err != nil {
		return in, appErrors.Computation(err, "failed to load enrollment history")
	}
	for _, e := range history {
		if e.Status == models.EnrollmentStatusCompleted {
			in.Completed[e.CourseID] = true
		}
	}
	if in.SeatsTaken, err = s.repo.CountInProgress(ctx, course.ID, label); err != nil {
		return in, appErrors.Computation(err, "failed to count course seats")
	}
	return in, nil
}

func (s *EnrollmentService) reject(rej *academic.Rejection) error {
	s.metrics.RecordAdmission(string(rej.Reason))
	return rejection(rej)
}

// Cancel moves an InProgress enrollment to Cancelled dated today. Any other
// status is rejected with the current status echoed back.
func (s *EnrollmentService) Cancel(ctx context.Context, id string) (*models.Enrollment, error) {
	enrollment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "enrollment not found", "failed to load enrollment")
	}
	if rej := academic.CanCancel(enrollment.Status); rej != nil {
		return nil, rejection(rej)
	}
	today := clock.Today(s.clock)
	ok, err := s.repo.Cancel(ctx, id, today)
	if err != nil {
		return nil, appErrors.Computation(err, "failed to cancel enrollment")
	}
	if !ok {
		current, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return nil, lookupError(err, "enrollment not found", "failed to load enrollment")
		}
		if rej := academic.CanCancel(current.Status); rej != nil {
			return nil, rejection(rej)
		}
		return nil, appErrors.Computation(nil, "failed to cancel enrollment")
	}
	enrollment.Status = models.EnrollmentStatusCancelled
	enrollment.CancelledDate = &today
	s.cache.InvalidateStudent(ctx, enrollment.StudentID)
	s.logger.Info("enrollment cancelled",
		zap.String("enrollment_id", id),
		zap.String("student_id", enrollment.StudentID),
		zap.String("request_id", requestid.FromContext(ctx)))
	return enrollment, nil
}

// HardDelete removes an enrollment permanently, bypassing the lifecycle rules.
func (s *EnrollmentService) HardDelete(ctx context.Context, id string) error {
	enrollment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return lookupError(err, "enrollment not found", "failed to load enrollment")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Computation(err, "failed to delete enrollment")
	}
	s.cache.InvalidateStudent(ctx, enrollment.StudentID)
	s.logger.Warn("enrollment hard deleted",
		zap.String("enrollment_id", id),
		zap.String("student_id", enrollment.StudentID),
		zap.String("status", string(enrollment.Status)),
		zap.String("request_id", requestid.FromContext(ctx)))
	return nil
}
