package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-progression-api/internal/models"
	appErrors "github.com/noah-isme/academic-progression-api/pkg/errors"
)

type courseRepository interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error)
	FindByID(ctx context.Context, id string) (*models.Course, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	Create(ctx context.Context, course *models.Course) error
	ListPrerequisites(ctx context.Context, courseID string) ([]models.CoursePrerequisite, error)
	AddPrerequisite(ctx context.Context, courseID, prerequisiteID string) error
	AssignDivision(ctx context.Context, cd models.CourseDivision) error
	FindDivision(ctx context.Context, id string) (*models.Division, error)
}

// CreateCourseRequest adds a course to the catalog.
type CreateCourseRequest struct {
	Name            string              `json:"name" validate:"required"`
	Code            string              `json:"code" validate:"required"`
	Description     string              `json:"description"`
	Credits         int                 `json:"credits" validate:"required,min=1"`
	TypicalSemester int                 `json:"typical_semester" validate:"required,min=1"`
	MaxSeats        int                 `json:"max_seats" validate:"required,min=1"`
	Status          models.CourseStatus `json:"status" validate:"omitempty,oneof=Available Unavailable"`
	DepartmentID    string              `json:"department_id" validate:"required"`
}

// AddPrerequisiteRequest links a prerequisite course.
type AddPrerequisiteRequest struct {
	PrerequisiteCourseID string `json:"prerequisite_course_id" validate:"required"`
}

// AssignDivisionRequest offers a course to a division.
type AssignDivisionRequest struct {
	DivisionID  string `json:"division_id" validate:"required"`
	IsMandatory bool   `json:"is_mandatory"`
}

// CourseDetail is a course with its prerequisite edges.
type CourseDetail struct {
	models.Course
	Prerequisites []models.CoursePrerequisite `json:"prerequisites"`
}

// CourseService manages the course catalog.
type CourseService struct {
	repo      courseRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService constructs CourseService.
func NewCourseService(repo courseRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns courses with pagination metadata.
func (s *CourseService) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, *models.Pagination, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrInvalidInput, "invalid course status")
	}
	courses, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Computation(err, "failed to list courses")
	}
	return courses, pagination(filter.Page, filter.PageSize, total), nil
}

// Get returns a course and its prerequisites.
func (s *CourseService) Get(ctx context.Context, id string) (*CourseDetail, error) {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "course not found", "failed to load course")
	}
	prereqs, err := s.repo.ListPrerequisites(ctx, id)
	if err != nil {
		return nil, appErrors.Computation(err, "failed to load prerequisites")
	}
	if prereqs == nil {
		prereqs = []models.CoursePrerequisite{}
	}
	return &CourseDetail{Course: *course, Prerequisites: prereqs}, nil
}

// Create stores a new course; codes are unique.
func (s *CourseService) Create(ctx context.Context, req CreateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "invalid course payload")
	}
	exists, err := s.repo.ExistsByCode(ctx, req.Code)
	if err != nil {
		return nil, appErrors.Computation(err, "failed to check course code")
	}
	if exists {
		return nil, appErrors.BusinessRule(nil, "course code already exists", nil)
	}
	course := &models.Course{
		Name:            req.Name,
		Code:            req.Code,
		Description:     req.Description,
		Credits:         req.Credits,
		TypicalSemester: req.TypicalSemester,
		MaxSeats:        req.MaxSeats,
		Status:          req.Status,
		DepartmentID:    req.DepartmentID,
	}
	if err := s.repo.Create(ctx, course); err != nil {
		return nil, appErrors.Computation(err, "failed to create course")
	}
	return course, nil
}

// AddPrerequisite records that courseID requires the given course. Cycles are
// not checked; a course cannot require itself.
func (s *CourseService) AddPrerequisite(ctx context.Context, courseID string, req AddPrerequisiteRequest) (*CourseDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "invalid prerequisite payload")
	}
	if req.PrerequisiteCourseID == courseID {
		return nil, appErrors.Clone(appErrors.ErrInvalidInput, "a course cannot be its own prerequisite")
	}
	if _, err := s.repo.FindByID(ctx, courseID); err != nil {
		return nil, lookupError(err, "course not found", "failed to load course")
	}
	if _, err := s.repo.FindByID(ctx, req.PrerequisiteCourseID); err != nil {
		return nil, lookupError(err, "prerequisite course not found", "failed to load course")
	}
	if err := s.repo.AddPrerequisite(ctx, courseID, req.PrerequisiteCourseID); err != nil {
		return nil, appErrors.Computation(err, "failed to add prerequisite")
	}
	s.cache.Invalidate(ctx, recommendationPattern(""))
	return s.Get(ctx, courseID)
}

// AssignDivision offers the course to a division as mandatory or elective.
func (s *CourseService) AssignDivision(ctx context.Context, courseID string, req AssignDivisionRequest) (*models.CourseDivision, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "invalid division payload")
	}
	if _, err := s.repo.FindByID(ctx, courseID); err != nil {
		return nil, lookupError(err, "course not found", "failed to load course")
	}
	if _, err := s.repo.FindDivision(ctx, req.DivisionID); err != nil {
		return nil, lookupError(err, "division not found", "failed to load division")
	}
	cd := models.CourseDivision{CourseID: courseID, DivisionID: req.DivisionID, IsMandatory: req.IsMandatory}
	if err := s.repo.AssignDivision(ctx, cd); err != nil {
		return nil, appErrors.Computation(err, "failed to assign division")
	}
	s.cache.Invalidate(ctx, recommendationPattern(""))
	s.logger.Info("course offered to division",
		zap.String("course_id", courseID),
		zap.String("division_id", req.DivisionID),
		zap.Bool("mandatory", req.IsMandatory))
	return &cd, nil
}
