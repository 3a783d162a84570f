package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-progression-api/internal/academic"
	"github.com/noah-isme/academic-progression-api/internal/models"
	appErrors "github.com/noah-isme/academic-progression-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	UpdateGPA(ctx context.Context, id string, semester int, gpa *float64) error
}

type divisionReader interface {
	FindDivision(ctx context.Context, id string) (*models.Division, error)
}

// CreateStudentRequest registers a student in a division.
type CreateStudentRequest struct {
	Name             string `json:"name" validate:"required"`
	DivisionID       string `json:"division_id" validate:"required"`
	CurrentSemester  int    `json:"current_semester" validate:"required,min=1"`
	CreditsCompleted int    `json:"credits_completed" validate:"min=0"`
}

// UpdateGPARequest records the GPA of a finalized semester. A null GPA clears it.
type UpdateGPARequest struct {
	Semester int      `json:"semester" validate:"required,min=1,max=8"`
	GPA      *float64 `json:"gpa" validate:"omitempty,min=0,max=4"`
}

// StudentService exposes student records.
type StudentService struct {
	repo      studentRepository
	divisions divisionReader
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs StudentService.
func NewStudentService(repo studentRepository, divisions divisionReader, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, divisions: divisions, cache: cache, validator: validate, logger: logger}
}

// List returns students with pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrInvalidInput, "invalid student status")
	}
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Computation(err, "failed to list students")
	}
	return students, pagination(filter.Page, filter.PageSize, total), nil
}

// Get returns a student by ID.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "student not found", "failed to load student")
	}
	return student, nil
}

// Create registers a new active student.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "invalid student payload")
	}
	if _, err := s.divisions.FindDivision(ctx, req.DivisionID); err != nil {
		return nil, lookupError(err, "division not found", "failed to load division")
	}
	student := &models.Student{
		Name:             req.Name,
		DivisionID:       req.DivisionID,
		CurrentSemester:  req.CurrentSemester,
		CreditsCompleted: req.CreditsCompleted,
		Status:           models.StudentStatusActive,
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Computation(err, "failed to create student")
	}
	return student, nil
}

// UpdateGPA stores the GPA of an already finalized semester and returns the
// updated student. Only semesters before the current one are finalized.
func (s *StudentService) UpdateGPA(ctx context.Context, id string, req UpdateGPARequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "invalid gpa payload")
	}
	student, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Semester >= student.CurrentSemester {
		return nil, appErrors.Clone(appErrors.ErrInvalidInput,
			fmt.Sprintf("semester %d is not finalized for a student in semester %d", req.Semester, student.CurrentSemester))
	}
	if err := s.repo.UpdateGPA(ctx, id, req.Semester, req.GPA); err != nil {
		return nil, lookupError(err, "student not found", "failed to update gpa")
	}
	student.SetSemesterGPA(req.Semester, req.GPA)
	s.cache.InvalidateStudent(ctx, id)
	s.logger.Info("semester gpa updated",
		zap.String("student_id", id),
		zap.Int("semester", req.Semester),
		zap.Float64("cumulative_gpa", academic.CumulativeGPA(*student)))
	return student, nil
}
