package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/academic-progression-api/internal/models"
)

const studentColumns = `s.id, s.name, s.division_id, s.current_semester, s.credits_completed,
        s.gpa_sem1, s.gpa_sem2, s.gpa_sem3, s.gpa_sem4, s.gpa_sem5, s.gpa_sem6, s.gpa_sem7, s.gpa_sem8,
        s.status, s.created_at, s.updated_at`

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns students matching the provided filters.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	var conditions []string
	var args []interface{}

	if filter.DivisionID != "" {
		conditions = append(conditions, fmt.Sprintf("s.division_id = $%d", len(args)+1))
		args = append(args, filter.DivisionID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("s.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(s.name) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	base := "FROM students s"
	if len(conditions) > 0 {
		base += " WHERE " + strings.Join(conditions, " AND ")
	}

	page, size := models.NormalizePage(filter.Page, filter.PageSize)
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY s.name ASC, s.id ASC LIMIT %d OFFSET %d", studentColumns, base, size, offset)
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// FindByID fetches a student by ID.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students s WHERE s.id = $1", studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// ListActive returns every active student, ordered by ID so sweeps are stable.
func (r *StudentRepository) ListActive(ctx context.Context) ([]models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students s WHERE s.status = $1 ORDER BY s.id", studentColumns)
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, models.StudentStatusActive); err != nil {
		return nil, fmt.Errorf("list active students: %w", err)
	}
	return students, nil
}

// Create inserts a new student record.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now
	if student.Status == "" {
		student.Status = models.StudentStatusActive
	}
	const query = `INSERT INTO students (id, name, division_id, current_semester, credits_completed,
        gpa_sem1, gpa_sem2, gpa_sem3, gpa_sem4, gpa_sem5, gpa_sem6, gpa_sem7, gpa_sem8, status, created_at, updated_at)
        VALUES (:id, :name, :division_id, :current_semester, :credits_completed,
        :gpa_sem1, :gpa_sem2, :gpa_sem3, :gpa_sem4, :gpa_sem5, :gpa_sem6, :gpa_sem7, :gpa_sem8, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// UpdateGPA stores the GPA of one finalized semester. A nil gpa clears it.
func (r *StudentRepository) UpdateGPA(ctx context.Context, id string, semester int, gpa *float64) error {
	if semester < 1 || semester > models.MaxTrackedSemesters {
		return fmt.Errorf("update gpa: semester %d out of range", semester)
	}
	query := fmt.Sprintf("UPDATE students SET gpa_sem%d = $2, updated_at = $3 WHERE id = $1", semester)
	res, err := r.db.ExecContext(ctx, query, id, gpa, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update gpa: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
