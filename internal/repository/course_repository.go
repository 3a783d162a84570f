package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/academic-progression-api/internal/models"
)

const courseColumns = `c.id, c.name, c.code, c.description, c.credits, c.typical_semester, c.max_seats, c.status, c.department_id, c.created_at, c.updated_at`

// CourseRepository manages the course catalog, its prerequisite graph and
// division offerings.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs a CourseRepository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// List returns courses matching the filter.
func (r *CourseRepository) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error) {
	var conditions []string
	var args []interface{}

	if filter.DepartmentID != "" {
		conditions = append(conditions, fmt.Sprintf("c.department_id = $%d", len(args)+1))
		args = append(args, filter.DepartmentID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("c.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(c.name) LIKE $%d OR LOWER(c.code) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	base := "FROM courses c"
	if len(conditions) > 0 {
		base += " WHERE " + strings.Join(conditions, " AND ")
	}
	page, size := models.NormalizePage(filter.Page, filter.PageSize)
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY c.code ASC LIMIT %d OFFSET %d", courseColumns, base, size, offset)
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list courses: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count courses: %w", err)
	}
	return courses, total, nil
}

// FindByID fetches a course by ID.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	query := fmt.Sprintf("SELECT %s FROM courses c WHERE c.id = $1", courseColumns)
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// ExistsByCode reports whether a course code is taken.
func (r *CourseRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var exists int
	if err := r.db.GetContext(ctx, &exists, "SELECT 1 FROM courses WHERE code = $1 LIMIT 1", code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check course code: %w", err)
	}
	return true, nil
}

// Create inserts a course.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	course.CreatedAt = now
	course.UpdatedAt = now
	if course.Status == "" {
		course.Status = models.CourseStatusAvailable
	}
	const query = `INSERT INTO courses (id, name, code, description, credits, typical_semester, max_seats, status, department_id, created_at, updated_at)
        VALUES (:id, :name, :code, :description, :credits, :typical_semester, :max_seats, :status, :department_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// ListPrerequisites returns the prerequisite edges of a course with names.
func (r *CourseRepository) ListPrerequisites(ctx context.Context, courseID string) ([]models.CoursePrerequisite, error) {
	const query = `SELECT cp.course_id, cp.prerequisite_course_id, p.name AS prerequisite_name
        FROM course_prerequisites cp JOIN courses p ON p.id = cp.prerequisite_course_id
        WHERE cp.course_id = $1 ORDER BY p.name`
	var prereqs []models.CoursePrerequisite
	if err := r.db.SelectContext(ctx, &prereqs, query, courseID); err != nil {
		return nil, fmt.Errorf("list prerequisites: %w", err)
	}
	return prereqs, nil
}

// ListPrerequisitesByDivision returns every prerequisite edge of courses
// offered to a division.
func (r *CourseRepository) ListPrerequisitesByDivision(ctx context.Context, divisionID string) ([]models.CoursePrerequisite, error) {
	const query = `SELECT cp.course_id, cp.prerequisite_course_id, p.name AS prerequisite_name
        FROM course_prerequisites cp
        JOIN course_divisions cd ON cd.course_id = cp.course_id
        JOIN courses p ON p.id = cp.prerequisite_course_id
        WHERE cd.division_id = $1`
	var prereqs []models.CoursePrerequisite
	if err := r.db.SelectContext(ctx, &prereqs, query, divisionID); err != nil {
		return nil, fmt.Errorf("list division prerequisites: %w", err)
	}
	return prereqs, nil
}

// AddPrerequisite records a prerequisite edge. Adding an existing edge is a no-op.
func (r *CourseRepository) AddPrerequisite(ctx context.Context, courseID, prerequisiteID string) error {
	const query = `INSERT INTO course_prerequisites (course_id, prerequisite_course_id) VALUES ($1, $2)
        ON CONFLICT (course_id, prerequisite_course_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, courseID, prerequisiteID); err != nil {
		return fmt.Errorf("add prerequisite: %w", err)
	}
	return nil
}

// AssignDivision offers a course to a division, updating the mandatory flag
// when the offering already exists.
func (r *CourseRepository) AssignDivision(ctx context.Context, cd models.CourseDivision) error {
	const query = `INSERT INTO course_divisions (course_id, division_id, is_mandatory) VALUES (:course_id, :division_id, :is_mandatory)
        ON CONFLICT (course_id, division_id) DO UPDATE SET is_mandatory = EXCLUDED.is_mandatory`
	if _, err := r.db.NamedExecContext(ctx, query, cd); err != nil {
		return fmt.Errorf("assign course division: %w", err)
	}
	return nil
}

// FindDivision fetches a division by ID.
func (r *CourseRepository) FindDivision(ctx context.Context, id string) (*models.Division, error) {
	var division models.Division
	if err := r.db.GetContext(ctx, &division, "SELECT id, name, department_id FROM divisions WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &division, nil
}

// IsOffered reports whether the course is offered to the division.
func (r *CourseRepository) IsOffered(ctx context.Context, courseID, divisionID string) (bool, error) {
	var exists int
	err := r.db.GetContext(ctx, &exists, "SELECT 1 FROM course_divisions WHERE course_id = $1 AND division_id = $2 LIMIT 1", courseID, divisionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check course offering: %w", err)
	}
	return true, nil
}

// ListByDivision returns every course offered to a division with its
// mandatory flag.
func (r *CourseRepository) ListByDivision(ctx context.Context, divisionID string) ([]models.DivisionCourse, error) {
	query := fmt.Sprintf(`SELECT %s, cd.is_mandatory FROM courses c
        JOIN course_divisions cd ON cd.course_id = c.id
        WHERE cd.division_id = $1 ORDER BY c.code`, courseColumns)
	var courses []models.DivisionCourse
	if err := r.db.SelectContext(ctx, &courses, query, divisionID); err != nil {
		return nil, fmt.Errorf("list division courses: %w", err)
	}
	return courses, nil
}

type courseCount struct {
	CourseID string `db:"course_id"`
	Count    int    `db:"dependents"`
}

// DependentCounts maps each course to how many courses require it.
func (r *CourseRepository) DependentCounts(ctx context.Context) (map[string]int, error) {
	const query = `SELECT prerequisite_course_id AS course_id, COUNT(*) AS dependents
        FROM course_prerequisites GROUP BY prerequisite_course_id`
	var rows []courseCount
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("count dependents: %w", err)
	}
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.CourseID] = row.Count
	}
	return counts, nil
}

// GradeStats returns the mean total grade per course over fully graded
// enrollments of any student.
func (r *CourseRepository) GradeStats(ctx context.Context) ([]models.CourseGradeStat, error) {
	const query = `SELECT course_id, AVG(exam1_grade + exam2_grade + final_grade) AS mean_total, COUNT(*) AS sample_count
        FROM enrollments
        WHERE exam1_grade IS NOT NULL AND exam2_grade IS NOT NULL AND final_grade IS NOT NULL
        GROUP BY course_id`
	var stats []models.CourseGradeStat
	if err := r.db.SelectContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("course grade stats: %w", err)
	}
	return stats, nil
}
