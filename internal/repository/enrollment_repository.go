package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/academic-progression-api/internal/academic"
	"github.com/noah-isme/academic-progression-api/internal/models"
	"github.com/noah-isme/academic-progression-api/pkg/database"
)

const enrollmentColumns = `e.id, e.student_id, e.course_id, e.semester_label, e.exam1_grade, e.exam2_grade, e.final_grade,
        e.added_date, e.cancelled_date, e.completion_status`

const enrollmentDetailColumns = enrollmentColumns + `,
        c.name AS course_name, c.code AS course_code, c.credits AS course_credits, COALESCE(cd.is_mandatory, false) AS is_mandatory`

const enrollmentDetailJoins = `FROM enrollments e
        JOIN courses c ON c.id = e.course_id
        JOIN students s ON s.id = e.student_id
        LEFT JOIN course_divisions cd ON cd.course_id = e.course_id AND cd.division_id = s.division_id`

// EnrollmentRepository handles persistence of enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// List returns enrollments filtered by the provided criteria.
func (r *EnrollmentRepository) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error) {
	var conditions []string
	var args []interface{}

	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("e.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.CourseID != "" {
		conditions = append(conditions, fmt.Sprintf("e.course_id = $%d", len(args)+1))
		args = append(args, filter.CourseID)
	}
	if filter.SemesterLabel != "" {
		conditions = append(conditions, fmt.Sprintf("e.semester_label = $%d", len(args)+1))
		args = append(args, filter.SemesterLabel)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("e.completion_status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}
	page, size := models.NormalizePage(filter.Page, filter.PageSize)
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s%s ORDER BY e.added_date DESC, e.id LIMIT %d OFFSET %d",
		enrollmentDetailColumns, enrollmentDetailJoins, clause, size, offset)
	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list enrollments: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM enrollments e"+clause, args...); err != nil {
		return nil, 0, fmt.Errorf("count enrollments: %w", err)
	}
	return enrollments, total, nil
}

// FindByID returns an enrollment by its ID.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	query := fmt.Sprintf("SELECT %s FROM enrollments e WHERE e.id = $1", enrollmentColumns)
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, id); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// ListByStudent returns the student's full enrollment history, oldest first,
// with the mandatory flag of each course in the student's division.
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE e.student_id = $1 ORDER BY e.added_date, e.id", enrollmentDetailColumns, enrollmentDetailJoins)
	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query, studentID); err != nil {
		return nil, fmt.Errorf("list student enrollments: %w", err)
	}
	return enrollments, nil
}

// StatusesForCourse returns the statuses of every enrollment the student has
// had in the course.
func (r *EnrollmentRepository) StatusesForCourse(ctx context.Context, studentID, courseID string) ([]models.EnrollmentStatus, error) {
	return statusesForCourse(ctx, r.db, studentID, courseID, false)
}

// TermCredits sums the credits of the student's InProgress enrollments in a term.
func (r *EnrollmentRepository) TermCredits(ctx context.Context, studentID, semesterLabel string) (int, error) {
	return termCredits(ctx, r.db, studentID, semesterLabel)
}

// CountInProgress counts the InProgress enrollments of a course in a term.
func (r *EnrollmentRepository) CountInProgress(ctx context.Context, courseID, semesterLabel string) (int, error) {
	return countInProgress(ctx, r.db, courseID, semesterLabel)
}

// Admit inserts an InProgress enrollment after re-checking the duplicate,
// credit and seat gates while holding row locks on the course and student.
// A failed re-check returns an *academic.Rejection and inserts nothing.
func (r *EnrollmentRepository) Admit(ctx context.Context, enrollment *models.Enrollment, limits models.AdmissionLimits) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	if enrollment.AddedDate.IsZero() {
		enrollment.AddedDate = time.Now().UTC()
	}
	enrollment.Status = models.EnrollmentStatusInProgress

	return database.WithTx(ctx, r.db, nil, func(tx *sqlx.Tx) error {
		var locked string
		if err := tx.GetContext(ctx, &locked, "SELECT id FROM courses WHERE id = $1 FOR UPDATE", enrollment.CourseID); err != nil {
			return fmt.Errorf("lock course: %w", err)
		}
		if err := tx.GetContext(ctx, &locked, "SELECT id FROM students WHERE id = $1 FOR UPDATE", enrollment.StudentID); err != nil {
			return fmt.Errorf("lock student: %w", err)
		}

		statuses, err := statusesForCourse(ctx, tx, enrollment.StudentID, enrollment.CourseID, true)
		if err != nil {
			return err
		}
		if rej := academic.DuplicateGate(statuses); rej != nil {
			return rej
		}
		credits, err := termCredits(ctx, tx, enrollment.StudentID, enrollment.SemesterLabel)
		if err != nil {
			return err
		}
		if rej := academic.CreditLimitGate(credits, limits.Credits, limits.MaxCredits); rej != nil {
			return rej
		}
		seats, err := countInProgress(ctx, tx, enrollment.CourseID, enrollment.SemesterLabel)
		if err != nil {
			return err
		}
		if rej := academic.SeatGate(seats, limits.MaxSeats); rej != nil {
			return rej
		}

		const insert = `INSERT INTO enrollments (id, student_id, course_id, semester_label, exam1_grade, exam2_grade, final_grade, added_date, cancelled_date, completion_status)
        VALUES (:id, :student_id, :course_id, :semester_label, :exam1_grade, :exam2_grade, :final_grade, :added_date, :cancelled_date, :completion_status)`
		if _, err := tx.NamedExecContext(ctx, insert, enrollment); err != nil {
			return fmt.Errorf("create enrollment: %w", err)
		}
		return nil
	})
}

// Cancel moves an InProgress enrollment to Cancelled. It reports false when
// the row was no longer InProgress.
func (r *EnrollmentRepository) Cancel(ctx context.Context, id string, at time.Time) (bool, error) {
	const query = `UPDATE enrollments SET completion_status = $2, cancelled_date = $3 WHERE id = $1 AND completion_status = $4`
	res, err := r.db.ExecContext(ctx, query, id, models.EnrollmentStatusCancelled, at, models.EnrollmentStatusInProgress)
	if err != nil {
		return false, fmt.Errorf("cancel enrollment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("cancel enrollment: %w", err)
	}
	return n > 0, nil
}

// Delete removes an enrollment row.
func (r *EnrollmentRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM enrollments WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete enrollment: %w", err)
	}
	return nil
}

func statusesForCourse(ctx context.Context, q sqlx.QueryerContext, studentID, courseID string, blocking bool) ([]models.EnrollmentStatus, error) {
	query := "SELECT completion_status FROM enrollments WHERE student_id = $1 AND course_id = $2"
	args := []interface{}{studentID, courseID}
	if blocking {
		query += " AND completion_status = ANY($3)"
		args = append(args, pq.Array([]string{string(models.EnrollmentStatusInProgress), string(models.EnrollmentStatusCompleted)}))
	}
	var statuses []models.EnrollmentStatus
	if err := sqlx.SelectContext(ctx, q, &statuses, query, args...); err != nil {
		return nil, fmt.Errorf("enrollment statuses: %w", err)
	}
	return statuses, nil
}

func termCredits(ctx context.Context, q sqlx.QueryerContext, studentID, semesterLabel string) (int, error) {
	const query = `SELECT COALESCE(SUM(c.credits), 0) FROM enrollments e JOIN courses c ON c.id = e.course_id
        WHERE e.student_id = $1 AND e.semester_label = $2 AND e.completion_status = $3`
	var credits int
	if err := sqlx.GetContext(ctx, q, &credits, query, studentID, semesterLabel, models.EnrollmentStatusInProgress); err != nil {
		return 0, fmt.Errorf("term credits: %w", err)
	}
	return credits, nil
}

func countInProgress(ctx context.Context, q sqlx.QueryerContext, courseID, semesterLabel string) (int, error) {
	const query = `SELECT COUNT(*) FROM enrollments WHERE course_id = $1 AND semester_label = $2 AND completion_status = $3`
	var count int
	if err := sqlx.GetContext(ctx, q, &count, query, courseID, semesterLabel, models.EnrollmentStatusInProgress); err != nil {
		return 0, fmt.Errorf("count course enrollments: %w", err)
	}
	return count, nil
}
