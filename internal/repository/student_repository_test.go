package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academic-progression-api/internal/models"
)

var studentRowColumns = []string{"id", "name", "division_id", "current_semester", "credits_completed",
	"gpa_sem1", "gpa_sem2", "gpa_sem3", "gpa_sem4", "gpa_sem5", "gpa_sem6", "gpa_sem7", "gpa_sem8",
	"status", "created_at", "updated_at"}

func newStudentMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestStudentRepositoryList(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	rows := sqlmock.NewRows(studentRowColumns).
		AddRow("stu-1", "Ada", "div-1", 3, 30, 3.1, 2.9, nil, nil, nil, nil, nil, nil, "active", time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM students s WHERE s.division_id = $1 AND LOWER(s.name) LIKE $2 ORDER BY s.name ASC, s.id ASC LIMIT 20 OFFSET 0")).
		WithArgs("div-1", "%ada%").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM students s WHERE s.division_id = $1 AND LOWER(s.name) LIKE $2")).
		WithArgs("div-1", "%ada%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	students, total, err := repo.List(context.Background(), models.StudentFilter{DivisionID: "div-1", Search: "Ada"})
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, 1, total)
	require.NotNil(t, students[0].GPASem1)
	assert.Equal(t, 3.1, *students[0].GPASem1)
	assert.Nil(t, students[0].GPASem3)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryListActive(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	rows := sqlmock.NewRows(studentRowColumns).
		AddRow("stu-1", "Ada", "div-1", 1, 0, nil, nil, nil, nil, nil, nil, nil, nil, "active", time.Now(), time.Now()).
		AddRow("stu-2", "Lin", "div-1", 2, 15, 2.5, nil, nil, nil, nil, nil, nil, nil, "active", time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM students s WHERE s.status = $1 ORDER BY s.id")).
		WithArgs(models.StudentStatusActive).
		WillReturnRows(rows)

	students, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	assert.Len(t, students, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec("INSERT INTO students").
		WillReturnResult(sqlmock.NewResult(1, 1))

	student := &models.Student{Name: "Ada", DivisionID: "div-1", CurrentSemester: 1}
	require.NoError(t, repo.Create(context.Background(), student))
	assert.NotEmpty(t, student.ID)
	assert.Equal(t, models.StudentStatusActive, student.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryUpdateGPA(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	value := 3.4
	mock.ExpectExec(regexp.QuoteMeta("UPDATE students SET gpa_sem2 = $2, updated_at = $3 WHERE id = $1")).
		WithArgs("stu-1", &value, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.UpdateGPA(context.Background(), "stu-1", 2, &value))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE students SET gpa_sem1")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.UpdateGPA(context.Background(), "missing", 1, &value), sql.ErrNoRows)

	assert.Error(t, repo.UpdateGPA(context.Background(), "stu-1", 9, &value))
	assert.NoError(t, mock.ExpectationsWereMet())
}
