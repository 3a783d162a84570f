package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-progression-api/internal/models"
	appErrors "github.com/noah-isme/academic-progression-api/pkg/errors"
)

func newStudentFixture(w *world, cacheRepo *fakeCache) *StudentService {
	cache := NewCacheService(cacheRepo, nil, 0, nil, true)
	return NewStudentService(fakeStudents{w}, fakeCourses{w}, cache, nil, zap.NewNop())
}

func TestStudentServiceCreate(t *testing.T) {
	w := newWorld()
	svc := newStudentFixture(w, newFakeCache())

	student, err := svc.Create(context.Background(), CreateStudentRequest{Name: "Ada", DivisionID: "div-1", CurrentSemester: 1})
	require.NoError(t, err)
	assert.Equal(t, models.StudentStatusActive, student.Status)
	assert.Contains(t, w.students, student.ID)

	_, err = svc.Create(context.Background(), CreateStudentRequest{Name: "Lin", DivisionID: "div-9", CurrentSemester: 1})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	_, err = svc.Create(context.Background(), CreateStudentRequest{Name: "Lin", DivisionID: "div-1"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidInput)
}

func TestStudentServiceUpdateGPA(t *testing.T) {
	w := newWorld()
	w.addStudent(models.Student{ID: "stu-1", CurrentSemester: 3, GPASem1: ptr(2.0)})
	cacheRepo := newFakeCache()
	svc := newStudentFixture(w, cacheRepo)
	ctx := context.Background()

	updated, err := svc.UpdateGPA(ctx, "stu-1", UpdateGPARequest{Semester: 2, GPA: ptr(3.0)})
	require.NoError(t, err)
	require.NotNil(t, updated.GPASem2)
	assert.Equal(t, 3.0, *updated.GPASem2)
	assert.Equal(t, 3.0, *w.students["stu-1"].GPASem2)
	assert.Contains(t, cacheRepo.deleted, "rec:stu-1:*")

	tests := []struct {
		name string
		id   string
		req  UpdateGPARequest
		want error
	}{
		{"current semester is not finalized", "stu-1", UpdateGPARequest{Semester: 3, GPA: ptr(3.0)}, appErrors.ErrInvalidInput},
		{"gpa above scale", "stu-1", UpdateGPARequest{Semester: 1, GPA: ptr(4.5)}, appErrors.ErrInvalidInput},
		{"semester beyond tracked slots", "stu-1", UpdateGPARequest{Semester: 9, GPA: ptr(3.0)}, appErrors.ErrInvalidInput},
		{"unknown student", "missing", UpdateGPARequest{Semester: 1, GPA: ptr(3.0)}, appErrors.ErrNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.UpdateGPA(ctx, tc.id, tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	cleared, err := svc.UpdateGPA(ctx, "stu-1", UpdateGPARequest{Semester: 1})
	require.NoError(t, err)
	assert.Nil(t, cleared.GPASem1)
}

func TestStudentServiceListAndGet(t *testing.T) {
	w := newWorld()
	w.addStudent(models.Student{ID: "stu-1", Name: "Ada", CurrentSemester: 1})
	svc := newStudentFixture(w, newFakeCache())

	students, page, err := svc.List(context.Background(), models.StudentFilter{Page: 2, PageSize: 500})
	require.NoError(t, err)
	assert.Len(t, students, 1)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 20, page.PageSize)

	_, _, err = svc.List(context.Background(), models.StudentFilter{Status: "graduated"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidInput)

	_, err = svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}
