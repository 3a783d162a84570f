package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academic-progression-api/internal/models"
	appErrors "github.com/noah-isme/academic-progression-api/pkg/errors"
)

func newCourseFixture(w *world, cacheRepo *fakeCache) *CourseService {
	return NewCourseService(fakeCourses{w}, NewCacheService(cacheRepo, nil, 0, nil, true), nil, nil)
}

func TestCourseServiceCreate(t *testing.T) {
	w := newWorld()
	svc := newCourseFixture(w, newFakeCache())
	req := CreateCourseRequest{Name: "Databases", Code: "CS301", Credits: 3, TypicalSemester: 5, MaxSeats: 40, DepartmentID: "dep-1"}

	course, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, models.CourseStatusAvailable, course.Status)

	_, err = svc.Create(context.Background(), req)
	assert.ErrorIs(t, err, appErrors.ErrBusinessRule)

	req.Code = "CS302"
	req.Credits = 0
	_, err = svc.Create(context.Background(), req)
	assert.ErrorIs(t, err, appErrors.ErrInvalidInput)

	req.Credits = 3
	req.Status = "Archived"
	_, err = svc.Create(context.Background(), req)
	assert.ErrorIs(t, err, appErrors.ErrInvalidInput)
}

func TestCourseServicePrerequisites(t *testing.T) {
	w := newWorld()
	w.addCourse(models.Course{ID: "prog1", Name: "Programming I", Credits: 3}, true)
	w.addCourse(models.Course{ID: "prog2", Name: "Programming II", Credits: 3}, true)
	cacheRepo := newFakeCache()
	svc := newCourseFixture(w, cacheRepo)
	ctx := context.Background()

	detail, err := svc.AddPrerequisite(ctx, "prog2", AddPrerequisiteRequest{PrerequisiteCourseID: "prog1"})
	require.NoError(t, err)
	require.Len(t, detail.Prerequisites, 1)
	assert.Equal(t, "Programming I", detail.Prerequisites[0].PrerequisiteName)
	assert.Contains(t, cacheRepo.deleted, "rec:*")

	_, err = svc.AddPrerequisite(ctx, "prog2", AddPrerequisiteRequest{PrerequisiteCourseID: "prog1"})
	require.NoError(t, err)
	assert.Len(t, w.prereqs, 1)

	_, err = svc.AddPrerequisite(ctx, "prog2", AddPrerequisiteRequest{PrerequisiteCourseID: "prog2"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidInput)

	_, err = svc.AddPrerequisite(ctx, "prog2", AddPrerequisiteRequest{PrerequisiteCourseID: "missing"})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	empty, err := svc.Get(ctx, "prog1")
	require.NoError(t, err)
	assert.NotNil(t, empty.Prerequisites)
	assert.Empty(t, empty.Prerequisites)
}

func TestCourseServiceAssignDivision(t *testing.T) {
	w := newWorld()
	w.courses["ai"] = models.Course{ID: "ai", Code: "AI", Credits: 3, Status: models.CourseStatusAvailable}
	svc := newCourseFixture(w, newFakeCache())
	ctx := context.Background()

	cd, err := svc.AssignDivision(ctx, "ai", AssignDivisionRequest{DivisionID: "div-1"})
	require.NoError(t, err)
	assert.False(t, cd.IsMandatory)

	_, err = svc.AssignDivision(ctx, "ai", AssignDivisionRequest{DivisionID: "div-1", IsMandatory: true})
	require.NoError(t, err)
	require.Len(t, w.offerings, 1)
	assert.True(t, w.offerings[0].IsMandatory)

	_, err = svc.AssignDivision(ctx, "ai", AssignDivisionRequest{DivisionID: "div-x"})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	_, err = svc.AssignDivision(ctx, "missing", AssignDivisionRequest{DivisionID: "div-1"})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}
