package service

import (
	"context"
	"sort"

	"github.com/noah-isme/academic-progression-api/internal/academic"
	"github.com/noah-isme/academic-progression-api/internal/models"
	appErrors "github.com/noah-isme/academic-progression-api/pkg/errors"
)

type studentReader interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type enrollmentHistoryReader interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error)
}

type divisionCatalogReader interface {
	ListByDivision(ctx context.Context, divisionID string) ([]models.DivisionCourse, error)
}

// recordLoader assembles the read-only view of one student the rules evaluate.
type recordLoader struct {
	students    studentReader
	enrollments enrollmentHistoryReader
	catalog     divisionCatalogReader
}

// studentRecord is a student with their enrollment history and division catalog.
type studentRecord struct {
	Student models.Student
	History []models.EnrollmentDetail
	Catalog []models.DivisionCourse
}

func (l recordLoader) load(ctx context.Context, studentID string) (*studentRecord, error) {
	student, err := l.students.FindByID(ctx, studentID)
	if err != nil {
		return nil, lookupError(err, "student not found", "failed to load student")
	}
	return l.loadFor(ctx, *student)
}

func (l recordLoader) loadFor(ctx context.Context, student models.Student) (*studentRecord, error) {
	history, err := l.enrollments.ListByStudent(ctx, student.ID)
	if err != nil {
		return nil, appErrors.Computation(err, "failed to load enrollment history")
	}
	catalog, err := l.catalog.ListByDivision(ctx, student.DivisionID)
	if err != nil {
		return nil, appErrors.Computation(err, "failed to load division catalog")
	}
	return &studentRecord{Student: student, History: history, Catalog: catalog}, nil
}

func (r *studentRecord) enrollments() []models.Enrollment {
	out := make([]models.Enrollment, 0, len(r.History))
	for _, e := range r.History {
		out = append(out, e.Enrollment)
	}
	return out
}

func (r *studentRecord) idsWithStatus(status models.EnrollmentStatus) map[string]bool {
	ids := make(map[string]bool)
	for _, e := range r.History {
		if e.Status == status {
			ids[e.CourseID] = true
		}
	}
	return ids
}

func (r *studentRecord) failingIDs() map[string]bool {
	ids := make(map[string]bool)
	for _, id := range academic.FailingCourseIDs(r.enrollments()) {
		ids[id] = true
	}
	return ids
}

// credits reconciles completed courses against the degree requirements.
// Each completed course counts once; remaining courses come from the
// division catalog.
func (r *studentRecord) credits() academic.CreditsAnalysis {
	seen := make(map[string]bool)
	var completed []academic.CourseCredit
	for _, e := range r.History {
		if e.Status != models.EnrollmentStatusCompleted || seen[e.CourseID] {
			continue
		}
		seen[e.CourseID] = true
		completed = append(completed, academic.CourseCredit{
			CourseID:    e.CourseID,
			Code:        e.CourseCode,
			Name:        e.CourseName,
			Credits:     e.CourseCredits,
			IsMandatory: e.IsMandatory,
		})
	}
	var remaining []academic.CourseCredit
	for _, c := range r.Catalog {
		if seen[c.ID] {
			continue
		}
		remaining = append(remaining, academic.CourseCredit{
			CourseID:    c.ID,
			Code:        c.Code,
			Name:        c.Name,
			Credits:     c.Credits,
			IsMandatory: c.IsMandatory,
		})
	}
	sort.SliceStable(remaining, func(i, j int) bool { return remaining[i].Code < remaining[j].Code })
	return academic.AnalyzeCredits(completed, remaining, r.Student.CreditsCompleted)
}

func (r *studentRecord) failingMandatory() int {
	mandatory := make(map[string]bool)
	for _, c := range r.Catalog {
		if c.IsMandatory {
			mandatory[c.ID] = true
		}
	}
	count := 0
	for id := range r.failingIDs() {
		if mandatory[id] {
			count++
		}
	}
	return count
}

func (r *studentRecord) warningInput() academic.WarningInput {
	return academic.NewWarningInput(r.Student, r.enrollments(), r.credits().CompletedCredits)
}

func (r *studentRecord) snapshot() academic.StudentSnapshot {
	var names []string
	seen := make(map[string]bool)
	for _, e := range r.History {
		if e.Status == models.EnrollmentStatusCompleted && !seen[e.CourseID] {
			seen[e.CourseID] = true
			names = append(names, e.CourseName)
		}
	}
	return academic.StudentSnapshot{
		Student:        r.Student,
		GPA:            academic.CumulativeGPA(r.Student),
		Completed:      r.idsWithStatus(models.EnrollmentStatusCompleted),
		Failed:         r.failingIDs(),
		InProgress:     r.idsWithStatus(models.EnrollmentStatusInProgress),
		CompletedNames: names,
	}
}
