package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/noah-isme/academic-progression-api/internal/academic"
	"github.com/noah-isme/academic-progression-api/internal/models"
	appErrors "github.com/noah-isme/academic-progression-api/pkg/errors"
)

// world is an in-memory stand-in for the relational store shared by the fakes.
type world struct {
	mu          sync.Mutex
	students    map[string]models.Student
	courses     map[string]models.Course
	divisions   map[string]models.Division
	offerings   []models.CourseDivision
	prereqs     []models.CoursePrerequisite
	enrollments []models.Enrollment
	periods     []models.EnrollmentPeriod
	warnings    []models.AcademicWarning
	stats       []models.CourseGradeStat
	nextID      int

	failListByStudent map[string]error
	panicOnStudent    string
	catalogCalls      int
}

func newWorld() *world {
	return &world{
		students:  make(map[string]models.Student),
		courses:   make(map[string]models.Course),
		divisions: map[string]models.Division{"div-1": {ID: "div-1", Name: "Software", DepartmentID: "dep-1"}},
	}
}

func (w *world) id(prefix string) string {
	w.nextID++
	return fmt.Sprintf("%s-%d", prefix, w.nextID)
}

func (w *world) addStudent(s models.Student) models.Student {
	if s.DivisionID == "" {
		s.DivisionID = "div-1"
	}
	if s.Status == "" {
		s.Status = models.StudentStatusActive
	}
	w.students[s.ID] = s
	return s
}

func (w *world) addCourse(c models.Course, mandatory bool) models.Course {
	if c.Status == "" {
		c.Status = models.CourseStatusAvailable
	}
	if c.Code == "" {
		c.Code = strings.ToUpper(c.ID)
	}
	if c.Name == "" {
		c.Name = "Course " + c.ID
	}
	if c.MaxSeats == 0 {
		c.MaxSeats = 30
	}
	w.courses[c.ID] = c
	w.offerings = append(w.offerings, models.CourseDivision{CourseID: c.ID, DivisionID: "div-1", IsMandatory: mandatory})
	return c
}

func (w *world) addEnrollment(studentID, courseID string, status models.EnrollmentStatus, label string, added time.Time) models.Enrollment {
	e := models.Enrollment{ID: w.id("enr"), StudentID: studentID, CourseID: courseID, SemesterLabel: label, AddedDate: added, Status: status}
	w.enrollments = append(w.enrollments, e)
	return e
}

func (w *world) detail(e models.Enrollment) models.EnrollmentDetail {
	c := w.courses[e.CourseID]
	d := models.EnrollmentDetail{Enrollment: e, CourseName: c.Name, CourseCode: c.Code, CourseCredits: c.Credits}
	division := w.students[e.StudentID].DivisionID
	for _, o := range w.offerings {
		if o.CourseID == e.CourseID && o.DivisionID == division {
			d.IsMandatory = o.IsMandatory
		}
	}
	return d
}

func (w *world) activeWarnings(studentID string) []models.AcademicWarning {
	var out []models.AcademicWarning
	for _, wr := range w.warnings {
		if wr.StudentID == studentID && wr.Status == models.WarningStatusActive {
			out = append(out, wr)
		}
	}
	return out
}

type fakeStudents struct{ *world }

func (f fakeStudents) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	var out []models.Student
	for _, s := range f.students {
		if filter.DivisionID != "" && s.DivisionID != filter.DivisionID {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (f fakeStudents) FindByID(ctx context.Context, id string) (*models.Student, error) {
	s, ok := f.students[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &s, nil
}

func (f fakeStudents) ListActive(ctx context.Context) ([]models.Student, error) {
	var out []models.Student
	for _, s := range f.students {
		if s.Status == models.StudentStatusActive {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f fakeStudents) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = f.id("stu")
	}
	f.students[student.ID] = *student
	return nil
}

func (f fakeStudents) UpdateGPA(ctx context.Context, id string, semester int, gpa *float64) error {
	s, ok := f.students[id]
	if !ok {
		return sql.ErrNoRows
	}
	s.SetSemesterGPA(semester, gpa)
	f.students[id] = s
	return nil
}

type fakeCourses struct{ *world }

func (f fakeCourses) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error) {
	var out []models.Course
	for _, c := range f.courses {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, len(out), nil
}

func (f fakeCourses) FindByID(ctx context.Context, id string) (*models.Course, error) {
	c, ok := f.courses[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &c, nil
}

func (f fakeCourses) ExistsByCode(ctx context.Context, code string) (bool, error) {
	for _, c := range f.courses {
		if c.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (f fakeCourses) Create(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = f.id("crs")
	}
	if course.Status == "" {
		course.Status = models.CourseStatusAvailable
	}
	f.courses[course.ID] = *course
	return nil
}

func (f fakeCourses) ListPrerequisites(ctx context.Context, courseID string) ([]models.CoursePrerequisite, error) {
	var out []models.CoursePrerequisite
	for _, p := range f.prereqs {
		if p.CourseID == courseID {
			p.PrerequisiteName = f.courses[p.PrerequisiteCourseID].Name
			out = append(out, p)
		}
	}
	return out, nil
}

func (f fakeCourses) ListPrerequisitesByDivision(ctx context.Context, divisionID string) ([]models.CoursePrerequisite, error) {
	return f.prereqs, nil
}

func (f fakeCourses) AddPrerequisite(ctx context.Context, courseID, prerequisiteID string) error {
	for _, p := range f.prereqs {
		if p.CourseID == courseID && p.PrerequisiteCourseID == prerequisiteID {
			return nil
		}
	}
	f.world.prereqs = append(f.world.prereqs, models.CoursePrerequisite{CourseID: courseID, PrerequisiteCourseID: prerequisiteID})
	return nil
}

func (f fakeCourses) AssignDivision(ctx context.Context, cd models.CourseDivision) error {
	for i, o := range f.offerings {
		if o.CourseID == cd.CourseID && o.DivisionID == cd.DivisionID {
			f.world.offerings[i].IsMandatory = cd.IsMandatory
			return nil
		}
	}
	f.world.offerings = append(f.world.offerings, cd)
	return nil
}

func (f fakeCourses) FindDivision(ctx context.Context, id string) (*models.Division, error) {
	d, ok := f.divisions[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &d, nil
}

func (f fakeCourses) IsOffered(ctx context.Context, courseID, divisionID string) (bool, error) {
	for _, o := range f.offerings {
		if o.CourseID == courseID && o.DivisionID == divisionID {
			return true, nil
		}
	}
	return false, nil
}

func (f fakeCourses) ListByDivision(ctx context.Context, divisionID string) ([]models.DivisionCourse, error) {
	f.world.mu.Lock()
	f.world.catalogCalls++
	f.world.mu.Unlock()
	var out []models.DivisionCourse
	for _, o := range f.offerings {
		if o.DivisionID == divisionID {
			out = append(out, models.DivisionCourse{Course: f.courses[o.CourseID], IsMandatory: o.IsMandatory})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (f fakeCourses) DependentCounts(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int)
	for _, p := range f.prereqs {
		counts[p.PrerequisiteCourseID]++
	}
	return counts, nil
}

func (f fakeCourses) GradeStats(ctx context.Context) ([]models.CourseGradeStat, error) {
	return f.stats, nil
}

type fakeEnrollments struct{ *world }

func (f fakeEnrollments) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error) {
	var out []models.EnrollmentDetail
	for _, e := range f.enrollments {
		if filter.StudentID != "" && e.StudentID != filter.StudentID {
			continue
		}
		out = append(out, f.detail(e))
	}
	return out, len(out), nil
}

func (f fakeEnrollments) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	for _, e := range f.enrollments {
		if e.ID == id {
			return &e, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f fakeEnrollments) ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error) {
	if err := f.failListByStudent[studentID]; err != nil {
		return nil, err
	}
	if f.panicOnStudent == studentID {
		panic("corrupt enrollment row")
	}
	var out []models.EnrollmentDetail
	for _, e := range f.enrollments {
		if e.StudentID == studentID {
			out = append(out, f.detail(e))
		}
	}
	return out, nil
}

func (f fakeEnrollments) StatusesForCourse(ctx context.Context, studentID, courseID string) ([]models.EnrollmentStatus, error) {
	var out []models.EnrollmentStatus
	for _, e := range f.enrollments {
		if e.StudentID == studentID && e.CourseID == courseID {
			out = append(out, e.Status)
		}
	}
	return out, nil
}

func (f fakeEnrollments) TermCredits(ctx context.Context, studentID, semesterLabel string) (int, error) {
	total := 0
	for _, e := range f.enrollments {
		if e.StudentID == studentID && e.SemesterLabel == semesterLabel && e.Status == models.EnrollmentStatusInProgress {
			total += f.courses[e.CourseID].Credits
		}
	}
	return total, nil
}

func (f fakeEnrollments) CountInProgress(ctx context.Context, courseID, semesterLabel string) (int, error) {
	count := 0
	for _, e := range f.enrollments {
		if e.CourseID == courseID && e.SemesterLabel == semesterLabel && e.Status == models.EnrollmentStatusInProgress {
			count++
		}
	}
	return count, nil
}

func (f fakeEnrollments) Admit(ctx context.Context, enrollment *models.Enrollment, limits models.AdmissionLimits) error {
	f.world.mu.Lock()
	defer f.world.mu.Unlock()
	var blocking []models.EnrollmentStatus
	for _, e := range f.enrollments {
		if e.StudentID == enrollment.StudentID && e.CourseID == enrollment.CourseID {
			blocking = append(blocking, e.Status)
		}
	}
	if rej := academic.DuplicateGate(blocking); rej != nil {
		return rej
	}
	credits, _ := f.TermCredits(ctx, enrollment.StudentID, enrollment.SemesterLabel)
	if rej := academic.CreditLimitGate(credits, limits.Credits, limits.MaxCredits); rej != nil {
		return rej
	}
	seats, _ := f.CountInProgress(ctx, enrollment.CourseID, enrollment.SemesterLabel)
	if rej := academic.SeatGate(seats, limits.MaxSeats); rej != nil {
		return rej
	}
	enrollment.ID = f.id("enr")
	enrollment.Status = models.EnrollmentStatusInProgress
	f.world.enrollments = append(f.world.enrollments, *enrollment)
	return nil
}

func (f fakeEnrollments) Cancel(ctx context.Context, id string, at time.Time) (bool, error) {
	for i, e := range f.enrollments {
		if e.ID == id && e.Status == models.EnrollmentStatusInProgress {
			f.world.enrollments[i].Status = models.EnrollmentStatusCancelled
			f.world.enrollments[i].CancelledDate = &at
			return true, nil
		}
	}
	return false, nil
}

func (f fakeEnrollments) Delete(ctx context.Context, id string) error {
	for i, e := range f.enrollments {
		if e.ID == id {
			f.world.enrollments = append(f.world.enrollments[:i], f.world.enrollments[i+1:]...)
			return nil
		}
	}
	return nil
}

type fakePeriods struct{ *world }

func (f fakePeriods) List(ctx context.Context) ([]models.EnrollmentPeriod, error) {
	return f.periods, nil
}

func (f fakePeriods) ListCovering(ctx context.Context, t time.Time) ([]models.EnrollmentPeriod, error) {
	var out []models.EnrollmentPeriod
	for _, p := range f.periods {
		if p.Contains(t) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f fakePeriods) ListOverlapping(ctx context.Context, start, end time.Time) ([]models.EnrollmentPeriod, error) {
	window := models.EnrollmentPeriod{StartDate: start, EndDate: end}
	var out []models.EnrollmentPeriod
	for _, p := range f.periods {
		if p.Overlaps(window) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f fakePeriods) Create(ctx context.Context, period *models.EnrollmentPeriod) error {
	period.ID = f.id("per")
	f.world.periods = append(f.world.periods, *period)
	return nil
}

type fakeWarnings struct{ *world }

func (f fakeWarnings) List(ctx context.Context, filter models.WarningFilter) ([]models.WarningDetail, int, error) {
	var out []models.WarningDetail
	for _, w := range f.warnings {
		if filter.StudentID != "" && w.StudentID != filter.StudentID {
			continue
		}
		out = append(out, models.WarningDetail{AcademicWarning: w, StudentName: f.students[w.StudentID].Name})
	}
	return out, len(out), nil
}

func (f fakeWarnings) ListActive(ctx context.Context) ([]models.WarningDetail, error) {
	var out []models.WarningDetail
	for _, w := range f.warnings {
		if w.Status == models.WarningStatusActive {
			out = append(out, models.WarningDetail{AcademicWarning: w, StudentName: f.students[w.StudentID].Name})
		}
	}
	return out, nil
}

func (f fakeWarnings) FindByID(ctx context.Context, id string) (*models.AcademicWarning, error) {
	for _, w := range f.warnings {
		if w.ID == id {
			return &w, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f fakeWarnings) ListActiveByStudent(ctx context.Context, studentID string) ([]models.AcademicWarning, error) {
	return f.activeWarnings(studentID), nil
}

func (f fakeWarnings) resolve(id, note string, at time.Time) {
	for i, w := range f.warnings {
		if w.ID == id {
			f.world.warnings[i].Status = models.WarningStatusResolved
			f.world.warnings[i].ResolvedDate = &at
			if w.Notes == "" {
				f.world.warnings[i].Notes = note
			} else {
				f.world.warnings[i].Notes = w.Notes + "\n" + note
			}
		}
	}
}

func (f fakeWarnings) Resolve(ctx context.Context, id, note string, at time.Time) error {
	f.resolve(id, note, at)
	return nil
}

func (f fakeWarnings) Issue(ctx context.Context, warning *models.AcademicWarning) error {
	for i, w := range f.warnings {
		if w.StudentID == warning.StudentID && w.Type == warning.Type && w.Status == models.WarningStatusActive {
			f.world.warnings[i].Status = models.WarningStatusSuperseded
		}
	}
	warning.ID = f.id("wrn")
	warning.Status = models.WarningStatusActive
	f.world.warnings = append(f.world.warnings, *warning)
	return nil
}

func (f fakeWarnings) ApplyPlan(ctx context.Context, studentID, semesterLabel string, plan academic.WarningPlan, now time.Time) ([]models.AcademicWarning, error) {
	for _, r := range plan.Resolve {
		f.resolve(r.Warning.ID, r.Note, now)
	}
	var issued []models.AcademicWarning
	for _, c := range plan.Issue {
		w := models.AcademicWarning{
			StudentID: studentID, Type: c.Type, Level: c.Level, Description: c.Description,
			SemesterLabel: semesterLabel, IssueDate: now, ActionRequired: c.ActionRequired,
		}
		if err := f.Issue(ctx, &w); err != nil {
			return nil, err
		}
		issued = append(issued, w)
	}
	return issued, nil
}

// fakeCache is an in-memory CacheRepository.
type fakeCache struct {
	mu      sync.Mutex
	entries map[string]interface{}
	deleted []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]interface{})}
}

func (c *fakeCache) Get(ctx context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	if r, ok := v.(*RecommendationResult); ok {
		if d, ok := dest.(*RecommendationResult); ok {
			*d = *r
			return nil
		}
	}
	return appErrors.ErrCacheMiss
}

func (c *fakeCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

func (c *fakeCache) DeleteByPattern(ctx context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
	c.deleted = append(c.deleted, pattern)
	return nil
}

func ptr(v float64) *float64 {
	return &v
}
