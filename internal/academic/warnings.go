package academic

import (
	"fmt"
	"sort"

	"github.com/noah-isme/academic-progression-api/internal/models"
)

// GPA thresholds used by the warning rules.
const (
	CriticalGPA     = 1.5
	ProbationGPA    = 2.0
	SatisfactoryGPA = 2.5
)

// Candidate is a warning the rules would issue for the current snapshot.
type Candidate struct {
	Type           models.WarningType `json:"warning_type"`
	Level          int                `json:"warning_level"`
	Description    string             `json:"description"`
	ActionRequired string             `json:"action_required"`
}

// WarningInput is the per-student snapshot the warning rules evaluate.
type WarningInput struct {
	CurrentSemester  int
	CumulativeGPA    float64
	History          []float64
	FailingCourses   int
	CreditsCompleted int
}

// NewWarningInput builds the rule snapshot from a student, their enrollment
// history and their reconciled completed credits.
func NewWarningInput(s models.Student, enrollments []models.Enrollment, creditsCompleted int) WarningInput {
	return WarningInput{
		CurrentSemester:  s.CurrentSemester,
		CumulativeGPA:    CumulativeGPA(s),
		History:          GPAHistory(s),
		FailingCourses:   len(FailingCourseIDs(enrollments)),
		CreditsCompleted: creditsCompleted,
	}
}

// FailingCourseIDs returns the distinct courses with a Failed enrollment and no
// Completed enrollment added on or after the latest failure.
func FailingCourseIDs(enrollments []models.Enrollment) []string {
	lastFailed := make(map[string]models.Enrollment)
	for _, e := range enrollments {
		if e.Status != models.EnrollmentStatusFailed {
			continue
		}
		if prev, ok := lastFailed[e.CourseID]; !ok || e.AddedDate.After(prev.AddedDate) {
			lastFailed[e.CourseID] = e
		}
	}
	for _, e := range enrollments {
		if e.Status != models.EnrollmentStatusCompleted {
			continue
		}
		if failed, ok := lastFailed[e.CourseID]; ok && !e.AddedDate.Before(failed.AddedDate) {
			delete(lastFailed, e.CourseID)
		}
	}
	ids := make([]string, 0, len(lastFailed))
	for id := range lastFailed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// GPARule flags a low cumulative GPA. Semester 1 has no data.
func GPARule(in WarningInput) *Candidate {
	gpa := in.CumulativeGPA
	level := 0
	switch {
	case in.CurrentSemester <= 1:
		return nil
	case in.CurrentSemester == 2:
		if gpa < CriticalGPA {
			level = 2
		}
	case gpa < CriticalGPA:
		level = 4
	case gpa < ProbationGPA:
		level = 3
	case gpa < SatisfactoryGPA:
		level = 2
	}
	if level == 0 {
		return nil
	}
	return &Candidate{
		Type:           models.WarningTypeLowGPA,
		Level:          level,
		Description:    fmt.Sprintf("Cumulative GPA %.2f is below the required standing", gpa),
		ActionRequired: gpaAction(level),
	}
}

func gpaAction(level int) string {
	switch level {
	case 4:
		return "Mandatory meeting with academic advisor and reduced course load"
	case 3:
		return "Meet academic advisor and prepare a study improvement plan"
	default:
		return "Review study habits and consider tutoring support"
	}
}

// FailingCoursesRule flags outstanding failed courses.
func FailingCoursesRule(in WarningInput) *Candidate {
	n := in.FailingCourses
	level := 0
	switch {
	case in.CurrentSemester <= 1:
		return nil
	case in.CurrentSemester == 2:
		if n >= 2 {
			level = 2
		}
	case n >= 5:
		level = 4
	case n >= 3:
		level = 3
	case n >= 2:
		level = 2
	case n >= 1:
		level = 1
	}
	if level == 0 {
		return nil
	}
	return &Candidate{
		Type:           models.WarningTypeFailingCourses,
		Level:          level,
		Description:    fmt.Sprintf("%d failed course(s) not yet passed", n),
		ActionRequired: "Re-enroll in failed courses at the next opportunity",
	}
}

// DismissalRule looks for a sustained pattern of sub-2.0 cumulative GPA
// across the GPA history. Requires semester 3 or later and three entries.
func DismissalRule(in WarningInput) *Candidate {
	if in.CurrentSemester < 3 || len(in.History) < 3 {
		return nil
	}
	below := 0
	for _, g := range in.History {
		if g < ProbationGPA {
			below++
		}
	}
	if below < 3 {
		return nil
	}
	trailing := true
	for _, g := range in.History[len(in.History)-3:] {
		if g >= ProbationGPA {
			trailing = false
			break
		}
	}
	if below >= 4 || trailing {
		return &Candidate{
			Type:           models.WarningTypeDismissalRisk,
			Level:          4,
			Description:    fmt.Sprintf("Dismissal risk: cumulative GPA below %.1f in %d semesters", ProbationGPA, below),
			ActionRequired: "Urgent review by the academic committee",
		}
	}
	return &Candidate{
		Type:           models.WarningTypeDismissalRisk,
		Level:          3,
		Description:    fmt.Sprintf("Academic warning: cumulative GPA below %.1f in %d semesters", ProbationGPA, below),
		ActionRequired: "Meet academic advisor to prevent dismissal",
	}
}

// yearFloors is the minimum credits expected at the start of each study year.
var yearFloors = [...]int{0, 34, 68, 102}

// ExpectedYear is the study year a semester belongs to, capped at 4.
func ExpectedYear(semester int) int {
	year := (semester + 1) / 2
	if year < 1 {
		return 1
	}
	if year > len(yearFloors) {
		return len(yearFloors)
	}
	return year
}

// ExpectedCredits is the minimum completed credits expected on entering the
// given semester. Semesters past the eighth expect the full degree.
func ExpectedCredits(semester int) int {
	if semester > 2*len(yearFloors) {
		return RequiredTotalCredits
	}
	offset := (semester - 1) % 2
	if offset < 0 {
		offset = 0
	}
	return yearFloors[ExpectedYear(semester)-1] + 15*offset
}

// LevelByCredits maps completed credits to an academic level 1-4.
func LevelByCredits(credits int) int {
	level := 1
	for i := 1; i < len(yearFloors); i++ {
		if credits >= yearFloors[i] {
			level = i + 1
		}
	}
	return level
}

// CreditProgressRule flags a shortfall against expected completed credits.
func CreditProgressRule(in WarningInput) *Candidate {
	if in.CurrentSemester < 2 {
		return nil
	}
	expected := ExpectedCredits(in.CurrentSemester)
	deficit := expected - in.CreditsCompleted
	if deficit <= 0 {
		return nil
	}
	level := 0
	switch {
	case deficit > 30 || LevelByCredits(in.CreditsCompleted) < ExpectedYear(in.CurrentSemester):
		level = 3
	case deficit > 15:
		level = 2
	case deficit > 5:
		level = 1
	}
	if level == 0 {
		return nil
	}
	description := fmt.Sprintf("Completed %d credits, %d below the %d expected", in.CreditsCompleted, deficit, expected)
	if level == 3 {
		description = "Severe credit shortfall: " + description
	}
	return &Candidate{
		Type:           models.WarningTypeCreditShortfall,
		Level:          level,
		Description:    description,
		ActionRequired: "Plan additional credits with academic advisor",
	}
}

// Candidates runs the four independent rule checks.
func Candidates(in WarningInput) []Candidate {
	var out []Candidate
	for _, rule := range []func(WarningInput) *Candidate{GPARule, FailingCoursesRule, DismissalRule, CreditProgressRule} {
		if c := rule(in); c != nil {
			out = append(out, *c)
		}
	}
	return out
}

// ShouldResolve applies the type-specific resolution predicate to an active
// warning. candidate is the current candidate of the same type, or nil.
// Dismissal-risk and manually issued warnings never auto-resolve.
func ShouldResolve(w models.AcademicWarning, candidate *Candidate, gpa float64) (bool, string) {
	switch w.Type {
	case models.WarningTypeFailingCourses:
		if candidate == nil {
			return true, "Auto-resolved: no failed courses outstanding"
		}
		if candidate.Level <= w.Level-2 {
			return true, fmt.Sprintf("Auto-resolved: failing-course severity dropped to level %d", candidate.Level)
		}
	case models.WarningTypeLowGPA:
		if gpa >= SatisfactoryGPA || (gpa >= ProbationGPA && w.Level >= 3) {
			return true, fmt.Sprintf("Auto-resolved: cumulative GPA improved to %.2f", gpa)
		}
	case models.WarningTypeCreditShortfall:
		if candidate == nil {
			return true, "Auto-resolved: credit progress back on track"
		}
		if candidate.Level < w.Level {
			return true, fmt.Sprintf("Auto-resolved: credit shortfall reduced to level %d", candidate.Level)
		}
	}
	return false, ""
}

// Resolution marks an active warning as resolved with a note.
type Resolution struct {
	Warning models.AcademicWarning
	Note    string
}

// WarningPlan is the outcome of one evaluation pass for a student.
type WarningPlan struct {
	Resolve []Resolution
	Issue   []Candidate
}

// Empty reports whether the plan changes nothing.
func (p WarningPlan) Empty() bool {
	return len(p.Resolve) == 0 && len(p.Issue) == 0
}

// PlanWarnings runs a full evaluation pass over the student's active warnings:
// auto-resolve first, then issue each candidate only when no remaining active
// warning of its type exists or it strictly exceeds the highest remaining level.
func PlanWarnings(active []models.AcademicWarning, in WarningInput) WarningPlan {
	candidates := Candidates(in)
	byType := make(map[models.WarningType]*Candidate, len(candidates))
	for i := range candidates {
		byType[candidates[i].Type] = &candidates[i]
	}

	var plan WarningPlan
	remaining := make(map[models.WarningType]int)
	for _, w := range active {
		if w.Status != models.WarningStatusActive {
			continue
		}
		if ok, note := ShouldResolve(w, byType[w.Type], in.CumulativeGPA); ok {
			plan.Resolve = append(plan.Resolve, Resolution{Warning: w, Note: note})
			continue
		}
		if w.Level > remaining[w.Type] {
			remaining[w.Type] = w.Level
		}
	}

	for _, c := range candidates {
		if existing, ok := remaining[c.Type]; ok && c.Level <= existing {
			continue
		}
		plan.Issue = append(plan.Issue, c)
	}
	return plan
}
