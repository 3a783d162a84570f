package academic

import (
	"sort"

	"github.com/noah-isme/academic-progression-api/internal/models"
)

// AcademicStatus buckets a student's standing for recommendation purposes.
type AcademicStatus string

const (
	StatusExcellent      AcademicStatus = "excellent"
	StatusVeryGood       AcademicStatus = "very_good"
	StatusGood           AcademicStatus = "good"
	StatusAcceptable     AcademicStatus = "acceptable"
	StatusAtRisk         AcademicStatus = "at_risk"
	StatusNeedsAttention AcademicStatus = "needs_attention"
)

// ClassifyStatus buckets the GPA and downgrades students with several
// outstanding failures.
func ClassifyStatus(gpa float64, failedCount int) AcademicStatus {
	var status AcademicStatus
	switch {
	case gpa >= 3.5:
		status = StatusExcellent
	case gpa >= 3.0:
		status = StatusVeryGood
	case gpa >= 2.5:
		status = StatusGood
	case gpa >= 2.0:
		status = StatusAcceptable
	default:
		status = StatusAtRisk
	}
	if failedCount > 3 {
		return StatusAtRisk
	}
	if failedCount > 1 && gpa < SatisfactoryGPA && status != StatusAtRisk {
		return StatusNeedsAttention
	}
	return status
}

// Trend describes the direction of the latest semester GPA change.
type Trend string

const (
	TrendImproving        Trend = "improving"
	TrendDeclining        Trend = "declining"
	TrendStable           Trend = "stable"
	TrendInsufficientData Trend = "insufficient_data"
)

// trendTolerance is the GPA delta treated as no change.
const trendTolerance = 0.05

// TrendOf compares the last two entries of a GPA series.
func TrendOf(history []float64) Trend {
	if len(history) < 2 {
		return TrendInsufficientData
	}
	delta := history[len(history)-1] - history[len(history)-2]
	switch {
	case delta > trendTolerance:
		return TrendImproving
	case delta < -trendTolerance:
		return TrendDeclining
	default:
		return TrendStable
	}
}

// StudentTrend is the trend over the student's finalized semester GPAs.
func StudentTrend(s models.Student) Trend {
	return TrendOf(finalizedGPAs(s))
}

// Scorer rates how similar text is to a corpus, in [0,1].
type Scorer interface {
	Score(text string, corpus []string) float64
}

// StudentSnapshot is the read-only view of a student used for scoring.
type StudentSnapshot struct {
	Student    models.Student
	GPA        float64
	Completed  map[string]bool
	Failed     map[string]bool
	InProgress map[string]bool
	// Names of completed courses, the corpus for content similarity.
	CompletedNames []string
}

// CatalogCourse is a division-scoped course with its scoring inputs.
type CatalogCourse struct {
	models.DivisionCourse
	PrerequisiteIDs []string
	// Number of courses that list this one as a prerequisite.
	Dependents int
	// Mean historical total grade, nil when no student has been graded.
	MeanTotal *float64
}

// FilterCatalog keeps Available courses the student has neither completed nor
// is taking, whose prerequisites are all completed.
func FilterCatalog(courses []CatalogCourse, snap StudentSnapshot) []CatalogCourse {
	out := make([]CatalogCourse, 0, len(courses))
	for _, c := range courses {
		if c.Status != models.CourseStatusAvailable || snap.Completed[c.ID] || snap.InProgress[c.ID] {
			continue
		}
		eligible := true
		for _, id := range c.PrerequisiteIDs {
			if !snap.Completed[id] {
				eligible = false
				break
			}
		}
		if eligible {
			out = append(out, c)
		}
	}
	return out
}

// Difficulty derives from the mean historical total grade; 0.5 without history.
func Difficulty(meanTotal *float64) float64 {
	if meanTotal == nil {
		return 0.5
	}
	return round2(clamp(1-*meanTotal/models.MaxTotalGrade, 0, 1))
}

// Priority ranks a mandatory course by how many courses it unlocks and
// whether the student is at or past its typical semester.
func Priority(c CatalogCourse, currentSemester int) float64 {
	p := 0.5 + 0.1*float64(c.Dependents)
	if currentSemester >= c.TypicalSemester {
		p += 0.3
	}
	return round2(clamp(p, 0, 1))
}

// Category names a recommendation list.
type Category string

const (
	CategoryMandatory      Category = "mandatory"
	CategoryRetry          Category = "failed_retry"
	CategoryGPAImprovement Category = "gpa_improvement"
	CategoryElective       Category = "elective"
)

// Recommendation is one ranked course suggestion.
type Recommendation struct {
	CourseID             string   `json:"course_id"`
	Code                 string   `json:"code"`
	Name                 string   `json:"name"`
	Credits              int      `json:"credits"`
	Category             Category `json:"category"`
	Priority             float64  `json:"priority,omitempty"`
	Difficulty           float64  `json:"difficulty"`
	SuggestedSemester    int      `json:"suggested_semester,omitempty"`
	HighGradeProbability float64  `json:"high_grade_probability,omitempty"`
	EaseScore            float64  `json:"ease_score,omitempty"`
	GPAImpact            float64  `json:"gpa_impact,omitempty"`
	ContentSimilarity    float64  `json:"content_similarity,omitempty"`
	StrengthAlignment    float64  `json:"strength_alignment,omitempty"`
	CareerRelevance      float64  `json:"career_relevance,omitempty"`
	Score                float64  `json:"score,omitempty"`
}

func newRecommendation(c CatalogCourse, cat Category) Recommendation {
	return Recommendation{
		CourseID:   c.ID,
		Code:       c.Code,
		Name:       c.Name,
		Credits:    c.Credits,
		Category:   cat,
		Difficulty: Difficulty(c.MeanTotal),
	}
}

// MandatoryRecommendations lists mandatory courses due by next semester that
// the student has not failed, by priority.
func MandatoryRecommendations(catalog []CatalogCourse, snap StudentSnapshot, limit int) []Recommendation {
	sem := snap.Student.CurrentSemester
	out := []Recommendation{}
	for _, c := range catalog {
		if !c.IsMandatory || snap.Failed[c.ID] || c.TypicalSemester > sem+1 {
			continue
		}
		r := newRecommendation(c, CategoryMandatory)
		r.Priority = Priority(c, sem)
		r.SuggestedSemester = sem
		out = append(out, r)
	}
	sortBy(out, func(r Recommendation) float64 { return r.Priority })
	return truncate(out, limit)
}

// RetryRecommendations lists failed mandatory courses with a boosted priority.
func RetryRecommendations(catalog []CatalogCourse, snap StudentSnapshot, status AcademicStatus, limit int) []Recommendation {
	sem := snap.Student.CurrentSemester
	suggested := sem
	if status == StatusAtRisk {
		suggested = sem + 1
	}
	out := []Recommendation{}
	for _, c := range catalog {
		if !c.IsMandatory || !snap.Failed[c.ID] {
			continue
		}
		r := newRecommendation(c, CategoryRetry)
		r.Priority = round2(clamp(Priority(c, sem)+0.2, 0, 1))
		r.SuggestedSemester = suggested
		out = append(out, r)
	}
	sortBy(out, func(r Recommendation) float64 { return r.Priority })
	return truncate(out, limit)
}

// HighGradeProbability is the GPA-tiered chance of scoring well in an elective.
func HighGradeProbability(gpa float64) float64 {
	switch {
	case gpa >= 3.0:
		return 0.85
	case gpa >= 2.5:
		return 0.75
	case gpa >= 2.0:
		return 0.65
	default:
		return 0.55
	}
}

// GPAImprovementRecommendations surfaces easy electives for struggling
// students, by impact on GPA. Other statuses get an empty list.
func GPAImprovementRecommendations(catalog []CatalogCourse, snap StudentSnapshot, status AcademicStatus, limit int) []Recommendation {
	out := []Recommendation{}
	switch status {
	case StatusAtRisk, StatusNeedsAttention, StatusAcceptable:
	default:
		return out
	}
	minProbability, minEase := 0.7, 0.6
	if status == StatusAtRisk {
		minProbability, minEase = 0.5, 0.4
	}
	probability := HighGradeProbability(snap.GPA)
	for _, c := range catalog {
		if c.IsMandatory {
			continue
		}
		r := newRecommendation(c, CategoryGPAImprovement)
		r.HighGradeProbability = probability
		r.EaseScore = round2(1 - r.Difficulty)
		if !(r.HighGradeProbability > minProbability && r.EaseScore > minEase) {
			continue
		}
		r.GPAImpact = round2(float64(c.Credits) / float64(snap.Student.CreditsCompleted+c.Credits))
		out = append(out, r)
	}
	sortBy(out, func(r Recommendation) float64 { return r.GPAImpact })
	return truncate(out, limit)
}

// StrengthAlignment is the GPA-tiered fit of a student to further electives.
func StrengthAlignment(gpa float64) float64 {
	switch {
	case gpa >= 3.5:
		return 0.9
	case gpa >= 3.0:
		return 0.8
	case gpa >= 2.5:
		return 0.7
	case gpa >= 2.0:
		return 0.6
	default:
		return 0.5
	}
}

// CareerRelevance is a fixed placeholder until career data exists.
const CareerRelevance = 0.5

// ElectiveRecommendations ranks electives by a weighted blend of content
// similarity to completed courses, strength alignment and career relevance.
// A nil scorer contributes zero similarity.
func ElectiveRecommendations(catalog []CatalogCourse, snap StudentSnapshot, scorer Scorer, limit int) []Recommendation {
	strength := StrengthAlignment(snap.GPA)
	out := []Recommendation{}
	for _, c := range catalog {
		if c.IsMandatory {
			continue
		}
		r := newRecommendation(c, CategoryElective)
		if scorer != nil && len(snap.CompletedNames) > 0 {
			text := c.Description
			if text == "" {
				text = c.Name
			}
			r.ContentSimilarity = round2(clamp(scorer.Score(text, snap.CompletedNames), 0, 1))
		}
		r.StrengthAlignment = strength
		r.CareerRelevance = CareerRelevance
		r.Score = round2(0.3*r.ContentSimilarity + 0.4*r.StrengthAlignment + 0.3*r.CareerRelevance)
		out = append(out, r)
	}
	sortBy(out, func(r Recommendation) float64 { return r.Score })
	return truncate(out, limit)
}

// Recommendations is the full scoring result for one student.
type Recommendations struct {
	Status         AcademicStatus   `json:"academic_status"`
	Trend          Trend            `json:"trend"`
	GPA            float64          `json:"gpa"`
	Mandatory      []Recommendation `json:"mandatory"`
	Retry          []Recommendation `json:"failed_retry"`
	GPAImprovement []Recommendation `json:"gpa_improvement"`
	Electives      []Recommendation `json:"electives"`
}

// DefaultRecommendationLimit bounds each list when no limit is given.
const DefaultRecommendationLimit = 10

// Recommend computes all four categories over an unfiltered division catalog.
func Recommend(snap StudentSnapshot, courses []CatalogCourse, scorer Scorer, limit int) Recommendations {
	if limit <= 0 {
		limit = DefaultRecommendationLimit
	}
	status := ClassifyStatus(snap.GPA, len(snap.Failed))
	catalog := FilterCatalog(courses, snap)
	return Recommendations{
		Status:         status,
		Trend:          StudentTrend(snap.Student),
		GPA:            snap.GPA,
		Mandatory:      MandatoryRecommendations(catalog, snap, limit),
		Retry:          RetryRecommendations(catalog, snap, status, limit),
		GPAImprovement: GPAImprovementRecommendations(catalog, snap, status, limit),
		Electives:      ElectiveRecommendations(catalog, snap, scorer, limit),
	}
}

// sortBy orders descending by key, then by course code for stable output.
func sortBy(recs []Recommendation, key func(Recommendation) float64) {
	sort.SliceStable(recs, func(i, j int) bool {
		ki, kj := key(recs[i]), key(recs[j])
		if ki != kj {
			return ki > kj
		}
		return recs[i].Code < recs[j].Code
	})
}

func truncate(recs []Recommendation, limit int) []Recommendation {
	if limit > 0 && len(recs) > limit {
		return recs[:limit]
	}
	return recs
}
