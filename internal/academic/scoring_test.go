package academic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academic-progression-api/internal/models"
)

type constScorer float64

func (s constScorer) Score(string, []string) float64 { return float64(s) }

func catalogCourse(id, code string, credits, sem int, mandatory bool) CatalogCourse {
	return CatalogCourse{DivisionCourse: models.DivisionCourse{
		Course: models.Course{
			ID: id, Code: code, Name: code, Credits: credits, TypicalSemester: sem,
			MaxSeats: 30, Status: models.CourseStatusAvailable,
		},
		IsMandatory: mandatory,
	}}
}

func snapshot(semester int, gpaValue float64, credits int) StudentSnapshot {
	return StudentSnapshot{
		Student:    models.Student{ID: "stu-1", CurrentSemester: semester, CreditsCompleted: credits},
		GPA:        gpaValue,
		Completed:  map[string]bool{},
		Failed:     map[string]bool{},
		InProgress: map[string]bool{},
	}
}

func TestClassifyStatus(t *testing.T) {
	assert.Equal(t, StatusExcellent, ClassifyStatus(3.6, 0))
	assert.Equal(t, StatusVeryGood, ClassifyStatus(3.0, 1))
	assert.Equal(t, StatusGood, ClassifyStatus(2.7, 2))
	assert.Equal(t, StatusAcceptable, ClassifyStatus(2.1, 1))
	assert.Equal(t, StatusNeedsAttention, ClassifyStatus(2.1, 2))
	assert.Equal(t, StatusAtRisk, ClassifyStatus(1.9, 2))
	assert.Equal(t, StatusAtRisk, ClassifyStatus(3.9, 4))
}

func TestTrendOf(t *testing.T) {
	assert.Equal(t, TrendInsufficientData, TrendOf([]float64{3.0}))
	assert.Equal(t, TrendImproving, TrendOf([]float64{2.0, 2.5}))
	assert.Equal(t, TrendDeclining, TrendOf([]float64{3.0, 2.5}))
	assert.Equal(t, TrendStable, TrendOf([]float64{3.0, 3.02}))
}

func TestFilterCatalog(t *testing.T) {
	snap := snapshot(3, 3.0, 30)
	snap.Completed["done"] = true
	snap.InProgress["taking"] = true

	locked := catalogCourse("locked", "LCK", 3, 3, true)
	locked.PrerequisiteIDs = []string{"missing"}
	open := catalogCourse("open", "OPN", 3, 3, true)
	open.PrerequisiteIDs = []string{"done"}
	closed := catalogCourse("closed", "CLS", 3, 3, true)
	closed.Status = models.CourseStatusUnavailable

	out := FilterCatalog([]CatalogCourse{
		catalogCourse("done", "DNE", 3, 1, true),
		catalogCourse("taking", "TKG", 3, 3, true),
		locked, open, closed,
	}, snap)
	require.Len(t, out, 1)
	assert.Equal(t, "open", out[0].ID)
}

func TestDifficultyAndPriority(t *testing.T) {
	mean := 120.0
	assert.Equal(t, 0.5, Difficulty(nil))
	assert.Equal(t, 0.2, Difficulty(&mean))

	c := catalogCourse("c", "C", 3, 3, true)
	c.Dependents = 1
	assert.Equal(t, 0.9, Priority(c, 3))
	assert.Equal(t, 0.6, Priority(c, 2))
	c.Dependents = 5
	assert.Equal(t, 1.0, Priority(c, 4))
}

func TestMandatoryRecommendations(t *testing.T) {
	snap := snapshot(3, 3.0, 30)
	snap.Failed["failed"] = true

	hub := catalogCourse("hub", "HUB", 3, 3, true)
	hub.Dependents = 2
	courses := []CatalogCourse{
		catalogCourse("later", "LTR", 3, 6, true),
		catalogCourse("next", "NXT", 3, 4, true),
		hub,
		catalogCourse("failed", "FLD", 3, 2, true),
		catalogCourse("elective", "ELC", 3, 3, false),
	}
	out := MandatoryRecommendations(courses, snap, 10)
	require.Len(t, out, 2)
	assert.Equal(t, "hub", out[0].CourseID)
	assert.Equal(t, 1.0, out[0].Priority)
	assert.Equal(t, "next", out[1].CourseID)
	assert.Equal(t, 0.5, out[1].Priority)
}

func TestRetryRecommendations(t *testing.T) {
	snap := snapshot(4, 1.8, 40)
	snap.Failed["failed"] = true
	courses := []CatalogCourse{catalogCourse("failed", "FLD", 3, 2, true)}

	out := RetryRecommendations(courses, snap, StatusAtRisk, 10)
	require.Len(t, out, 1)
	assert.Equal(t, 1.0, out[0].Priority)
	assert.Equal(t, 5, out[0].SuggestedSemester)

	out = RetryRecommendations(courses, snap, StatusAcceptable, 10)
	assert.Equal(t, 4, out[0].SuggestedSemester)
}

func TestGPAImprovementRecommendations(t *testing.T) {
	easyMean, hardMean := 120.0, 60.0
	easy := catalogCourse("easy", "EAS", 3, 3, false)
	easy.MeanTotal = &easyMean
	big := catalogCourse("big", "BIG", 6, 3, false)
	big.MeanTotal = &easyMean
	hard := catalogCourse("hard", "HRD", 3, 3, false)
	hard.MeanTotal = &hardMean
	courses := []CatalogCourse{easy, big, hard, catalogCourse("mand", "MND", 3, 3, true)}

	atRisk := snapshot(4, 1.8, 30)
	out := GPAImprovementRecommendations(courses, atRisk, StatusAtRisk, 10)
	require.Len(t, out, 2)
	assert.Equal(t, "big", out[0].CourseID)
	assert.Equal(t, 0.17, out[0].GPAImpact)
	assert.Equal(t, 0.55, out[0].HighGradeProbability)
	assert.Equal(t, 0.8, out[0].EaseScore)

	assert.Empty(t, GPAImprovementRecommendations(courses, snapshot(4, 3.2, 30), StatusVeryGood, 10))
	// acceptable students top out at 0.65 probability, below the 0.7 bar
	assert.Empty(t, GPAImprovementRecommendations(courses, snapshot(4, 2.2, 30), StatusAcceptable, 10))
}

func TestElectiveRecommendations(t *testing.T) {
	snap := snapshot(4, 3.6, 60)
	snap.CompletedNames = []string{"Intro to Programming"}
	courses := []CatalogCourse{
		catalogCourse("b", "BBB", 3, 3, false),
		catalogCourse("a", "AAA", 3, 3, false),
		catalogCourse("m", "MND", 3, 3, true),
	}

	out := ElectiveRecommendations(courses, snap, constScorer(0.5), 1)
	require.Len(t, out, 1)
	assert.Equal(t, "a", out[0].CourseID)
	assert.Equal(t, 0.66, out[0].Score)

	noScorer := ElectiveRecommendations(courses, snap, nil, 10)
	require.Len(t, noScorer, 2)
	assert.Equal(t, 0.51, noScorer[0].Score)
}

func TestRecommendDefaultsLimit(t *testing.T) {
	snap := snapshot(2, 2.2, 10)
	var courses []CatalogCourse
	for i := 0; i < 15; i++ {
		courses = append(courses, catalogCourse(string(rune('a'+i)), string(rune('A'+i)), 3, 1, false))
	}
	recs := Recommend(snap, courses, constScorer(0), 0)
	assert.Len(t, recs.Electives, DefaultRecommendationLimit)
	assert.Equal(t, StatusAcceptable, recs.Status)
	assert.NotNil(t, recs.Mandatory)
	assert.NotNil(t, recs.Retry)
}
