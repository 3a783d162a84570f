package academic

import (
	"math"

	"github.com/noah-isme/academic-progression-api/internal/models"
)

// Degree requirements.
const (
	RequiredMandatoryCredits = 96
	RequiredElectiveCredits  = 40
	RequiredTotalCredits     = 136
)

// Credit tiers.
const (
	MaxGPA                 = 4.0
	FullCreditCap          = 18
	ReducedCreditCap       = 10
	CreditTierGPAThreshold = 2.0
)

// finalizedGPAs returns the non-null GPA values of semesters that precede the
// one in progress.
func finalizedGPAs(s models.Student) []float64 {
	slots := s.SemesterGPAs()
	limit := s.CurrentSemester - 1
	if limit > len(slots) {
		limit = len(slots)
	}
	values := make([]float64, 0, len(slots))
	for i := 0; i < limit; i++ {
		if slots[i] != nil {
			values = append(values, *slots[i])
		}
	}
	return values
}

// CumulativeGPA is the unweighted arithmetic mean of finalized semester GPAs,
// rounded to two decimals. It is deliberately not credit-weighted. Zero when
// no semester has been finalized.
func CumulativeGPA(s models.Student) float64 {
	values := finalizedGPAs(s)
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return round2(clamp(sum/float64(len(values)), 0, MaxGPA))
}

// GPAHistory returns the running cumulative GPA after each finalized semester.
func GPAHistory(s models.Student) []float64 {
	values := finalizedGPAs(s)
	history := make([]float64, 0, len(values))
	sum := 0.0
	for i, v := range values {
		sum += v
		history = append(history, round2(clamp(sum/float64(i+1), 0, MaxGPA)))
	}
	return history
}

// CreditTier returns the maximum credits a student may carry in one term.
// First-semester students have no GPA history and get the full tier.
func CreditTier(gpa float64, currentSemester int) int {
	if currentSemester <= 1 || gpa >= CreditTierGPAThreshold {
		return FullCreditCap
	}
	return ReducedCreditCap
}

// StudentCreditTier applies CreditTier, treating a student without any
// finalized GPA as first-semester.
func StudentCreditTier(s models.Student) int {
	if len(finalizedGPAs(s)) == 0 {
		return FullCreditCap
	}
	return CreditTier(CumulativeGPA(s), s.CurrentSemester)
}

// CourseCredit is a course reduced to what the ledger needs.
type CourseCredit struct {
	CourseID    string `json:"course_id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Credits     int    `json:"credits"`
	IsMandatory bool   `json:"is_mandatory"`
}

// CreditsAnalysis reconciles completed credits against degree requirements.
type CreditsAnalysis struct {
	ComputedCredits      int            `json:"computed_credits"`
	StoredCredits        int            `json:"stored_credits"`
	CompletedCredits     int            `json:"completed_credits"`
	StoredOverride       bool           `json:"stored_override"`
	MandatoryCompleted   int            `json:"mandatory_completed"`
	ElectiveCompleted    int            `json:"elective_completed"`
	MandatoryRequired    int            `json:"mandatory_required"`
	ElectiveRequired     int            `json:"elective_required"`
	TotalRequired        int            `json:"total_required"`
	MandatoryRemaining   int            `json:"mandatory_remaining"`
	ElectiveRemaining    int            `json:"elective_remaining"`
	TotalRemaining       int            `json:"total_remaining"`
	CompletionPercentage float64        `json:"completion_percentage"`
	RemainingMandatory   []CourseCredit `json:"remaining_mandatory"`
	RemainingElective    []CourseCredit `json:"remaining_elective"`
}

// AnalyzeCredits sums completed courses bottom-up and reconciles the total
// with the stored creditsCompleted field. A larger stored value is treated as
// an authoritative override for legacy data; its surplus is attributed to
// the mandatory bucket until that bucket is satisfied, then to electives.
func AnalyzeCredits(completed, remaining []CourseCredit, storedCreditsCompleted int) CreditsAnalysis {
	a := CreditsAnalysis{
		StoredCredits:     storedCreditsCompleted,
		MandatoryRequired: RequiredMandatoryCredits,
		ElectiveRequired:  RequiredElectiveCredits,
		TotalRequired:     RequiredTotalCredits,
	}
	for _, c := range completed {
		a.ComputedCredits += c.Credits
		if c.IsMandatory {
			a.MandatoryCompleted += c.Credits
		} else {
			a.ElectiveCompleted += c.Credits
		}
	}
	a.CompletedCredits = a.ComputedCredits
	if storedCreditsCompleted > a.ComputedCredits {
		a.StoredOverride = true
		a.CompletedCredits = storedCreditsCompleted
		surplus := storedCreditsCompleted - a.ComputedCredits
		toMandatory := minInt(surplus, maxInt(0, RequiredMandatoryCredits-a.MandatoryCompleted))
		a.MandatoryCompleted += toMandatory
		a.ElectiveCompleted += surplus - toMandatory
	}

	a.MandatoryRemaining = maxInt(0, RequiredMandatoryCredits-a.MandatoryCompleted)
	a.ElectiveRemaining = maxInt(0, RequiredElectiveCredits-a.ElectiveCompleted)
	a.TotalRemaining = maxInt(0, RequiredTotalCredits-a.CompletedCredits)
	a.CompletionPercentage = round2(clamp(float64(a.CompletedCredits)/RequiredTotalCredits*100, 0, 100))

	a.RemainingMandatory = []CourseCredit{}
	a.RemainingElective = []CourseCredit{}
	for _, c := range remaining {
		if c.IsMandatory {
			a.RemainingMandatory = append(a.RemainingMandatory, c)
		} else {
			a.RemainingElective = append(a.RemainingElective, c)
		}
	}
	return a
}

// Graduation summarises whether degree requirements are met.
type Graduation struct {
	Eligible bool     `json:"eligible"`
	Unmet    []string `json:"unmet,omitempty"`
}

// GraduationEligibility checks credit buckets and outstanding mandatory failures.
func GraduationEligibility(a CreditsAnalysis, failingMandatory int) Graduation {
	var unmet []string
	if a.MandatoryRemaining > 0 {
		unmet = append(unmet, "mandatory credits incomplete")
	}
	if a.ElectiveRemaining > 0 {
		unmet = append(unmet, "elective credits incomplete")
	}
	if a.TotalRemaining > 0 {
		unmet = append(unmet, "total credits incomplete")
	}
	if failingMandatory > 0 {
		unmet = append(unmet, "failed mandatory courses outstanding")
	}
	return Graduation{Eligible: len(unmet) == 0, Unmet: unmet}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
