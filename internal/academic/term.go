package academic

import (
	"fmt"
	"time"

	"github.com/noah-isme/academic-progression-api/internal/models"
)

// SemesterLabel maps a calendar date onto its academic term bucket:
// January is Winter, February-May Spring, June-August Summer and
// September-December Fall.
func SemesterLabel(t time.Time) string {
	var season string
	switch m := t.Month(); {
	case m == time.January:
		season = "Winter"
	case m <= time.May:
		season = "Spring"
	case m <= time.August:
		season = "Summer"
	default:
		season = "Fall"
	}
	return fmt.Sprintf("%s %d", season, t.Year())
}

// ActivePeriod returns the enrollment period containing now, if any.
func ActivePeriod(periods []models.EnrollmentPeriod, now time.Time) (models.EnrollmentPeriod, bool) {
	for _, p := range periods {
		if p.Contains(now) {
			return p, true
		}
	}
	return models.EnrollmentPeriod{}, false
}
