package models

import "time"

// EnrollmentPeriod is an administrative window during which enrollment and
// recommendation operations are permitted.
type EnrollmentPeriod struct {
	ID            string    `db:"id" json:"id"`
	SemesterLabel string    `db:"semester_label" json:"semester_label"`
	StartDate     time.Time `db:"start_date" json:"start_date"`
	EndDate       time.Time `db:"end_date" json:"end_date"`
}

// StartDay is midnight of the first calendar day of the period.
func (p EnrollmentPeriod) StartDay() time.Time {
	return StartOfDay(p.StartDate)
}

// EndExclusive is midnight after the last calendar day of the period.
func (p EnrollmentPeriod) EndExclusive() time.Time {
	return StartOfDay(p.EndDate).AddDate(0, 0, 1)
}

// Contains reports whether t falls inside the period. EndDate covers its
// whole calendar day.
func (p EnrollmentPeriod) Contains(t time.Time) bool {
	return !t.Before(p.StartDate) && t.Before(p.EndExclusive())
}

// Overlaps reports whether two periods share any calendar day, regardless of
// the time of day stored on either bound.
func (p EnrollmentPeriod) Overlaps(other EnrollmentPeriod) bool {
	return p.StartDay().Before(other.EndExclusive()) && other.StartDay().Before(p.EndExclusive())
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
