package models

import (
	"fmt"
	"time"
)

// AvailabilitySlot is a provider-declared window, either recurring weekly or on one date.
// Start and End are minutes from midnight (e.g. 540 for 9:00 AM); slots never span midnight.
type AvailabilitySlot struct {
	ID           string       `bson:"id" json:"id"`
	ProviderID   string       `bson:"providerId" json:"providerId"`
	IsRecurring  bool         `bson:"isRecurring" json:"isRecurring"`
	DayOfWeek    time.Weekday `bson:"dayOfWeek" json:"dayOfWeek"`
	SpecificDate string       `bson:"specificDate,omitempty" json:"specificDate,omitempty"` // "2006-01-02"
	Start        int          `bson:"start" json:"start"`
	End          int          `bson:"end" json:"end"`
}

// AppliesOn reports whether the slot is offered on the calendar day of t.
func (s AvailabilitySlot) AppliesOn(t time.Time) bool {
	if s.IsRecurring {
		return s.DayOfWeek == t.Weekday()
	}
	return s.SpecificDate == t.Format(DateLayout)
}

// Covers reports whether [startMin, endMin) falls inside the slot.
func (s AvailabilitySlot) Covers(startMin, endMin int) bool {
	return s.Start <= startMin && s.End >= endMin
}

func (s AvailabilitySlot) String() string {
	return fmt.Sprintf("%s-%s", FormatMinutes(s.Start), FormatMinutes(s.End))
}

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// MinutesOfDay returns minutes elapsed since midnight of t's own day.
func MinutesOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// FormatMinutes renders minutes from midnight as HH:MM.
func FormatMinutes(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// CombineDateTime joins a "2006-01-02" date and a "15:04" time-of-day in UTC.
func CombineDateTime(date, clock string) (time.Time, error) {
	return time.ParseInLocation(DateLayout+" "+TimeLayout, date+" "+clock, time.UTC)
}
