package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AvailabilityWindow is a recurring weekly time range during which a
// doctor accepts appointments. Owned by doctor-profile management;
// read-only to the scheduling engine.
type AvailabilityWindow struct {
	ID          uuid.UUID    `db:"id" json:"id"`
	DoctorID    uuid.UUID    `db:"doctor_id" json:"doctor_id"`
	Weekday     time.Weekday `db:"weekday" json:"weekday"`
	StartTime   string       `db:"start_time" json:"start_time"`
	EndTime     string       `db:"end_time" json:"end_time"`
	IsAvailable bool         `db:"is_available" json:"is_available"`
}

// Covers reports whether t's time-of-day falls within [StartTime, EndTime).
// The weekday match is the caller's concern.
func (w *AvailabilityWindow) Covers(t time.Time) bool {
	start, err := parseMinutes(w.StartTime)
	if err != nil {
		return false
	}
	end, err := parseMinutes(w.EndTime)
	if err != nil {
		return false
	}
	m := t.Hour()*60 + t.Minute()
	return m >= start && m < end
}

// Bounds materializes the window's time-of-day range on a concrete date,
// in that date's location.
func (w *AvailabilityWindow) Bounds(date time.Time) (time.Time, time.Time, error) {
	start, err := parseMinutes(w.StartTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := parseMinutes(w.EndTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	return day.Add(time.Duration(start) * time.Minute), day.Add(time.Duration(end) * time.Minute), nil
}

// parseMinutes converts an "HH:MM" time-of-day into minutes since midnight.
func parseMinutes(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}
	return h*60 + m, nil
}
