// Package model defines the domain types shared across the matching engine.
package model

import "time"

// TechnicianStatus indicates whether a technician is dispatchable.
type TechnicianStatus string

const (
	TechnicianActive   TechnicianStatus = "Active"
	TechnicianInactive TechnicianStatus = "Inactive"

	// TechnicianUnknown marks a reconciliation miss: the reasoning service
	// named someone outside the known candidate set.
	TechnicianUnknown TechnicianStatus = "Unknown"
)

// Technician is an immutable per-request snapshot of a directory record.
type Technician struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	Certifications []string         `json:"certifications,omitempty"`
	Status         TechnicianStatus `json:"status"`
}

// PeriodType classifies an availability period.
type PeriodType string

const (
	PeriodAvailable   PeriodType = "Available"
	PeriodUnavailable PeriodType = "Unavailable"
	PeriodBooked      PeriodType = "Booked"
)

// AvailabilityPeriod is a time-boxed availability record for one technician.
// A nil EndDate means the period is open-ended. Periods may overlap; the
// matching engine resolves overlaps in list order.
type AvailabilityPeriod struct {
	TechnicianID string     `json:"technician_id"`
	PeriodType   PeriodType `json:"period_type"`
	StartDate    time.Time  `json:"start_date"`
	EndDate      *time.Time `json:"end_date,omitempty"`
}

// Contains reports whether date falls within [StartDate, EndDate],
// comparing calendar days. An open-ended period contains every date at or
// after its start.
func (p AvailabilityPeriod) Contains(date time.Time) bool {
	day := truncateToDay(date)
	if day.Before(truncateToDay(p.StartDate)) {
		return false
	}
	if p.EndDate == nil {
		return true
	}
	return !day.After(truncateToDay(*p.EndDate))
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
