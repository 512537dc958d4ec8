package model

import "time"

// JobRequirement is the structured job record handed to the matching engine
// by the intake layer. All fields except Subject and BodyPlain are optional;
// the engine treats the whole record as read-only input.
type JobRequirement struct {
	Location      string     `json:"location,omitempty"`
	ScheduledDate *time.Time `json:"scheduled_date,omitempty"`
	ScheduledTime string     `json:"scheduled_time,omitempty"`
	JobType       string     `json:"job_type,omitempty"`
	Subject       string     `json:"subject"`
	BodyPlain     string     `json:"body_plain"`
	TechsNeeded   int        `json:"techs_needed,omitempty"`
}
