package matching

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/TheeNate/JobPilot/internal/model"
)

// RawMember is a team member as named by the reasoning service. The service
// is not guaranteed to echo technician names verbatim, so every raw member
// passes through Reconcile before entering a composition.
type RawMember struct {
	Name               string
	ID                 string
	Role               string
	ConfidenceScore    int
	Reasoning          []string
	AvailabilityStatus string
}

// UnknownTechnicianID marks a reconciliation miss.
const UnknownTechnicianID = "unknown"

var foldCaser = cases.Fold()

// Reconcile matches one raw member against the known candidate set: exact
// case-folded name, then exact id, then substring containment in either
// direction. A miss keeps the member with a sentinel Unknown identity and
// the service's own score and reasoning preserved, rather than dropping it.
// The role is coerced into the enum and the confidence clamped to [0, 100].
func Reconcile(raw RawMember, candidates []model.CandidateMatch) model.TeamMember {
	member := model.TeamMember{
		ConfidenceScore:    model.ClampScore(raw.ConfidenceScore),
		Role:               model.ParseRole(raw.Role),
		Reasoning:          raw.Reasoning,
		AvailabilityStatus: raw.AvailabilityStatus,
	}

	if c, ok := findCandidate(raw, candidates); ok {
		member.Technician = c.Technician
		if member.AvailabilityStatus == "" {
			member.AvailabilityStatus = "Available"
		}
		return member
	}

	member.Technician = model.Technician{
		ID:     UnknownTechnicianID,
		Name:   raw.Name,
		Status: model.TechnicianUnknown,
	}
	if member.AvailabilityStatus == "" {
		member.AvailabilityStatus = "Unknown"
	}
	return member
}

func findCandidate(raw RawMember, candidates []model.CandidateMatch) (model.CandidateMatch, bool) {
	name := foldCaser.String(strings.TrimSpace(raw.Name))

	if name != "" {
		for _, c := range candidates {
			if foldCaser.String(c.Technician.Name) == name {
				return c, true
			}
		}
	}

	for _, c := range candidates {
		if raw.ID != "" && raw.ID == c.Technician.ID {
			return c, true
		}
		if raw.Name != "" && raw.Name == c.Technician.ID {
			return c, true
		}
	}

	if name != "" {
		for _, c := range candidates {
			known := foldCaser.String(c.Technician.Name)
			if known == "" {
				continue
			}
			if strings.Contains(known, name) || strings.Contains(name, known) {
				return c, true
			}
		}
	}

	return model.CandidateMatch{}, false
}
