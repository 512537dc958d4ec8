package matching

import (
	"fmt"

	"github.com/TheeNate/JobPilot/internal/model"
)

const defaultSpecialistThreshold = 70

// ComposeTeam builds the primary team from ranked candidates. Team size is
// the requested technician count (default 1) clamped to the available
// candidate count. With two or more members the top candidate leads;
// everyone else is Specialist above the threshold and Support below it.
func ComposeTeam(ranked []model.CandidateMatch, techsNeeded, specialistThreshold int) model.TeamComposition {
	size := teamSize(techsNeeded, len(ranked))
	return composeWindow(ranked[:size], specialistThreshold)
}

// AlternativeTeams samples up to maxAlternatives secondary teams as sliding
// windows over the ranked candidates, each shifted one rank further down and
// independently role-assigned. Alternatives are a candidate sampling, not a
// disjointness guarantee: slots may overlap the primary team.
func AlternativeTeams(ranked []model.CandidateMatch, techsNeeded, maxAlternatives, specialistThreshold int) []model.AlternativeTeam {
	if maxAlternatives <= 0 {
		maxAlternatives = 2
	}
	size := teamSize(techsNeeded, len(ranked))
	if size == 0 {
		return nil
	}

	var alts []model.AlternativeTeam
	for offset := 1; offset <= maxAlternatives; offset++ {
		if offset >= len(ranked) {
			break
		}
		end := offset + size
		if end > len(ranked) {
			end = len(ranked)
		}
		window := ranked[offset:end]
		tc := composeWindow(window, specialistThreshold)
		alts = append(alts, model.AlternativeTeam{
			Size:          tc.Size,
			Members:       tc.Members,
			TeamReasoning: fmt.Sprintf("Next-ranked available technicians starting from position %d", offset+1),
		})
	}
	return alts
}

func teamSize(techsNeeded, available int) int {
	if techsNeeded <= 0 {
		techsNeeded = 1
	}
	if techsNeeded > available {
		return available
	}
	return techsNeeded
}

// composeWindow role-assigns one contiguous ranked window.
func composeWindow(window []model.CandidateMatch, specialistThreshold int) model.TeamComposition {
	if specialistThreshold <= 0 {
		specialistThreshold = defaultSpecialistThreshold
	}

	members := make([]model.TeamMember, 0, len(window))
	for i, c := range window {
		role := model.RoleSupport
		switch {
		case i == 0 && len(window) > 1:
			role = model.RoleLead
		case c.MatchScore > specialistThreshold:
			role = model.RoleSpecialist
		}
		members = append(members, model.TeamMember{
			Technician:         c.Technician,
			ConfidenceScore:    c.MatchScore,
			Role:               role,
			Reasoning:          scoreReasoning(c),
			AvailabilityStatus: "Available",
		})
	}
	return model.NewTeamComposition(members)
}

// scoreReasoning produces a short deterministic explanation for a ranked
// candidate, mirroring the shape of the AI path's reasoning lists.
func scoreReasoning(c model.CandidateMatch) []string {
	reasons := []string{
		fmt.Sprintf("Certification match score %d/100", c.MatchScore),
	}
	if n := len(c.Technician.Certifications); n > 0 {
		reasons = append(reasons, fmt.Sprintf("Holds %d certification(s)", n))
	}
	return reasons
}
