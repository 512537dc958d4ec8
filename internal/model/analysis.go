package model

import "time"

// CandidateMatch pairs a technician with their availability records and the
// deterministic match score. Candidate lists are ranked by MatchScore
// descending.
type CandidateMatch struct {
	Technician   Technician           `json:"technician"`
	Availability []AvailabilityPeriod `json:"availability,omitempty"`
	MatchScore   int                  `json:"match_score"`
}

// Role is a team member's assignment within a composition.
type Role string

const (
	RoleLead       Role = "Lead"
	RoleSpecialist Role = "Specialist"
	RoleSupport    Role = "Support"
)

// ParseRole coerces an externally-supplied role string into the enum.
// Anything unrecognized becomes Support.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleLead, RoleSpecialist, RoleSupport:
		return Role(s)
	default:
		return RoleSupport
	}
}

// ClampScore bounds a confidence score to [0, 100].
func ClampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// TeamMember is a role-assigned technician within a recommended team.
type TeamMember struct {
	Technician         Technician `json:"technician"`
	ConfidenceScore    int        `json:"confidence_score"`
	Role               Role       `json:"role"`
	Reasoning          []string   `json:"reasoning,omitempty"`
	AvailabilityStatus string     `json:"availability_status,omitempty"`
}

// TeamComposition is the resolved team for a job.
type TeamComposition struct {
	Size             int          `json:"size"`
	Members          []TeamMember `json:"members"`
	TeamDynamics     string       `json:"team_dynamics,omitempty"`
	CoordinationPlan string       `json:"coordination_plan,omitempty"`
}

// NewTeamComposition builds a TeamComposition from members, enforcing the
// composition invariants: Size always equals len(Members), and a team of two
// or more holds exactly one Lead. Extra Leads are demoted to Specialist; a
// leadless team promotes its highest-confidence member.
func NewTeamComposition(members []TeamMember) TeamComposition {
	tc := TeamComposition{
		Size:    len(members),
		Members: members,
	}
	if len(members) < 2 {
		return tc
	}

	leadIdx := -1
	for i := range tc.Members {
		if tc.Members[i].Role != RoleLead {
			continue
		}
		if leadIdx == -1 {
			leadIdx = i
			continue
		}
		tc.Members[i].Role = RoleSpecialist
	}

	if leadIdx == -1 {
		best := 0
		for i := range tc.Members {
			if tc.Members[i].ConfidenceScore > tc.Members[best].ConfidenceScore {
				best = i
			}
		}
		tc.Members[best].Role = RoleLead
	}

	return tc
}

// AlternativeTeam is a secondary candidate sampling. Alternatives are not
// guaranteed disjoint from the primary team across all slots.
type AlternativeTeam struct {
	Size          int          `json:"size"`
	Members       []TeamMember `json:"members"`
	TeamReasoning string       `json:"team_reasoning,omitempty"`
}

// Complexity grades a job's difficulty.
type Complexity string

const (
	ComplexitySimple   Complexity = "simple"
	ComplexityModerate Complexity = "moderate"
	ComplexityComplex  Complexity = "complex"
)

// JobAnalysis is the requirement analyzer's output.
type JobAnalysis struct {
	RequiredSkills    []string   `json:"required_skills,omitempty"`
	Complexity        Complexity `json:"complexity"`
	EstimatedDuration string     `json:"estimated_duration,omitempty"`
	Recommendations   []string   `json:"recommendations,omitempty"`
}

// MatchAnalysis is the terminal artifact of one matching request. It is
// always produced; FallbackUsed signals that the deterministic path supplied
// part or all of the result.
type MatchAnalysis struct {
	ID                string            `json:"id"`
	TeamComposition   TeamComposition   `json:"team_composition"`
	TopRecommendation *TeamMember       `json:"top_recommendation,omitempty"`
	Alternatives      []TeamMember      `json:"alternatives,omitempty"`
	AlternativeTeams  []AlternativeTeam `json:"alternative_teams,omitempty"`
	JobAnalysis       JobAnalysis       `json:"job_analysis"`
	AnalysisTimestamp time.Time         `json:"analysis_timestamp"`
	FallbackUsed      bool              `json:"fallback_used"`
}
