package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	assert.Equal(t, RoleLead, ParseRole("Lead"))
	assert.Equal(t, RoleSpecialist, ParseRole("Specialist"))
	assert.Equal(t, RoleSupport, ParseRole("Support"))
	assert.Equal(t, RoleSupport, ParseRole("Team Captain"))
	assert.Equal(t, RoleSupport, ParseRole(""))
}

func TestClampScore(t *testing.T) {
	assert.Equal(t, 0, ClampScore(-10))
	assert.Equal(t, 0, ClampScore(0))
	assert.Equal(t, 55, ClampScore(55))
	assert.Equal(t, 100, ClampScore(100))
	assert.Equal(t, 100, ClampScore(150))
}

func TestNewTeamComposition_SizeMatchesMembers(t *testing.T) {
	tc := NewTeamComposition(nil)
	assert.Equal(t, 0, tc.Size)

	tc = NewTeamComposition([]TeamMember{
		{Technician: Technician{ID: "a"}, Role: RoleSupport},
	})
	assert.Equal(t, 1, tc.Size)
	// A solo member keeps whatever role it was given.
	assert.Equal(t, RoleSupport, tc.Members[0].Role)
}

func TestNewTeamComposition_DemotesExtraLeads(t *testing.T) {
	tc := NewTeamComposition([]TeamMember{
		{Technician: Technician{ID: "a"}, Role: RoleLead, ConfidenceScore: 90},
		{Technician: Technician{ID: "b"}, Role: RoleLead, ConfidenceScore: 80},
		{Technician: Technician{ID: "c"}, Role: RoleLead, ConfidenceScore: 70},
	})

	leads := 0
	for _, m := range tc.Members {
		if m.Role == RoleLead {
			leads++
		}
	}
	assert.Equal(t, 1, leads)
	assert.Equal(t, RoleLead, tc.Members[0].Role)
	assert.Equal(t, RoleSpecialist, tc.Members[1].Role)
	assert.Equal(t, RoleSpecialist, tc.Members[2].Role)
}

func TestNewTeamComposition_PromotesLeadlessTeam(t *testing.T) {
	tc := NewTeamComposition([]TeamMember{
		{Technician: Technician{ID: "a"}, Role: RoleSupport, ConfidenceScore: 60},
		{Technician: Technician{ID: "b"}, Role: RoleSpecialist, ConfidenceScore: 85},
		{Technician: Technician{ID: "c"}, Role: RoleSupport, ConfidenceScore: 40},
	})

	assert.Equal(t, RoleLead, tc.Members[1].Role, "highest confidence member becomes Lead")
	assert.Equal(t, RoleSupport, tc.Members[0].Role)
	assert.Equal(t, RoleSupport, tc.Members[2].Role)
}
