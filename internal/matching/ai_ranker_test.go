package matching

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheeNate/JobPilot/internal/config"
	"github.com/TheeNate/JobPilot/internal/model"
)

const goodRankReply = "```json\n" + `{
  "recommendedTeam": {
    "size": 2,
    "members": [
      {"name": "Jane Doe", "role": "Lead", "confidenceScore": 92, "reasoning": ["Strongest UT certifications"], "availabilityStatus": "Available"},
      {"name": "john smith", "role": "Support", "confidenceScore": 61, "reasoning": ["Backup coverage"]}
    ],
    "teamDynamics": "Jane leads, John assists",
    "coordinationPlan": "Meet on site at 07:00"
  },
  "alternativeTeams": [
    {"size": 1, "members": [{"name": "John Smith", "role": "Lead", "confidenceScore": 60}], "teamReasoning": "Solo fallback"}
  ]
}` + "\n```"

func newAIRanker(client *stubAnthropicClient) *AIRanker {
	return NewAIRanker(client, config.AnthropicConfig{Model: "test-model"}, config.MatchingConfig{
		SpecialistThreshold: 70,
		MaxAlternativeTeams: 2,
	})
}

func TestAIRanker_Rank(t *testing.T) {
	client := &stubAnthropicClient{replies: []string{goodRankReply}}
	r := newAIRanker(client)

	team, err := r.Rank(context.Background(), model.JobRequirement{JobType: "UT", TechsNeeded: 2}, candidateFixture())
	require.NoError(t, err)

	require.Equal(t, 2, team.Team.Size)
	assert.Equal(t, "rec1", team.Team.Members[0].Technician.ID, "member reconciled to the directory record")
	assert.Equal(t, model.RoleLead, team.Team.Members[0].Role)
	assert.Equal(t, 92, team.Team.Members[0].ConfidenceScore)
	assert.Equal(t, "rec2", team.Team.Members[1].Technician.ID, "case-folded name match")
	assert.Equal(t, "Jane leads, John assists", team.Team.TeamDynamics)
	assert.Equal(t, "Meet on site at 07:00", team.Team.CoordinationPlan)

	require.Len(t, team.Alternatives, 1)
	assert.Equal(t, "Solo fallback", team.Alternatives[0].TeamReasoning)
	assert.Equal(t, "rec2", team.Alternatives[0].Members[0].Technician.ID)
}

func TestAIRanker_NetworkError(t *testing.T) {
	client := &stubAnthropicClient{err: errors.New("connection refused")}
	r := newAIRanker(client)

	_, err := r.Rank(context.Background(), model.JobRequirement{}, candidateFixture())

	var respErr *ResponseError
	require.ErrorAs(t, err, &respErr)
	assert.Equal(t, ReasonNetworkError, respErr.Code)
}

func TestAIRanker_InvalidJSON(t *testing.T) {
	client := &stubAnthropicClient{replies: []string{"Sure! I'd recommend sending Jane."}}
	r := newAIRanker(client)

	_, err := r.Rank(context.Background(), model.JobRequirement{}, candidateFixture())

	var respErr *ResponseError
	require.ErrorAs(t, err, &respErr)
	assert.Equal(t, ReasonInvalidJSON, respErr.Code)
}

func TestAIRanker_MissingTeam(t *testing.T) {
	client := &stubAnthropicClient{replies: []string{`{"somethingElse": true}`}}
	r := newAIRanker(client)

	_, err := r.Rank(context.Background(), model.JobRequirement{}, candidateFixture())

	var respErr *ResponseError
	require.ErrorAs(t, err, &respErr)
	assert.Equal(t, ReasonBadShape, respErr.Code)
}

func TestAIRanker_EmptyTeam(t *testing.T) {
	client := &stubAnthropicClient{replies: []string{`{"recommendedTeam": {"size": 0, "members": []}}`}}
	r := newAIRanker(client)

	_, err := r.Rank(context.Background(), model.JobRequirement{}, candidateFixture())

	var respErr *ResponseError
	require.ErrorAs(t, err, &respErr)
	assert.Equal(t, ReasonEmptyTeam, respErr.Code)
}

func TestAIRanker_UnknownMemberSurvives(t *testing.T) {
	client := &stubAnthropicClient{replies: []string{`{
		"recommendedTeam": {"size": 1, "members": [
			{"name": "Ghost Tech", "role": "Lead", "confidenceScore": 50}
		]}
	}`}}
	r := newAIRanker(client)

	team, err := r.Rank(context.Background(), model.JobRequirement{}, candidateFixture())
	require.NoError(t, err)
	assert.Equal(t, UnknownTechnicianID, team.Team.Members[0].Technician.ID)
	assert.Equal(t, model.TechnicianUnknown, team.Team.Members[0].Technician.Status)
}

func TestAIRanker_BadAlternativeSkipped(t *testing.T) {
	client := &stubAnthropicClient{replies: []string{`{
		"recommendedTeam": {"size": 1, "members": [{"name": "Jane Doe", "role": "Lead", "confidenceScore": 80}]},
		"alternativeTeams": [
			{"size": 1, "members": "not an array"},
			{"size": 1, "members": [{"name": "John Smith", "confidenceScore": 55}]}
		]
	}`}}
	r := newAIRanker(client)

	team, err := r.Rank(context.Background(), model.JobRequirement{}, candidateFixture())
	require.NoError(t, err)
	require.Len(t, team.Alternatives, 1, "malformed alternative dropped, valid one kept")
	assert.Equal(t, "rec2", team.Alternatives[0].Members[0].Technician.ID)
}

func TestCleanJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a": 1}`, `{"a": 1}`},
		{"json fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"bare fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"prose around", "Here you go:\n{\"a\": 1}\nHope that helps!", `{"a": 1}`},
		{"no json", "no braces here", "no braces here"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanJSON(tt.in))
		})
	}
}

func TestToInt(t *testing.T) {
	assert.Equal(t, 85, toInt(float64(85)))
	assert.Equal(t, 85, toInt(85))
	assert.Equal(t, 85, toInt("85"))
	assert.Equal(t, 0, toInt("not a number"))
	assert.Equal(t, 0, toInt(nil))
}

func TestToStringSlice(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, toStringSlice([]any{"a", "b", ""}))
	assert.Equal(t, []string{"solo"}, toStringSlice("solo"))
	assert.Nil(t, toStringSlice(nil))
	assert.Nil(t, toStringSlice(42))
}
