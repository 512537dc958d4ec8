package matching

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/TheeNate/JobPilot/internal/config"
	"github.com/TheeNate/JobPilot/internal/model"
	"github.com/TheeNate/JobPilot/pkg/anthropic"
)

// ReasonCode tags why an AI ranking response was rejected.
type ReasonCode string

const (
	ReasonNetworkError ReasonCode = "network_error"
	ReasonInvalidJSON  ReasonCode = "invalid_json"
	ReasonBadShape     ReasonCode = "unexpected_shape"
	ReasonEmptyTeam    ReasonCode = "empty_team"
)

// ResponseError is a tagged rejection of a reasoning-service reply. The
// engine maps any ResponseError to the deterministic path.
type ResponseError struct {
	Code   ReasonCode
	Detail string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("ai ranker: %s: %s", e.Code, e.Detail)
}

const rankSystemPrompt = "You are a dispatch coordinator for an industrial inspection company. " +
	"Recommend technician teams strictly from the provided candidate list. Reply with valid JSON only."

const rankResponseShape = `{
  "recommendedTeam": {
    "size": <int>,
    "members": [
      {"name": "<candidate name>", "role": "Lead|Specialist|Support", "confidenceScore": <0-100>, "reasoning": ["<why>"], "availabilityStatus": "<status>"}
    ],
    "teamDynamics": "<optional>",
    "coordinationPlan": "<optional>"
  },
  "alternativeTeams": [
    {"size": <int>, "members": [<same member shape>], "teamReasoning": "<why>"}
  ]
}`

// AIRanker ranks candidates through the external reasoning service. Any
// failure — transport, parse, shape — surfaces as a ResponseError so the
// engine can fall back; it never retries.
type AIRanker struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	cfg       config.MatchingConfig
}

// NewAIRanker creates the reasoning-backed ranker.
func NewAIRanker(client anthropic.Client, aiCfg config.AnthropicConfig, cfg config.MatchingConfig) *AIRanker {
	maxTokens := aiCfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 2048
	}
	return &AIRanker{
		client:    client,
		model:     aiCfg.Model,
		maxTokens: maxTokens,
		cfg:       cfg,
	}
}

func (r *AIRanker) Rank(ctx context.Context, job model.JobRequirement, candidates []model.CandidateMatch) (*RankedTeam, error) {
	ranked := RankCandidates(candidates, job.JobType)

	resp, err := r.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     r.model,
		MaxTokens: r.maxTokens,
		System:    rankSystemPrompt,
		Messages: []anthropic.Message{
			{Role: "user", Content: buildRankPrompt(job, ranked, r.maxAlternatives())},
		},
	})
	if err != nil {
		return nil, &ResponseError{Code: ReasonNetworkError, Detail: eris.ToString(err, false)}
	}

	team, err := parseRankResponse(resp.Text(), ranked)
	if err != nil {
		return nil, err
	}

	zap.L().Info("ai ranker: team composed",
		zap.Int("team_size", team.Team.Size),
		zap.Int("alternatives", len(team.Alternatives)),
	)
	return team, nil
}

func (r *AIRanker) maxAlternatives() int {
	if r.cfg.MaxAlternativeTeams > 0 {
		return r.cfg.MaxAlternativeTeams
	}
	return 2
}

// buildRankPrompt enumerates the job fields and the candidate roster with
// certifications and availability, then pins the exact reply shape.
func buildRankPrompt(job model.JobRequirement, ranked []model.CandidateMatch, maxAlternatives int) string {
	var b strings.Builder

	b.WriteString("Job request:\n")
	if job.JobType != "" {
		fmt.Fprintf(&b, "- Type: %s\n", job.JobType)
	}
	if job.Location != "" {
		fmt.Fprintf(&b, "- Location: %s\n", job.Location)
	}
	if job.ScheduledDate != nil {
		fmt.Fprintf(&b, "- Date: %s\n", job.ScheduledDate.Format("2006-01-02"))
	}
	if job.ScheduledTime != "" {
		fmt.Fprintf(&b, "- Time: %s\n", job.ScheduledTime)
	}
	techsNeeded := job.TechsNeeded
	if techsNeeded <= 0 {
		techsNeeded = 1
	}
	fmt.Fprintf(&b, "- Technicians needed: %d\n", techsNeeded)
	fmt.Fprintf(&b, "- Subject: %s\n", job.Subject)
	if job.BodyPlain != "" {
		fmt.Fprintf(&b, "- Details: %s\n", job.BodyPlain)
	}

	b.WriteString("\nAvailable candidates (ranked by certification match):\n")
	for i, c := range ranked {
		certs := "none listed"
		if len(c.Technician.Certifications) > 0 {
			certs = strings.Join(c.Technician.Certifications, ", ")
		}
		fmt.Fprintf(&b, "%d. %s (id %s) — certifications: %s; match score %d/100; available periods: %d\n",
			i+1, c.Technician.Name, c.Technician.ID, certs, c.MatchScore, len(c.Availability))
	}

	fmt.Fprintf(&b, "\nSelect the best team of %d and up to %d alternative teams. Use only candidates listed above.\n", techsNeeded, maxAlternatives)
	b.WriteString("Return a single JSON object exactly matching this shape:\n")
	b.WriteString(rankResponseShape)
	return b.String()
}

// parseRankResponse validates the reply shape and reconciles every named
// member against the candidate set.
func parseRankResponse(text string, candidates []model.CandidateMatch) (*RankedTeam, error) {
	cleaned := cleanJSON(text)

	var raw map[string]any
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, &ResponseError{Code: ReasonInvalidJSON, Detail: err.Error()}
	}

	teamObj, ok := raw["recommendedTeam"].(map[string]any)
	if !ok {
		return nil, &ResponseError{Code: ReasonBadShape, Detail: "missing recommendedTeam object"}
	}

	members, err := parseMembers(teamObj["members"], candidates)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, &ResponseError{Code: ReasonEmptyTeam, Detail: "recommendedTeam has no members"}
	}

	team := model.NewTeamComposition(members)
	team.TeamDynamics, _ = teamObj["teamDynamics"].(string)
	team.CoordinationPlan, _ = teamObj["coordinationPlan"].(string)

	result := &RankedTeam{Team: team}

	altsRaw, _ := raw["alternativeTeams"].([]any)
	for _, altRaw := range altsRaw {
		altObj, ok := altRaw.(map[string]any)
		if !ok {
			continue
		}
		altMembers, err := parseMembers(altObj["members"], candidates)
		if err != nil || len(altMembers) == 0 {
			continue
		}
		alt := model.AlternativeTeam{
			Size:    len(altMembers),
			Members: altMembers,
		}
		alt.TeamReasoning, _ = altObj["teamReasoning"].(string)
		result.Alternatives = append(result.Alternatives, alt)
	}

	return result, nil
}

func parseMembers(v any, candidates []model.CandidateMatch) ([]model.TeamMember, error) {
	if v == nil {
		return nil, nil
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, &ResponseError{Code: ReasonBadShape, Detail: "members is not an array"}
	}

	members := make([]model.TeamMember, 0, len(arr))
	for _, item := range arr {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, &ResponseError{Code: ReasonBadShape, Detail: "member is not an object"}
		}
		raw := RawMember{
			Name:               toString(obj["name"]),
			ID:                 toString(obj["id"]),
			Role:               toString(obj["role"]),
			ConfidenceScore:    toInt(obj["confidenceScore"]),
			Reasoning:          toStringSlice(obj["reasoning"]),
			AvailabilityStatus: toString(obj["availabilityStatus"]),
		}
		members = append(members, Reconcile(raw, candidates))
	}
	return members, nil
}

// cleanJSON strips markdown code fences and slices from the first { to the
// last }, tolerating prose around the reply.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}

// --- loose-typed coercion helpers ---

func toString(v any) string {
	s, _ := v.(string)
	return s
}

func toInt(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case string:
		var parsed int
		if _, err := fmt.Sscanf(strings.TrimSpace(n), "%d", &parsed); err == nil {
			return parsed
		}
		return 0
	default:
		return 0
	}
}

func toStringSlice(v any) []string {
	switch val := v.(type) {
	case []any:
		var out []string
		for _, item := range val {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		if val == "" {
			return nil
		}
		return []string{val}
	default:
		return nil
	}
}
