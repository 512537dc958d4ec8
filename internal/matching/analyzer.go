package matching

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/TheeNate/JobPilot/internal/config"
	"github.com/TheeNate/JobPilot/internal/model"
	"github.com/TheeNate/JobPilot/pkg/anthropic"
)

// SkillKeywords maps one reportable skill to the free-text keywords that
// imply it. Keywords of three characters or fewer are matched as whole
// tokens so discipline codes don't fire inside unrelated words.
type SkillKeywords struct {
	Skill    string   `yaml:"skill"`
	Keywords []string `yaml:"keywords"`
}

// KeywordTable drives the deterministic job analysis path.
type KeywordTable struct {
	Skills []SkillKeywords `yaml:"skills"`
}

// DefaultKeywordTable returns the compiled-in discipline/safety table.
func DefaultKeywordTable() KeywordTable {
	return KeywordTable{Skills: []SkillKeywords{
		{Skill: "Ultrasonic Testing (UT)", Keywords: []string{"ut", "ultrasonic", "thickness"}},
		{Skill: "Radiographic Testing (RT)", Keywords: []string{"rt", "radiograph", "x-ray"}},
		{Skill: "Magnetic Particle Testing (MT)", Keywords: []string{"mt", "magnetic particle"}},
		{Skill: "Penetrant Testing (PT)", Keywords: []string{"pt", "penetrant", "dye pen"}},
		{Skill: "Visual Testing (VT)", Keywords: []string{"vt", "visual inspection"}},
		{Skill: "Welding Inspection", Keywords: []string{"weld", "cwi"}},
		{Skill: "Rope Access", Keywords: []string{"rope access"}},
		{Skill: "Confined Space Entry", Keywords: []string{"confined space", "vessel entry"}},
		{Skill: "Working at Heights", Keywords: []string{"scaffold", "elevated", "at height"}},
	}}
}

// LoadKeywordTable reads a YAML keyword table, falling back to the default
// when path is empty.
func LoadKeywordTable(path string) (KeywordTable, error) {
	if path == "" {
		return DefaultKeywordTable(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return KeywordTable{}, eris.Wrapf(err, "analyzer: read keyword file %s", path)
	}
	var table KeywordTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return KeywordTable{}, eris.Wrap(err, "analyzer: parse keyword file")
	}
	if len(table.Skills) == 0 {
		return DefaultKeywordTable(), nil
	}
	return table, nil
}

// Per-complexity lookups. Derived from complexity alone, not recomputed per
// input.
var durationByComplexity = map[model.Complexity]string{
	model.ComplexitySimple:   "Half day to 1 day",
	model.ComplexityModerate: "1-2 days",
	model.ComplexityComplex:  "3-5 days",
}

var recommendationsByComplexity = map[model.Complexity][]string{
	model.ComplexitySimple: {
		"Single certified technician is sufficient",
	},
	model.ComplexityModerate: {
		"Assign a lead technician with current certifications",
		"Confirm site access requirements before dispatch",
	},
	model.ComplexityComplex: {
		"Assign a multi-discipline team with a senior lead",
		"Verify safety certifications for all team members",
		"Schedule a pre-job briefing",
	},
}

const analyzeSystemPrompt = "You are an operations analyst for an industrial inspection company. Reply with valid JSON only."

const analyzeResponseShape = `{"requiredSkills": ["<skill>"], "complexity": "simple|moderate|complex", "estimatedDuration": "<duration>", "recommendations": ["<recommendation>"]}`

// Analyzer classifies job complexity and required skills, via the reasoning
// service when available and a keyword scan otherwise. The AI path is
// independently fallible: any failure logs and falls back.
type Analyzer struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	table     KeywordTable
}

// NewAnalyzer creates an Analyzer. A nil client pins the deterministic path.
func NewAnalyzer(client anthropic.Client, aiCfg config.AnthropicConfig, table KeywordTable) *Analyzer {
	maxTokens := aiCfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	if len(table.Skills) == 0 {
		table = DefaultKeywordTable()
	}
	return &Analyzer{
		client:    client,
		model:     aiCfg.Model,
		maxTokens: maxTokens,
		table:     table,
	}
}

// Analyze returns the job analysis and whether the AI path produced it.
func (a *Analyzer) Analyze(ctx context.Context, job model.JobRequirement) (model.JobAnalysis, bool) {
	if a.client != nil {
		analysis, err := a.analyzeAI(ctx, job)
		if err == nil {
			return analysis, true
		}
		zap.L().Warn("analyzer: ai analysis failed, using keyword heuristics", zap.Error(err))
	}
	return a.analyzeDeterministic(job), false
}

func (a *Analyzer) analyzeAI(ctx context.Context, job model.JobRequirement) (model.JobAnalysis, error) {
	var b strings.Builder
	b.WriteString("Analyze this inspection job request.\n")
	if job.JobType != "" {
		fmt.Fprintf(&b, "Job type: %s\n", job.JobType)
	}
	if job.Location != "" {
		fmt.Fprintf(&b, "Location: %s\n", job.Location)
	}
	fmt.Fprintf(&b, "Subject: %s\n", job.Subject)
	if job.BodyPlain != "" {
		fmt.Fprintf(&b, "Details: %s\n", job.BodyPlain)
	}
	b.WriteString("\nReturn a single JSON object exactly matching this shape:\n")
	b.WriteString(analyzeResponseShape)

	resp, err := a.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     a.model,
		MaxTokens: a.maxTokens,
		System:    analyzeSystemPrompt,
		Messages: []anthropic.Message{
			{Role: "user", Content: b.String()},
		},
	})
	if err != nil {
		return model.JobAnalysis{}, eris.Wrap(err, "analyzer: create message")
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(cleanJSON(resp.Text())), &raw); err != nil {
		return model.JobAnalysis{}, eris.Wrap(err, "analyzer: parse response")
	}

	complexity := parseComplexity(toString(raw["complexity"]))
	if complexity == "" {
		return model.JobAnalysis{}, eris.Errorf("analyzer: unexpected complexity %q", toString(raw["complexity"]))
	}

	analysis := model.JobAnalysis{
		RequiredSkills:    toStringSlice(raw["requiredSkills"]),
		Complexity:        complexity,
		EstimatedDuration: toString(raw["estimatedDuration"]),
		Recommendations:   toStringSlice(raw["recommendations"]),
	}
	if analysis.EstimatedDuration == "" {
		analysis.EstimatedDuration = durationByComplexity[complexity]
	}
	if len(analysis.Recommendations) == 0 {
		analysis.Recommendations = recommendationsByComplexity[complexity]
	}
	return analysis, nil
}

// analyzeDeterministic scans the job type and free text against the keyword
// table. Complexity follows the skill count: one or none is simple, three
// or more is complex.
func (a *Analyzer) analyzeDeterministic(job model.JobRequirement) model.JobAnalysis {
	text := strings.ToLower(job.JobType + " " + job.Subject + " " + job.BodyPlain)

	var skills []string
	for _, sk := range a.table.Skills {
		if matchesAnyKeyword(text, sk.Keywords) {
			skills = append(skills, sk.Skill)
		}
	}

	complexity := model.ComplexityModerate
	switch {
	case len(skills) <= 1:
		complexity = model.ComplexitySimple
	case len(skills) >= 3:
		complexity = model.ComplexityComplex
	}

	return model.JobAnalysis{
		RequiredSkills:    skills,
		Complexity:        complexity,
		EstimatedDuration: durationByComplexity[complexity],
		Recommendations:   recommendationsByComplexity[complexity],
	}
}

func matchesAnyKeyword(text string, keywords []string) bool {
	for _, kw := range keywords {
		kw = strings.ToLower(kw)
		if len(kw) <= 3 {
			if containsToken(strings.ToUpper(text), strings.ToUpper(kw)) {
				return true
			}
			continue
		}
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func parseComplexity(s string) model.Complexity {
	switch model.Complexity(strings.ToLower(strings.TrimSpace(s))) {
	case model.ComplexitySimple:
		return model.ComplexitySimple
	case model.ComplexityModerate:
		return model.ComplexityModerate
	case model.ComplexityComplex:
		return model.ComplexityComplex
	default:
		return ""
	}
}
