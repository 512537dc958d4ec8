package matching

import (
	"strings"

	"github.com/TheeNate/JobPilot/internal/model"
)

// Scoring constants. The scorer is the always-available fallback ranking
// signal, so everything here is fixed: identical technician and job type
// always yield an identical score.
const (
	neutralScore = 50
	baseScore    = 35

	topTierBonus    = 35
	entryTierBonus  = 20
	genericBonus    = 10
	generalExpBonus = 5
	safetyBonus     = 5
	industryBonus   = 5
)

// disciplineAliases maps free-text job type tokens onto NDT discipline codes.
var disciplineAliases = map[string]string{
	"ut":           "UT",
	"ultrasonic":   "UT",
	"rt":           "RT",
	"radiographic": "RT",
	"radiography":  "RT",
	"mt":           "MT",
	"magnetic":     "MT",
	"pt":           "PT",
	"penetrant":    "PT",
	"vt":           "VT",
	"visual":       "VT",
}

var generalExpKeywords = []string{"ndt", "nde", "asnt"}

var safetyKeywords = []string{"osha", "safety", "first aid", "cpr", "confined space"}

var industryKeywords = []string{"api", "aws", "cwi", "nace", "ampp"}

// Score computes the deterministic 0-100 certification match score for a
// technician against a job type. No job type yields the neutral 50.
// Otherwise the score is an additive build-up from a base of 35: a tiered
// discipline bonus (one per requested discipline, best cert wins), a general
// NDT experience bonus, a certification-breadth bonus, and safety and
// industry certification bonuses, clamped to 100.
func Score(tech model.Technician, jobType string) int {
	if strings.TrimSpace(jobType) == "" {
		return neutralScore
	}

	score := baseScore

	for _, disc := range requestedDisciplines(jobType) {
		score += bestDisciplineBonus(tech.Certifications, disc)
	}

	if anyCertContains(tech.Certifications, generalExpKeywords) {
		score += generalExpBonus
	}

	switch n := len(tech.Certifications); {
	case n >= 4:
		score += 10
	case n == 3:
		score += 7
	case n == 2:
		score += 4
	}

	if anyCertContains(tech.Certifications, safetyKeywords) {
		score += safetyBonus
	}
	if anyCertContains(tech.Certifications, industryKeywords) {
		score += industryBonus
	}

	return model.ClampScore(score)
}

// requestedDisciplines extracts the distinct discipline codes mentioned in a
// job type string.
func requestedDisciplines(jobType string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, token := range strings.Fields(strings.ToLower(jobType)) {
		token = strings.Trim(token, ".,;:()[]/")
		disc, ok := disciplineAliases[token]
		if !ok || seen[disc] {
			continue
		}
		seen[disc] = true
		out = append(out, disc)
	}
	return out
}

// bestDisciplineBonus returns the highest single bonus among the
// technician's certifications for one discipline. Level II and III are
// top-tier, Level I is entry, and a bare discipline mention is generic;
// bonuses within a discipline never stack. Level markers are matched as
// whole tokens so "UT Inspection" stays a bare mention rather than reading
// the I in "Inspection" as Level I.
func bestDisciplineBonus(certs []string, discipline string) int {
	best := 0
	for _, cert := range certs {
		upper := strings.ToUpper(cert)
		if !containsToken(upper, discipline) {
			continue
		}
		bonus := genericBonus
		switch {
		case containsToken(upper, "III"), strings.Contains(upper, "LEVEL 3"):
			bonus = topTierBonus
		case containsToken(upper, "II"), strings.Contains(upper, "LEVEL 2"):
			bonus = topTierBonus
		case containsToken(upper, "I"), strings.Contains(upper, "LEVEL 1"):
			bonus = entryTierBonus
		}
		if bonus > best {
			best = bonus
		}
	}
	return best
}

// containsToken reports whether s contains token as a whole word, so a "UT"
// discipline does not match inside "ROUTINE".
func containsToken(s, token string) bool {
	for _, word := range strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '-' || r == '/' || r == ',' || r == '(' || r == ')'
	}) {
		if word == token {
			return true
		}
	}
	return false
}

func anyCertContains(certs []string, keywords []string) bool {
	for _, cert := range certs {
		lower := strings.ToLower(cert)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				return true
			}
		}
	}
	return false
}
