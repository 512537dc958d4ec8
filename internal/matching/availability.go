// Package matching implements the technician matching and team-composition
// engine: availability resolution, deterministic certification scoring, the
// optional AI-assisted ranking path, and team composition.
package matching

import (
	"sort"
	"time"

	"github.com/TheeNate/JobPilot/internal/model"
)

// IsAvailable resolves whether a technician is available on jobDate from
// their availability periods. Any period containing the date with type
// Available wins, even if another containing period would deny; otherwise a
// containing Unavailable or Booked period denies. A technician with no
// period covering the date is available: absence of data is not evidence of
// unavailability.
func IsAvailable(periods []model.AvailabilityPeriod, jobDate time.Time) bool {
	denied := false
	for _, p := range periods {
		if !p.Contains(jobDate) {
			continue
		}
		switch p.PeriodType {
		case model.PeriodAvailable:
			return true
		case model.PeriodUnavailable, model.PeriodBooked:
			denied = true
		}
	}
	return !denied
}

// AvailableCandidates pairs each technician with their availability records
// and keeps those available on the job date. A nil date keeps everyone.
func AvailableCandidates(techs []model.Technician, periods []model.AvailabilityPeriod, jobDate *time.Time) []model.CandidateMatch {
	byTech := make(map[string][]model.AvailabilityPeriod)
	for _, p := range periods {
		byTech[p.TechnicianID] = append(byTech[p.TechnicianID], p)
	}

	candidates := make([]model.CandidateMatch, 0, len(techs))
	for _, t := range techs {
		avail := byTech[t.ID]
		if jobDate != nil && !IsAvailable(avail, *jobDate) {
			continue
		}
		candidates = append(candidates, model.CandidateMatch{
			Technician:   t,
			Availability: avail,
		})
	}
	return candidates
}

// RankCandidates assigns the deterministic match score to every candidate
// and orders them by score descending. Ordering is stable so equal scores
// keep their input order.
func RankCandidates(candidates []model.CandidateMatch, jobType string) []model.CandidateMatch {
	ranked := make([]model.CandidateMatch, len(candidates))
	copy(ranked, candidates)
	for i := range ranked {
		ranked[i].MatchScore = Score(ranked[i].Technician, jobType)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].MatchScore > ranked[j].MatchScore
	})
	return ranked
}
