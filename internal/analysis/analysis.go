// Package analysis computes squad-balance analytics over a snapshot of
// player records. Analyze is pure: it never touches the record store,
// and identical input always produces identical output.
package analysis

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/ferranmarti/scoutdesk/internal/player"
)

// ErrEmptySquad is returned when Analyze is called with no players.
var ErrEmptySquad = errors.New("empty squad")

// ConfigError reports invalid analysis policy at startup.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("analysis config: %s: %s", e.Field, e.Reason)
}

// Config is the policy input to the engine: ideal distributions,
// dimension weights, squad-size thresholds, and the materiality
// threshold for flagging gaps. None of it is hard-coded in the
// algorithm; the numbers are a scouting-policy decision.
type Config struct {
	IdealAge    map[player.AgeBucket]float64
	IdealPhase  map[player.Phase]float64
	AgeWeight   float64
	PhaseWeight float64

	SquadSizeMin int
	SquadSizeMax int
	Materiality  float64

	// PhaseMapper maps a known age to a career phase. Nil selects
	// player.DefaultPhaseMapper.
	PhaseMapper player.PhaseMapper
}

// Default returns the policy the scouting side has been running with.
func Default() Config {
	return Config{
		IdealAge: map[player.AgeBucket]float64{
			player.AgeU21:    0.15,
			player.Age21to25: 0.30,
			player.Age26to29: 0.35,
			player.Age30Plus: 0.20,
		},
		IdealPhase: map[player.Phase]float64{
			player.PhaseBreakthrough: 0.20,
			player.PhaseDevelopment:  0.30,
			player.PhasePeak:         0.35,
			player.PhaseTwilight:     0.15,
		},
		AgeWeight:    0.4,
		PhaseWeight:  0.6,
		SquadSizeMin: 20,
		SquadSizeMax: 28,
		Materiality:  0.10,
	}
}

const distributionTolerance = 1e-6

// Validate rejects policy that cannot produce meaningful scores.
func (c Config) Validate() error {
	var ageSum float64
	for _, b := range player.AgeBucketOrder {
		v, ok := c.IdealAge[b]
		if !ok {
			return &ConfigError{Field: "ideal_age_distribution", Reason: fmt.Sprintf("missing bucket %s", b)}
		}
		if v < 0 {
			return &ConfigError{Field: "ideal_age_distribution", Reason: fmt.Sprintf("bucket %s is negative", b)}
		}
		ageSum += v
	}
	if math.Abs(ageSum-1) > distributionTolerance {
		return &ConfigError{Field: "ideal_age_distribution", Reason: fmt.Sprintf("shares sum to %.4f, want 1", ageSum)}
	}

	var phaseSum float64
	for _, p := range player.PhaseOrder {
		v, ok := c.IdealPhase[p]
		if !ok {
			return &ConfigError{Field: "ideal_phase_distribution", Reason: fmt.Sprintf("missing phase %s", p)}
		}
		if v < 0 {
			return &ConfigError{Field: "ideal_phase_distribution", Reason: fmt.Sprintf("phase %s is negative", p)}
		}
		phaseSum += v
	}
	if math.Abs(phaseSum-1) > distributionTolerance {
		return &ConfigError{Field: "ideal_phase_distribution", Reason: fmt.Sprintf("shares sum to %.4f, want 1", phaseSum)}
	}

	if c.AgeWeight < 0 || c.PhaseWeight < 0 {
		return &ConfigError{Field: "balance_weights", Reason: "weights must be non-negative"}
	}
	if math.Abs(c.AgeWeight+c.PhaseWeight-1) > distributionTolerance {
		return &ConfigError{Field: "balance_weights", Reason: fmt.Sprintf("weights sum to %.4f, want 1", c.AgeWeight+c.PhaseWeight)}
	}
	if c.SquadSizeMin <= 0 || c.SquadSizeMax < c.SquadSizeMin {
		return &ConfigError{Field: "squad_size", Reason: "need 0 < min <= max"}
	}
	if c.Materiality <= 0 || c.Materiality >= 1 {
		return &ConfigError{Field: "materiality", Reason: "threshold must be in (0, 1)"}
	}
	return nil
}

func (c Config) phaseMapper() player.PhaseMapper {
	if c.PhaseMapper != nil {
		return c.PhaseMapper
	}
	return player.DefaultPhaseMapper
}

// SizeStatus reports whether the squad is big enough.
type SizeStatus string

const (
	SizeUnderstaffed SizeStatus = "understaffed"
	SizeOptimal      SizeStatus = "optimal"
	SizeOverstaffed  SizeStatus = "overstaffed"
)

// Distribution compares a current bucket distribution to its ideal.
// Gaps are signed ideal−current; positive means under-represented.
type Distribution struct {
	Current map[string]float64 `json:"current"`
	Ideal   map[string]float64 `json:"ideal"`
	Gaps    map[string]float64 `json:"gaps"`
}

// BalanceScores are the [0,1] similarity scores per dimension plus the
// weighted overall score.
type BalanceScores struct {
	Age     float64 `json:"age"`
	Phase   float64 `json:"phase"`
	Overall float64 `json:"overall"`
}

// Analysis is the complete squad-balance result.
type Analysis struct {
	TotalPlayers      int           `json:"total_players"`
	KnownAges         int           `json:"known_ages"`
	AverageAge        *float64      `json:"average_age"`
	AgeSpread         *float64      `json:"age_spread"`
	AgeDistribution   Distribution  `json:"age_distribution"`
	PhaseDistribution Distribution  `json:"phase_distribution"`
	BalanceScores     BalanceScores `json:"balance_scores"`
	SquadSizeStatus   SizeStatus    `json:"squad_size_status"`
	Recommendations   []string      `json:"recommendations"`
}

// Analyze computes the squad-balance analysis for the given players.
// Duplicates by id are dropped (first occurrence wins). Players whose
// age cannot be extracted count toward TotalPlayers but are excluded
// from the age and phase distributions.
func Analyze(players []player.Record, cfg Config) (Analysis, error) {
	squad := player.Dedupe(players)
	if len(squad) == 0 {
		return Analysis{}, ErrEmptySquad
	}

	mapper := cfg.phaseMapper()

	ageCounts := make(map[player.AgeBucket]int)
	phaseCounts := make(map[player.Phase]int)
	var (
		known            int
		ageSum           float64
		minAge, maxAge   int
		haveKnownExtrema bool
	)
	for _, p := range squad {
		age, ok := p.Age()
		if !ok {
			continue
		}
		known++
		ageSum += float64(age)
		if !haveKnownExtrema || age < minAge {
			minAge = age
		}
		if !haveKnownExtrema || age > maxAge {
			maxAge = age
		}
		haveKnownExtrema = true
		ageCounts[player.AgeBucketOf(age)]++
		phaseCounts[mapper(age)]++
	}

	ageDist := buildDistribution(ageBucketsAsStrings(cfg.IdealAge), ageCountsAsStrings(ageCounts), known)
	phaseDist := buildDistribution(phasesAsStrings(cfg.IdealPhase), phaseCountsAsStrings(phaseCounts), known)

	ageScore := balanceScore(ageDist.Gaps)
	phaseScore := balanceScore(phaseDist.Gaps)

	a := Analysis{
		TotalPlayers:      len(squad),
		KnownAges:         known,
		AgeDistribution:   ageDist,
		PhaseDistribution: phaseDist,
		BalanceScores: BalanceScores{
			Age:     ageScore,
			Phase:   phaseScore,
			Overall: clamp01(cfg.AgeWeight*ageScore + cfg.PhaseWeight*phaseScore),
		},
		SquadSizeStatus: sizeStatus(len(squad), cfg),
	}
	if known > 0 {
		avg := math.Round(ageSum/float64(known)*10) / 10
		spread := float64(maxAge - minAge)
		a.AverageAge = &avg
		a.AgeSpread = &spread
	}
	a.Recommendations = recommendations(a, cfg)
	return a, nil
}

// IdentifyNeeds lists the career phases whose current share falls below
// ideal by more than the materiality threshold, in canonical order.
func IdentifyNeeds(a Analysis, cfg Config) []player.Phase {
	needs := make([]player.Phase, 0, len(player.PhaseOrder))
	for _, p := range player.PhaseOrder {
		if a.PhaseDistribution.Gaps[string(p)] > cfg.Materiality {
			needs = append(needs, p)
		}
	}
	return needs
}

// buildDistribution computes current shares (count/known, with 0/0=0)
// and signed gaps for every bucket in the ideal.
func buildDistribution(ideal map[string]float64, counts map[string]int, known int) Distribution {
	d := Distribution{
		Current: make(map[string]float64, len(ideal)),
		Ideal:   make(map[string]float64, len(ideal)),
		Gaps:    make(map[string]float64, len(ideal)),
	}
	for bucket, want := range ideal {
		var current float64
		if known > 0 {
			current = float64(counts[bucket]) / float64(known)
		}
		d.Current[bucket] = current
		d.Ideal[bucket] = want
		d.Gaps[bucket] = want - current
	}
	return d
}

// balanceScore converts total absolute deviation between two
// distributions into a [0,1] similarity. The divisor 2 normalizes the
// maximum possible deviation between two probability distributions.
func balanceScore(gaps map[string]float64) float64 {
	var total float64
	for _, gap := range gaps {
		total += math.Abs(gap)
	}
	return clamp01(1 - total/2)
}

func sizeStatus(total int, cfg Config) SizeStatus {
	switch {
	case total < cfg.SquadSizeMin:
		return SizeUnderstaffed
	case total > cfg.SquadSizeMax:
		return SizeOverstaffed
	default:
		return SizeOptimal
	}
}

// recommendations is a pure function of the computed metrics. Output
// order is fixed: squad size, age gaps in bucket order, phase needs in
// phase order.
func recommendations(a Analysis, cfg Config) []string {
	recs := make([]string, 0, 4)

	switch a.SquadSizeStatus {
	case SizeUnderstaffed:
		recs = append(recs, fmt.Sprintf("Need %d more players to reach the minimum squad size of %d",
			cfg.SquadSizeMin-a.TotalPlayers, cfg.SquadSizeMin))
	case SizeOverstaffed:
		recs = append(recs, fmt.Sprintf("Squad too large by %d players (maximum %d)",
			a.TotalPlayers-cfg.SquadSizeMax, cfg.SquadSizeMax))
	}

	for _, b := range player.AgeBucketOrder {
		gap := a.AgeDistribution.Gaps[string(b)]
		label := strings.ReplaceAll(string(b), "_", "-")
		switch {
		case gap > cfg.Materiality:
			recs = append(recs, fmt.Sprintf("Need more %s players (+%.0f%%)", label, gap*100))
		case gap < -cfg.Materiality:
			recs = append(recs, fmt.Sprintf("Reduce %s players (%.0f%%)", label, gap*100))
		}
	}

	for _, p := range player.PhaseOrder {
		gap := a.PhaseDistribution.Gaps[string(p)]
		if gap > cfg.Materiality {
			recs = append(recs, fmt.Sprintf("Prioritise %s-phase signings (current %.0f%%, ideal %.0f%%)",
				p, a.PhaseDistribution.Current[string(p)]*100, a.PhaseDistribution.Ideal[string(p)]*100))
		}
	}

	return recs
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func ageBucketsAsStrings(m map[player.AgeBucket]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[string(k)] = v
	}
	return out
}

func ageCountsAsStrings(m map[player.AgeBucket]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[string(k)] = v
	}
	return out
}

func phasesAsStrings(m map[player.Phase]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[string(k)] = v
	}
	return out
}

func phaseCountsAsStrings(m map[player.Phase]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[string(k)] = v
	}
	return out
}
