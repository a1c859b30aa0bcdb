package cadence

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog"
)

// Pattern rewrites stage delays before absolute timing is computed.
type Pattern uint8

const (
	PatternNone          Pattern = iota // keep declared delays
	PatternParallel                     // every stage starts at 0
	PatternSequential                   // each stage starts when the previous ends
	PatternStaggered                    // i × D
	PatternCascade                      // D × 1.2^i
	PatternWave                         // normalized sine over the index × D × n
	PatternRandom                       // uniform in [0, D × n)
	PatternProximity                    // gestalt: spatial clusters
	PatternSimilarity                   // gestalt: shared tag
	PatternContinuity                   // gestalt: path position
	PatternClosure                      // gestalt: declared group
	PatternConnectedness                // gestalt: group plus dependency links
	PatternFigureGround                 // gestalt: z-order, foreground first
	PatternCustom                       // PatternParams.Custom
)

var patternNames = map[Pattern]string{
	PatternNone:          "none",
	PatternParallel:      "parallel",
	PatternSequential:    "sequential",
	PatternStaggered:     "staggered",
	PatternCascade:       "cascade",
	PatternWave:          "wave",
	PatternRandom:        "random",
	PatternProximity:     "proximity",
	PatternSimilarity:    "similarity",
	PatternContinuity:    "continuity",
	PatternClosure:       "closure",
	PatternConnectedness: "connectedness",
	PatternFigureGround:  "figure-ground",
	PatternCustom:        "custom",
}

func (p Pattern) String() string {
	if name, ok := patternNames[p]; ok {
		return name
	}
	return "unknown"
}

// ParsePattern maps a pattern name ("staggered", "figure-ground", ...) to its value.
func ParsePattern(name string) (Pattern, bool) {
	key := normalizeEasingName(name)
	if key == "" {
		return PatternNone, true
	}
	for p, n := range patternNames {
		if normalizeEasingName(n) == key {
			return p, true
		}
	}
	if key == "stagger" {
		return PatternStaggered, true
	}
	return PatternNone, false
}

const (
	defaultStaggerDelay       = 100 * time.Millisecond
	defaultProximityThreshold = 100.0
	cascadeGrowth             = 1.2
)

// PatternParams tunes the distribution patterns.
type PatternParams struct {
	// StaggerDelay is the base delay D. Defaults to 100ms.
	StaggerDelay time.Duration
	// ProximityThreshold is the maximum distance between a stage and the first
	// member of its proximity cluster. Defaults to 100.
	ProximityThreshold float64
	// Rand drives PatternRandom and random staggers. Nil uses a generator
	// seeded from Seed, or an unseeded one when Seed is zero.
	Rand *rand.Rand
	Seed uint64
	// Custom computes a delay per stage for PatternCustom.
	Custom func(index int, stage Stage, all []Stage) time.Duration
}

func (p PatternParams) delay() time.Duration {
	if p.StaggerDelay > 0 {
		return p.StaggerDelay
	}
	return defaultStaggerDelay
}

func (p PatternParams) rng() *rand.Rand {
	if p.Rand != nil {
		return p.Rand
	}
	if p.Seed != 0 {
		return rand.New(rand.NewPCG(p.Seed, p.Seed^0x9e3779b97f4a7c15))
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// applyPattern rewrites stages[i].Delay in place. spanOf reports the time a
// stage occupies (groups included) for the sequential pattern.
func applyPattern(stages []Stage, pattern Pattern, params PatternParams, spanOf func(*Stage) time.Duration, log zerolog.Logger) {
	n := len(stages)
	if n == 0 {
		return
	}
	d := params.delay()

	switch pattern {
	case PatternNone:
	case PatternParallel:
		for i := range stages {
			stages[i].Delay = 0
		}
	case PatternSequential:
		var cursor time.Duration
		for i := range stages {
			stages[i].Delay = cursor
			cursor += spanOf(&stages[i])
		}
	case PatternStaggered:
		staggerDelays(stages, d)
	case PatternCascade:
		for i := range stages {
			stages[i].Delay = scaleDuration(d, math.Pow(cascadeGrowth, float64(i)))
		}
	case PatternWave:
		for i := range stages {
			if n == 1 {
				stages[i].Delay = 0
				continue
			}
			phase := float64(i) / float64(n-1) * 2 * math.Pi
			stages[i].Delay = scaleDuration(d, (1+math.Sin(phase))/2*float64(n))
		}
	case PatternRandom:
		rng := params.rng()
		for i := range stages {
			stages[i].Delay = scaleDuration(d, rng.Float64()*float64(n))
		}
	case PatternCustom:
		if params.Custom == nil {
			log.Warn().Msg("custom pattern without a delay function, keeping declared delays")
			return
		}
		snapshot := append([]Stage(nil), stages...)
		for i := range stages {
			delay := params.Custom(i, snapshot[i], snapshot)
			if delay < 0 {
				delay = 0
			}
			stages[i].Delay = delay
		}
	default:
		groups, ok := gestaltGroups(stages, pattern, params)
		if !ok {
			log.Warn().Str("pattern", pattern.String()).
				Msg("stage metadata missing for gestalt pattern, falling back to staggered")
			staggerDelays(stages, d)
			return
		}
		for i := range stages {
			stages[i].Delay = time.Duration(groups[i]) * d
		}
	}
}

func staggerDelays(stages []Stage, d time.Duration) {
	for i := range stages {
		stages[i].Delay = time.Duration(i) * d
	}
}
