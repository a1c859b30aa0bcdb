package cadence

import (
	"math"
	"math/rand/v2"
	"time"
)

// StaggerPattern orders per-target delays within a stagger stage.
type StaggerPattern uint8

const (
	StaggerSequential StaggerPattern = iota // index × each
	StaggerReverse                          // last target first
	StaggerFromCenter                       // middle targets first
	StaggerFromEdges                        // outer targets first
	StaggerWave                             // sine-shaped offsets
	StaggerRandom                           // uniform offsets in [0, each×(n−1)]
)

// ParseStaggerPattern maps a pattern name to its value.
func ParseStaggerPattern(name string) (StaggerPattern, bool) {
	switch normalizeEasingName(name) {
	case "", "sequential":
		return StaggerSequential, true
	case "reverse":
		return StaggerReverse, true
	case "fromcenter", "center":
		return StaggerFromCenter, true
	case "fromedges", "edges":
		return StaggerFromEdges, true
	case "wave":
		return StaggerWave, true
	case "random":
		return StaggerRandom, true
	}
	return StaggerSequential, false
}

// StaggerConfig configures a stagger stage.
type StaggerConfig struct {
	Each    time.Duration
	Pattern StaggerPattern
}

// CreateStaggerDelays returns one start offset per target. A nil rng is only
// consulted by StaggerRandom, which then falls back to the sequential layout.
func CreateStaggerDelays(n int, each time.Duration, pattern StaggerPattern, rng *rand.Rand) []time.Duration {
	delays := make([]time.Duration, n)
	if n == 0 || each <= 0 {
		return delays
	}
	center := float64(n-1) / 2
	for i := range delays {
		var steps float64
		switch pattern {
		case StaggerReverse:
			steps = float64(n - 1 - i)
		case StaggerFromCenter:
			steps = math.Abs(float64(i) - center)
		case StaggerFromEdges:
			steps = center - math.Abs(float64(i)-center)
		case StaggerWave:
			if n > 1 {
				phase := float64(i) / float64(n-1) * 2 * math.Pi
				steps = (1 + math.Sin(phase)) / 2 * float64(n-1)
			}
		case StaggerRandom:
			if rng != nil {
				steps = rng.Float64() * float64(n-1)
			} else {
				steps = float64(i)
			}
		default:
			steps = float64(i)
		}
		delays[i] = scaleDuration(each, steps)
	}
	return delays
}

// staggerProgress is a target's local linear progress given the stage-local
// elapsed time, the target's delay and the stage duration.
func staggerProgress(stageElapsed, delay, duration time.Duration) float64 {
	window := duration - delay
	if window <= 0 {
		if stageElapsed >= delay {
			return 1
		}
		return 0
	}
	return clamp01(float64(stageElapsed-delay) / float64(window))
}
