package cadence

import (
	"errors"
	"fmt"
	"math"

	"github.com/charmbracelet/harmonica"
)

// ErrInvalidSpring is returned for spring parameters that cannot be simulated.
var ErrInvalidSpring = errors.New("invalid spring parameters")

// SpringParams describes a damped harmonic oscillator.
type SpringParams struct {
	Mass            float64
	Stiffness       float64
	Damping         float64
	InitialVelocity float64 // in progress units per second
}

// DefaultSpring is a gently underdamped spring.
func DefaultSpring() SpringParams {
	return SpringParams{Mass: 1, Stiffness: 100, Damping: 10}
}

const (
	springFPS          = 120
	springMaxSeconds   = 10
	springRestEpsilon  = 1e-3
	springSettleFrames = 6
)

// NewSpringCurve simulates a spring moving from 0 to 1 until it settles and
// returns the trajectory normalized to unit progress: the curve's 1 is the
// moment the spring came to rest. The final value is pinned to exactly 1.
func NewSpringCurve(p SpringParams) (EasingFunc, error) {
	if p.Mass <= 0 || p.Stiffness <= 0 || p.Damping < 0 ||
		math.IsNaN(p.Mass) || math.IsNaN(p.Stiffness) || math.IsNaN(p.Damping) {
		return nil, fmt.Errorf("%w: mass=%v stiffness=%v damping=%v",
			ErrInvalidSpring, p.Mass, p.Stiffness, p.Damping)
	}

	freq := math.Sqrt(p.Stiffness / p.Mass)
	ratio := p.Damping / (2 * math.Sqrt(p.Stiffness*p.Mass))
	spring := harmonica.NewSpring(harmonica.FPS(springFPS), freq, ratio)

	samples := make([]float64, 1, springFPS)
	pos, vel := 0.0, p.InitialVelocity
	still := 0
	for i := 0; i < springFPS*springMaxSeconds; i++ {
		pos, vel = spring.Update(pos, vel, 1)
		samples = append(samples, pos)
		if math.Abs(pos-1) < springRestEpsilon && math.Abs(vel) < springRestEpsilon {
			still++
			if still >= springSettleFrames {
				break
			}
		} else {
			still = 0
		}
	}
	samples[len(samples)-1] = 1

	last := float64(len(samples) - 1)
	return func(t float64) float64 {
		if t <= 0 {
			return 0
		}
		if t >= 1 {
			return 1
		}
		x := t * last
		i := int(x)
		frac := x - float64(i)
		return samples[i] + (samples[i+1]-samples[i])*frac
	}, nil
}
