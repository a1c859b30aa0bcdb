package cadence

import (
	"image/color"
	"time"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default node tint.
var ColorWhite = Color{1, 1, 1, 1}

// toRGBA converts a Color to a premultiplied color.RGBA.
func (c Color) toRGBA() color.RGBA {
	return color.RGBA{
		R: uint8(clamp01(c.R*c.A) * 255),
		G: uint8(clamp01(c.G*c.A) * 255),
		B: uint8(clamp01(c.B*c.A) * 255),
		A: uint8(clamp01(c.A) * 255),
	}
}

// Vec2 is a 2D vector used for node positions and gestalt proximity metadata.
type Vec2 struct {
	X, Y float64
}

// PlaybackState is the lifecycle state shared by sequences and stage runtimes.
type PlaybackState uint8

const (
	StateIdle     PlaybackState = iota // initial and fully-stopped state
	StatePlaying                       // the only state in which frames are scheduled
	StatePaused                        // elapsed time frozen
	StateFinished                      // terminal until Play or Restart
)

func (s PlaybackState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Direction selects how a sequence maps elapsed time onto its timeline.
type Direction uint8

const (
	DirectionForward          Direction = iota // 0 → total every cycle
	DirectionBackward                          // total → 0 every cycle
	DirectionAlternate                         // forward on even cycles, backward on odd
	DirectionAlternateReverse                  // backward on even cycles, forward on odd
)

func (d Direction) String() string {
	switch d {
	case DirectionForward:
		return "forward"
	case DirectionBackward:
		return "backward"
	case DirectionAlternate:
		return "alternate"
	case DirectionAlternateReverse:
		return "alternate-reverse"
	default:
		return "unknown"
	}
}

// ParseDirection maps a direction name to its value. Unknown names report false.
func ParseDirection(name string) (Direction, bool) {
	switch name {
	case "", "forward", "normal":
		return DirectionForward, true
	case "backward", "reverse":
		return DirectionBackward, true
	case "alternate":
		return DirectionAlternate, true
	case "alternate-reverse", "alternateReverse":
		return DirectionAlternateReverse, true
	}
	return DirectionForward, false
}

// StageType selects the executor that runs a stage. The zero value means the
// type is inferred from the stage payload.
type StageType uint8

const (
	StageAuto     StageType = iota // inferred from payload
	StageStyle                     // from/to property tween
	StageStagger                   // per-target delayed style tween
	StageCallback                  // callback(progress, id) every active frame
	StageEvent                     // callback(id) exactly once
	StageGroup                     // nested children, flattened at build time
)

func (t StageType) String() string {
	switch t {
	case StageAuto:
		return "auto"
	case StageStyle:
		return "style"
	case StageStagger:
		return "stagger"
	case StageCallback:
		return "callback"
	case StageEvent:
		return "event"
	case StageGroup:
		return "group"
	default:
		return "unknown"
	}
}

// ParseStageType maps a stage type name to its value.
func ParseStageType(name string) (StageType, bool) {
	switch name {
	case "", "auto":
		return StageAuto, true
	case "style":
		return StageStyle, true
	case "stagger":
		return StageStagger, true
	case "callback":
		return StageCallback, true
	case "event":
		return StageEvent, true
	case "group":
		return StageGroup, true
	}
	return StageAuto, false
}

// Category classifies an animation for accessibility decisions.
type Category string

const (
	CategoryEssential  Category = "essential"
	CategoryTransition Category = "transition"
	CategoryFeedback   Category = "feedback"
	CategoryAttention  Category = "attention"
	CategoryDecorative Category = "decorative"
)

// clamp01 limits v to [0, 1].
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// scaleDuration multiplies d by f.
func scaleDuration(d time.Duration, f float64) time.Duration {
	return time.Duration(float64(d) * f)
}
