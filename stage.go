package cadence

import "time"

// StyleProps maps a style property to a numeric (float64, int) or string value.
type StyleProps map[string]any

// GroupRelationship controls how a group lays out its children.
type GroupRelationship uint8

const (
	GroupParallel   GroupRelationship = iota // children start with the group
	GroupSequential                          // each child starts when the previous ends
	GroupStaggered                           // child i starts RelationshipValue*i after the group
)

// StageMeta carries optional layout hints consumed by the gestalt patterns.
type StageMeta struct {
	Position     *Vec2  // proximity
	Tag          string // similarity
	PathPosition *float64
	Group        string // closure, connectedness
	ZOrder       *int   // figure-ground; higher is nearer the viewer
}

// Stage is the immutable definition of one named animation unit. Callers own
// stage values; sequences copy them.
type Stage struct {
	ID       string
	Type     StageType
	Duration time.Duration
	Delay    time.Duration
	Easing   Easing

	// DependsOn names stages that must finish first. Honoured only when the
	// sequence resolves dependencies; otherwise informational.
	DependsOn []string

	// RepeatCount is the number of extra iterations; -1 repeats until the
	// sequence timeline ends.
	RepeatCount int
	RepeatDelay time.Duration
	Yoyo        bool

	Category Category

	// ReducedMotion replaces this stage when reduced motion applies. The
	// original ID is kept; nil payload fields are inherited.
	ReducedMotion *Stage

	// Style and stagger payload.
	Targets TargetResolver
	From    StyleProps
	To      StyleProps
	Stagger StaggerConfig

	// Callback runs every active frame of a callback stage.
	Callback func(progress float64, stageID string)
	// Event runs once for an event stage.
	Event func(stageID string)

	// Group payload.
	Children          []Stage
	Relationship      GroupRelationship
	RelationshipValue time.Duration

	Meta StageMeta

	// Per-stage lifecycle hooks.
	OnStart    func(stageID string)
	OnComplete func(stageID string)
}

// kind returns the declared type, or infers one from the payload.
func (s *Stage) kind() StageType {
	if s.Type != StageAuto {
		return s.Type
	}
	switch {
	case len(s.Children) > 0:
		return StageGroup
	case s.Event != nil:
		return StageEvent
	case s.Callback != nil:
		return StageCallback
	case s.Stagger.Each > 0:
		return StageStagger
	default:
		return StageStyle
	}
}

// iterations returns the total number of iterations, or -1 for infinite.
func (s *Stage) iterations() int {
	if s.RepeatCount < 0 {
		return -1
	}
	return s.RepeatCount + 1
}

// span is the time the stage occupies on the timeline. Infinite repeats
// contribute a single iteration; their runtime window is stretched to the
// sequence end instead.
func (s *Stage) span() time.Duration {
	if s.RepeatCount <= 0 {
		return s.Duration
	}
	return time.Duration(s.RepeatCount)*(s.Duration+s.RepeatDelay) + s.Duration
}

// clone returns a copy whose slices and maps are not shared with s.
func (s Stage) clone() Stage {
	out := s
	if s.DependsOn != nil {
		out.DependsOn = append([]string(nil), s.DependsOn...)
	}
	out.From = cloneProps(s.From)
	out.To = cloneProps(s.To)
	if s.Children != nil {
		out.Children = make([]Stage, len(s.Children))
		for i, c := range s.Children {
			out.Children[i] = c.clone()
		}
	}
	if s.ReducedMotion != nil {
		alt := s.ReducedMotion.clone()
		out.ReducedMotion = &alt
	}
	return out
}

func cloneProps(p StyleProps) StyleProps {
	if p == nil {
		return nil
	}
	out := make(StyleProps, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

func cloneStages(stages []Stage) []Stage {
	out := make([]Stage, len(stages))
	for i, s := range stages {
		out[i] = s.clone()
	}
	return out
}
