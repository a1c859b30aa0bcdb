package cadence

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Timeline build errors.
var (
	ErrMissingStageID   = errors.New("stage id is required")
	ErrDuplicateStage   = errors.New("duplicate stage id")
	ErrNegativeDuration = errors.New("negative stage timing")
	ErrInvalidRepeat    = errors.New("repeat count must be >= -1")
	ErrDependencyCycle  = errors.New("dependency cycle")
)

// StageTiming is the absolute placement of one stage, measured from the
// sequence start.
type StageTiming struct {
	ID        string
	StartTime time.Duration
	EndTime   time.Duration
	Duration  time.Duration
}

// Timeline is the result of one build. Order, Timings and Stages are index
// aligned; group children follow their group with "group/child" ids.
type Timeline struct {
	Order         []string
	Timings       []StageTiming
	TotalDuration time.Duration
	Stages        []Stage
}

// Timing returns the timing of the stage with the given id.
func (t Timeline) Timing(id string) (StageTiming, bool) {
	for _, tm := range t.Timings {
		if tm.ID == id {
			return tm, true
		}
	}
	return StageTiming{}, false
}

// BuildOptions configures BuildTimeline.
type BuildOptions struct {
	Pattern Pattern
	Params  PatternParams
	// Duration overrides the computed total when > 0.
	Duration time.Duration
	// ResolveDependencies starts every stage no earlier than the end of the
	// stages it depends on. Off by default: DependsOn is then informational.
	ResolveDependencies bool
	Logger              zerolog.Logger
}

// BuildTimeline validates stages, applies the distribution pattern to the
// top-level stages, flattens groups and computes absolute timings.
func BuildTimeline(stages []Stage, opts BuildOptions) (Timeline, error) {
	if err := validateStages(stages, "", make(map[string]bool)); err != nil {
		return Timeline{}, err
	}

	top := cloneStages(stages)
	applyPattern(top, opts.Pattern, opts.Params, groupSpan, opts.Logger)

	b := &flattener{}
	for i := range top {
		b.add(top[i], top[i].Delay, "", -1, nil)
	}

	tl := Timeline{
		Order:   make([]string, len(b.stages)),
		Timings: make([]StageTiming, len(b.stages)),
		Stages:  b.stages,
	}
	for i := range b.stages {
		s := &b.stages[i]
		span := s.span()
		tl.Order[i] = s.ID
		tl.Timings[i] = StageTiming{ID: s.ID, StartTime: s.Delay, EndTime: s.Delay + span, Duration: span}
	}

	warnUnknownDependencies(tl.Stages, opts.Logger)
	if opts.ResolveDependencies {
		if err := resolveDependencies(&tl, b.parents); err != nil {
			return Timeline{}, err
		}
	}

	for _, tm := range tl.Timings {
		if tm.EndTime > tl.TotalDuration {
			tl.TotalDuration = tm.EndTime
		}
	}
	if opts.Duration > 0 {
		tl.TotalDuration = opts.Duration
	}
	return tl, nil
}

func validateStages(stages []Stage, prefix string, seen map[string]bool) error {
	for i := range stages {
		s := &stages[i]
		if s.ID == "" {
			return fmt.Errorf("stage %d under %q: %w", i, prefix, ErrMissingStageID)
		}
		id := prefix + s.ID
		if seen[id] {
			return fmt.Errorf("%w: %s", ErrDuplicateStage, id)
		}
		seen[id] = true
		if s.Duration < 0 || s.Delay < 0 || s.RepeatDelay < 0 || s.RelationshipValue < 0 {
			return fmt.Errorf("stage %s: %w", id, ErrNegativeDuration)
		}
		if s.RepeatCount < -1 {
			return fmt.Errorf("stage %s: %w", id, ErrInvalidRepeat)
		}
		if len(s.Children) > 0 {
			if err := validateStages(s.Children, id+"/", seen); err != nil {
				return err
			}
		}
	}
	return nil
}

// groupSpan is the time a stage occupies including nested children.
func groupSpan(s *Stage) time.Duration {
	if s.kind() != StageGroup {
		return s.span()
	}
	var span time.Duration
	for i, off := range childOffsets(s) {
		if end := off + groupSpan(&s.Children[i]); end > span {
			span = end
		}
	}
	if s.Duration > span {
		span = s.Duration
	}
	return span
}

// childOffsets returns each child's start relative to its group.
func childOffsets(g *Stage) []time.Duration {
	offsets := make([]time.Duration, len(g.Children))
	step := g.RelationshipValue
	if step == 0 {
		step = defaultStaggerDelay
	}
	var cursor time.Duration
	for i := range g.Children {
		c := &g.Children[i]
		switch g.Relationship {
		case GroupSequential:
			offsets[i] = cursor + c.Delay
			cursor = offsets[i] + groupSpan(c)
		case GroupStaggered:
			offsets[i] = time.Duration(i)*step + c.Delay
		default:
			offsets[i] = c.Delay
		}
	}
	return offsets
}

// flattener lays groups out into a single stage list.
type flattener struct {
	stages  []Stage
	parents []int
}

func (b *flattener) add(s Stage, start time.Duration, prefix string, parent int, siblings map[string]bool) {
	flat := s
	flat.ID = prefix + s.ID
	flat.Delay = start
	if prefix != "" && len(s.DependsOn) > 0 {
		flat.DependsOn = make([]string, len(s.DependsOn))
		for i, dep := range s.DependsOn {
			if siblings[dep] {
				dep = prefix + dep
			}
			flat.DependsOn[i] = dep
		}
	}

	isGroup := s.kind() == StageGroup
	if isGroup {
		flat.Type = StageGroup
		flat.Duration = groupSpan(&s)
		flat.RepeatCount = 0
		flat.Children = nil
	} else {
		flat.Type = s.kind()
	}

	index := len(b.stages)
	b.stages = append(b.stages, flat)
	b.parents = append(b.parents, parent)

	if !isGroup {
		return
	}
	names := make(map[string]bool, len(s.Children))
	for _, c := range s.Children {
		names[c.ID] = true
	}
	for i, off := range childOffsets(&s) {
		b.add(s.Children[i], start+off, flat.ID+"/", index, names)
	}
}

func warnUnknownDependencies(stages []Stage, log zerolog.Logger) {
	known := make(map[string]bool, len(stages))
	for i := range stages {
		known[stages[i].ID] = true
	}
	for i := range stages {
		for _, dep := range stages[i].DependsOn {
			if !known[dep] {
				log.Warn().Str("stage", stages[i].ID).Str("depends_on", dep).
					Msg("dependency references an unknown stage, ignoring")
			}
		}
	}
}

// resolveDependencies moves stages so that each starts no earlier than the
// end of its dependencies. Stages are visited in topological order, ties
// broken by declaration order. A group's shift carries over to its children.
func resolveDependencies(tl *Timeline, parents []int) error {
	n := len(tl.Stages)
	index := make(map[string]int, n)
	for i := range tl.Stages {
		index[tl.Stages[i].ID] = i
	}

	deps := make([][]int, n)
	indegree := make([]int, n)
	dependents := make([][]int, n)
	for i := range tl.Stages {
		edges := make([]int, 0, len(tl.Stages[i].DependsOn)+1)
		for _, dep := range tl.Stages[i].DependsOn {
			if j, ok := index[dep]; ok && j != i {
				edges = append(edges, j)
			}
		}
		if parents[i] >= 0 {
			edges = append(edges, parents[i])
		}
		deps[i] = edges
		indegree[i] = len(edges)
		for _, j := range edges {
			dependents[j] = append(dependents[j], i)
		}
	}

	shift := make([]time.Duration, n)
	done := make([]bool, n)
	for processed := 0; processed < n; processed++ {
		next := -1
		for i := 0; i < n; i++ {
			if !done[i] && indegree[i] == 0 {
				next = i
				break
			}
		}
		if next < 0 {
			var stuck []string
			for i := range done {
				if !done[i] {
					stuck = append(stuck, tl.Stages[i].ID)
				}
			}
			return fmt.Errorf("%w: %s", ErrDependencyCycle, strings.Join(stuck, ", "))
		}
		done[next] = true

		tm := &tl.Timings[next]
		start := tm.StartTime
		if p := parents[next]; p >= 0 {
			start += shift[p]
		}
		for _, j := range deps[next] {
			if j == parents[next] {
				continue
			}
			if end := tl.Timings[j].EndTime; end > start {
				start = end
			}
		}
		shift[next] = start - tm.StartTime
		tm.StartTime = start
		tm.EndTime = start + tm.Duration
		tl.Stages[next].Delay = start

		for _, k := range dependents[next] {
			indegree[k]--
		}
	}
	return nil
}
