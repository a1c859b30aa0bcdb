package cadence

import (
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog"
)

// StageRuntime is the live execution state of one stage for one timeline
// build. It is rebuilt whenever the timeline is.
type StageRuntime struct {
	Stage            Stage
	Progress         float64
	StartTime        time.Duration
	EndTime          time.Duration
	State            PlaybackState
	Targets          []StyleTarget
	CurrentIteration int
	TotalIterations  int // -1 for infinite
	IsReduced        bool

	easing        EasingFunc
	style         styleInterpolator
	staggerDelays []time.Duration
}

// StageSnapshot is a read-only view of a stage runtime.
type StageSnapshot struct {
	ID               string
	Type             StageType
	State            PlaybackState
	Progress         float64
	StartTime        time.Duration
	EndTime          time.Duration
	CurrentIteration int
	IsReduced        bool
	TargetCount      int
}

func (rt *StageRuntime) snapshot() StageSnapshot {
	return StageSnapshot{
		ID:               rt.Stage.ID,
		Type:             rt.Stage.Type,
		State:            rt.State,
		Progress:         rt.Progress,
		StartTime:        rt.StartTime,
		EndTime:          rt.EndTime,
		CurrentIteration: rt.CurrentIteration,
		IsReduced:        rt.IsReduced,
		TargetCount:      len(rt.Targets),
	}
}

// reset returns the runtime to IDLE at progress 0.
func (rt *StageRuntime) reset() {
	rt.State = StateIdle
	rt.Progress = 0
	rt.CurrentIteration = 0
}

// localProgress maps a timeline position at or after StartTime to the
// stage's linear progress within its current iteration, honouring repeats,
// repeat delays and stage-level yoyo. It also updates CurrentIteration.
func (rt *StageRuntime) localProgress(at time.Duration) float64 {
	s := &rt.Stage
	local := at - rt.StartTime
	if local < 0 {
		return 0
	}
	if s.Duration <= 0 {
		return 1
	}
	if rt.TotalIterations == 1 {
		return clamp01(float64(local) / float64(s.Duration))
	}

	period := s.Duration + s.RepeatDelay
	iter := int(local / period)
	if rt.TotalIterations > 0 && iter >= rt.TotalIterations {
		iter = rt.TotalIterations - 1
	}
	within := local - time.Duration(iter)*period
	if within > s.Duration {
		within = s.Duration
	}
	rt.CurrentIteration = iter

	p := float64(within) / float64(s.Duration)
	if s.Yoyo && iter%2 == 1 {
		p = 1 - p
	}
	return clamp01(p)
}

// finalProgress is the linear progress of the stage's last frame.
func (rt *StageRuntime) finalProgress() float64 {
	if rt.Stage.Yoyo && rt.TotalIterations > 0 && (rt.TotalIterations-1)%2 == 1 {
		return 0
	}
	return 1
}

// runtimeRegistry holds the runtimes of one timeline build in timeline order.
type runtimeRegistry struct {
	order []*StageRuntime
	byID  map[string]*StageRuntime
}

// newRuntimeRegistry creates one runtime per timeline stage, resolving
// easing, targets and stagger delays once. Resolution failures are logged
// per stage and leave the stage with linear easing or no targets.
func newRuntimeRegistry(tl Timeline, reduced map[string]bool, src SelectorSource, rng *rand.Rand, log zerolog.Logger) *runtimeRegistry {
	reg := &runtimeRegistry{
		order: make([]*StageRuntime, len(tl.Stages)),
		byID:  make(map[string]*StageRuntime, len(tl.Stages)),
	}
	for i, st := range tl.Stages {
		tm := tl.Timings[i]
		rt := &StageRuntime{
			Stage:           st,
			StartTime:       tm.StartTime,
			EndTime:         tm.EndTime,
			TotalIterations: st.iterations(),
			IsReduced:       reduced[st.ID],
		}
		if rt.TotalIterations < 0 && tl.TotalDuration > rt.EndTime {
			rt.EndTime = tl.TotalDuration
		}

		stageLog := log.With().Str("stage", st.ID).Logger()
		rt.easing = ResolveEasing(st.Easing, stageLog)

		if st.Type == StageStyle || st.Type == StageStagger {
			targets, err := resolveTargets(st.Targets, src)
			if err != nil {
				stageLog.Warn().Err(err).Msg("target resolution failed")
			}
			rt.Targets = targets
			rt.style = newStyleInterpolator(st.From, st.To)
			if st.Type == StageStagger {
				rt.staggerDelays = CreateStaggerDelays(len(targets), st.Stagger.Each, st.Stagger.Pattern, rng)
			}
		}

		reg.order[i] = rt
		reg.byID[st.ID] = rt
	}
	return reg
}

func (r *runtimeRegistry) get(id string) (*StageRuntime, bool) {
	if r == nil {
		return nil, false
	}
	rt, ok := r.byID[id]
	return rt, ok
}

func (r *runtimeRegistry) reset() {
	if r == nil {
		return
	}
	for _, rt := range r.order {
		rt.reset()
	}
}

func (r *runtimeRegistry) snapshots() []StageSnapshot {
	if r == nil {
		return nil
	}
	out := make([]StageSnapshot, len(r.order))
	for i, rt := range r.order {
		out[i] = rt.snapshot()
	}
	return out
}
