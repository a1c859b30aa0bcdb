package cadence

import (
	"fmt"
	"time"
)

// execute runs the stage-type-specific handler for one frame. linear is the
// stage's uneased local progress, eased its eased counterpart. Panics from
// user code, targets or easing are recovered and logged for this stage only.
func (s *Sequence) execute(rt *StageRuntime, linear, eased float64, silent bool) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Warn().Str("stage", rt.Stage.ID).Str("type", rt.Stage.Type.String()).
				Err(fmt.Errorf("%v", r)).Msg("stage execution failed")
		}
	}()

	switch rt.Stage.Type {
	case StageStyle:
		rt.style.at(eased).apply(rt.Targets)
		rt.Progress = eased
	case StageStagger:
		s.executeStagger(rt, linear)
		rt.Progress = eased
	case StageCallback:
		rt.Progress = eased
		if rt.Stage.Callback != nil {
			rt.Stage.Callback(eased, rt.Stage.ID)
		}
	case StageEvent:
		// Progress doubles as the fired sentinel: 0 armed, 1 fired.
		if rt.Progress == 0 && linear > 0 {
			rt.Progress = 1
			if !silent && rt.Stage.Event != nil {
				rt.Stage.Event(rt.Stage.ID)
			}
		}
	case StageGroup:
		// Children were flattened into the timeline; nothing to run here.
		rt.Progress = linear
	}
}

// executeStagger applies the style interpolator to each target with its own
// delay offset and re-eased local progress.
func (s *Sequence) executeStagger(rt *StageRuntime, linear float64) {
	duration := rt.Stage.Duration
	elapsed := time.Duration(linear * float64(duration))
	for i, t := range rt.Targets {
		var delay time.Duration
		if i < len(rt.staggerDelays) {
			delay = rt.staggerDelays[i]
		}
		p := linear
		if duration > 0 {
			p = staggerProgress(elapsed, delay, duration)
		}
		rt.style.at(rt.easing(p)).apply([]StyleTarget{t})
	}
}

// rewind puts a visual stage back at its start values. Callback and event
// stages have no visual state to restore.
func (s *Sequence) rewind(rt *StageRuntime) {
	switch rt.Stage.Type {
	case StageStyle, StageStagger:
		s.execute(rt, 0, rt.easing(0), true)
	}
	rt.reset()
}
