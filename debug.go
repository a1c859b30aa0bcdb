package cadence

import "time"

// tickStats holds per-tick counts. Only gathered when debug mode is on.
type tickStats struct {
	elapsed  time.Duration
	idle     int
	playing  int
	finished int
}

func (s *Sequence) collectTickStats(elapsed time.Duration) tickStats {
	st := tickStats{elapsed: elapsed}
	for _, rt := range s.runtimes.order {
		switch rt.State {
		case StatePlaying:
			st.playing++
		case StateFinished:
			st.finished++
		default:
			st.idle++
		}
	}
	return st
}

// logTick logs timing and stage-state counts for one tick.
func (s *Sequence) logTick(elapsed time.Duration) {
	if !s.debug {
		return
	}
	st := s.collectTickStats(elapsed)
	s.log.Debug().
		Dur("tick", st.elapsed).
		Float64("progress", s.progress).
		Int("iteration", s.iteration).
		Int("idle", st.idle).
		Int("playing", st.playing).
		Int("finished", st.finished).
		Str("current", s.currentStage).
		Msg("tick")
	if st.elapsed > debugSlowTick {
		s.log.Warn().Dur("tick", st.elapsed).Dur("threshold", debugSlowTick).Msg("slow tick")
	}
}

// debugSlowTick is the tick time above which a warning is logged.
const debugSlowTick = 4 * time.Millisecond

// debugMaxStages is the timeline size above which a warning is logged.
const debugMaxStages = 1000

func (s *Sequence) debugCheckTimeline() {
	if s.debug && len(s.timeline.Order) > debugMaxStages {
		s.log.Warn().Int("stages", len(s.timeline.Order)).Int("threshold", debugMaxStages).
			Msg("timeline has many stages")
	}
}
