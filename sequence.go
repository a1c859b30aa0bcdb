package cadence

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// SequenceConfig describes a sequence. Stages are copied at construction.
type SequenceConfig struct {
	// ID defaults to a random UUID.
	ID     string
	Stages []Stage

	// Duration overrides the computed timeline length when > 0.
	Duration time.Duration
	Autoplay bool
	// Loop repeats forever; equivalent to RepeatCount -1.
	Loop bool
	// RepeatCount is the number of extra cycles; -1 repeats forever.
	RepeatCount int
	// Yoyo alternates direction every cycle.
	Yoyo      bool
	Direction Direction
	// Category applies to stages that declare none.
	Category Category
	// PlaybackRate scales elapsed time. Defaults to 1.
	PlaybackRate float64

	Pattern             Pattern
	PatternParams       PatternParams
	ResolveDependencies bool

	// Labels name timeline positions for SeekLabel. Stage ids are implicit
	// labels for their start time.
	Labels map[string]time.Duration

	OnStart       func()
	OnUpdate      func(progress float64)
	OnComplete    func()
	OnCancel      func()
	OnLoop        func(iteration int)
	OnStageChange func(stageID string)
}

// Option configures a Sequence's collaborators.
type Option func(*Sequence)

// WithFrames drives the sequence from a ManualFrames pump (clock and scheduler).
func WithFrames(f *ManualFrames) Option {
	return func(s *Sequence) {
		s.clock = f
		s.sched = f
	}
}

// WithClock sets the time source.
func WithClock(c Clock) Option { return func(s *Sequence) { s.clock = c } }

// WithScheduler sets the frame scheduler.
func WithScheduler(fs FrameScheduler) Option { return func(s *Sequence) { s.sched = fs } }

// WithLogger sets the logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option { return func(s *Sequence) { s.log = l } }

// WithMotionPreference sets the reduced-motion source.
func WithMotionPreference(p MotionPreference) Option {
	return func(s *Sequence) { s.motion = p }
}

// WithSelectorSource sets the source used to resolve Selector targets.
func WithSelectorSource(src SelectorSource) Option {
	return func(s *Sequence) { s.src = src }
}

// WithEventStore forwards lifecycle events to store.
func WithEventStore(store EventStore) Option {
	return func(s *Sequence) { s.store = store }
}

// Sequence schedules stages on one timeline and plays them back from frame
// callbacks. A Sequence is not safe for concurrent use: every method and
// every frame callback must run on the same goroutine.
type Sequence struct {
	id     string
	cfg    SequenceConfig
	stages []Stage

	clock  Clock
	sched  FrameScheduler
	log    zerolog.Logger
	motion MotionPreference
	src    SelectorSource
	store  EventStore
	rng    *rand.Rand
	debug  bool

	callbacks callbackRegistry

	timeline      Timeline
	runtimes      *runtimeRegistry
	reducedMotion bool

	// Clock state
	state            PlaybackState
	progress         float64
	currentStage     string
	startWall        time.Duration
	pausedElapsed    time.Duration
	hasPausedElapsed bool
	rate             float64
	direction        Direction
	iteration        int
	lastCycle        int

	frame        FrameHandle
	framePending bool
	inTick       bool
	dirty        bool
	deferred     []func()
	// generation changes whenever runtimes are reset or replaced, so a
	// frame pass interrupted by a control call stops touching them.
	generation uint64
}

// NewSequence builds the timeline and, when cfg.Autoplay is set, starts
// playing. Without WithFrames/WithClock/WithScheduler the sequence gets a
// private ManualFrames that nothing steps; use Scene.NewSequence or pass a
// pump.
func NewSequence(cfg SequenceConfig, opts ...Option) *Sequence {
	s := &Sequence{
		id:        cfg.ID,
		cfg:       cfg,
		stages:    cloneStages(cfg.Stages),
		log:       zerolog.Nop(),
		motion:    FullMotion,
		rate:      cfg.PlaybackRate,
		direction: cfg.Direction,
	}
	s.cfg.Stages = nil
	if s.id == "" {
		s.id = uuid.NewString()
	}
	if s.rate <= 0 || math.IsNaN(s.rate) || math.IsInf(s.rate, 0) {
		s.rate = 1
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.clock == nil || s.sched == nil {
		f := NewManualFrames()
		if s.clock == nil {
			s.clock = f
		}
		if s.sched == nil {
			s.sched = f
		}
	}
	s.log = s.log.With().Str("sequence", s.id).Logger()
	s.rng = cfg.PatternParams.rng()

	s.rebuild()
	if cfg.Autoplay {
		s.Play()
	}
	return s
}

// --- Timeline ---

// rebuild recomputes the effective stages, timeline and runtimes. During a
// tick the rebuild is deferred until the tick returns.
func (s *Sequence) rebuild() {
	if s.inTick {
		s.dirty = true
		return
	}
	s.dirty = false
	s.generation++

	tl, reduced, err := s.buildTimeline()
	if err != nil {
		s.log.Warn().Err(err).Msg("timeline build failed, sequence left idle")
		s.cancelFrame()
		s.timeline = Timeline{}
		s.runtimes = &runtimeRegistry{byID: map[string]*StageRuntime{}}
		s.state = StateIdle
		s.progress = 0
		s.currentStage = ""
		s.hasPausedElapsed = false
		return
	}
	s.timeline = tl
	s.reducedMotion = s.motion != nil && s.motion.PrefersReducedMotion()
	s.runtimes = newRuntimeRegistry(tl, reduced, s.src, s.rng, s.log)
	s.debugCheckTimeline()
}

func (s *Sequence) buildTimeline() (tl Timeline, reduced map[string]bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("timeline build panicked: %v", r)
		}
	}()
	effective, reduced := substituteReducedMotion(s.stages, s.motion, s.cfg.Category)
	tl, err = BuildTimeline(effective, BuildOptions{
		Pattern:             s.cfg.Pattern,
		Params:              s.cfg.PatternParams,
		Duration:            s.cfg.Duration,
		ResolveDependencies: s.cfg.ResolveDependencies,
		Logger:              s.log,
	})
	return tl, reduced, err
}

// maxIterations returns the index of the last cycle, or -1 for infinite.
func (s *Sequence) maxIterations() int {
	if s.cfg.Loop || s.cfg.RepeatCount < 0 {
		return -1
	}
	return s.cfg.RepeatCount
}

// cycleDirection is the effective direction of a cycle.
func (s *Sequence) cycleDirection(cycle int) Direction {
	odd := cycle%2 == 1
	switch s.direction {
	case DirectionBackward:
		if s.cfg.Yoyo && odd {
			return DirectionForward
		}
		return DirectionBackward
	case DirectionAlternate:
		if odd {
			return DirectionBackward
		}
		return DirectionForward
	case DirectionAlternateReverse:
		if odd {
			return DirectionForward
		}
		return DirectionBackward
	default:
		if s.cfg.Yoyo && odd {
			return DirectionBackward
		}
		return DirectionForward
	}
}

func (s *Sequence) elapsedAt(now time.Duration) time.Duration {
	return scaleDuration(now-s.startWall, s.rate)
}

// anchor sets startWall so that elapsed animation time equals elapsed at now.
func (s *Sequence) anchor(now, elapsed time.Duration) {
	s.startWall = now - scaleDuration(elapsed, 1/s.rate)
}

// --- Frame loop ---

func (s *Sequence) schedule() {
	if s.framePending {
		return
	}
	s.frame = s.sched.RequestFrame(s.tick)
	s.framePending = true
}

func (s *Sequence) cancelFrame() {
	if !s.framePending {
		return
	}
	s.sched.CancelFrame(s.frame)
	s.framePending = false
}

// tick is the frame callback. It runs only while PLAYING and schedules at
// most one successor.
func (s *Sequence) tick(now time.Duration) {
	s.framePending = false
	if s.state != StatePlaying {
		return
	}

	var started time.Time
	if s.debug {
		started = time.Now()
	}

	s.inTick = true
	s.advance(s.elapsedAt(now))
	s.inTick = false

	if s.debug {
		s.logTick(time.Since(started))
	}

	if s.dirty {
		s.rebuild()
	}
	for len(s.deferred) > 0 {
		fn := s.deferred[0]
		s.deferred = s.deferred[1:]
		fn()
	}
	if s.state == StatePlaying {
		s.schedule()
	}
}

// advance projects elapsed animation time onto the timeline.
func (s *Sequence) advance(elapsed time.Duration) {
	total := s.timeline.TotalDuration
	gen := s.generation
	if total <= 0 {
		s.render(0, false)
		if !s.interrupted(gen) {
			s.finish()
		}
		return
	}

	maxIter := s.maxIterations()
	completed := int(elapsed / total)
	if maxIter != -1 && completed > maxIter {
		s.closeCycles(maxIter)
		if s.interrupted(gen) {
			return
		}
		s.render(cycleEnd(s.cycleDirection(maxIter), total), false)
		if !s.interrupted(gen) {
			s.finish()
		}
		return
	}

	s.closeCycles(completed)
	if s.interrupted(gen) {
		return
	}
	cycleTime := elapsed - time.Duration(completed)*total
	at := cycleTime
	if s.cycleDirection(completed) == DirectionBackward {
		at = total - cycleTime
	}
	s.render(at, false)
}

// interrupted reports whether a control call made from user code stopped,
// paused or restarted the sequence since gen was taken.
func (s *Sequence) interrupted(gen uint64) bool {
	return gen != s.generation || s.state != StatePlaying
}

// closeCycles finishes every cycle before target that has not been closed
// yet: its last frame is rendered and OnLoop fires for the next one.
func (s *Sequence) closeCycles(target int) {
	total := s.timeline.TotalDuration
	gen := s.generation
	for s.lastCycle < target {
		prev := s.cycleDirection(s.lastCycle)
		s.render(cycleEnd(prev, total), false)
		if s.interrupted(gen) {
			return
		}
		s.lastCycle++
		s.iteration = s.lastCycle
		s.emit(EventLoop, "")
		if prev == DirectionForward && s.cycleDirection(s.lastCycle) == DirectionForward {
			s.runtimes.reset()
		}
	}
	s.iteration = s.lastCycle
}

func cycleEnd(dir Direction, total time.Duration) time.Duration {
	if dir == DirectionBackward {
		return 0
	}
	return total
}

// render processes every stage at timeline position at. In silent mode
// (seeking) lifecycle hooks are not invoked and event stages are marked as
// fired without firing.
func (s *Sequence) render(at time.Duration, silent bool) {
	total := s.timeline.TotalDuration
	if total > 0 {
		s.progress = clamp01(float64(at) / float64(total))
	} else {
		s.progress = 1
	}

	gen := s.generation
	var current *StageRuntime
	for _, rt := range s.runtimes.order {
		if gen != s.generation {
			return
		}
		if s.step(rt, at, silent) && (current == nil || rt.StartTime >= current.StartTime) {
			current = rt
		}
	}
	if gen != s.generation {
		return
	}

	if current != nil && current.Stage.ID != s.currentStage {
		s.currentStage = current.Stage.ID
		s.emit(EventStageChange, current.Stage.ID)
	}
	s.emit(EventUpdate, "")
}

// step advances one stage. It reports whether the stage is active or just
// completed, which makes it a candidate for the current stage.
func (s *Sequence) step(rt *StageRuntime, at time.Duration, silent bool) bool {
	if at < rt.StartTime {
		if rt.State != StateIdle {
			s.rewind(rt)
		}
		return false
	}

	if at >= rt.EndTime {
		if rt.State == StateFinished {
			return false
		}
		if rt.State == StateIdle {
			s.startStage(rt, silent)
		}
		final := rt.finalProgress()
		if rt.TotalIterations > 0 {
			rt.CurrentIteration = rt.TotalIterations - 1
		}
		s.execute(rt, final, rt.easing(final), silent)
		rt.State = StateFinished
		s.completeStage(rt, silent)
		return true
	}

	switch {
	case rt.State == StateIdle:
		s.startStage(rt, silent)
	case rt.State == StateFinished && silent:
		// Seeking back into a finished stage reactivates it quietly.
		rt.reset()
		s.startStage(rt, true)
	}
	linear := rt.localProgress(at)
	s.execute(rt, linear, rt.easing(linear), silent)
	return true
}

func (s *Sequence) startStage(rt *StageRuntime, silent bool) {
	rt.State = StatePlaying
	if silent {
		return
	}
	if fn := rt.Stage.OnStart; fn != nil {
		s.guard(rt.Stage.ID, "OnStart", func() { fn(rt.Stage.ID) })
	}
	s.emit(EventStageStart, rt.Stage.ID)
}

func (s *Sequence) completeStage(rt *StageRuntime, silent bool) {
	if silent {
		return
	}
	if fn := rt.Stage.OnComplete; fn != nil {
		s.guard(rt.Stage.ID, "OnComplete", func() { fn(rt.Stage.ID) })
	}
	s.emit(EventStageComplete, rt.Stage.ID)
}

func (s *Sequence) finish() {
	s.cancelFrame()
	s.state = StateFinished
	s.hasPausedElapsed = false
	s.emit(EventComplete, "")
}

// --- Control surface ---

// Play starts, resumes after Pause, or continues from a seek position.
// Calling Play while playing is a no-op.
func (s *Sequence) Play() {
	if s.state == StatePlaying {
		s.log.Debug().Msg("play ignored, already playing")
		return
	}
	if len(s.timeline.Order) == 0 {
		s.rebuild()
	}
	if len(s.timeline.Order) == 0 && s.timeline.TotalDuration <= 0 {
		s.log.Warn().Msg("play ignored, timeline is empty")
		return
	}

	now := s.clock.Now()
	prev := s.state
	if s.hasPausedElapsed {
		s.anchor(now, s.pausedElapsed)
		s.hasPausedElapsed = false
	} else {
		s.generation++
		s.runtimes.reset()
		s.startWall = now
		s.lastCycle = 0
		s.iteration = 0
		s.progress = 0
		s.currentStage = ""
	}

	s.state = StatePlaying
	if prev != StatePaused {
		s.emit(EventStart, "")
	}
	s.schedule()
}

// Pause freezes elapsed time. Only a playing sequence can be paused.
func (s *Sequence) Pause() {
	if s.state != StatePlaying {
		s.log.Debug().Str("state", s.state.String()).Msg("pause ignored, not playing")
		return
	}
	s.pausedElapsed = s.elapsedAt(s.clock.Now())
	s.hasPausedElapsed = true
	s.cancelFrame()
	s.state = StatePaused
}

// Stop cancels playback immediately and resets every stage. OnCancel fires
// only if the sequence was playing.
func (s *Sequence) Stop() {
	wasPlaying := s.state == StatePlaying
	s.halt()
	if wasPlaying {
		s.emit(EventCancel, "")
	}
}

// Reset stops without firing OnCancel and returns started visual stages to
// their start values.
func (s *Sequence) Reset() {
	if s.runtimes != nil {
		for _, rt := range s.runtimes.order {
			if rt.State != StateIdle {
				s.rewind(rt)
			}
		}
	}
	s.halt()
}

func (s *Sequence) halt() {
	s.cancelFrame()
	s.generation++
	s.runtimes.reset()
	s.state = StateIdle
	s.progress = 0
	s.currentStage = ""
	s.pausedElapsed = 0
	s.hasPausedElapsed = false
	s.iteration = 0
	s.lastCycle = 0
}

// Restart resets and plays from the beginning.
func (s *Sequence) Restart() {
	s.Reset()
	s.Play()
}

// Reverse flips the playback direction while keeping the current timeline
// position, so a playing sequence turns around in place.
func (s *Sequence) Reverse() {
	switch s.direction {
	case DirectionForward:
		s.direction = DirectionBackward
	case DirectionBackward:
		s.direction = DirectionForward
	case DirectionAlternate:
		s.direction = DirectionAlternateReverse
	case DirectionAlternateReverse:
		s.direction = DirectionAlternate
	}

	total := s.timeline.TotalDuration
	if total <= 0 {
		return
	}
	switch {
	case s.state == StatePlaying:
		now := s.clock.Now()
		s.anchor(now, s.mirror(s.elapsedAt(now)))
	case s.hasPausedElapsed:
		s.pausedElapsed = s.mirror(s.pausedElapsed)
	}
}

// mirror maps elapsed time to the point of the same cycle that shows the
// same timeline position under the opposite direction.
func (s *Sequence) mirror(elapsed time.Duration) time.Duration {
	total := s.timeline.TotalDuration
	cycle := int(elapsed / total)
	if maxIter := s.maxIterations(); maxIter != -1 && cycle > maxIter {
		cycle = maxIter
	}
	cycleTime := elapsed - time.Duration(cycle)*total
	if cycleTime > total {
		cycleTime = total
	}
	return time.Duration(cycle)*total + (total - cycleTime)
}

// Seek moves to timeline position t (clamped to [0, duration]) within the
// current cycle. Every stage is recomputed for the new position: earlier
// stages end finished, later ones idle. Lifecycle callbacks do not fire;
// callback stages still receive their progress. Seeking a stopped sequence
// leaves it PAUSED at the position; Play continues from there.
func (s *Sequence) Seek(t time.Duration) {
	total := s.timeline.TotalDuration
	if total <= 0 {
		s.log.Warn().Msg("seek ignored, sequence duration is zero")
		return
	}
	if t < 0 {
		t = 0
	}
	if t > total {
		t = total
	}
	s.seekTo(t, float64(t)/float64(total))
}

// SeekProgress seeks to a fraction of the timeline, clamped to [0, 1].
func (s *Sequence) SeekProgress(p float64) {
	total := s.timeline.TotalDuration
	if total <= 0 {
		s.log.Warn().Float64("progress", p).Msg("seek ignored, sequence duration is zero")
		return
	}
	if math.IsNaN(p) {
		s.log.Warn().Msg("seek ignored, progress is NaN")
		return
	}
	p = clamp01(p)
	s.seekTo(time.Duration(p*float64(total)), p)
}

// SeekLabel seeks to a configured label, or to the start of the stage with
// that id. Reports false for unknown names.
func (s *Sequence) SeekLabel(name string) bool {
	if t, ok := s.cfg.Labels[name]; ok {
		s.Seek(t)
		return true
	}
	if tm, ok := s.timeline.Timing(name); ok {
		s.Seek(tm.StartTime)
		return true
	}
	s.log.Warn().Str("label", name).Msg("seek ignored, unknown label")
	return false
}

func (s *Sequence) seekTo(at time.Duration, progress float64) {
	if s.inTick {
		s.deferred = append(s.deferred, func() { s.seekTo(at, progress) })
		return
	}
	total := s.timeline.TotalDuration
	cycle := s.lastCycle
	cycleTime := at
	if s.cycleDirection(cycle) == DirectionBackward {
		cycleTime = total - at
	}
	elapsed := time.Duration(cycle)*total + cycleTime

	s.render(at, true)
	s.progress = progress

	if s.state == StatePlaying {
		s.anchor(s.clock.Now(), elapsed)
		return
	}
	s.pausedElapsed = elapsed
	s.hasPausedElapsed = true
	s.state = StatePaused
}

// SetPlaybackRate changes the time scale. Non-positive rates are ignored.
// A playing sequence keeps its position across the change.
func (s *Sequence) SetPlaybackRate(rate float64) {
	if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		s.log.Warn().Float64("rate", rate).Msg("playback rate must be positive and finite, ignoring")
		return
	}
	if s.state == StatePlaying {
		now := s.clock.Now()
		elapsed := s.elapsedAt(now)
		s.rate = rate
		s.anchor(now, elapsed)
		return
	}
	s.rate = rate
}

// AddStage appends a stage and rebuilds the timeline.
func (s *Sequence) AddStage(st Stage) error {
	if st.ID == "" {
		return ErrMissingStageID
	}
	if s.indexOf(st.ID) >= 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateStage, st.ID)
	}
	s.stages = append(s.stages, st.clone())
	s.rebuild()
	return nil
}

// RemoveStage removes a top-level stage by id and rebuilds the timeline.
func (s *Sequence) RemoveStage(id string) bool {
	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.stages = append(s.stages[:i], s.stages[i+1:]...)
	s.rebuild()
	return true
}

// UpdateStage edits a top-level stage in place and rebuilds the timeline.
// The stage id cannot be changed.
func (s *Sequence) UpdateStage(id string, fn func(*Stage)) bool {
	i := s.indexOf(id)
	if i < 0 || fn == nil {
		return false
	}
	st := s.stages[i].clone()
	fn(&st)
	st.ID = id
	s.stages[i] = st
	s.rebuild()
	return true
}

// SetDuration overrides the timeline length (0 restores the computed one).
func (s *Sequence) SetDuration(d time.Duration) {
	if d < 0 {
		d = 0
	}
	s.cfg.Duration = d
	s.rebuild()
}

// SetMotionPreference swaps the reduced-motion source and rebuilds.
func (s *Sequence) SetMotionPreference(p MotionPreference) {
	s.motion = p
	s.rebuild()
}

func (s *Sequence) indexOf(id string) int {
	for i := range s.stages {
		if s.stages[i].ID == id {
			return i
		}
	}
	return -1
}

// AddCallback registers fn for a lifecycle event.
func (s *Sequence) AddCallback(event EventType, fn func(LifecycleEvent)) CallbackHandle {
	if fn == nil || event >= eventTypeCount {
		return CallbackHandle{}
	}
	return s.callbacks.add(event, fn)
}

// RemoveCallback unregisters a callback returned by AddCallback.
func (s *Sequence) RemoveCallback(h CallbackHandle) bool {
	if h.reg != &s.callbacks {
		return false
	}
	return h.Remove()
}

// --- Queries ---

// ID returns the sequence id.
func (s *Sequence) ID() string { return s.id }

// Progress returns the timeline progress of the last processed frame or seek.
func (s *Sequence) Progress() float64 { return s.progress }

// PlaybackState returns the sequence state.
func (s *Sequence) PlaybackState() PlaybackState { return s.state }

// CurrentStageID returns the most relevant stage: the latest-starting stage
// that was active or completed on the last frame. With overlapping stages
// this is a best-effort answer.
func (s *Sequence) CurrentStageID() string { return s.currentStage }

// Duration returns the timeline length.
func (s *Sequence) Duration() time.Duration { return s.timeline.TotalDuration }

// Iteration returns the current cycle index.
func (s *Sequence) Iteration() int { return s.iteration }

// PlaybackRate returns the time scale.
func (s *Sequence) PlaybackRate() float64 { return s.rate }

// Direction returns the effective direction of the current cycle.
func (s *Sequence) Direction() Direction { return s.cycleDirection(s.iteration) }

// Timeline returns the current timeline build.
func (s *Sequence) Timeline() Timeline { return s.timeline }

// Stage returns a snapshot of one stage runtime.
func (s *Sequence) Stage(id string) (StageSnapshot, bool) {
	rt, ok := s.runtimes.get(id)
	if !ok {
		return StageSnapshot{}, false
	}
	return rt.snapshot(), true
}

// SequenceResult is a point-in-time view of a sequence.
type SequenceResult struct {
	ID             string
	Progress       float64
	PlaybackState  PlaybackState
	CurrentStageID string
	Duration       time.Duration
	Direction      Direction
	PlaybackRate   float64
	ReducedMotion  bool
	Iteration      int
	Stages         []StageSnapshot
}

// Result returns a snapshot of the sequence and all stage runtimes.
func (s *Sequence) Result() SequenceResult {
	return SequenceResult{
		ID:             s.id,
		Progress:       s.progress,
		PlaybackState:  s.state,
		CurrentStageID: s.currentStage,
		Duration:       s.timeline.TotalDuration,
		Direction:      s.Direction(),
		PlaybackRate:   s.rate,
		ReducedMotion:  s.reducedMotion,
		Iteration:      s.iteration,
		Stages:         s.runtimes.snapshots(),
	}
}

// --- Events ---

func (s *Sequence) emit(t EventType, stageID string) {
	ev := LifecycleEvent{
		Type:       t,
		SequenceID: s.id,
		StageID:    stageID,
		Progress:   s.progress,
		Iteration:  s.iteration,
	}

	if fn := s.configCallback(ev); fn != nil {
		s.guard(stageID, t.String(), fn)
	}
	for _, h := range s.callbacks.snapshot(t) {
		fn := h.fn
		s.guard(stageID, t.String(), func() { fn(ev) })
	}
	if s.store != nil {
		s.guard(stageID, "event store", func() { s.store.EmitEvent(ev) })
	}
}

func (s *Sequence) configCallback(ev LifecycleEvent) func() {
	c := &s.cfg
	switch ev.Type {
	case EventStart:
		if c.OnStart != nil {
			return c.OnStart
		}
	case EventUpdate:
		if c.OnUpdate != nil {
			return func() { c.OnUpdate(ev.Progress) }
		}
	case EventComplete:
		if c.OnComplete != nil {
			return c.OnComplete
		}
	case EventCancel:
		if c.OnCancel != nil {
			return c.OnCancel
		}
	case EventLoop:
		if c.OnLoop != nil {
			return func() { c.OnLoop(ev.Iteration) }
		}
	case EventStageChange:
		if c.OnStageChange != nil {
			return func() { c.OnStageChange(ev.StageID) }
		}
	}
	return nil
}

// guard runs user code, logging instead of propagating panics.
func (s *Sequence) guard(stageID, what string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			ev := s.log.Warn().Str("callback", what).Err(fmt.Errorf("%v", r))
			if stageID != "" {
				ev = ev.Str("stage", stageID)
			}
			ev.Msg("callback panicked")
		}
	}()
	fn()
}
