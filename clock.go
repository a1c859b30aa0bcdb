package cadence

import "time"

// Clock is a monotonic time source. Values are offsets from an arbitrary
// epoch and never decrease.
type Clock interface {
	Now() time.Duration
}

// FrameHandle identifies a pending frame request.
type FrameHandle uint64

// FrameFunc receives the frame timestamp on the clock's timeline.
type FrameFunc func(now time.Duration)

// FrameScheduler runs callbacks on the next display refresh.
type FrameScheduler interface {
	RequestFrame(fn FrameFunc) FrameHandle
	CancelFrame(h FrameHandle)
}

type pendingFrame struct {
	handle FrameHandle
	fn     FrameFunc
}

// ManualFrames is a Clock and FrameScheduler advanced explicitly by its
// owner. Scene steps one per Update; tests step it directly to get fully
// deterministic playback.
type ManualFrames struct {
	now     time.Duration
	next    FrameHandle
	pending []pendingFrame

	// running is the batch being executed by Step; cancelled marks entries
	// of it revoked by an earlier callback of the same batch.
	running   []pendingFrame
	cancelled map[FrameHandle]bool
}

// NewManualFrames creates a frame pump at time zero.
func NewManualFrames() *ManualFrames {
	return &ManualFrames{}
}

// Now implements Clock.
func (m *ManualFrames) Now() time.Duration { return m.now }

// RequestFrame implements FrameScheduler. The callback runs on the next Step.
func (m *ManualFrames) RequestFrame(fn FrameFunc) FrameHandle {
	m.next++
	m.pending = append(m.pending, pendingFrame{handle: m.next, fn: fn})
	return m.next
}

// CancelFrame implements FrameScheduler. Unknown handles are ignored.
func (m *ManualFrames) CancelFrame(h FrameHandle) {
	for i := range m.pending {
		if m.pending[i].handle == h {
			copy(m.pending[i:], m.pending[i+1:])
			m.pending[len(m.pending)-1] = pendingFrame{}
			m.pending = m.pending[:len(m.pending)-1]
			return
		}
	}
	for _, f := range m.running {
		if f.handle == h {
			if m.cancelled == nil {
				m.cancelled = make(map[FrameHandle]bool)
			}
			m.cancelled[h] = true
			return
		}
	}
}

// Pending returns the number of queued frame callbacks.
func (m *ManualFrames) Pending() int { return len(m.pending) }

// Step advances the clock by dt and runs the callbacks queued before the
// step. Callbacks requested while stepping run on the following step.
// Returns the number of callbacks run.
func (m *ManualFrames) Step(dt time.Duration) int {
	if dt > 0 {
		m.now += dt
	}
	m.running = m.pending
	m.pending = nil
	ran := 0
	for _, f := range m.running {
		if m.cancelled[f.handle] {
			continue
		}
		f.fn(m.now)
		ran++
	}
	m.running = nil
	clear(m.cancelled)
	return ran
}

// StepTo moves the clock to now (if later) and runs one frame.
func (m *ManualFrames) StepTo(now time.Duration) int {
	return m.Step(now - m.now)
}

// Advance steps repeatedly in increments of dt until total has elapsed.
// The last step is shortened so the clock lands exactly on the target.
func (m *ManualFrames) Advance(total, dt time.Duration) {
	if dt <= 0 {
		dt = total
	}
	for total > 0 {
		step := dt
		if step > total {
			step = total
		}
		m.Step(step)
		total -= step
	}
}
