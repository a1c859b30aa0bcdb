package cadence

// EventType identifies a sequence lifecycle event.
type EventType uint8

const (
	EventStart         EventType = iota // sequence left IDLE/FINISHED and began playing
	EventUpdate                         // progress changed during a tick or seek
	EventComplete                       // iteration budget exhausted
	EventCancel                         // Stop while playing
	EventLoop                           // a cycle finished and another begins
	EventStageChange                    // the most relevant stage changed
	EventStageStart                     // a stage entered its active window
	EventStageComplete                  // a stage processed its final frame
	eventTypeCount
)

func (e EventType) String() string {
	switch e {
	case EventStart:
		return "start"
	case EventUpdate:
		return "update"
	case EventComplete:
		return "complete"
	case EventCancel:
		return "cancel"
	case EventLoop:
		return "loop"
	case EventStageChange:
		return "stage-change"
	case EventStageStart:
		return "stage-start"
	case EventStageComplete:
		return "stage-complete"
	default:
		return "unknown"
	}
}

// LifecycleEvent is delivered to registered callbacks and to the EventStore.
type LifecycleEvent struct {
	Type       EventType
	SequenceID string
	// StageID is set for stage events and EventStageChange (the new stage).
	StageID   string
	Progress  float64
	Iteration int
}

// EventStore is the optional bridge for lifecycle events. When set, every
// event delivered to callbacks is also emitted to the store.
type EventStore interface {
	EmitEvent(event LifecycleEvent)
}

type lifecycleHandler struct {
	id uint32
	fn func(LifecycleEvent)
}

type callbackRegistry struct {
	handlers [eventTypeCount][]lifecycleHandler
	nextID   uint32
}

// CallbackHandle allows removing a registered lifecycle callback.
type CallbackHandle struct {
	id    uint32
	reg   *callbackRegistry
	event EventType
}

// Remove unregisters this callback so it no longer fires. Reports whether a
// callback was removed.
func (h CallbackHandle) Remove() bool {
	if h.reg == nil || h.event >= eventTypeCount {
		return false
	}
	list := h.reg.handlers[h.event]
	for i := range list {
		if list[i].id == h.id {
			copy(list[i:], list[i+1:])
			list[len(list)-1] = lifecycleHandler{}
			h.reg.handlers[h.event] = list[:len(list)-1]
			return true
		}
	}
	return false
}

func (r *callbackRegistry) add(event EventType, fn func(LifecycleEvent)) CallbackHandle {
	r.nextID++
	r.handlers[event] = append(r.handlers[event], lifecycleHandler{id: r.nextID, fn: fn})
	return CallbackHandle{id: r.nextID, reg: r, event: event}
}

// snapshot copies the handler list so callbacks may add or remove handlers
// while being dispatched.
func (r *callbackRegistry) snapshot(event EventType) []lifecycleHandler {
	list := r.handlers[event]
	if len(list) == 0 {
		return nil
	}
	return append([]lifecycleHandler(nil), list...)
}
