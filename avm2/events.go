package avm2

import "github.com/lantern-player/lantern/heap"

// ----------------------------------------------------------------------------
// Events
// ----------------------------------------------------------------------------

// EventPhase tells a listener where the event is in its propagation.
type EventPhase int

const (
	PhaseCapturing EventPhase = iota + 1
	PhaseAtTarget
	PhaseBubbling
)

type propagation int

const (
	propagationContinue propagation = iota
	propagationStop
	propagationStopImmediate
)

// EventPayload is the closed set of per-event data variants.
type EventPayload interface{ eventPayload() }

// EmptyPayload is used by plain notification events such as "resize".
type EmptyPayload struct{}

// FullScreenPayload accompanies "fullScreen" display-state events.
type FullScreenPayload struct {
	FullScreen bool
}

// MousePayload carries pointer coordinates in the target's local space.
type MousePayload struct {
	LocalX, LocalY float64
	ButtonDown     bool
}

func (EmptyPayload) eventPayload()      {}
func (FullScreenPayload) eventPayload() {}
func (MousePayload) eventPayload()      {}

// EventTypeResize and friends are the protocol-fixed system event names.
const (
	EventTypeResize     = "resize"
	EventTypeFullScreen = "fullScreen"
	EventTypeMouseDown  = "mouseDown"
	EventTypeMouseUp    = "mouseUp"
	EventTypeMouseMove  = "mouseMove"
)

// Event is constructed by the dispatching caller, mutated in place while
// propagation runs, and discarded once DispatchEvent returns.
type Event struct {
	Type       string
	Bubbles    bool
	Cancelable bool
	Payload    EventPayload

	Phase         EventPhase
	Target        heap.Value
	CurrentTarget heap.Value

	cancelled   bool
	propagation propagation
}

// NewEvent builds an event with an empty payload.
func NewEvent(eventType string, bubbles, cancelable bool) *Event {
	return &Event{Type: eventType, Bubbles: bubbles, Cancelable: cancelable, Payload: EmptyPayload{}}
}

// Cancel requests suppression of the default action. It is a no-op on
// events that were not constructed cancelable.
func (e *Event) Cancel() {
	if e.Cancelable {
		e.cancelled = true
	}
}

// Cancelled reports whether a listener cancelled the default action.
func (e *Event) Cancelled() bool { return e.cancelled }

// StopPropagation lets the current target's remaining listeners finish but
// skips every later target.
func (e *Event) StopPropagation() {
	if e.propagation < propagationStop {
		e.propagation = propagationStop
	}
}

// StopImmediatePropagation additionally aborts the current target's
// remaining listeners.
func (e *Event) StopImmediatePropagation() {
	e.propagation = propagationStopImmediate
}

// ----------------------------------------------------------------------------
// Listener registration
// ----------------------------------------------------------------------------

type listenerEntry struct {
	handler heap.Value
	capture bool
}

type priorityBucket struct {
	priority int
	entries  []listenerEntry
}

// DispatchList holds one dispatcher's listeners: event type name to
// priority buckets sorted descending, each bucket in registration order.
// A given (handler identity, capture flag) pair is stored at most once
// per event type, across all priorities.
type DispatchList struct {
	types map[string][]priorityBucket
}

// AddListener registers a handler. Re-registering the same handler with
// the same capture flag is ignored, even at a different priority.
func (l *DispatchList) AddListener(eventType string, handler heap.Value, capture bool, priority int) {
	if l.types == nil {
		l.types = make(map[string][]priorityBucket)
	}
	buckets := l.types[eventType]
	for _, b := range buckets {
		for _, e := range b.entries {
			if e.handler == handler && e.capture == capture {
				return
			}
		}
	}
	entry := listenerEntry{handler: handler, capture: capture}
	for i := range buckets {
		if buckets[i].priority == priority {
			buckets[i].entries = append(buckets[i].entries, entry)
			l.types[eventType] = buckets
			return
		}
	}
	// Insert a new bucket keeping descending priority order.
	at := len(buckets)
	for i, b := range buckets {
		if priority > b.priority {
			at = i
			break
		}
	}
	buckets = append(buckets, priorityBucket{})
	copy(buckets[at+1:], buckets[at:])
	buckets[at] = priorityBucket{priority: priority, entries: []listenerEntry{entry}}
	l.types[eventType] = buckets
}

// RemoveListener drops a (handler, capture) registration if present.
func (l *DispatchList) RemoveListener(eventType string, handler heap.Value, capture bool) {
	buckets := l.types[eventType]
	for i := range buckets {
		entries := buckets[i].entries
		for j, e := range entries {
			if e.handler == handler && e.capture == capture {
				buckets[i].entries = append(entries[:j], entries[j+1:]...)
				if len(buckets[i].entries) == 0 {
					buckets = append(buckets[:i], buckets[i+1:]...)
				}
				l.types[eventType] = buckets
				return
			}
		}
	}
}

// HasListeners reports whether any listener is registered for the type.
func (l *DispatchList) HasListeners(eventType string) bool {
	return len(l.types[eventType]) > 0
}

// snapshot copies the handlers that should run for one phase at one
// target, so listener mutations during dispatch cannot affect the
// in-flight pass.
func (l *DispatchList) snapshot(eventType string, phase EventPhase) []listenerEntry {
	var out []listenerEntry
	for _, b := range l.types[eventType] {
		for _, e := range b.entries {
			switch phase {
			case PhaseCapturing:
				if !e.capture {
					continue
				}
			case PhaseBubbling:
				if e.capture {
					continue
				}
			}
			out = append(out, e)
		}
	}
	return out
}

func (l *DispatchList) trace(mark func(heap.Handle)) {
	for _, buckets := range l.types {
		for _, b := range buckets {
			for _, e := range b.entries {
				heap.MarkValue(e.handler, mark)
			}
		}
	}
}

// ----------------------------------------------------------------------------
// Dispatchers
// ----------------------------------------------------------------------------

// DispatcherObject is a script object that can receive events and sit in
// a propagation tree. The parent link defines the ancestor chain used by
// the capturing and bubbling phases.
type DispatcherObject struct {
	ScriptObject
	Listeners DispatchList
	parent    heap.Value
}

// NewDispatcher allocates a dispatcher whose ancestor chain starts at
// parent. Pass heap.Null for a root dispatcher.
func (d *Domain) NewDispatcher(parent heap.Value) (heap.Value, *DispatcherObject) {
	o := &DispatcherObject{
		ScriptObject: *newScriptObject(d.ObjectClass, d.ObjectClass.proto),
		parent:       parent,
	}
	return d.Alloc(o), o
}

// SetParent reseats the dispatcher in the propagation tree.
func (o *DispatcherObject) SetParent(parent heap.Value) { o.parent = parent }

func (o *DispatcherObject) Trace(mark func(heap.Handle)) {
	o.ScriptObject.Trace(mark)
	o.Listeners.trace(mark)
	heap.MarkValue(o.parent, mark)
}

type callable interface {
	Call(act *Activation, this heap.Value, args []heap.Value) (heap.Value, error)
}

// EventObject is the script-facing view handed to listeners. Its fixed
// fields read through to the underlying event.
type EventObject struct {
	ScriptObject
	Ev *Event
}

// NewEventObject wraps an event for listener invocation.
func (d *Domain) NewEventObject(ev *Event) (heap.Value, *EventObject) {
	o := &EventObject{
		ScriptObject: *newScriptObject(d.ObjectClass, d.ObjectClass.proto),
		Ev:           ev,
	}
	return d.Alloc(o), o
}

func (o *EventObject) GetProperty(act *Activation, recv heap.Value, m Multiname) (heap.Value, error) {
	if m.HasName {
		switch m.Name {
		case "type":
			return act.domain.Str(o.Ev.Type), nil
		case "bubbles":
			return heap.FromBool(o.Ev.Bubbles), nil
		case "cancelable":
			return heap.FromBool(o.Ev.Cancelable), nil
		case "eventPhase":
			return heap.FromInt(int32(o.Ev.Phase)), nil
		case "target":
			return o.Ev.Target, nil
		case "currentTarget":
			return o.Ev.CurrentTarget, nil
		}
	}
	return o.ScriptObject.GetProperty(act, recv, m)
}

func (o *EventObject) Trace(mark func(heap.Handle)) {
	o.ScriptObject.Trace(mark)
	heap.MarkValue(o.Ev.Target, mark)
	heap.MarkValue(o.Ev.CurrentTarget, mark)
}

// ----------------------------------------------------------------------------
// Dispatch state machine
// ----------------------------------------------------------------------------

// DispatchEvent runs the three-phase propagation over target's ancestor
// chain. It returns whether the default action should proceed, which is
// true unless some listener cancelled a cancelable event. A listener
// error aborts the remaining phases and propagates to the caller.
func (act *Activation) DispatchEvent(target heap.Value, ev *Event) (bool, error) {
	ev.Target = target
	ev.cancelled = false
	ev.propagation = propagationContinue

	targetObj, ok := act.domain.Resolve(target).(*DispatcherObject)
	if !ok {
		return !ev.cancelled, nil
	}

	evVal, _ := act.domain.NewEventObject(ev)

	// Ancestors ordered target's parent first, root last.
	var ancestors []heap.Value
	for p := targetObj.parent; p.IsObject(); {
		ancestors = append(ancestors, p)
		next, ok := act.domain.Resolve(p).(*DispatcherObject)
		if !ok {
			break
		}
		p = next.parent
	}

	ev.Phase = PhaseCapturing
	for i := len(ancestors) - 1; i >= 0; i-- {
		if ev.propagation != propagationContinue {
			break
		}
		if err := act.dispatchAt(ev, evVal, ancestors[i]); err != nil {
			return !ev.cancelled, err
		}
	}

	if ev.propagation == propagationContinue {
		ev.Phase = PhaseAtTarget
		if err := act.dispatchAt(ev, evVal, target); err != nil {
			return !ev.cancelled, err
		}
	}

	if ev.Bubbles {
		ev.Phase = PhaseBubbling
		for _, anc := range ancestors {
			if ev.propagation != propagationContinue {
				break
			}
			if err := act.dispatchAt(ev, evVal, anc); err != nil {
				return !ev.cancelled, err
			}
		}
	}
	return !ev.cancelled, nil
}

// dispatchAt invokes one target's listeners for the current phase. The
// handler set is snapshotted before any listener runs.
func (act *Activation) dispatchAt(ev *Event, evVal heap.Value, target heap.Value) error {
	disp, ok := act.domain.Resolve(target).(*DispatcherObject)
	if !ok {
		return nil
	}
	entries := disp.Listeners.snapshot(ev.Type, ev.Phase)
	ev.CurrentTarget = target
	for _, e := range entries {
		fn, ok := act.domain.Resolve(e.handler).(callable)
		if !ok {
			continue
		}
		if _, err := fn.Call(act, heap.Null, []heap.Value{evVal}); err != nil {
			return err
		}
		if ev.propagation == propagationStopImmediate {
			break
		}
	}
	return nil
}
