package avm2

import (
	"errors"
	"testing"

	"github.com/lantern-player/lantern/heap"
)

// recorder builds a native listener that appends a label to log.
func recorder(d *Domain, log *[]string, label string, during func(ev *Event)) heap.Value {
	return d.NewNativeFunction(label, func(act *Activation, this heap.Value, args []heap.Value) (heap.Value, error) {
		*log = append(*log, label)
		if during != nil {
			eo := act.domain.Resolve(args[0]).(*EventObject)
			during(eo.Ev)
		}
		return heap.Undefined, nil
	})
}

func TestPriorityOrderingAtOneTarget(t *testing.T) {
	d, act := newTestDomain()
	tv, target := d.NewDispatcher(heap.Null)

	var log []string
	target.Listeners.AddListener("ping", recorder(d, &log, "low", nil), false, 0)
	target.Listeners.AddListener("ping", recorder(d, &log, "high", nil), false, 5)
	target.Listeners.AddListener("ping", recorder(d, &log, "mid", nil), false, 3)

	if _, err := act.DispatchEvent(tv, NewEvent("ping", false, false)); err != nil {
		t.Fatal(err)
	}
	want := []string{"high", "mid", "low"}
	for i := range want {
		if i >= len(log) || log[i] != want[i] {
			t.Fatalf("order %v, want %v", log, want)
		}
	}
}

func TestDuplicateListenerSuppressed(t *testing.T) {
	d, act := newTestDomain()
	tv, target := d.NewDispatcher(heap.Null)

	var log []string
	fn := recorder(d, &log, "once", nil)
	target.Listeners.AddListener("ping", fn, false, 0)
	target.Listeners.AddListener("ping", fn, false, 9)
	target.Listeners.AddListener("ping", fn, true, 0) // capture differs, kept

	if _, err := act.DispatchEvent(tv, NewEvent("ping", false, false)); err != nil {
		t.Fatal(err)
	}
	// At-target fires both registrations, but the same (handler,
	// capture) pair only once.
	if len(log) != 2 {
		t.Fatalf("listener ran %d times, want 2", len(log))
	}
}

func TestSnapshotIgnoresMutationDuringDispatch(t *testing.T) {
	d, act := newTestDomain()
	tv, target := d.NewDispatcher(heap.Null)

	var log []string
	late := recorder(d, &log, "late", nil)
	first := d.NewNativeFunction("first", func(act *Activation, this heap.Value, args []heap.Value) (heap.Value, error) {
		log = append(log, "first")
		// Registered mid-dispatch: must not run in this pass.
		target.Listeners.AddListener("ping", late, false, 10)
		return heap.Undefined, nil
	})
	target.Listeners.AddListener("ping", first, false, 0)
	target.Listeners.AddListener("ping", recorder(d, &log, "second", nil), false, 0)

	if _, err := act.DispatchEvent(tv, NewEvent("ping", false, false)); err != nil {
		t.Fatal(err)
	}
	want := []string{"first", "second"}
	if len(log) != 2 || log[0] != want[0] || log[1] != want[1] {
		t.Fatalf("log %v, want %v", log, want)
	}

	// The next dispatch sees the added listener, at its higher priority.
	log = nil
	if _, err := act.DispatchEvent(tv, NewEvent("ping", false, false)); err != nil {
		t.Fatal(err)
	}
	if len(log) != 3 || log[0] != "late" {
		t.Fatalf("second pass log %v, want late first", log)
	}
}

func TestThreePhasePropagation(t *testing.T) {
	d, act := newTestDomain()
	rootVal, root := d.NewDispatcher(heap.Null)
	midVal, mid := d.NewDispatcher(rootVal)
	leafVal, leaf := d.NewDispatcher(midVal)

	var log []string
	root.Listeners.AddListener("ping", recorder(d, &log, "root-capture", nil), true, 0)
	root.Listeners.AddListener("ping", recorder(d, &log, "root-bubble", nil), false, 0)
	mid.Listeners.AddListener("ping", recorder(d, &log, "mid-capture", nil), true, 0)
	mid.Listeners.AddListener("ping", recorder(d, &log, "mid-bubble", nil), false, 0)
	leaf.Listeners.AddListener("ping", recorder(d, &log, "leaf-capture", nil), true, 0)
	leaf.Listeners.AddListener("ping", recorder(d, &log, "leaf-bubble", nil), false, 0)

	proceed, err := act.DispatchEvent(leafVal, NewEvent("ping", true, false))
	if err != nil {
		t.Fatal(err)
	}
	if !proceed {
		t.Error("uncancelled event reported cancelled")
	}
	want := []string{
		"root-capture", "mid-capture", // outermost in, target excluded
		"leaf-capture", "leaf-bubble", // at-target fires both kinds
		"mid-bubble", "root-bubble", // target's parent out
	}
	if len(log) != len(want) {
		t.Fatalf("log %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("log %v, want %v", log, want)
		}
	}
}

func TestStopPropagationFinishesCurrentTarget(t *testing.T) {
	d, act := newTestDomain()
	rootVal, root := d.NewDispatcher(heap.Null)
	midVal, mid := d.NewDispatcher(rootVal)
	leafVal, leaf := d.NewDispatcher(midVal)

	var log []string
	leaf.Listeners.AddListener("ping", recorder(d, &log, "A", nil), false, 10)
	leaf.Listeners.AddListener("ping", recorder(d, &log, "B", func(ev *Event) {
		ev.StopPropagation()
		ev.Cancel()
	}), false, 0)
	mid.Listeners.AddListener("ping", recorder(d, &log, "parent", nil), false, 0)
	root.Listeners.AddListener("ping", recorder(d, &log, "root", nil), false, 0)

	proceed, err := act.DispatchEvent(leafVal, NewEvent("ping", true, true))
	if err != nil {
		t.Fatal(err)
	}
	if proceed {
		t.Error("cancelled event reported proceed = true")
	}
	// A ran before B (priority 10 over 0); B stopped propagation so the
	// ancestors never fired.
	if len(log) != 2 || log[0] != "A" || log[1] != "B" {
		t.Fatalf("log %v, want [A B]", log)
	}
}

func TestStopImmediateAbortsSiblings(t *testing.T) {
	d, act := newTestDomain()
	tv, target := d.NewDispatcher(heap.Null)

	var log []string
	target.Listeners.AddListener("ping", recorder(d, &log, "first", func(ev *Event) {
		ev.StopImmediatePropagation()
	}), false, 5)
	target.Listeners.AddListener("ping", recorder(d, &log, "second", nil), false, 0)

	if _, err := act.DispatchEvent(tv, NewEvent("ping", false, false)); err != nil {
		t.Fatal(err)
	}
	if len(log) != 1 || log[0] != "first" {
		t.Fatalf("log %v, want [first]", log)
	}
}

func TestCancelRequiresCancelable(t *testing.T) {
	d, act := newTestDomain()
	tv, target := d.NewDispatcher(heap.Null)
	target.Listeners.AddListener("ping", d.NewNativeFunction("cancel", func(act *Activation, this heap.Value, args []heap.Value) (heap.Value, error) {
		act.domain.Resolve(args[0]).(*EventObject).Ev.Cancel()
		return heap.Undefined, nil
	}), false, 0)

	proceed, err := act.DispatchEvent(tv, NewEvent("ping", false, false))
	if err != nil {
		t.Fatal(err)
	}
	if !proceed {
		t.Error("cancel on a non-cancelable event took effect")
	}
}

func TestListenerErrorPropagatesAndAbortsPhases(t *testing.T) {
	d, act := newTestDomain()
	rootVal, root := d.NewDispatcher(heap.Null)
	leafVal, leaf := d.NewDispatcher(rootVal)

	boom := typeError(CodeNullAccess, "boom")
	var log []string
	leaf.Listeners.AddListener("ping", d.NewNativeFunction("boom", func(act *Activation, this heap.Value, args []heap.Value) (heap.Value, error) {
		return heap.Undefined, boom
	}), false, 0)
	root.Listeners.AddListener("ping", recorder(d, &log, "root", nil), false, 0)

	_, err := act.DispatchEvent(leafVal, NewEvent("ping", true, false))
	var e *Error
	if !errors.As(err, &e) || e != boom {
		t.Fatalf("got %v, want the listener's error", err)
	}
	if len(log) != 0 {
		t.Errorf("bubble phase ran after an error: %v", log)
	}

	// Bookkeeping stayed intact: a later dispatch still works.
	leaf.Listeners.RemoveListener("ping", heap.Undefined, false)
	if !leaf.Listeners.HasListeners("ping") {
		t.Fatal("listener table corrupted")
	}
}

func TestRemoveListener(t *testing.T) {
	d, act := newTestDomain()
	tv, target := d.NewDispatcher(heap.Null)

	var log []string
	fn := recorder(d, &log, "x", nil)
	target.Listeners.AddListener("ping", fn, false, 0)
	target.Listeners.RemoveListener("ping", fn, true) // wrong capture flag
	if !target.Listeners.HasListeners("ping") {
		t.Fatal("mismatched capture flag removed the listener")
	}
	target.Listeners.RemoveListener("ping", fn, false)
	if target.Listeners.HasListeners("ping") {
		t.Fatal("listener not removed")
	}
	if _, err := act.DispatchEvent(tv, NewEvent("ping", false, false)); err != nil {
		t.Fatal(err)
	}
	if len(log) != 0 {
		t.Fatalf("removed listener ran: %v", log)
	}
}

func TestEventObjectFields(t *testing.T) {
	d, act := newTestDomain()
	tv, target := d.NewDispatcher(heap.Null)

	var sawType, sawPhase heap.Value
	target.Listeners.AddListener("fullScreen", d.NewNativeFunction("inspect", func(act *Activation, this heap.Value, args []heap.Value) (heap.Value, error) {
		eo := act.domain.Resolve(args[0]).(*EventObject)
		var err error
		if sawType, err = eo.GetProperty(act, args[0], PublicMultiname("type")); err != nil {
			return heap.Undefined, err
		}
		sawPhase, err = eo.GetProperty(act, args[0], PublicMultiname("eventPhase"))
		return heap.Undefined, err
	}), false, 0)

	ev := NewEvent(EventTypeFullScreen, false, false)
	ev.Payload = FullScreenPayload{FullScreen: true}
	if _, err := act.DispatchEvent(tv, ev); err != nil {
		t.Fatal(err)
	}
	if d.GoString(sawType) != "fullScreen" {
		t.Errorf("type = %q", d.GoString(sawType))
	}
	if int(sawPhase.NumberValue()) != int(PhaseAtTarget) {
		t.Errorf("phase = %v, want at-target", sawPhase.NumberValue())
	}
}
