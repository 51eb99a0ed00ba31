package heap

import (
	"time"

	"github.com/lantern-player/lantern/wstr"
)

// ---------------------------------------------------------------------------
// ObjectSpace: per-content-unit object arena
// ---------------------------------------------------------------------------

// Traceable is implemented by every heap-allocated object. Trace must call
// mark for every object handle the receiver references, including handles
// buried in Values (use MarkValue).
type Traceable interface {
	Trace(mark func(Handle))
}

// RootSet contributes handles to the collector's root set. Live activation
// records and global tables register themselves as roots.
type RootSet interface {
	Roots(mark func(Handle))
}

// ObjectSpace owns every object allocated for one loaded content unit.
// There is no process-wide space; each loaded movie gets its own, together
// with its own interned-string table.
//
// Execution is single-threaded and run-to-completion, so the space performs
// no locking; the collector must only run at safe points between
// activations.
type ObjectSpace struct {
	objects []Traceable // index = handle - 1; nil = free slot
	free    []Handle

	strings *StringTable
	weak    *WeakRegistry
	roots   []RootSet

	allocsSinceGC int
	gcThreshold   int
}

// DefaultGCThreshold is the allocation count that marks a space as due for
// collection at the next safe point.
const DefaultGCThreshold = 4096

// NewObjectSpace creates an empty object space.
func NewObjectSpace() *ObjectSpace {
	return &ObjectSpace{
		strings:     NewStringTable(),
		weak:        NewWeakRegistry(),
		gcThreshold: DefaultGCThreshold,
	}
}

// Allocate adds obj to the space and returns its handle.
func (s *ObjectSpace) Allocate(obj Traceable) Handle {
	s.allocsSinceGC++
	if n := len(s.free); n > 0 {
		h := s.free[n-1]
		s.free = s.free[:n-1]
		s.objects[h-1] = obj
		return h
	}
	s.objects = append(s.objects, obj)
	return Handle(len(s.objects))
}

// Get returns the object for a handle, or nil for invalid or collected
// handles.
func (s *ObjectSpace) Get(h Handle) Traceable {
	if h == 0 || int(h) > len(s.objects) {
		return nil
	}
	return s.objects[h-1]
}

// Live returns the number of live objects.
func (s *ObjectSpace) Live() int {
	return len(s.objects) - len(s.free)
}

// AddRoots registers a root set with the collector.
func (s *ObjectSpace) AddRoots(r RootSet) {
	s.roots = append(s.roots, r)
}

// RemoveRoots unregisters a root set.
func (s *ObjectSpace) RemoveRoots(r RootSet) {
	for i, existing := range s.roots {
		if existing == r {
			s.roots = append(s.roots[:i], s.roots[i+1:]...)
			return
		}
	}
}

// Strings returns the space's interned-string table.
func (s *ObjectSpace) Strings() *StringTable { return s.strings }

// Weak returns the space's weak-reference registry.
func (s *ObjectSpace) Weak() *WeakRegistry { return s.weak }

// SetGCThreshold overrides the allocation count that makes NeedsCollect
// report true. Zero restores the default.
func (s *ObjectSpace) SetGCThreshold(n int) {
	if n <= 0 {
		n = DefaultGCThreshold
	}
	s.gcThreshold = n
}

// NeedsCollect reports whether enough allocation has happened since the
// last sweep to warrant collection at the next safe point.
func (s *ObjectSpace) NeedsCollect() bool {
	return s.allocsSinceGC >= s.gcThreshold
}

// ---------------------------------------------------------------------------
// Mark-sweep collection
// ---------------------------------------------------------------------------

// CollectStats holds statistics from a single collection.
type CollectStats struct {
	Marked   int
	Swept    int
	Duration time.Duration
}

// WeakSweeper is implemented by objects that hold non-traced (weak) handles
// and need to drop entries for dead objects after a sweep. Dictionary
// objects with weak keys implement this.
type WeakSweeper interface {
	SweepWeak(alive func(Handle) bool)
}

// Collect performs a stop-the-world mark-sweep over the space. Reference
// cycles unreachable from the root set are reclaimed; weak references to
// dead objects are cleared. Must only be called at a safe point: no
// activation may be mid-instruction.
func (s *ObjectSpace) Collect() CollectStats {
	start := time.Now()
	marked := make([]bool, len(s.objects))

	var work []Handle
	mark := func(h Handle) {
		if h == 0 || int(h) > len(marked) {
			return
		}
		if !marked[h-1] && s.objects[h-1] != nil {
			marked[h-1] = true
			work = append(work, h)
		}
	}

	for _, r := range s.roots {
		r.Roots(mark)
	}
	markedCount := 0
	for len(work) > 0 {
		h := work[len(work)-1]
		work = work[:len(work)-1]
		markedCount++
		s.objects[h-1].Trace(mark)
	}

	alive := func(h Handle) bool {
		return h != 0 && int(h) <= len(marked) && marked[h-1]
	}

	// Sweep: free unmarked slots, then fix up weak holders.
	swept := 0
	var sweepers []WeakSweeper
	for i, obj := range s.objects {
		if obj == nil {
			continue
		}
		if !marked[i] {
			s.objects[i] = nil
			s.free = append(s.free, Handle(i+1))
			swept++
		} else if ws, ok := obj.(WeakSweeper); ok {
			sweepers = append(sweepers, ws)
		}
	}
	for _, ws := range sweepers {
		ws.SweepWeak(alive)
	}
	s.weak.sweep(alive)

	s.allocsSinceGC = 0
	return CollectStats{
		Marked:   markedCount,
		Swept:    swept,
		Duration: time.Since(start),
	}
}

// ---------------------------------------------------------------------------
// StringTable: interned strings
// ---------------------------------------------------------------------------

// StringTable interns strings to 32-bit handles. Handle 0 is always the
// empty string. Interned strings live as long as the space; identity of
// equal strings is guaranteed within one table.
type StringTable struct {
	byKey map[string]StrHandle
	byID  []wstr.WStr
}

// NewStringTable creates a table containing only the empty string.
func NewStringTable() *StringTable {
	t := &StringTable{
		byKey: make(map[string]StrHandle),
		byID:  []wstr.WStr{wstr.Empty},
	}
	t.byKey[""] = 0
	return t
}

// Intern returns the handle for s, adding it if needed.
func (t *StringTable) Intern(s wstr.WStr) StrHandle {
	key := s.String()
	if h, ok := t.byKey[key]; ok {
		return h
	}
	h := StrHandle(len(t.byID))
	t.byKey[key] = h
	t.byID = append(t.byID, s)
	return h
}

// InternUTF8 interns a Go string.
func (t *StringTable) InternUTF8(s string) StrHandle {
	if h, ok := t.byKey[s]; ok {
		return h
	}
	return t.Intern(wstr.FromUTF8(s))
}

// Get returns the string for a handle, or the empty string for invalid
// handles.
func (t *StringTable) Get(h StrHandle) wstr.WStr {
	if int(h) >= len(t.byID) {
		return wstr.Empty
	}
	return t.byID[h]
}

// Len returns the number of interned strings.
func (t *StringTable) Len() int { return len(t.byID) }
