package dist

import (
	"bytes"
	"sort"
	"sync"

	"github.com/lantern-player/lantern/abc"
)

// ContentStore caches decoded units by their content address, so a
// movie loading the same unit twice translates it once.
type ContentStore struct {
	mu    sync.RWMutex
	units map[Digest]*abc.File
}

// NewContentStore creates an empty store.
func NewContentStore() *ContentStore {
	return &ContentStore{units: make(map[Digest]*abc.File)}
}

// Put indexes a unit under an address. Zero digests are ignored.
func (cs *ContentStore) Put(d Digest, f *abc.File) {
	if d == (Digest{}) {
		return
	}
	cs.mu.Lock()
	cs.units[d] = f
	cs.mu.Unlock()
}

// Lookup returns the unit at an address, or nil.
func (cs *ContentStore) Lookup(d Digest) *abc.File {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.units[d]
}

// Has reports whether an address is present.
func (cs *ContentStore) Has(d Digest) bool {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	_, ok := cs.units[d]
	return ok
}

// Intern decodes encoded bytes through the cache: a known address
// returns the already decoded unit without re-parsing.
func (cs *ContentStore) Intern(data []byte) (*abc.File, Digest, error) {
	d := DigestOf(data)
	if f := cs.Lookup(d); f != nil {
		return f, d, nil
	}
	f, err := UnmarshalUnit(data)
	if err != nil {
		return nil, Digest{}, err
	}
	cs.Put(d, f)
	return f, d, nil
}

// Digests returns every stored address in stable sorted order.
func (cs *ContentStore) Digests() []Digest {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	out := make([]Digest, 0, len(cs.units))
	for d := range cs.units {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i][:], out[j][:]) < 0
	})
	return out
}

// Len returns the number of stored units.
func (cs *ContentStore) Len() int {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return len(cs.units)
}
