package avm2

import (
	"testing"

	"github.com/lantern-player/lantern/heap"
)

func TestDictionaryIdentityKeys(t *testing.T) {
	d, _ := newTestDomain()
	dv, dict := d.NewDictionary(false)

	k1, _ := d.NewPlainObject()
	k2, _ := d.NewPlainObject()
	dict.SetKey(k1, heap.FromInt(1))
	dict.SetKey(k2, heap.FromInt(2))

	if got := dict.GetKey(k1); got.NumberValue() != 1 {
		t.Errorf("k1 = %v, want 1", got.NumberValue())
	}
	if got := dict.GetKey(k2); got.NumberValue() != 2 {
		t.Errorf("k2 = %v, want 2", got.NumberValue())
	}
	// Distinct objects stay distinct keys even with identical contents.
	k3, _ := d.NewPlainObject()
	if got := dict.GetKey(k3); !got.IsUndefined() {
		t.Errorf("unset key read %v", got)
	}

	dict.SetKey(k1, heap.FromInt(10))
	if dict.Len() != 2 {
		t.Errorf("overwrite grew the dictionary to %d entries", dict.Len())
	}
	if !dict.DeleteKey(k1) {
		t.Error("delete of a present key reported false")
	}
	if dict.DeleteKey(k1) {
		t.Error("second delete reported true")
	}
	_ = dv
}

func TestDictionaryStrongKeysSurviveCollection(t *testing.T) {
	d, _ := newTestDomain()
	dv, dict := d.NewDictionary(false)
	rootDict := staticRoot{dv}
	d.Space.AddRoots(rootDict)
	defer d.Space.RemoveRoots(rootDict)

	key, _ := d.NewPlainObject()
	dict.SetKey(key, heap.FromInt(1))
	d.Space.Collect()

	if dict.Len() != 1 {
		t.Fatal("strongly keyed entry dropped by collection")
	}
	if got := dict.GetKey(key); got.NumberValue() != 1 {
		t.Errorf("entry = %v after collection", got.NumberValue())
	}
}

func TestDictionaryWeakKeysSweptWhenDead(t *testing.T) {
	d, _ := newTestDomain()
	dv, dict := d.NewDictionary(true)
	rootDict := staticRoot{dv}
	d.Space.AddRoots(rootDict)
	defer d.Space.RemoveRoots(rootDict)

	kept, _ := d.NewPlainObject()
	keptRoot := staticRoot{kept}
	d.Space.AddRoots(keptRoot)
	defer d.Space.RemoveRoots(keptRoot)

	doomed, _ := d.NewPlainObject()
	dict.SetKey(kept, heap.FromInt(1))
	dict.SetKey(doomed, heap.FromInt(2))

	d.Space.Collect()

	if dict.Len() != 1 {
		t.Fatalf("weak dictionary holds %d entries after collection, want 1", dict.Len())
	}
	if got := dict.GetKey(kept); got.NumberValue() != 1 {
		t.Errorf("live-keyed entry = %v", got.NumberValue())
	}
	if got := dict.GetKey(doomed); !got.IsUndefined() {
		t.Errorf("dead-keyed entry still readable: %v", got)
	}
}

// staticRoot pins a single value for the duration of a test.
type staticRoot struct{ v heap.Value }

func (r staticRoot) Roots(mark func(heap.Handle)) { heap.MarkValue(r.v, mark) }
