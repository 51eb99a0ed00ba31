package avm2

import (
	"github.com/lantern-player/lantern/abc"
	"github.com/lantern-player/lantern/heap"
)

func newTestDomain() (*Domain, *Activation) {
	d := NewDomain(heap.NewObjectSpace())
	return d, d.NewActivation()
}

// testUnit builds a translation unit with the usual public-namespace
// plumbing: namespace 1 is public, namespace set 1 holds it, and every
// string passed in becomes both a string pool entry and a public
// multiname at the same index.
func testUnit(names ...string) *abc.TranslationUnit {
	f := &abc.File{
		Strings:       names,
		Namespaces:    []abc.Namespace{{Kind: abc.NsPackage, Name: 0}},
		NamespaceSets: [][]uint32{{1}},
	}
	for i := range names {
		f.Multinames = append(f.Multinames, abc.Multiname{
			Kind:  abc.MnMultiname,
			NsSet: 1,
			Name:  uint32(i + 1),
		})
	}
	return abc.NewTranslationUnit(f)
}

// Bytecode assembly helpers. Operands are emitted in the variable
// length encoding the reader expects.

func bcU30(v uint32) []byte {
	var out []byte
	for {
		b := byte(v & 0x7F)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		out = append(out, b)
		if v == 0 {
			return out
		}
	}
}

func bcS24(v int32) []byte {
	return []byte{byte(v), byte(v >> 8), byte(v >> 16)}
}

func bcOp(op byte, operands ...[]byte) []byte {
	out := []byte{op}
	for _, o := range operands {
		out = append(out, o...)
	}
	return out
}

func bcJoin(chunks ...[]byte) []byte {
	var out []byte
	for _, c := range chunks {
		out = append(out, c...)
	}
	return out
}

// runBody executes a hand-assembled method body against a unit.
func runBody(act *Activation, tu *abc.TranslationUnit, regs int, code []byte) (heap.Value, error) {
	m := &Method{Name: "test", Body: code, Unit: tu, RegisterCount: regs}
	return act.callMethod(m, act.domain.Globals(), nil)
}
