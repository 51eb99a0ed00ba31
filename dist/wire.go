// Package dist is the wire format for bytecode units: canonical CBOR
// records plus a content digest used for cache addressing. Two hosts
// encoding the same unit always produce identical bytes, so the digest
// is stable across processes.
package dist

import (
	"crypto/sha256"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/lantern-player/lantern/abc"
)

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("dist: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Digest is the sha256 content address of an encoded unit.
type Digest [32]byte

func (d Digest) String() string { return fmt.Sprintf("%x", d[:8]) }

// Wire records mirror the pool structures with compact integer keys.
// The abc package stays free of serialization concerns; conversion
// happens here.

type wireNamespace struct {
	Kind uint8  `cbor:"1,keyasint"`
	Name uint32 `cbor:"2,keyasint,omitempty"`
}

type wireMultiname struct {
	Kind   uint8    `cbor:"1,keyasint"`
	Ns     uint32   `cbor:"2,keyasint,omitempty"`
	NsSet  uint32   `cbor:"3,keyasint,omitempty"`
	Name   uint32   `cbor:"4,keyasint,omitempty"`
	Base   uint32   `cbor:"5,keyasint,omitempty"`
	Params []uint32 `cbor:"6,keyasint,omitempty"`
}

type wireMethod struct {
	Name          uint32   `cbor:"1,keyasint,omitempty"`
	ParamNames    []uint32 `cbor:"2,keyasint,omitempty"`
	ParamTypes    []uint32 `cbor:"3,keyasint,omitempty"`
	RegisterCount uint32   `cbor:"4,keyasint,omitempty"`
	Flags         uint16   `cbor:"5,keyasint,omitempty"`
	Body          []byte   `cbor:"6,keyasint,omitempty"`
}

type wireTrait struct {
	Kind   uint8        `cbor:"1,keyasint"`
	Name   uint32       `cbor:"2,keyasint"`
	SlotID uint32       `cbor:"3,keyasint,omitempty"`
	Method uint32       `cbor:"4,keyasint,omitempty"`
	Value  wireConstant `cbor:"5,keyasint,omitempty"`
}

type wireConstant struct {
	Kind uint8   `cbor:"1,keyasint,omitempty"`
	Int  int32   `cbor:"2,keyasint,omitempty"`
	Uint uint32  `cbor:"3,keyasint,omitempty"`
	Num  float64 `cbor:"4,keyasint,omitempty"`
	Str  uint32  `cbor:"5,keyasint,omitempty"`
}

type wireClass struct {
	Name           uint32      `cbor:"1,keyasint"`
	SuperName      uint32      `cbor:"2,keyasint,omitempty"`
	Attributes     uint8       `cbor:"3,keyasint,omitempty"`
	Interfaces     []uint32    `cbor:"4,keyasint,omitempty"`
	InstanceInit   uint32      `cbor:"5,keyasint,omitempty"`
	ClassInit      uint32      `cbor:"6,keyasint,omitempty"`
	InstanceTraits []wireTrait `cbor:"7,keyasint,omitempty"`
	ClassTraits    []wireTrait `cbor:"8,keyasint,omitempty"`
}

type wireUnit struct {
	Ints          []int32         `cbor:"1,keyasint,omitempty"`
	Uints         []uint32        `cbor:"2,keyasint,omitempty"`
	Doubles       []float64       `cbor:"3,keyasint,omitempty"`
	Strings       []string        `cbor:"4,keyasint,omitempty"`
	Namespaces    []wireNamespace `cbor:"5,keyasint,omitempty"`
	NamespaceSets [][]uint32      `cbor:"6,keyasint,omitempty"`
	Multinames    []wireMultiname `cbor:"7,keyasint,omitempty"`
	Methods       []wireMethod    `cbor:"8,keyasint,omitempty"`
	Classes       []wireClass     `cbor:"9,keyasint,omitempty"`
	ScriptInit    uint32          `cbor:"10,keyasint,omitempty"`
}

func toWire(f *abc.File) *wireUnit {
	u := &wireUnit{
		Ints:          f.Ints,
		Uints:         f.Uints,
		Doubles:       f.Doubles,
		Strings:       f.Strings,
		NamespaceSets: f.NamespaceSets,
		ScriptInit:    f.ScriptInit,
	}
	for _, ns := range f.Namespaces {
		u.Namespaces = append(u.Namespaces, wireNamespace{Kind: uint8(ns.Kind), Name: ns.Name})
	}
	for _, m := range f.Multinames {
		u.Multinames = append(u.Multinames, wireMultiname{
			Kind: uint8(m.Kind), Ns: m.Ns, NsSet: m.NsSet,
			Name: m.Name, Base: m.Base, Params: m.Params,
		})
	}
	for _, m := range f.Methods {
		u.Methods = append(u.Methods, wireMethod{
			Name: m.Name, ParamNames: m.ParamNames, ParamTypes: m.ParamTypes,
			RegisterCount: m.RegisterCount, Flags: uint16(m.Flags), Body: m.Body,
		})
	}
	for _, c := range f.Classes {
		u.Classes = append(u.Classes, wireClass{
			Name: c.Name, SuperName: c.SuperName, Attributes: uint8(c.Attributes),
			Interfaces: c.Interfaces, InstanceInit: c.InstanceInit, ClassInit: c.ClassInit,
			InstanceTraits: traitsToWire(c.InstanceTraits),
			ClassTraits:    traitsToWire(c.ClassTraits),
		})
	}
	return u
}

func traitsToWire(ts []abc.Trait) []wireTrait {
	var out []wireTrait
	for _, t := range ts {
		out = append(out, wireTrait{
			Kind: uint8(t.Kind), Name: t.Name, SlotID: t.SlotID, Method: t.Method,
			Value: wireConstant{
				Kind: uint8(t.Value.Kind), Int: t.Value.Int, Uint: t.Value.Uint,
				Num: t.Value.Num, Str: t.Value.Str,
			},
		})
	}
	return out
}

func fromWire(u *wireUnit) *abc.File {
	f := &abc.File{
		Ints:          u.Ints,
		Uints:         u.Uints,
		Doubles:       u.Doubles,
		Strings:       u.Strings,
		NamespaceSets: u.NamespaceSets,
		ScriptInit:    u.ScriptInit,
	}
	for _, ns := range u.Namespaces {
		f.Namespaces = append(f.Namespaces, abc.Namespace{Kind: abc.NamespaceKind(ns.Kind), Name: ns.Name})
	}
	for _, m := range u.Multinames {
		f.Multinames = append(f.Multinames, abc.Multiname{
			Kind: abc.MultinameKind(m.Kind), Ns: m.Ns, NsSet: m.NsSet,
			Name: m.Name, Base: m.Base, Params: m.Params,
		})
	}
	for _, m := range u.Methods {
		f.Methods = append(f.Methods, abc.Method{
			Name: m.Name, ParamNames: m.ParamNames, ParamTypes: m.ParamTypes,
			RegisterCount: m.RegisterCount, Flags: abc.MethodFlags(m.Flags), Body: m.Body,
		})
	}
	for _, c := range u.Classes {
		f.Classes = append(f.Classes, abc.Class{
			Name: c.Name, SuperName: c.SuperName, Attributes: abc.ClassAttributes(c.Attributes),
			Interfaces: c.Interfaces, InstanceInit: c.InstanceInit, ClassInit: c.ClassInit,
			InstanceTraits: traitsFromWire(c.InstanceTraits),
			ClassTraits:    traitsFromWire(c.ClassTraits),
		})
	}
	return f
}

func traitsFromWire(ts []wireTrait) []abc.Trait {
	var out []abc.Trait
	for _, t := range ts {
		out = append(out, abc.Trait{
			Kind: abc.TraitKind(t.Kind), Name: t.Name, SlotID: t.SlotID, Method: t.Method,
			Value: abc.Constant{
				Kind: abc.ConstantKind(t.Value.Kind), Int: t.Value.Int, Uint: t.Value.Uint,
				Num: t.Value.Num, Str: t.Value.Str,
			},
		})
	}
	return out
}

// MarshalUnit serializes a unit to canonical CBOR bytes.
func MarshalUnit(f *abc.File) ([]byte, error) {
	return cborEncMode.Marshal(toWire(f))
}

// UnmarshalUnit deserializes a unit from CBOR bytes.
func UnmarshalUnit(data []byte) (*abc.File, error) {
	var u wireUnit
	if err := cbor.Unmarshal(data, &u); err != nil {
		return nil, fmt.Errorf("dist: unmarshal unit: %w", err)
	}
	return fromWire(&u), nil
}

// DigestOf computes the content address of encoded bytes.
func DigestOf(data []byte) Digest {
	return Digest(sha256.Sum256(data))
}

// UnitDigest encodes a unit and returns both the bytes and their
// address.
func UnitDigest(f *abc.File) ([]byte, Digest, error) {
	data, err := MarshalUnit(f)
	if err != nil {
		return nil, Digest{}, err
	}
	return data, DigestOf(data), nil
}
