// Package abc models the parsed form of an AVM2 bytecode unit as it is
// handed to the interpreter: a constant pool, method records, and class
// definitions. Parsing the container format down to these structures is
// the loader's job; this package only validates references into the pool.
//
// Pool indices follow the source format's convention: index 0 is reserved
// (it means "any"/absent depending on context) and real entries start at 1.
// A reference to a missing entry is a PoolError, which is fatal to the
// whole unit and never becomes a catchable script error.
package abc

import "fmt"

// NamespaceKind tags the flavor of a namespace constant.
type NamespaceKind uint8

const (
	NsNamespace NamespaceKind = iota
	NsPackage
	NsPackageInternal
	NsProtected
	NsExplicit
	NsStaticProtected
	NsPrivate
)

// Namespace is a pooled namespace constant.
type Namespace struct {
	Kind NamespaceKind
	Name uint32 // string pool index
}

// MultinameKind tags how a pooled name is resolved.
type MultinameKind uint8

const (
	// MnQName is a fully qualified (namespace, name) pair.
	MnQName MultinameKind = iota
	// MnMultiname carries a namespace set and a name.
	MnMultiname
	// MnMultinameLate carries a namespace set; the name is popped from
	// the operand stack at resolution time.
	MnMultinameLate
	// MnRTQName pops the namespace at resolution time.
	MnRTQName
	// MnTypeName parameterizes a base name with type arguments
	// (Vector.<T>).
	MnTypeName
)

// Multiname is a pooled name constant.
type Multiname struct {
	Kind   MultinameKind
	Ns     uint32   // namespace pool index (MnQName)
	NsSet  uint32   // namespace-set pool index (MnMultiname*)
	Name   uint32   // string pool index; 0 = any name
	Base   uint32   // multiname pool index of base type (MnTypeName)
	Params []uint32 // multiname pool indices of type parameters
}

// MethodFlags is the per-method bitset controlling implicit bindings.
type MethodFlags uint16

const (
	MethodNeedsArguments MethodFlags = 0x01
	MethodNeedsRest      MethodFlags = 0x04
	MethodSetsDXNS       MethodFlags = 0x40
)

// Method is the metadata and body for one function.
type Method struct {
	Name          uint32 // string pool index; 0 = anonymous
	ParamNames    []uint32
	ParamTypes    []uint32 // multiname pool indices; 0 = any
	RegisterCount uint32   // locals including receiver and params
	Flags         MethodFlags
	Body          []byte // verified instruction stream; nil = native
}

// TraitKind tags a class member declaration.
type TraitKind uint8

const (
	TraitSlot TraitKind = iota
	TraitConst
	TraitMethod
	TraitGetter
	TraitSetter
	TraitClass
)

// Trait declares one named class member.
type Trait struct {
	Kind   TraitKind
	Name   uint32 // multiname pool index, must resolve to a QName
	SlotID uint32 // 0 = auto-assign
	Method uint32 // method index for method/getter/setter traits
	Value  Constant
}

// ConstantKind tags a default-value constant.
type ConstantKind uint8

const (
	ConstUndefined ConstantKind = iota
	ConstNull
	ConstTrue
	ConstFalse
	ConstInt
	ConstUint
	ConstDouble
	ConstString
)

// Constant is a pooled default value for a slot or parameter.
type Constant struct {
	Kind ConstantKind
	Int  int32
	Uint uint32
	Num  float64
	Str  uint32 // string pool index
}

// ClassAttributes is the class attribute bitset.
type ClassAttributes uint8

const (
	ClassSealed    ClassAttributes = 0x01
	ClassFinal     ClassAttributes = 0x02
	ClassInterface ClassAttributes = 0x04
	ClassGeneric   ClassAttributes = 0x08
)

// Class is the parsed definition of one class.
type Class struct {
	Name           uint32 // multiname pool index (QName)
	SuperName      uint32 // multiname pool index; 0 = none
	Attributes     ClassAttributes
	Interfaces     []uint32 // multiname pool indices
	InstanceInit   uint32   // method index
	ClassInit      uint32   // method index
	InstanceTraits []Trait
	ClassTraits    []Trait
}

// File is everything the loader hands the interpreter for one unit.
type File struct {
	Ints          []int32
	Uints         []uint32
	Doubles       []float64
	Strings       []string
	Namespaces    []Namespace
	NamespaceSets [][]uint32 // entries are namespace pool indices
	Multinames    []Multiname
	Methods       []Method
	Classes       []Class
	// ScriptInit is the method index of the unit's entry script, or 0.
	ScriptInit uint32
}

// PoolError reports a reference to a missing or reserved pool entry. It
// indicates a corrupt or unverified unit; loading must abort and the error
// is not catchable by script code.
type PoolError struct {
	Pool  string
	Index uint32
}

func (e *PoolError) Error() string {
	return fmt.Sprintf("abc: unknown %s constant %d", e.Pool, e.Index)
}
