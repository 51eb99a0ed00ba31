package abc

// TranslationUnit wraps a File with lazily cached lookups. Every verified
// unit loaded into a player gets one; the interpreter resolves all pool
// references through it so index validation happens in exactly one place.
type TranslationUnit struct {
	file *File

	// Interned strings are cached by pool index so repeated getlex and
	// property lookups on the same name do not re-intern.
	strings []string
	haveStr []bool
}

// NewTranslationUnit wraps a parsed file.
func NewTranslationUnit(f *File) *TranslationUnit {
	return &TranslationUnit{
		file:    f,
		strings: make([]string, len(f.Strings)+1),
		haveStr: make([]bool, len(f.Strings)+1),
	}
}

// File returns the underlying parsed unit.
func (tu *TranslationUnit) File() *File { return tu.file }

// Int resolves an integer pool reference.
func (tu *TranslationUnit) Int(i uint32) (int32, error) {
	if i == 0 || i > uint32(len(tu.file.Ints)) {
		return 0, &PoolError{Pool: "int", Index: i}
	}
	return tu.file.Ints[i-1], nil
}

// Uint resolves an unsigned integer pool reference.
func (tu *TranslationUnit) Uint(i uint32) (uint32, error) {
	if i == 0 || i > uint32(len(tu.file.Uints)) {
		return 0, &PoolError{Pool: "uint", Index: i}
	}
	return tu.file.Uints[i-1], nil
}

// Double resolves a double pool reference.
func (tu *TranslationUnit) Double(i uint32) (float64, error) {
	if i == 0 || i > uint32(len(tu.file.Doubles)) {
		return 0, &PoolError{Pool: "double", Index: i}
	}
	return tu.file.Doubles[i-1], nil
}

// String resolves a string pool reference. Index 0 resolves to the empty
// string, matching the pool's reserved-entry convention for names.
func (tu *TranslationUnit) String(i uint32) (string, error) {
	if i == 0 {
		return "", nil
	}
	if i > uint32(len(tu.file.Strings)) {
		return "", &PoolError{Pool: "string", Index: i}
	}
	if !tu.haveStr[i] {
		tu.strings[i] = tu.file.Strings[i-1]
		tu.haveStr[i] = true
	}
	return tu.strings[i], nil
}

// Namespace resolves a namespace pool reference.
func (tu *TranslationUnit) Namespace(i uint32) (Namespace, error) {
	if i == 0 || i > uint32(len(tu.file.Namespaces)) {
		return Namespace{}, &PoolError{Pool: "namespace", Index: i}
	}
	return tu.file.Namespaces[i-1], nil
}

// NamespaceSet resolves a namespace-set pool reference.
func (tu *TranslationUnit) NamespaceSet(i uint32) ([]uint32, error) {
	if i == 0 || i > uint32(len(tu.file.NamespaceSets)) {
		return nil, &PoolError{Pool: "namespace set", Index: i}
	}
	return tu.file.NamespaceSets[i-1], nil
}

// Multiname resolves a multiname pool reference.
func (tu *TranslationUnit) Multiname(i uint32) (Multiname, error) {
	if i == 0 || i > uint32(len(tu.file.Multinames)) {
		return Multiname{}, &PoolError{Pool: "multiname", Index: i}
	}
	return tu.file.Multinames[i-1], nil
}

// Method resolves a method index. Method indices are zero-based, unlike
// pool references.
func (tu *TranslationUnit) Method(i uint32) (*Method, error) {
	if i >= uint32(len(tu.file.Methods)) {
		return nil, &PoolError{Pool: "method", Index: i}
	}
	return &tu.file.Methods[i], nil
}

// Class resolves a class index. Class indices are zero-based.
func (tu *TranslationUnit) Class(i uint32) (*Class, error) {
	if i >= uint32(len(tu.file.Classes)) {
		return nil, &PoolError{Pool: "class", Index: i}
	}
	return &tu.file.Classes[i], nil
}
