// Package avm2 is the class-based VM: namespaced names, classes with
// trait tables, sealed instances, typed runtime errors, the event
// dispatcher, and an interpreter for verified method bodies.
package avm2

import (
	"strings"

	"github.com/lantern-player/lantern/abc"
)

// NsKind tags a namespace's flavor. Two namespaces are the same name
// qualifier only if kind and URI both match, except NsAny which matches
// everything during multiname resolution.
type NsKind uint8

const (
	NsNamespace NsKind = iota
	NsPackage
	NsPackageInternal
	NsProtected
	NsExplicit
	NsStaticProtected
	NsPrivate
	NsAny
)

// Namespace qualifies a local name.
type Namespace struct {
	Kind NsKind
	URI  string
}

// PublicNs is the unnamed package namespace.
var PublicNs = Namespace{Kind: NsPackage}

// AnyNs matches every namespace during resolution.
var AnyNs = Namespace{Kind: NsAny}

// IsAny reports whether this is the wildcard namespace.
func (n Namespace) IsAny() bool { return n.Kind == NsAny }

// IsPublic reports whether dynamic properties may live under this
// namespace.
func (n Namespace) IsPublic() bool { return n.Kind == NsPackage && n.URI == "" }

// QName is a fully resolved (namespace, local name) pair.
type QName struct {
	Ns   Namespace
	Name string
}

// PublicName builds a public QName.
func PublicName(name string) QName {
	return QName{Ns: PublicNs, Name: name}
}

func (q QName) String() string {
	if q.Ns.URI == "" {
		return q.Name
	}
	return q.Ns.URI + "::" + q.Name
}

// Multiname is an unresolved name: a candidate namespace set, an
// optional local name, and optional generic type parameters. An absent
// local name matches any.
type Multiname struct {
	NsSet   []Namespace
	Name    string
	HasName bool
	Params  []Multiname
}

// PublicMultiname builds the common single-namespace public case.
func PublicMultiname(name string) Multiname {
	return Multiname{NsSet: []Namespace{PublicNs}, Name: name, HasName: true}
}

// AnyMultiname matches any name in any namespace.
func AnyMultiname() Multiname {
	return Multiname{NsSet: []Namespace{AnyNs}}
}

// ContainsName reports whether the multiname can resolve to q: the
// namespace set must contain the wildcard or q's exact namespace, and
// the local name must be absent or equal.
func (m Multiname) ContainsName(q QName) bool {
	if m.HasName && m.Name != q.Name {
		return false
	}
	for _, ns := range m.NsSet {
		if ns.IsAny() || ns == q.Ns {
			return true
		}
	}
	return false
}

// IsAnyName reports whether the local name matches everything.
func (m Multiname) IsAnyName() bool { return !m.HasName }

func (m Multiname) String() string {
	name := "*"
	if m.HasName {
		name = m.Name
	}
	if len(m.Params) > 0 {
		parts := make([]string, len(m.Params))
		for i, p := range m.Params {
			parts[i] = p.String()
		}
		return name + ".<" + strings.Join(parts, ",") + ">"
	}
	return name
}

// nsFromABC converts a pooled namespace record.
func nsFromABC(tu *abc.TranslationUnit, i uint32) (Namespace, error) {
	rec, err := tu.Namespace(i)
	if err != nil {
		return Namespace{}, err
	}
	uri, err := tu.String(rec.Name)
	if err != nil {
		return Namespace{}, err
	}
	var kind NsKind
	switch rec.Kind {
	case abc.NsNamespace:
		kind = NsNamespace
	case abc.NsPackage:
		kind = NsPackage
	case abc.NsPackageInternal:
		kind = NsPackageInternal
	case abc.NsProtected:
		kind = NsProtected
	case abc.NsExplicit:
		kind = NsExplicit
	case abc.NsStaticProtected:
		kind = NsStaticProtected
	case abc.NsPrivate:
		kind = NsPrivate
	}
	return Namespace{Kind: kind, URI: uri}, nil
}

// multinameFromABC converts a pooled multiname record. Late-bound kinds
// are resolved by the interpreter, which pops the missing pieces before
// calling this.
func multinameFromABC(tu *abc.TranslationUnit, i uint32) (Multiname, error) {
	rec, err := tu.Multiname(i)
	if err != nil {
		return Multiname{}, err
	}
	var m Multiname
	switch rec.Kind {
	case abc.MnQName:
		ns, err := nsFromABC(tu, rec.Ns)
		if err != nil {
			return Multiname{}, err
		}
		m.NsSet = []Namespace{ns}
	case abc.MnMultiname, abc.MnMultinameLate:
		set, err := tu.NamespaceSet(rec.NsSet)
		if err != nil {
			return Multiname{}, err
		}
		for _, nsi := range set {
			ns, err := nsFromABC(tu, nsi)
			if err != nil {
				return Multiname{}, err
			}
			m.NsSet = append(m.NsSet, ns)
		}
	case abc.MnTypeName:
		base, err := multinameFromABC(tu, rec.Base)
		if err != nil {
			return Multiname{}, err
		}
		m = base
		for _, pi := range rec.Params {
			// Index 0 as a type parameter means the wildcard.
			if pi == 0 {
				m.Params = append(m.Params, AnyMultiname())
				continue
			}
			p, err := multinameFromABC(tu, pi)
			if err != nil {
				return Multiname{}, err
			}
			m.Params = append(m.Params, p)
		}
		return m, nil
	default:
		m.NsSet = []Namespace{AnyNs}
	}
	if rec.Name != 0 {
		name, err := tu.String(rec.Name)
		if err != nil {
			return Multiname{}, err
		}
		m.Name = name
		m.HasName = true
	}
	return m, nil
}
