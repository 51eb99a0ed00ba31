package avm2

import (
	"strings"

	"github.com/lantern-player/lantern/heap"
	"github.com/lantern-player/lantern/wstr"
)

// jsonEncoder serializes a value tree to JSON text. Object identity is
// tracked on an explicit stack so reference cycles raise a typed error
// instead of recursing forever.
type jsonEncoder struct {
	act      *Activation
	out      strings.Builder
	stack    []heap.Handle
	indent   string
	proplist []string
	replacer heap.Value
}

// EncodeJSON renders v as JSON. The replacer argument may be a callable
// invoked as (key, value) per member, an array of property names acting
// as a whitelist, or undefined. indent is the per-level indent string
// ("" for compact output).
func (act *Activation) EncodeJSON(v heap.Value, replacer heap.Value, indent string) (string, error) {
	enc := &jsonEncoder{act: act, indent: indent}
	if act.domain.Resolve(replacer) != nil {
		if arr, ok := act.domain.Resolve(replacer).(*ArrayObject); ok {
			for _, e := range arr.dense {
				if e.IsString() {
					enc.proplist = append(enc.proplist, act.domain.GoString(e))
				}
			}
		} else if _, ok := act.domain.Resolve(replacer).(callable); ok {
			enc.replacer = replacer
		}
	}
	v, err := enc.applyReplacer("", v)
	if err != nil {
		return "", err
	}
	if err := enc.encode(v, 0); err != nil {
		return "", err
	}
	return enc.out.String(), nil
}

func (e *jsonEncoder) applyReplacer(key string, v heap.Value) (heap.Value, error) {
	// A toJSON hook on the value runs before the caller's replacer.
	if obj := e.act.domain.Resolve(v); obj != nil {
		hook, err := obj.GetProperty(e.act, v, PublicMultiname("toJSON"))
		if err == nil {
			if fn, ok := e.act.domain.Resolve(hook).(callable); ok {
				v, err = fn.Call(e.act, v, []heap.Value{e.act.domain.Str(key)})
				if err != nil {
					return heap.Undefined, err
				}
			}
		}
	}
	if fn, ok := e.act.domain.Resolve(e.replacer).(callable); ok {
		return fn.Call(e.act, heap.Null, []heap.Value{e.act.domain.Str(key), v})
	}
	return v, nil
}

func (e *jsonEncoder) enter(h heap.Handle) error {
	for _, seen := range e.stack {
		if seen == h {
			return typeError(CodeCyclicStructure, "cyclic structure cannot be converted to JSON")
		}
	}
	e.stack = append(e.stack, h)
	return nil
}

func (e *jsonEncoder) leave() { e.stack = e.stack[:len(e.stack)-1] }

func (e *jsonEncoder) newline(depth int) {
	if e.indent == "" {
		return
	}
	e.out.WriteByte('\n')
	for i := 0; i < depth; i++ {
		e.out.WriteString(e.indent)
	}
}

func (e *jsonEncoder) encode(v heap.Value, depth int) error {
	switch {
	case v == heap.Undefined || v == heap.Null:
		e.out.WriteString("null")
	case v == heap.True:
		e.out.WriteString("true")
	case v == heap.False:
		e.out.WriteString("false")
	case v.IsString():
		e.writeString(e.act.domain.GoString(v))
	case v.IsObject():
		return e.encodeObject(v, depth)
	default:
		n := v.NumberValue()
		if n != n {
			e.out.WriteString("null")
		} else {
			e.out.WriteString(wstr.FormatFloat(n))
		}
	}
	return nil
}

func (e *jsonEncoder) encodeObject(v heap.Value, depth int) error {
	if err := e.enter(v.Object()); err != nil {
		return err
	}
	defer e.leave()

	if arr, ok := e.act.domain.Resolve(v).(*ArrayObject); ok {
		return e.encodeArray(arr, depth)
	}
	if _, ok := e.act.domain.Resolve(v).(*FunctionObject); ok {
		e.out.WriteString("null")
		return nil
	}

	obj := e.act.domain.Resolve(v)
	e.out.WriteByte('{')
	wrote := false
	emit := func(name string) error {
		member, err := obj.GetProperty(e.act, v, PublicMultiname(name))
		if err != nil {
			return err
		}
		member, err = e.applyReplacer(name, member)
		if err != nil {
			return err
		}
		if member == heap.Undefined {
			return nil
		}
		if fn := e.act.domain.Resolve(member); fn != nil {
			if _, isFn := fn.(*FunctionObject); isFn {
				return nil
			}
		}
		if wrote {
			e.out.WriteByte(',')
		}
		wrote = true
		e.newline(depth + 1)
		e.writeString(name)
		e.out.WriteByte(':')
		if e.indent != "" {
			e.out.WriteByte(' ')
		}
		return e.encode(member, depth+1)
	}

	if e.proplist != nil {
		for _, name := range e.proplist {
			if err := emit(name); err != nil {
				return err
			}
		}
	} else {
		for i := obj.NextIndex(0); i != 0; i = obj.NextIndex(i) {
			nameVal := obj.NameAt(e.act.domain, i)
			var name string
			if nameVal.IsString() {
				name = e.act.domain.GoString(nameVal)
			} else {
				s, err := e.act.ToString(nameVal)
				if err != nil {
					return err
				}
				name = s
			}
			if err := emit(name); err != nil {
				return err
			}
		}
	}
	if wrote {
		e.newline(depth)
	}
	e.out.WriteByte('}')
	return nil
}

func (e *jsonEncoder) encodeArray(arr *ArrayObject, depth int) error {
	e.out.WriteByte('[')
	for i, elem := range arr.dense {
		if i > 0 {
			e.out.WriteByte(',')
		}
		e.newline(depth + 1)
		elem, err := e.applyReplacer(wstr.FormatFloat(float64(i)), elem)
		if err != nil {
			return err
		}
		if elem == heap.Undefined {
			e.out.WriteString("null")
			continue
		}
		if err := e.encode(elem, depth+1); err != nil {
			return err
		}
	}
	if len(arr.dense) > 0 {
		e.newline(depth)
	}
	e.out.WriteByte(']')
	return nil
}

func (e *jsonEncoder) writeString(s string) {
	e.out.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			e.out.WriteString(`\"`)
		case '\\':
			e.out.WriteString(`\\`)
		case '\n':
			e.out.WriteString(`\n`)
		case '\r':
			e.out.WriteString(`\r`)
		case '\t':
			e.out.WriteString(`\t`)
		default:
			if r < 0x20 {
				const hex = "0123456789abcdef"
				e.out.WriteString(`\u00`)
				e.out.WriteByte(hex[r>>4])
				e.out.WriteByte(hex[r&0xF])
			} else {
				e.out.WriteRune(r)
			}
		}
	}
	e.out.WriteByte('"')
}
