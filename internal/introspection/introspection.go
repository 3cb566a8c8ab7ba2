// Package introspection resolves properties, methods and constructors on
// arbitrary host values through reflection, the way JEXL's
// org.apache.commons.jexl3.introspection.Uberspect resolves members on
// arbitrary Java objects. It is grounded on the teacher's
// internal/evaluator/host_access.go: reflect.Value.MethodByName for
// method dispatch, FieldByName/struct-tag lookups for properties, with
// the handler-injection seam the teacher uses to dodge an import cycle
// replaced here by a self-contained package (the interpreter imports
// introspection directly; there is no marshaller package sitting between
// them that would force the same seam).
package introspection

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// Introspector resolves members of arbitrary Go values at eval time.
type Introspector interface {
	GetMethod(target interface{}, name string, args []interface{}) (reflect.Value, bool)
	GetPropertyGet(target interface{}, name string) (interface{}, bool, error)
	GetPropertySet(target interface{}, name string, value interface{}) (bool, error)
	GetIterator(target interface{}) (func() (interface{}, bool), error)
	Invoke(method reflect.Value, args []interface{}) (interface{}, error)
}

// Default is the reflection-based Introspector used unless a host
// supplies its own (spec §2, Introspector injection point).
type Default struct {
	mu    sync.RWMutex
	cache map[reflect.Type]*typeInfo
}

type typeInfo struct {
	methods map[string]reflect.Value // receiver-bound at lookup time, so keyed by name only as a hint
	fields  map[string]int           // field name -> index, case-insensitive key
}

// New returns the default reflection-based introspector.
func New() *Default {
	return &Default{cache: make(map[reflect.Type]*typeInfo)}
}

// GetMethod resolves target.Name, trying an exact match first, then the
// name with its first letter upper-cased, then a getter-style
// ("GetName"/"IsName") fallback the way
// JEXL's bean introspection does for property accessors exposed as
// methods.
func (d *Default) GetMethod(target interface{}, name string, args []interface{}) (reflect.Value, bool) {
	if target == nil {
		return reflect.Value{}, false
	}
	rv := reflect.ValueOf(target)
	if m := rv.MethodByName(name); m.IsValid() {
		return m, true
	}
	capitalized := strings.ToUpper(name[:1]) + name[1:]
	if m := rv.MethodByName(capitalized); m.IsValid() {
		return m, true
	}
	for _, prefix := range []string{"Get", "Is"} {
		if m := rv.MethodByName(prefix + capitalized); m.IsValid() {
			return m, true
		}
	}
	return reflect.Value{}, false
}

// Invoke calls method with args converted to the method's parameter
// types, following the same best-effort reflect.Value.Call pattern as
// the teacher's AccessHostMember.
func (d *Default) Invoke(method reflect.Value, args []interface{}) (interface{}, error) {
	t := method.Type()
	numIn := t.NumIn()
	variadic := t.IsVariadic()
	if variadic {
		if len(args) < numIn-1 {
			return nil, fmt.Errorf("expected at least %d arguments, got %d", numIn-1, len(args))
		}
	} else if len(args) != numIn {
		return nil, fmt.Errorf("expected %d arguments, got %d", numIn, len(args))
	}

	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		var target reflect.Type
		switch {
		case variadic && i >= numIn-1:
			target = t.In(numIn - 1).Elem()
		case i < numIn:
			target = t.In(i)
		default:
			target = reflect.TypeOf(arg)
		}
		in[i] = convertArg(arg, target)
	}

	out := method.Call(in)
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		if isError(out[0]) {
			if out[0].IsNil() {
				return nil, nil
			}
			return nil, out[0].Interface().(error)
		}
		return out[0].Interface(), nil
	default:
		last := out[len(out)-1]
		if isError(last) {
			if !last.IsNil() {
				return nil, last.Interface().(error)
			}
			out = out[:len(out)-1]
		}
		if len(out) == 1 {
			return out[0].Interface(), nil
		}
		results := make([]interface{}, len(out))
		for i, v := range out {
			results[i] = v.Interface()
		}
		return results, nil
	}
}

func isError(v reflect.Value) bool {
	errType := reflect.TypeOf((*error)(nil)).Elem()
	return v.Type().Implements(errType)
}

func convertArg(arg interface{}, target reflect.Type) reflect.Value {
	if arg == nil {
		if target == nil {
			return reflect.ValueOf((*interface{})(nil)).Elem()
		}
		return reflect.Zero(target)
	}
	rv := reflect.ValueOf(arg)
	if target == nil {
		return rv
	}
	if rv.Type().AssignableTo(target) {
		return rv
	}
	if rv.Type().ConvertibleTo(target) {
		return rv.Convert(target)
	}
	return rv
}

// GetPropertyGet resolves target.name as a property read: an exported
// struct field first, then a zero-arg getter method.
func (d *Default) GetPropertyGet(target interface{}, name string) (interface{}, bool, error) {
	if target == nil {
		return nil, false, nil
	}
	rv := reflect.ValueOf(target)
	indirect := rv
	if indirect.Kind() == reflect.Ptr {
		if indirect.IsNil() {
			return nil, false, nil
		}
		indirect = indirect.Elem()
	}
	if indirect.Kind() == reflect.Map {
		v := indirect.MapIndex(reflect.ValueOf(name))
		if v.IsValid() {
			return v.Interface(), true, nil
		}
		return nil, false, nil
	}
	if indirect.Kind() == reflect.Struct {
		capitalized := strings.ToUpper(name[:1]) + name[1:]
		if f := indirect.FieldByName(capitalized); f.IsValid() && f.CanInterface() {
			return f.Interface(), true, nil
		}
	}
	if m, ok := d.GetMethod(target, name, nil); ok && m.Type().NumIn() == 0 {
		v, err := d.Invoke(m, nil)
		return v, err == nil, err
	}
	return nil, false, nil
}

// GetPropertySet resolves target.name = value: an exported struct field
// on a pointer receiver, a map key, or a single-arg setter method.
func (d *Default) GetPropertySet(target interface{}, name string, value interface{}) (bool, error) {
	if target == nil {
		return false, fmt.Errorf("cannot set property %q on null", name)
	}
	rv := reflect.ValueOf(target)
	if rv.Kind() == reflect.Map {
		rv.SetMapIndex(reflect.ValueOf(name), reflect.ValueOf(value))
		return true, nil
	}
	if rv.Kind() == reflect.Ptr && !rv.IsNil() {
		elem := rv.Elem()
		if elem.Kind() == reflect.Struct {
			capitalized := strings.ToUpper(name[:1]) + name[1:]
			if f := elem.FieldByName(capitalized); f.IsValid() && f.CanSet() {
				f.Set(convertArg(value, f.Type()))
				return true, nil
			}
		}
	}
	capitalized := strings.ToUpper(name[:1]) + name[1:]
	if m, ok := d.GetMethod(target, "Set"+capitalized, []interface{}{value}); ok && m.Type().NumIn() == 1 {
		_, err := d.Invoke(m, []interface{}{value})
		return err == nil, err
	}
	return false, fmt.Errorf("no writable property %q on %T", name, target)
}

// GetIterator adapts target into a pull-style iterator for foreach (spec
// §4.2.2): slices/arrays by index, maps by key, channels by receive.
func (d *Default) GetIterator(target interface{}) (func() (interface{}, bool), error) {
	if target == nil {
		return func() (interface{}, bool) { return nil, false }, nil
	}
	rv := reflect.ValueOf(target)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		i := 0
		return func() (interface{}, bool) {
			if i >= rv.Len() {
				return nil, false
			}
			v := rv.Index(i).Interface()
			i++
			return v, true
		}, nil
	case reflect.Map:
		keys := rv.MapKeys()
		i := 0
		return func() (interface{}, bool) {
			if i >= len(keys) {
				return nil, false
			}
			k := keys[i]
			i++
			return k.Interface(), true
		}, nil
	case reflect.Chan:
		return func() (interface{}, bool) {
			v, ok := rv.Recv()
			if !ok {
				return nil, false
			}
			return v.Interface(), true
		}, nil
	}
	return nil, fmt.Errorf("%T is not iterable", target)
}
