// Package invoke performs the reflective calls behind injection: running a
// constructor, calling an injected method and assigning an injected field.
// Panics and errors raised by user code come back as construction failures;
// argument mismatches come back as contract violations.
package invoke

import (
	"fmt"
	"reflect"
	"unsafe"

	"github.com/kbukum/inject/errors"
	"github.com/kbukum/inject/introspect"
)

// Invoker runs constructors and applies elements.
type Invoker interface {
	// Construct calls c with args and returns the built value.
	Construct(c introspect.Constructor, args []any) (any, error)
	// Apply injects args into e. target is the receiver for member elements
	// and is ignored for static elements.
	Apply(e introspect.Element, target any, args []any) error
}

// Reflective is the reflect-based Invoker.
type Reflective struct{}

// New returns the reflect-based Invoker.
func New() *Reflective { return &Reflective{} }

// Construct calls the constructor function, or builds the zero value when the
// constructor has none.
func (r *Reflective) Construct(c introspect.Constructor, args []any) (v any, err error) {
	if !c.Func.IsValid() {
		if c.Type.Kind() == reflect.Pointer {
			return reflect.New(c.Type.Elem()).Interface(), nil
		}
		return reflect.Zero(c.Type).Interface(), nil
	}

	in, err := arguments(c.Func.Type(), 0, args)
	if err != nil {
		return nil, errors.InvalidBinding(fmt.Sprintf("constructor of %s: %v", c.Type, err))
	}

	defer recoverInto(&err, c.Type.String())
	return handleResults(c.Type.String(), c.Func.Call(in))
}

// Apply injects args into a member or static element.
func (r *Reflective) Apply(e introspect.Element, target any, args []any) (err error) {
	owner := "static"
	var recv reflect.Value
	if !e.Static {
		recv = reflect.ValueOf(target)
		if !recv.IsValid() {
			return errors.InvalidBinding(fmt.Sprintf("element %s needs a target", e.Name))
		}
		owner = recv.Type().String()
		if len(e.Path) > 0 {
			if recv.Kind() != reflect.Pointer || recv.IsNil() {
				return errors.InvalidBinding(fmt.Sprintf("element %s needs a non-nil pointer target", e.Name))
			}
			recv = accessible(recv.Elem().FieldByIndex(e.Path)).Addr()
		}
	}
	defer recoverInto(&err, owner+"."+e.Name)

	switch {
	case e.Kind == introspect.FieldElement && e.Static:
		return assign(accessible(e.Var), e, args)
	case e.Kind == introspect.FieldElement:
		if recv.Kind() != reflect.Pointer || recv.IsNil() {
			return errors.InvalidBinding(fmt.Sprintf("field %s needs a non-nil pointer target", e.Name))
		}
		return assign(accessible(recv.Elem().FieldByIndex(e.Field)), e, args)
	case e.Static:
		return call(e, e.Func, nil, args)
	default:
		return call(e, e.Func, []reflect.Value{recv}, args)
	}
}

func call(e introspect.Element, fn reflect.Value, prefix []reflect.Value, args []any) error {
	in, err := arguments(fn.Type(), len(prefix), args)
	if err != nil {
		return errors.InvalidBinding(fmt.Sprintf("method %s: %v", e.Name, err))
	}
	out := fn.Call(append(prefix, in...))
	if len(out) == 1 && !out[0].IsNil() {
		return errors.ConstructionFailed(e.Name, out[0].Interface().(error))
	}
	return nil
}

func assign(field reflect.Value, e introspect.Element, args []any) error {
	if len(args) != 1 {
		return errors.InvalidBinding(fmt.Sprintf("field %s takes one value, got %d", e.Name, len(args)))
	}
	v, err := value(args[0], field.Type())
	if err != nil {
		return errors.InvalidBinding(fmt.Sprintf("field %s: %v", e.Name, err))
	}
	field.Set(v)
	return nil
}

func arguments(ft reflect.Type, offset int, args []any) ([]reflect.Value, error) {
	if ft.NumIn()-offset != len(args) {
		return nil, fmt.Errorf("expected %d arguments, got %d", ft.NumIn()-offset, len(args))
	}
	in := make([]reflect.Value, len(args))
	for i, a := range args {
		v, err := value(a, ft.In(i+offset))
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		in[i] = v
	}
	return in, nil
}

func value(a any, t reflect.Type) (reflect.Value, error) {
	if a == nil {
		switch t.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(t), nil
		}
		return reflect.Value{}, fmt.Errorf("nil is not assignable to %s", t)
	}
	v := reflect.ValueOf(a)
	if !v.Type().AssignableTo(t) {
		return reflect.Value{}, fmt.Errorf("%s is not assignable to %s", v.Type(), t)
	}
	return v, nil
}

// accessible lifts the read-only flag reflect puts on values reached through
// unexported fields, so non-public injection points can be written.
func accessible(v reflect.Value) reflect.Value {
	if v.CanSet() || !v.CanAddr() {
		return v
	}
	return reflect.NewAt(v.Type(), unsafe.Pointer(v.UnsafeAddr())).Elem()
}

func handleResults(typ string, results []reflect.Value) (any, error) {
	switch len(results) {
	case 1:
		return results[0].Interface(), nil
	case 2:
		if err := results[1].Interface(); err != nil {
			return nil, errors.ConstructionFailed(typ, err.(error))
		}
		return results[0].Interface(), nil
	default:
		return nil, errors.InvalidProfile(typ, "constructor must return (instance) or (instance, error)")
	}
}

func recoverInto(err *error, what string) {
	if r := recover(); r != nil {
		cause, ok := r.(error)
		if !ok {
			cause = fmt.Errorf("panic: %v", r)
		}
		*err = errors.ConstructionFailed(what, cause)
	}
}
