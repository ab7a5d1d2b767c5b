package di

import (
	"fmt"
	"reflect"

	"github.com/kbukum/inject/errors"
	"github.com/kbukum/inject/typekey"
)

// Provider is a deferred handle for T. Declaring a Provider[T] dependency
// instead of T postpones the resolution of T until Get is called, which
// breaks dependency cycles. Every Get resolves anew against the context the
// handle was created in.
type Provider[T any] struct {
	get func() (any, error)
}

// Get resolves T.
func (p Provider[T]) Get() (T, error) {
	var zero T
	if p.get == nil {
		return zero, errors.InvalidBinding(fmt.Sprintf("provider of %s is not bound", typekey.Of[T]()))
	}
	v, err := p.get()
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	t, ok := v.(T)
	if !ok {
		return zero, errors.InvalidBinding(fmt.Sprintf("provider of %s produced %T", typekey.Of[T](), v))
	}
	return t, nil
}

// MustGet resolves T and panics on error.
func (p Provider[T]) MustGet() T {
	v, err := p.Get()
	if err != nil {
		panic(err)
	}
	return v
}

// IsBound reports whether the handle came from an injector.
func (p Provider[T]) IsBound() bool { return p.get != nil }

func (Provider[T]) elementType() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

func (Provider[T]) bind(get func() (any, error)) any {
	return Provider[T]{get: get}
}

type deferredHandle interface {
	elementType() reflect.Type
	bind(get func() (any, error)) any
}

var deferredHandleType = reflect.TypeOf((*deferredHandle)(nil)).Elem()

func deferredOf(t typekey.Key) (deferredHandle, bool) {
	rt := t.Type()
	if rt == nil || rt.Kind() != reflect.Struct || !rt.Implements(deferredHandleType) {
		return nil, false
	}
	h, ok := reflect.Zero(rt).Interface().(deferredHandle)
	return h, ok
}

// IsDeferred reports whether t is a Provider[E] handle type and returns E.
func IsDeferred(t typekey.Key) (typekey.Key, bool) {
	h, ok := deferredOf(t)
	if !ok {
		return typekey.Key{}, false
	}
	return typekey.For(h.elementType()), true
}
