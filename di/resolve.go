package di

import (
	"fmt"

	"github.com/kbukum/inject/errors"
	"github.com/kbukum/inject/marker"
	"github.com/kbukum/inject/typekey"
)

// Get resolves T with an optional qualifier.
//
//	engine, err := di.Get[Motor](inj, marker.Named("diesel"))
//	if err != nil {
//	    return fmt.Errorf("failed to get engine: %w", err)
//	}
func Get[T any](r Resolver, qualifier ...marker.Marker) (T, error) {
	var zero T
	req := Request{Type: typekey.Of[T](), Qualifier: first(qualifier)}
	instance, err := r.Instance(req.Type, req.Qualifier)
	if err != nil {
		return zero, fmt.Errorf("di: failed to resolve %s: %w", req, err)
	}
	if instance == nil {
		return zero, nil
	}
	result, ok := instance.(T)
	if !ok {
		return zero, errors.InvalidBinding(fmt.Sprintf("%s resolved to %T, expected %T", req, instance, zero))
	}
	return result, nil
}

// MustGet resolves T and panics on error. Use it where a missing binding is
// a programming error.
//
//	car := di.MustGet[*Car](inj)
func MustGet[T any](r Resolver, qualifier ...marker.Marker) T {
	result, err := Get[T](r, qualifier...)
	if err != nil {
		panic(err.Error())
	}
	return result
}

// TryGet resolves T, returning the zero value and false on any failure.
// Use it when a dependency is optional.
//
//	if radio, ok := di.TryGet[*Radio](inj); ok {
//	    radio.Play()
//	}
func TryGet[T any](r Resolver, qualifier ...marker.Marker) (T, bool) {
	result, err := Get[T](r, qualifier...)
	if err != nil {
		var zero T
		return zero, false
	}
	return result, true
}

// ProviderOf returns a typed deferred handle for T.
func ProviderOf[T any](r Resolver, qualifier ...marker.Marker) Provider[T] {
	q := first(qualifier)
	t := typekey.Of[T]()
	return Provider[T]{get: func() (any, error) { return r.Instance(t, q) }}
}
