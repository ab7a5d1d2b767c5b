package di

import (
	"fmt"
	"reflect"

	"github.com/kbukum/inject/errors"
	"github.com/kbukum/inject/typekey"
)

// aggregateInstantiator builds a map, list or set from member providers.
// Every member is resolved through the cycle guard.
type aggregateInstantiator struct {
	kind    BindingKind
	typ     typekey.Key
	members []provider
	keys    []any
}

func (a *aggregateInstantiator) produces() typekey.Key { return a.typ }

func (a *aggregateInstantiator) add(p provider, key any) {
	a.members = append(a.members, p)
	a.keys = append(a.keys, key)
}

func (a *aggregateInstantiator) instantiate(c *Context, ch *chain) (any, error) {
	rt := a.typ.Type()
	switch a.kind {
	case KindList:
		elem := rt.Elem()
		out := reflect.MakeSlice(rt, 0, len(a.members))
		err := a.each(c, ch, typekey.For(elem), func(_ int, v any) error {
			out = reflect.Append(out, valueOf(v, elem))
			return nil
		})
		if err != nil {
			return nil, err
		}
		return out.Interface(), nil

	case KindSet:
		elem := rt.Key()
		present := reflect.ValueOf(struct{}{})
		out := reflect.MakeMapWithSize(rt, len(a.members))
		err := a.each(c, ch, typekey.For(elem), func(_ int, v any) error {
			if v != nil && !reflect.TypeOf(v).Comparable() {
				return errors.InvalidBinding(fmt.Sprintf("set member of type %T is not comparable", v))
			}
			out.SetMapIndex(valueOf(v, elem), present)
			return nil
		})
		if err != nil {
			return nil, err
		}
		return out.Interface(), nil

	default:
		elem := rt.Elem()
		out := reflect.MakeMapWithSize(rt, len(a.members))
		err := a.each(c, ch, typekey.For(elem), func(i int, v any) error {
			out.SetMapIndex(reflect.ValueOf(a.keys[i]), valueOf(v, elem))
			return nil
		})
		if err != nil {
			return nil, err
		}
		return out.Interface(), nil
	}
}

func (a *aggregateInstantiator) each(c *Context, ch *chain, elem typekey.Key, put func(int, any) error) error {
	for i, p := range a.members {
		v, err := c.provide(p, Request{Type: elem}, ch)
		if err != nil {
			return err
		}
		if err := put(i, v); err != nil {
			return err
		}
	}
	return nil
}
