package di

import (
	"github.com/kbukum/inject/marker"
	"github.com/kbukum/inject/typekey"
)

// Request identifies what is being asked for: a type and an optional
// qualifier. Requests are comparable.
type Request struct {
	Type      typekey.Key
	Qualifier marker.Marker
}

// RequestOf returns the request for T.
func RequestOf[T any](qualifier ...marker.Marker) Request {
	return Request{Type: typekey.Of[T](), Qualifier: first(qualifier)}
}

// String renders the request as "type" or "type @qualifier".
func (r Request) String() string {
	if r.Qualifier.IsZero() {
		return r.Type.String()
	}
	return r.Type.String() + " " + r.Qualifier.String()
}

func first(ms []marker.Marker) marker.Marker {
	if len(ms) == 0 {
		return marker.Marker{}
	}
	return ms[0]
}
