// Package introspect describes how types are built and injected.
//
// Go has no runtime annotations, so injectable types are described once in a
// Table, usually from an init function next to the type:
//
//	var Types = introspect.NewTable()
//
//	func init() {
//		Types.MustRegister(
//			introspect.Describe[*Car]().
//				Constructor(NewCar, marker.Named("v8")).
//				Field("Radio").
//				Method("SetDriver").
//				Scope(marker.Singleton),
//		)
//	}
//
// A Profile is the resolved view of one type under an injection Policy: the
// single eligible constructor, the member elements (ancestors first) and the
// static elements. Struct and pointer-to-struct types without a descriptor
// get an implicit zero-argument constructor and no elements.
package introspect
