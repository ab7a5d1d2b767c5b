// Package di is a dependency-injection engine.
//
// Configuration happens once, through loaders that add bindings to a
// Registry. New freezes the registry, builds the provider graph and returns
// an Injector whose root Context serves requests:
//
//	inj, err := di.New([]di.Loader{
//		di.LoaderFunc(func(r *di.Registry) error {
//			if err := di.Bind[*Engine](r).AsStrict(di.StrictOptions{
//				Types: []typekey.Key{typekey.Of[Motor]()},
//			}); err != nil {
//				return err
//			}
//			return di.Bind[*Wheel](r).AsListMember(di.CollectionOptions{
//				ElementType: typekey.Of[*Wheel](),
//			})
//		}),
//	}, di.WithIntrospector(types))
//
//	car, err := di.Get[*Car](inj)
//
// A request is a type plus an optional qualifier marker. Strict bindings
// answer their declared requests; map, list and set bindings contribute
// members to aggregates that are rebuilt on every request unless the
// aggregate itself is scoped. The scope
// marker on an implementation type picks its caching strategy: none means a
// new object per request, a scope marker means one object per owning
// context, a multiton marker one object per owning context and qualifier.
//
// Scoped contexts are opened with EnterScope and closed with Close. Cycles
// between providers fail with CYCLE_DETECTED unless broken by a deferred
// Provider[T] dependency.
package di
