// Package inspect looks at a built injector without resolving anything.
//
// Analyze derives the eager dependency graph of the frozen bindings from the
// injection profiles and groups providers into dependency levels: level 0
// needs nothing, level n needs only providers from lower levels. Deferred
// Provider[T] dependencies are not eager and are listed separately. A cycle
// among eager dependencies is reported as CYCLE_DETECTED.
//
// Server exposes the bindings, scopes, levels, version and component health
// of a running application over HTTP.
package inspect
