// Package component defines lifecycle-managed parts of an application, such
// as the injector itself and the inspection server.
//
// A Registry starts components in registration order and stops the started
// ones in reverse order. Components may also describe themselves and their
// HTTP routes for the startup summary.
package component
