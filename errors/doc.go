// Package errors provides the structured error type shared by the injector
// and its supporting packages. Every error carries a machine-readable code and
// belongs to one of two kinds: contract violations (wrong configuration or
// usage) and construction failures (user code failed while an object was being
// built). Callers branch on the kind with IsContractViolation and
// IsConstructionFailure, or on the code with HasCode.
package errors
