package errors

import (
	"fmt"
	"net/http"
	"strings"
)

// AppError is the unified error type.
type AppError struct {
	// Kind tells contract violations apart from construction failures.
	Kind Kind `json:"kind"`
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// HTTPStatus is the status the inspection server answers with.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError, deriving the kind from the code.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Kind:       KindOf(code),
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// --- Binding errors ---

// AmbiguousBinding reports a request answered by more than one binding.
func AmbiguousBinding(request string) *AppError {
	return New(ErrCodeAmbiguousBinding,
		fmt.Sprintf("ambiguous binding for request %s", request),
		http.StatusConflict).WithDetail("request", request)
}

// BindingReconfigured reports a second configuration call on one binding handle.
func BindingReconfigured(binding string) *AppError {
	return New(ErrCodeBindingReconfigured,
		fmt.Sprintf("binding %s is already configured", binding),
		http.StatusConflict).WithDetail("binding", binding)
}

// BindingIncomplete reports a binding handle that was never configured.
func BindingIncomplete(binding string) *AppError {
	return New(ErrCodeBindingIncomplete,
		fmt.Sprintf("binding %s was never configured", binding),
		http.StatusBadRequest).WithDetail("binding", binding)
}

// DuplicateMapKey reports two members of the same map aggregate sharing a key.
func DuplicateMapKey(key any, aggregate string) *AppError {
	return New(ErrCodeDuplicateMapKey,
		fmt.Sprintf("duplicate key %v for map %s", key, aggregate),
		http.StatusConflict).WithDetails(map[string]any{"key": fmt.Sprint(key), "aggregate": aggregate})
}

// MultipleScopes reports a type carrying more than one scope marker.
func MultipleScopes(typ string, scopes []string) *AppError {
	return New(ErrCodeMultipleScopes,
		fmt.Sprintf("type %s has multiple scopes: %s", typ, strings.Join(scopes, ", ")),
		http.StatusBadRequest).WithDetails(map[string]any{"type": typ, "scopes": scopes})
}

// RegistryFrozen reports a registry operation attempted after freezing.
func RegistryFrozen(operation string) *AppError {
	return New(ErrCodeRegistryFrozen,
		fmt.Sprintf("registry is frozen, cannot %s", operation),
		http.StatusConflict).WithDetail("operation", operation)
}

// InvalidBinding reports malformed binding options.
func InvalidBinding(reason string) *AppError {
	return New(ErrCodeInvalidBinding, reason, http.StatusBadRequest)
}

// InvalidProfile reports a type that cannot be constructed or injected.
func InvalidProfile(typ, reason string) *AppError {
	return New(ErrCodeInvalidProfile,
		fmt.Sprintf("type %s: %s", typ, reason),
		http.StatusUnprocessableEntity).WithDetail("type", typ)
}

// --- Resolution errors ---

// ScopeNotActive reports a scoped type requested outside its scope.
func ScopeNotActive(typ, scope string) *AppError {
	return New(ErrCodeScopeNotActive,
		fmt.Sprintf("scope %s is not active for type %s", scope, typ),
		http.StatusConflict).WithDetails(map[string]any{"type": typ, "scope": scope})
}

// UnknownRequest reports a request no binding answers.
func UnknownRequest(request string) *AppError {
	return New(ErrCodeUnknownRequest,
		fmt.Sprintf("unknown request %s", request),
		http.StatusNotFound).WithDetail("request", request)
}

// CycleDetected reports a provider re-entered while it was already resolving.
func CycleDetected(request string, chain []string) *AppError {
	return New(ErrCodeCycleDetected,
		fmt.Sprintf("dependency cycle detected at %s", request),
		http.StatusConflict).WithDetails(map[string]any{"request": request, "chain": chain})
}

// ContextClosed reports use of a context after Close.
func ContextClosed(id string) *AppError {
	return New(ErrCodeContextClosed,
		fmt.Sprintf("context %s is closed", id),
		http.StatusGone).WithDetail("context_id", id)
}

// ConstructionFailed wraps an error or panic raised by user code.
func ConstructionFailed(typ string, cause error) *AppError {
	return New(ErrCodeConstructionFailed,
		fmt.Sprintf("failed to build %s", typ),
		http.StatusInternalServerError).WithDetail("type", typ).WithCause(cause)
}

// InvalidConfig reports configuration that failed validation.
func InvalidConfig(message string) *AppError {
	return New(ErrCodeInvalidConfig, message, http.StatusBadRequest)
}

// Internal wraps an error that is not an AppError.
func Internal(cause error) *AppError {
	return New(ErrCodeInternal, "internal error", http.StatusInternalServerError).WithCause(cause)
}
