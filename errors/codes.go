package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Kind separates caller mistakes from failures raised while building objects.
type Kind string

const (
	// KindContractViolation marks configuration and usage errors: bad bindings,
	// unknown requests, inactive scopes, dependency cycles.
	KindContractViolation Kind = "CONTRACT_VIOLATION"
	// KindConstructionFailure marks errors raised by user code while a
	// constructor, method or field assignment was running.
	KindConstructionFailure Kind = "CONSTRUCTION_FAILURE"
)

// Binding errors, raised while the registry is configured or frozen.
const (
	// ErrCodeAmbiguousBinding indicates two bindings answer the same request.
	ErrCodeAmbiguousBinding ErrorCode = "AMBIGUOUS_BINDING"
	// ErrCodeBindingReconfigured indicates a binding handle was configured twice.
	ErrCodeBindingReconfigured ErrorCode = "BINDING_RECONFIGURED"
	// ErrCodeBindingIncomplete indicates a binding handle was never configured.
	ErrCodeBindingIncomplete ErrorCode = "BINDING_INCOMPLETE"
	// ErrCodeDuplicateMapKey indicates two members of one map aggregate share a key.
	ErrCodeDuplicateMapKey ErrorCode = "DUPLICATE_MAP_KEY"
	// ErrCodeMultipleScopes indicates a type carries more than one scope marker.
	ErrCodeMultipleScopes ErrorCode = "MULTIPLE_SCOPES"
	// ErrCodeRegistryFrozen indicates the registry was modified after freezing.
	ErrCodeRegistryFrozen ErrorCode = "REGISTRY_FROZEN"
	// ErrCodeInvalidBinding indicates malformed binding options.
	ErrCodeInvalidBinding ErrorCode = "INVALID_BINDING"
	// ErrCodeInvalidProfile indicates a type cannot be constructed or injected.
	ErrCodeInvalidProfile ErrorCode = "INVALID_PROFILE"
)

// Resolution errors, raised while serving requests.
const (
	// ErrCodeScopeNotActive indicates no context in the chain owns the scope.
	ErrCodeScopeNotActive ErrorCode = "SCOPE_NOT_ACTIVE"
	// ErrCodeUnknownRequest indicates no binding answers the request.
	ErrCodeUnknownRequest ErrorCode = "UNKNOWN_REQUEST"
	// ErrCodeCycleDetected indicates a provider was re-entered while resolving.
	ErrCodeCycleDetected ErrorCode = "CYCLE_DETECTED"
	// ErrCodeContextClosed indicates the context was used after Close.
	ErrCodeContextClosed ErrorCode = "CONTEXT_CLOSED"
	// ErrCodeConstructionFailed indicates user code failed during construction.
	ErrCodeConstructionFailed ErrorCode = "CONSTRUCTION_FAILED"
)

const (
	// ErrCodeInvalidConfig indicates the service configuration failed validation.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
	// ErrCodeInternal wraps an error that carries no code of its own.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var constructionCodes = map[ErrorCode]bool{
	ErrCodeConstructionFailed: true,
}

// KindOf returns the kind a code belongs to.
func KindOf(code ErrorCode) Kind {
	if constructionCodes[code] {
		return KindConstructionFailure
	}
	return KindContractViolation
}
