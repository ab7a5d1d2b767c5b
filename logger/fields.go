package logger

import (
	"time"

	"github.com/kbukum/inject/errors"
)

// Standard field key constants for structured logging.
const (
	FieldComponent = "component"
	FieldTraceID   = "trace_id"
	FieldSpanID    = "span_id"
	FieldOperation = "operation"
	FieldError     = "error"
	FieldCode      = "code"
	FieldDuration  = "duration_ms"

	FieldRequest   = "request"
	FieldQualifier = "qualifier"
	FieldScope     = "scope"
	FieldContextID = "context_id"
	FieldStrategy  = "strategy"
	FieldBindings  = "bindings"
	FieldLoader    = "loader"
)

// Fields builds a map[string]interface{} from alternating key-value pairs.
//
//	logger.Info("done", logger.Fields("scope", "@request", "context_id", id))
func Fields(kvs ...interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(kvs)/2)
	for i := 0; i < len(kvs)-1; i += 2 {
		if key, ok := kvs[i].(string); ok {
			m[key] = kvs[i+1]
		}
	}
	return m
}

// RequestFields creates fields describing an injection request.
func RequestFields(request, qualifier string) map[string]interface{} {
	m := map[string]interface{}{FieldRequest: request}
	if qualifier != "" {
		m[FieldQualifier] = qualifier
	}
	return m
}

// ErrorFields creates fields for an operation that failed. The error code is
// included when err carries one.
func ErrorFields(op string, err error) map[string]interface{} {
	m := map[string]interface{}{
		FieldOperation: op,
		FieldError:     err.Error(),
	}
	if code := errors.CodeOf(err); code != "" {
		m[FieldCode] = string(code)
	}
	return m
}

// DurationFields creates fields for a timed operation.
func DurationFields(op string, d time.Duration) map[string]interface{} {
	return map[string]interface{}{
		FieldOperation: op,
		FieldDuration:  d.Milliseconds(),
	}
}

// Merge combines field maps; later maps win on key conflicts.
func Merge(fields ...map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{})
	for _, fm := range fields {
		for k, v := range fm {
			out[k] = v
		}
	}
	return out
}
