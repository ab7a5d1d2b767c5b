package errors

import (
	stderrors "errors"
)

// ErrorResponse is the JSON structure returned by the inspection server.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody contains the error details sent to clients.
type ErrorBody struct {
	Kind    Kind                   `json:"kind"`
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ToResponse converts an AppError to an ErrorResponse for JSON serialization.
func (e *AppError) ToResponse() ErrorResponse {
	return ErrorResponse{
		Error: ErrorBody{
			Kind:    e.Kind,
			Code:    e.Code,
			Message: e.Message,
			Details: e.Details,
		},
	}
}

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsContractViolation reports whether err is a configuration or usage error.
func IsContractViolation(err error) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Kind == KindContractViolation
}

// IsConstructionFailure reports whether err was raised by user code during construction.
// A construction failure wrapped by a contract violation is still reported.
func IsConstructionFailure(err error) bool {
	for err != nil {
		appErr, ok := AsAppError(err)
		if !ok {
			return false
		}
		if appErr.Kind == KindConstructionFailure {
			return true
		}
		err = appErr.Cause
	}
	return false
}

// HasCode reports whether the outermost AppError in err carries code.
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

// CodeOf returns the code of the outermost AppError in err, or "".
func CodeOf(err error) ErrorCode {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ""
}
