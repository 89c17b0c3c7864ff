package errx

// Common error constructors for convenience

// Internal creates an internal server error
func Internal(message string) *Error {
	return New(message, TypeInternal)
}

// Validation creates a validation error
func Validation(message string) *Error {
	return New(message, TypeValidation)
}

// Authentication creates an authentication error
func Authentication(message string) *Error {
	return New(message, TypeAuthentication)
}

// Authorization creates an authorization error
func Authorization(message string) *Error {
	return New(message, TypeAuthorization)
}

// NotFound creates a not found error
func NotFound(message string) *Error {
	return New(message, TypeNotFound)
}

// Conflict creates a conflict error
func Conflict(message string) *Error {
	return New(message, TypeConflict)
}

// BadRequest creates a bad request error
func BadRequest(message string) *Error {
	return New(message, TypeBadRequest)
}
