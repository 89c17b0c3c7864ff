package errx

// Type categorizes an application error.
type Type string

const (
	// TypeValidation represents request payload validation failures
	TypeValidation Type = "VALIDATION"

	// TypeAuthentication represents failed credential or token checks
	TypeAuthentication Type = "AUTHENTICATION"

	// TypeAuthorization represents insufficient permission errors
	TypeAuthorization Type = "AUTHORIZATION"

	// TypeNotFound represents resource not found errors
	TypeNotFound Type = "NOT_FOUND"

	// TypeConflict represents uniqueness or reference conflicts
	TypeConflict Type = "CONFLICT"

	// TypeBadRequest represents semantically invalid requests
	TypeBadRequest Type = "BAD_REQUEST"

	// TypeInternal represents unexpected internal errors
	TypeInternal Type = "INTERNAL"
)

// String returns the string representation of the error type
func (t Type) String() string {
	return string(t)
}
