package call

import "fmt"

// Error is a classified domain failure with a stable machine-readable code.
// The HTTP boundary maps codes to status lines; everything below it works
// with errors.Is against the sentinel values.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches any error carrying the same code, so wrapped variants with a
// more specific message still satisfy errors.Is(err, sentinel).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// WithMessage returns a copy of the sentinel carrying a specific reason.
func (e *Error) WithMessage(format string, args ...any) *Error {
	return &Error{Code: e.Code, Message: fmt.Sprintf(format, args...)}
}

var (
	ErrUnauthenticated   = &Error{Code: "UNAUTHENTICATED", Message: "authentication required"}
	ErrForbidden         = &Error{Code: "FORBIDDEN", Message: "access denied"}
	ErrNotFound          = &Error{Code: "NOT_FOUND", Message: "not found"}
	ErrCallNotFound      = &Error{Code: "CALL_NOT_FOUND", Message: "call not found"}
	ErrWrongRestaurant   = &Error{Code: "WRONG_RESTAURANT", Message: "call belongs to another restaurant"}
	ErrNotAssigned       = &Error{Code: "NOT_ASSIGNED", Message: "waiter is not assigned to this table"}
	ErrInvalidTransition = &Error{Code: "INVALID_TRANSITION", Message: "call is not in the required state"}
	ErrInvalidArgument   = &Error{Code: "INVALID_ARGUMENT", Message: "invalid request"}
	ErrRateLimited       = &Error{Code: "RATE_LIMITED", Message: "too many attempts"}
)
