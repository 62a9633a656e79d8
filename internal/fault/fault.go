// README: Error taxonomy shared by all modules; HTTP layer maps kinds to status codes.
package fault

import (
	"errors"
	"fmt"
)

type Kind int

const (
	// KindUnknown is any error that did not originate from this package.
	KindUnknown Kind = iota
	// KindValidation is missing or malformed input.
	KindValidation
	// KindNotFound is an absent entity or a failed state/ownership precondition.
	KindNotFound
	// KindConflict is a duplicate or a lost conditional-write race.
	KindConflict
	// KindAuth is missing or bad credentials.
	KindAuth
	// KindForbidden is a valid identity without the required permission.
	KindForbidden
	// KindConfiguration is a violated system invariant, e.g. a missing wallet.
	KindConfiguration
)

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) error {
	return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

func Auth(format string, args ...any) error {
	return &Error{Kind: KindAuth, Msg: fmt.Sprintf(format, args...)}
}

func Forbidden(format string, args ...any) error {
	return &Error{Kind: KindForbidden, Msg: fmt.Sprintf(format, args...)}
}

func Configuration(format string, args ...any) error {
	return &Error{Kind: KindConfiguration, Msg: fmt.Sprintf(format, args...)}
}

// KindOf extracts the kind from an error chain, KindUnknown if none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func IsKind(err error, kind Kind) bool { return KindOf(err) == kind }
