package mapping

import "errors"

var (
	// ErrClientAuth reports a failure to obtain or use the OAuth token.
	ErrClientAuth = errors.New("mapping api authentication failed")

	// ErrHeaderNotFound reports a remote document header that does not exist.
	ErrHeaderNotFound = errors.New("document header not found")

	// ErrValidationFailed reports a structurally invalid payload, detected
	// locally before any network call.
	ErrValidationFailed = errors.New("document header payload is invalid")

	// ErrSystemEntityConstraint reports a refused mutation of a remote
	// system header.
	ErrSystemEntityConstraint = errors.New("system document headers cannot be modified")
)
