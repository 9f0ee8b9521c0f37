package routeguard

import "errors"

var (
	// ErrMissingCredential is the redirect reason when no credential is stored
	ErrMissingCredential = errors.New("missing credential")

	// ErrMalformedCredential is the redirect reason when the stored credential
	// cannot be decoded
	ErrMalformedCredential = errors.New("malformed credential")

	// ErrInsufficientRole is the redirect reason when the decoded role does not
	// match the page's required role
	ErrInsufficientRole = errors.New("insufficient role")
)
