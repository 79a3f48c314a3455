package errors

import "errors"

var (
	ErrNotOwner            = errors.New("caller is not the registry owner")
	ErrNotAuthorized       = errors.New("caller is not authorized to write attributes for this account")
	ErrNotAuthorizedAnchor = errors.New("caller is not an authorized anchor")
	ErrSessionNotFound     = errors.New("session grant not found")
	ErrInputTooLong        = errors.New("input exceeds maximum string length")

	ErrInvalidPrincipal = errors.New("invalid principal address")
	ErrInvalidSessionID = errors.New("invalid session id")
	ErrInvalidScopeID   = errors.New("invalid scope id")
	ErrInvalidRoot      = errors.New("invalid attribute root")
	ErrInvalidEphPubKey = errors.New("invalid ephemeral public key")
	ErrInvalidLevel     = errors.New("invalid entitlement level")

	// Declared for taxonomy completeness. Read paths return default values on
	// a miss, so no operation currently returns either of these.
	ErrAttributeNotFound   = errors.New("attribute not found")
	ErrEntitlementNotFound = errors.New("entitlement not found")
)
