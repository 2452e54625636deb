package models

import "errors"

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")

	// Cash-out token state errors
	ErrTokenExpired  = errors.New("cash-out token has expired")
	ErrTokenUsed     = errors.New("cash-out token has already been used")
	ErrInvalidAmount = errors.New("invalid cash-out amount")
)
