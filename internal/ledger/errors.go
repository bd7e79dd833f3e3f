package ledger

import "errors"

var (
	// ErrInvalidRange is returned when a required date bound is missing or unparseable.
	ErrInvalidRange = errors.New("invalid date range")
	// ErrInvalidPage is returned for page numbers below 1 or whose offset overflows.
	ErrInvalidPage = errors.New("invalid page")
	// ErrAccountNotFound is returned when the account collaborator has no such account.
	ErrAccountNotFound = errors.New("account not found")
	// ErrStoreUnavailable wraps every failure of the underlying store, timeouts included.
	ErrStoreUnavailable = errors.New("store unavailable")

	ErrRecipientNotFound  = errors.New("recipient account not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidAccount     = errors.New("invalid account details")
)
