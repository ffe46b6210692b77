package library

import "errors"

// Errors returned by Library operations. Callers match them with errors.Is.
var (
	// ErrNotLoggedIn is returned by session-scoped operations when the
	// session is the zero value.
	ErrNotLoggedIn = errors.New("not logged in")

	// ErrItemNotFound is returned when no catalog item has the given ID.
	ErrItemNotFound = errors.New("item not found")

	// ErrItemUnavailable is returned when the item is already reserved.
	ErrItemUnavailable = errors.New("item unavailable")

	// ErrInvalidSelection is returned when a reservation index falls
	// outside the session's own reservation list.
	ErrInvalidSelection = errors.New("invalid selection")

	// ErrInvalidCredentials is returned on any failed login. It does not
	// say whether the name or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid name or password")
)
