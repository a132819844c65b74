package auth

import "errors"

var (
	// ErrInvalidCodename is returned when a permission codename is neither a
	// bare action nor an "app.model.action" string with a known action.
	ErrInvalidCodename = errors.New("invalid permission codename")

	// ErrUserAccountDisabled is returned when attempting to authenticate a disabled user account.
	ErrUserAccountDisabled = errors.New("user account is disabled")

	// ErrInvalidPassword is returned when the provided password is incorrect during authentication.
	ErrInvalidPassword = errors.New("invalid password")

	// ErrUserNotFound is returned when a user cannot be found in the database.
	ErrUserNotFound = errors.New("user not found")
)
