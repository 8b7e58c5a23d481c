package auth

import "github.com/goliatone/go-errors"

// Stable text codes used by the taxonomy and surfaced to clients for
// programmatic handling.
const (
	TextCodeUsernameExists       = "USERNAME_EXISTS"
	TextCodeEmailExists          = "EMAIL_EXISTS"
	TextCodeAccountNotFound      = "ACCOUNT_NOT_FOUND"
	TextCodeUnknownRole          = "UNKNOWN_ROLE"
	TextCodeInvalidCredentials   = "INVALID_CREDENTIALS"
	TextCodeAccountLocked        = "ACCOUNT_LOCKED"
	TextCodeAccountDisabled      = "ACCOUNT_DISABLED"
	TextCodeAuthenticationFailed = "AUTHENTICATION_FAILED"
	TextCodeEmptyPassword        = "EMPTY_PASSWORD"
)

// ErrUsernameExists is returned when a create or update would reuse a
// username held by another account.
var ErrUsernameExists = errors.New("username already in use", errors.CategoryConflict).
	WithTextCode(TextCodeUsernameExists).
	WithCode(errors.CodeConflict)

// ErrEmailExists is returned when a create or update would reuse an
// email held by another account.
var ErrEmailExists = errors.New("email already in use", errors.CategoryConflict).
	WithTextCode(TextCodeEmailExists).
	WithCode(errors.CodeConflict)

// ErrAccountNotFound is the error we return for lookup misses
var ErrAccountNotFound = errors.New("account not found", errors.CategoryNotFound).
	WithTextCode(TextCodeAccountNotFound).
	WithCode(errors.CodeNotFound)

// ErrInvalidCredentials is returned on a password mismatch
var ErrInvalidCredentials = errors.New("the credentials provided are invalid", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(errors.CodeBadRequest)

// ErrAccountLocked is returned when the lockout threshold was reached
// or the account carries a durable lock.
var ErrAccountLocked = errors.New("account is locked", errors.CategoryAuth).
	WithTextCode(TextCodeAccountLocked).
	WithCode(errors.CodeUnauthorized)

// ErrAccountDisabled is returned for deactivated accounts. Only raised
// after the supplied credential verified, so disabled status is never a
// password oracle.
var ErrAccountDisabled = errors.New("account is disabled", errors.CategoryAuth).
	WithTextCode(TextCodeAccountDisabled).
	WithCode(errors.CodeBadRequest)

// ErrAuthenticationFailed is returned when re-proof of the current
// credential fails during a sensitive operation.
var ErrAuthenticationFailed = errors.New("authentication failed", errors.CategoryAuth).
	WithTextCode(TextCodeAuthenticationFailed).
	WithCode(errors.CodeUnauthorized)

// ErrNoEmptyPassword rejects empty credentials before hashing
var ErrNoEmptyPassword = errors.New("password must not be empty", errors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword).
	WithCode(errors.CodeBadRequest)

// existsError builds the identifier-aware variant of a uniqueness error
// so the envelope can template the offending value into its title.
func existsError(base *errors.Error, identifier string) *errors.Error {
	return errors.New(base.Message, base.Category).
		WithTextCode(base.TextCode).
		WithCode(base.Code).
		WithMetadata(map[string]any{"identifier": identifier})
}

// notFoundError carries the identifier that missed.
func notFoundError(identifier string) *errors.Error {
	return errors.New(ErrAccountNotFound.Message, ErrAccountNotFound.Category).
		WithTextCode(ErrAccountNotFound.TextCode).
		WithCode(ErrAccountNotFound.Code).
		WithMetadata(map[string]any{"identifier": identifier})
}

// hasTextCode reports whether err is a structured error tagged with the
// given taxonomy code.
func hasTextCode(err error, code string) bool {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return false
	}
	return richErr.TextCode == code
}

// IsUsernameExists will check for username uniqueness violations
func IsUsernameExists(err error) bool { return hasTextCode(err, TextCodeUsernameExists) }

// IsEmailExists will check for email uniqueness violations
func IsEmailExists(err error) bool { return hasTextCode(err, TextCodeEmailExists) }

// IsAccountNotFound will check for lookup misses
func IsAccountNotFound(err error) bool { return hasTextCode(err, TextCodeAccountNotFound) }

// IsAccountLocked will check for lockout errors
func IsAccountLocked(err error) bool { return hasTextCode(err, TextCodeAccountLocked) }

// IsInvalidCredentials will check for credential mismatches
func IsInvalidCredentials(err error) bool { return hasTextCode(err, TextCodeInvalidCredentials) }

// IsUnknownRole will check for role tokens missing from the catalog
func IsUnknownRole(err error) bool { return hasTextCode(err, TextCodeUnknownRole) }
