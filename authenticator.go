package auth

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
)

// Authenticator is the authentication gate: it combines credential
// verification with the attempt guard and the account's durable lock
// state, and issues principals on success.
type Authenticator struct {
	store  AccountStore
	guard  *LoginAttemptGuard
	hasher *Hasher
	tokens TokenService
	logger Logger
	now    func() time.Time
}

// AuthenticatorOption customizes gate construction
type AuthenticatorOption func(*Authenticator)

// WithAuthenticatorHasher overrides the password hasher.
func WithAuthenticatorHasher(hasher *Hasher) AuthenticatorOption {
	return func(a *Authenticator) {
		if hasher != nil {
			a.hasher = hasher
		}
	}
}

// WithAuthenticatorTokens wires a TokenService so Login can mint
// principal tokens.
func WithAuthenticatorTokens(tokens TokenService) AuthenticatorOption {
	return func(a *Authenticator) {
		a.tokens = tokens
	}
}

// WithAuthenticatorClock injects a custom clock (useful for tests).
func WithAuthenticatorClock(clock func() time.Time) AuthenticatorOption {
	return func(a *Authenticator) {
		if clock != nil {
			a.now = clock
		}
	}
}

// WithAuthenticatorLogger overrides the logger.
func WithAuthenticatorLogger(logger Logger) AuthenticatorOption {
	return func(a *Authenticator) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(store AccountStore, guard *LoginAttemptGuard, opts ...AuthenticatorOption) *Authenticator {
	a := &Authenticator{
		store:  store,
		guard:  guard,
		hasher: NewHasher(0),
		logger: defLogger{},
		now:    time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}

	return a
}

// Authenticate runs one authentication attempt:
//
//  1. resolve the account; a miss keeps its distinct not-found kind
//  2. threshold reached in the guard: persist locked=true and fail
//  3. already locked: evict the guard record and fail
//  4. verify the credential; a mismatch counts a failure
//  5. inactive accounts fail only after the credential verified
//  6. success: evict the record, shift last-login bookkeeping, persist,
//     and return a principal snapshot
func (a *Authenticator) Authenticate(ctx context.Context, username, password string) (Principal, error) {
	account, err := a.store.FindByUsername(ctx, username)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return Principal{}, notFoundError(username)
		}
		return Principal{}, errors.Wrap(err, errors.CategoryInternal, "failed to resolve account during authentication")
	}

	if a.guard.HasExceededMaxAttempts(username) {
		account.Locked = true
		if _, err := a.store.Save(ctx, account); err != nil {
			return Principal{}, errors.Wrap(err, errors.CategoryInternal, "failed to persist account lock")
		}
		a.logger.Info("account locked after repeated failures", "username", username)
		return Principal{}, ErrAccountLocked
	}

	if account.Locked {
		// lock already recorded, stop counting against it
		a.guard.Evict(username)
		return Principal{}, ErrAccountLocked
	}

	if err := a.hasher.ComparePasswordAndHash(password, account.PasswordHash); err != nil {
		if IsInvalidCredentials(err) {
			a.guard.RecordFailure(username)
			return Principal{}, ErrInvalidCredentials
		}
		return Principal{}, errors.Wrap(err, errors.CategoryInternal, "failed to verify credential")
	}

	if !account.Active {
		return Principal{}, ErrAccountDisabled
	}

	a.guard.Evict(username)
	account.TrackLogin(a.now())

	if _, err := a.store.Save(ctx, account); err != nil {
		return Principal{}, errors.Wrap(err, errors.CategoryInternal, "failed to persist login bookkeeping")
	}

	return newPrincipal(account), nil
}

// Login authenticates and mints a signed principal token. Requires a
// TokenService to be configured.
func (a *Authenticator) Login(ctx context.Context, username, password string) (string, Principal, error) {
	principal, err := a.Authenticate(ctx, username, password)
	if err != nil {
		a.logger.Error("login failed", "username", username, "error", err)
		return "", Principal{}, err
	}

	if a.tokens == nil {
		return "", Principal{}, errors.New("no token service configured", errors.CategoryInternal)
	}

	token, err := a.tokens.Generate(principal)
	if err != nil {
		return "", Principal{}, err
	}

	return token, principal, nil
}

// Unlock clears the durable lock and any live attempt record; the
// administrative counterpart of the guard's automatic lockout.
func (a *Authenticator) Unlock(ctx context.Context, username string) (*Account, error) {
	account, err := a.store.FindByUsername(ctx, username)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, notFoundError(username)
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to resolve account")
	}

	account.Locked = false
	a.guard.Evict(username)

	return a.store.Save(ctx, account)
}

// newPrincipal snapshots the account's identity and authority set;
// later role changes do not alter an issued principal.
func newPrincipal(account *Account) Principal {
	authorities := make([]Authority, len(account.Authorities))
	copy(authorities, account.Authorities)

	return Principal{
		AccountID:   account.ID.String(),
		Username:    account.Username,
		Authorities: authorities,
	}
}

var _ CredentialVerifier = (*Authenticator)(nil)
