package auth

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

// CreateAccountInput carries the fields accepted at account creation.
// Lifecycle flags are caller supplied; a nil Active defaults to true.
type CreateAccountInput struct {
	Username           string `json:"username"`
	Email              string `json:"email"`
	Password           string `json:"password"`
	FirstName          string `json:"first_name"`
	LastName           string `json:"last_name"`
	Role               string `json:"role"`
	Active             *bool  `json:"active"`
	Locked             bool   `json:"locked"`
	Expired            bool   `json:"expired"`
	CredentialsExpired bool   `json:"credentials_expired"`
}

// UpdateAccountInput carries the full replacement state for an update.
// This is a whole-record operation; the field-level counterpart is
// PatchPreferences.
type UpdateAccountInput struct {
	Username           string `json:"username"`
	Email              string `json:"email"`
	FirstName          string `json:"first_name"`
	LastName           string `json:"last_name"`
	Role               string `json:"role"`
	Active             bool   `json:"active"`
	Locked             bool   `json:"locked"`
	Expired            bool   `json:"expired"`
	CredentialsExpired bool   `json:"credentials_expired"`
}

// AccountService owns the account lifecycle: creation, update, removal,
// credential changes, and the preference record that travels with each
// account.
type AccountService struct {
	store    AccountStore
	prefs    PreferencesStore
	hasher   *Hasher
	guard    *LoginAttemptGuard
	verifier CredentialVerifier
	logger   Logger
	now      func() time.Time
}

// AccountServiceOption customizes service construction
type AccountServiceOption func(*AccountService)

// WithServiceHasher overrides the password hasher.
func WithServiceHasher(hasher *Hasher) AccountServiceOption {
	return func(s *AccountService) {
		if hasher != nil {
			s.hasher = hasher
		}
	}
}

// WithServiceGuard wires the login attempt guard so deletes can evict
// stale attempt records.
func WithServiceGuard(guard *LoginAttemptGuard) AccountServiceOption {
	return func(s *AccountService) {
		s.guard = guard
	}
}

// WithServiceClock injects a custom clock (useful for tests).
func WithServiceClock(clock func() time.Time) AccountServiceOption {
	return func(s *AccountService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithServiceLogger overrides the logger.
func WithServiceLogger(logger Logger) AccountServiceOption {
	return func(s *AccountService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithServiceVerifier wires the credential verifier used to re-prove
// the current password before sensitive changes.
func WithServiceVerifier(verifier CredentialVerifier) AccountServiceOption {
	return func(s *AccountService) {
		s.verifier = verifier
	}
}

// NewAccountService will create a new AccountService
func NewAccountService(store AccountStore, prefs PreferencesStore, opts ...AccountServiceOption) *AccountService {
	s := &AccountService{
		store:  store,
		prefs:  prefs,
		hasher: NewHasher(0),
		logger: defLogger{},
		now:    time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	return s
}

// Create validates identity uniqueness, resolves the role, encodes the
// credential and persists a new account plus its preference record.
// Username is checked before email: when both collide only the username
// conflict is reported.
func (s *AccountService) Create(ctx context.Context, input CreateAccountInput) (*Account, error) {
	if err := s.checkUsernameFree(ctx, input.Username, uuid.Nil); err != nil {
		return nil, err
	}
	if err := s.checkEmailFree(ctx, input.Email, uuid.Nil); err != nil {
		return nil, err
	}

	hash, err := s.hasher.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	joinDate := s.now()
	account := &Account{
		ID:                 uuid.New(),
		Username:           input.Username,
		Email:              input.Email,
		PasswordHash:       hash,
		FirstName:          input.FirstName,
		LastName:           input.LastName,
		Active:             input.Active == nil || *input.Active,
		Locked:             input.Locked,
		Expired:            input.Expired,
		CredentialsExpired: input.CredentialsExpired,
		JoinDate:           &joinDate,
	}

	if err := account.AssignRole(resolveRoleToken(input.Role)); err != nil {
		return nil, err
	}

	account, err = s.store.Save(ctx, account)
	if err != nil {
		return nil, err
	}

	if _, err := s.prefs.Save(ctx, &Preferences{ID: uuid.New(), AccountID: account.ID}); err != nil {
		// an account without its preference record would resolve but
		// fail every preference operation; roll it back
		if derr := s.store.DeleteByID(ctx, account.ID); derr != nil {
			s.logger.Error("failed to roll back account after preferences error",
				"username", account.Username, "error", derr)
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to create account preferences")
	}

	s.logger.Info("account created", "username", account.Username, "role", account.Role)

	return account, nil
}

// Update resolves the account by its current username and persists the
// full replacement state. The new username and email may collide only
// with the account itself; the comparison is by id, not by value.
func (s *AccountService) Update(ctx context.Context, currentUsername string, input UpdateAccountInput) (*Account, error) {
	account, err := s.FindByUsername(ctx, currentUsername)
	if err != nil {
		return nil, err
	}

	if err := s.checkUsernameFree(ctx, input.Username, account.ID); err != nil {
		return nil, err
	}
	if err := s.checkEmailFree(ctx, input.Email, account.ID); err != nil {
		return nil, err
	}

	account.Username = input.Username
	account.Email = input.Email
	account.FirstName = input.FirstName
	account.LastName = input.LastName
	account.Active = input.Active
	account.Locked = input.Locked
	account.Expired = input.Expired
	account.CredentialsExpired = input.CredentialsExpired

	if err := account.AssignRole(resolveRoleToken(input.Role)); err != nil {
		return nil, err
	}

	return s.store.Save(ctx, account)
}

// Delete removes the account and its preference record, and evicts any
// live attempt-guard record for hygiene.
func (s *AccountService) Delete(ctx context.Context, username string) error {
	account, err := s.FindByUsername(ctx, username)
	if err != nil {
		return err
	}

	if err := s.prefs.DeleteByAccountID(ctx, account.ID); err != nil && !repository.IsRecordNotFound(err) {
		return errors.Wrap(err, errors.CategoryInternal, "failed to delete account preferences")
	}

	if err := s.store.DeleteByID(ctx, account.ID); err != nil {
		return err
	}

	if s.guard != nil {
		s.guard.Evict(username)
	}

	return nil
}

// ChangePassword requires the caller to re-prove the current credential
// before the new one is hashed and stored.
func (s *AccountService) ChangePassword(ctx context.Context, username, currentPassword, newPassword string) (*Account, error) {
	if s.verifier == nil {
		return nil, errors.New("no credential verifier configured", errors.CategoryInternal)
	}

	if _, err := s.verifier.Authenticate(ctx, username, currentPassword); err != nil {
		return nil, errors.Wrap(err, errors.CategoryAuth, "current password re-proof failed").
			WithTextCode(TextCodeAuthenticationFailed).
			WithCode(errors.CodeUnauthorized)
	}

	account, err := s.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	hash, err := s.hasher.HashPassword(newPassword)
	if err != nil {
		return nil, err
	}

	account.PasswordHash = hash
	account.CredentialsExpired = false

	return s.store.Save(ctx, account)
}

// FindByUsername resolves an account, mapping a store miss to the
// taxonomy's not-found kind.
func (s *AccountService) FindByUsername(ctx context.Context, username string) (*Account, error) {
	account, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, notFoundError(username)
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to resolve account")
	}
	return account, nil
}

// FindByID resolves an account by id.
func (s *AccountService) FindByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	account, err := s.store.FindByID(ctx, id)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, notFoundError(id.String())
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to resolve account")
	}
	return account, nil
}

// GetPreferences returns the preference record for an account.
func (s *AccountService) GetPreferences(ctx context.Context, username string) (*Preferences, error) {
	account, err := s.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	prefs, err := s.prefs.FindByAccountID(ctx, account.ID)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, notFoundError(username)
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to resolve preferences")
	}
	return prefs, nil
}

// PatchPreferences merges the supplied non-nil fields into the stored
// preference record.
func (s *AccountService) PatchPreferences(ctx context.Context, username string, input PreferencesInput) (*Preferences, error) {
	prefs, err := s.GetPreferences(ctx, username)
	if err != nil {
		return nil, err
	}

	return s.prefs.Save(ctx, prefs.Patch(input))
}

// checkUsernameFree fails when another account already holds username.
// selfID exempts the owning account during updates.
func (s *AccountService) checkUsernameFree(ctx context.Context, username string, selfID uuid.UUID) error {
	existing, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil
		}
		return errors.Wrap(err, errors.CategoryInternal, "failed to check username uniqueness")
	}

	if selfID != uuid.Nil && existing.ID == selfID {
		return nil
	}

	return existsError(ErrUsernameExists, username)
}

func (s *AccountService) checkEmailFree(ctx context.Context, email string, selfID uuid.UUID) error {
	existing, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil
		}
		return errors.Wrap(err, errors.CategoryInternal, "failed to check email uniqueness")
	}

	if selfID != uuid.Nil && existing.ID == selfID {
		return nil
	}

	return existsError(ErrEmailExists, email)
}

// resolveRoleToken normalizes a client role token. Empty tokens default
// to the signup role; catalog membership is checked by AssignRole.
func resolveRoleToken(token string) Role {
	if token == "" {
		return RoleUser
	}
	return Role(strings.ToUpper(token))
}
