package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Error(format string, args ...any)
}

// Principal is the authenticated identity handed to the transport
// layer. It is a snapshot: role changes after issuance do not alter it.
type Principal struct {
	AccountID   string      `json:"account_id"`
	Username    string      `json:"username"`
	Authorities []Authority `json:"authorities"`
}

// HasAuthority checks the snapshot for a permission token
func (p Principal) HasAuthority(authority Authority) bool {
	for _, a := range p.Authorities {
		if a == authority {
			return true
		}
	}
	return false
}

// AccountStore is the durable storage the kernel depends on. Lookup
// misses surface as a record-not-found error, never as a nil record.
type AccountStore interface {
	FindByUsername(ctx context.Context, username string) (*Account, error)
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)
	Save(ctx context.Context, account *Account) (*Account, error)
	DeleteByID(ctx context.Context, id uuid.UUID) error
}

// PreferencesStore persists the per-account preference record
type PreferencesStore interface {
	FindByAccountID(ctx context.Context, accountID uuid.UUID) (*Preferences, error)
	Save(ctx context.Context, prefs *Preferences) (*Preferences, error)
	DeleteByAccountID(ctx context.Context, accountID uuid.UUID) error
}

// CredentialVerifier re-proves a credential; used by sensitive account
// operations before they touch stored secrets.
type CredentialVerifier interface {
	Authenticate(ctx context.Context, username, password string) (Principal, error)
}

// PasswordAuthenticator authenticates passwords
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

// TokenService mints and validates principal tokens
type TokenService interface {
	Generate(principal Principal) (string, error)
	Validate(token string) (Principal, error)
}

// Config holds kernel options
type Config interface {
	GetMaxLoginAttempts() int
	GetLockoutWindow() time.Duration
	GetPasswordHashCost() int
	GetSigningKey() string
	GetTokenExpiration() int
	GetIssuer() string
	GetAudience() []string
}

const (
	// DefaultMaxLoginAttempts is the failure threshold before lockout
	DefaultMaxLoginAttempts = 5
	// DefaultLockoutWindow is the window the failures must fall within
	DefaultLockoutWindow = 15 * time.Minute
)

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
