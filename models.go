package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Account is the account model
type Account struct {
	bun.BaseModel        `bun:"table:accounts,alias:acc"`
	ID                   uuid.UUID   `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Username             string      `bun:"username,notnull,unique" json:"username,omitempty"`
	Email                string      `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash         string      `bun:"password_hash" json:"-"`
	FirstName            string      `bun:"first_name" json:"first_name,omitempty"`
	LastName             string      `bun:"last_name" json:"last_name,omitempty"`
	Active               bool        `bun:"active" json:"active"`
	Locked               bool        `bun:"locked" json:"locked"`
	Expired              bool        `bun:"expired" json:"expired"`
	CredentialsExpired   bool        `bun:"credentials_expired" json:"credentials_expired"`
	Role                 Role        `bun:"role,notnull" json:"role,omitempty"`
	Authorities          []Authority `bun:"authorities" json:"authorities,omitempty"`
	JoinDate             *time.Time  `bun:"join_date,nullzero" json:"join_date,omitempty"`
	LastLoginDate        *time.Time  `bun:"last_login_date,nullzero" json:"last_login_date,omitempty"`
	LastLoginDateDisplay *time.Time  `bun:"last_login_date_display,nullzero" json:"last_login_date_display,omitempty"`
	CreatedAt            *time.Time  `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt            *time.Time  `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt            *time.Time  `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// AssignRole sets the role and rederives the authority set from the
// catalog so the two can never diverge. All role mutations go through
// here.
func (a *Account) AssignRole(role Role) error {
	authorities, err := AuthoritiesFor(role)
	if err != nil {
		return err
	}
	a.Role = role
	a.Authorities = authorities
	return nil
}

// TrackLogin shifts the previous login timestamp into the display slot
// before recording the new one.
func (a *Account) TrackLogin(now time.Time) {
	a.LastLoginDateDisplay = a.LastLoginDate
	a.LastLoginDate = &now
}

// Preferences is the per-account preference record. Created alongside
// the account, removed with it.
type Preferences struct {
	bun.BaseModel   `bun:"table:preferences,alias:prf"`
	ID              uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	AccountID       uuid.UUID  `bun:"account_id,notnull,unique" json:"account_id,omitempty"`
	Account         *Account   `bun:"rel:belongs-to,join:account_id=id" json:"account,omitempty"`
	DarkMode        bool       `bun:"dark_mode" json:"dark_mode"`
	ContentLanguage string     `bun:"content_language" json:"content_language,omitempty"`
	CreatedAt       *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt       *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt       *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// PreferencesInput carries a field-level patch: only non-nil fields are
// applied to the stored record.
type PreferencesInput struct {
	DarkMode        *bool   `json:"dark_mode,omitempty"`
	ContentLanguage *string `json:"content_language,omitempty"`
}

// Patch merges the supplied fields into the record.
func (p *Preferences) Patch(input PreferencesInput) *Preferences {
	if input.DarkMode != nil {
		p.DarkMode = *input.DarkMode
	}
	if input.ContentLanguage != nil {
		p.ContentLanguage = *input.ContentLanguage
	}
	return p
}
