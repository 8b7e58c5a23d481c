package auth

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Accounts is the bun-backed account repository. It satisfies the
// AccountStore contract the kernel depends on.
type Accounts interface {
	repository.Repository[*Account]
	AccountStore
}

type accounts struct {
	repository.Repository[*Account]
	db *bun.DB
}

var (
	_ Accounts     = (*accounts)(nil)
	_ AccountStore = (*accounts)(nil)
)

func NewAccountsRepository(db *bun.DB) Accounts {
	repo := repository.NewRepository[*Account](db, repository.ModelHandlers[*Account]{
		NewRecord: func() *Account { return &Account{} },
		GetID: func(a *Account) uuid.UUID {
			if a == nil {
				return uuid.Nil
			}
			return a.ID
		},
		SetID: func(a *Account, id uuid.UUID) {
			if a != nil {
				a.ID = id
			}
		},
		GetIdentifier: func() string {
			return "username"
		},
	})

	return &accounts{
		Repository: repo,
		db:         db,
	}
}

func (a *accounts) FindByUsername(ctx context.Context, username string) (*Account, error) {
	return a.findByColumn(ctx, "username", username)
}

func (a *accounts) FindByEmail(ctx context.Context, email string) (*Account, error) {
	return a.findByColumn(ctx, "email", email)
}

func (a *accounts) FindByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	return a.findByColumn(ctx, "id", id.String())
}

func (a *accounts) findByColumn(ctx context.Context, column, value string) (*Account, error) {
	record := &Account{}
	err := a.db.NewSelect().
		Model(record).
		Where(fmt.Sprintf("?TableAlias.%s = ?", column), value).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if err == sql.ErrNoRows || repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{column: value})
		}
		return nil, err
	}

	return record, nil
}

// Save upserts the record. The store's unique constraints are the
// authoritative backstop for identity uniqueness: a violation that
// slipped past the service-level check still comes back as the
// corresponding exists-error, never as a generic fault.
func (a *accounts) Save(ctx context.Context, record *Account) (*Account, error) {
	if record.ID != uuid.Nil {
		existing, err := a.Repository.GetByIDTx(ctx, a.db, record.ID.String())
		if err == nil {
			record.ID = existing.ID
			updated, err := a.Repository.UpdateTx(ctx, a.db, record, repository.UpdateByID(record.ID.String()))
			if err != nil {
				return nil, translateConstraintError(err, record)
			}
			return updated, nil
		}

		if !repository.IsRecordNotFound(err) {
			return nil, err
		}
	}

	created, err := a.Repository.CreateTx(ctx, a.db, record)
	if err != nil {
		return nil, translateConstraintError(err, record)
	}

	return created, nil
}

// DeleteByID removes the row permanently. A soft-deleted account would
// keep holding its unique username and email, blocking the identifiers
// from ever being reused.
func (a *accounts) DeleteByID(ctx context.Context, id uuid.UUID) error {
	res, err := a.db.NewDelete().
		Model((*Account)(nil)).
		Where("?TableAlias.id = ?", id.String()).
		ForceDelete().
		Exec(ctx)
	if err != nil {
		return err
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{"id": id.String()})
	}

	return nil
}

// translateConstraintError maps unique violations onto the taxonomy.
// The repository layer wraps driver violations in its structured
// duplicate-key kind with a generic rendered message, so the typed
// signal is checked first; raw driver errors fall back to message text
// since sqlite and postgres expose no shared error type for this.
func translateConstraintError(err error, record *Account) error {
	if err == nil {
		return nil
	}

	var richErr *errors.Error
	if errors.As(err, &richErr) && isDuplicateKey(richErr) {
		if duplicateColumn(richErr, err.Error()) == "email" {
			return existsError(ErrEmailExists, record.Email)
		}
		return existsError(ErrUsernameExists, record.Username)
	}

	msg := strings.ToLower(err.Error())
	if !strings.Contains(msg, "unique constraint") && !strings.Contains(msg, "duplicate key") {
		return err
	}

	if strings.Contains(msg, "username") {
		return existsError(ErrUsernameExists, record.Username)
	}
	if strings.Contains(msg, "email") {
		return existsError(ErrEmailExists, record.Email)
	}

	return existsError(ErrUsernameExists, record.Username)
}

func isDuplicateKey(err *errors.Error) bool {
	if err.TextCode == "DUPLICATE_KEY" {
		return true
	}
	return strings.Contains(strings.ToLower(string(err.Category)), "duplicate")
}

// duplicateColumn attributes the violated column from the structured
// metadata, falling back to the rendered chain. Username wins when both
// appear, matching the create/update check ordering.
func duplicateColumn(err *errors.Error, chain string) string {
	for _, val := range err.Metadata {
		s, ok := val.(string)
		if !ok {
			continue
		}
		low := strings.ToLower(s)
		if strings.Contains(low, "username") {
			return "username"
		}
		if strings.Contains(low, "email") {
			return "email"
		}
	}

	low := strings.ToLower(chain)
	if strings.Contains(low, "username") {
		return "username"
	}
	if strings.Contains(low, "email") {
		return "email"
	}
	return ""
}
