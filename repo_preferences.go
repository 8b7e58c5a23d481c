package auth

import (
	"context"
	"database/sql"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// PreferencesRepository is the bun-backed preference store
type PreferencesRepository interface {
	repository.Repository[*Preferences]
	PreferencesStore
}

type preferences struct {
	repository.Repository[*Preferences]
	db *bun.DB
}

var (
	_ PreferencesRepository = (*preferences)(nil)
	_ PreferencesStore      = (*preferences)(nil)
)

func NewPreferencesRepository(db *bun.DB) PreferencesRepository {
	repo := repository.NewRepository[*Preferences](db, repository.ModelHandlers[*Preferences]{
		NewRecord: func() *Preferences { return &Preferences{} },
		GetID: func(p *Preferences) uuid.UUID {
			if p == nil {
				return uuid.Nil
			}
			return p.ID
		},
		SetID: func(p *Preferences, id uuid.UUID) {
			if p != nil {
				p.ID = id
			}
		},
		GetIdentifier: func() string {
			return "account_id"
		},
	})

	return &preferences{
		Repository: repo,
		db:         db,
	}
}

func (p *preferences) FindByAccountID(ctx context.Context, accountID uuid.UUID) (*Preferences, error) {
	record := &Preferences{}
	err := p.db.NewSelect().
		Model(record).
		Where("?TableAlias.account_id = ?", accountID.String()).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if err == sql.ErrNoRows || repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"account_id": accountID.String()})
		}
		return nil, err
	}

	return record, nil
}

func (p *preferences) Save(ctx context.Context, record *Preferences) (*Preferences, error) {
	if record.ID != uuid.Nil {
		existing, err := p.Repository.GetByIDTx(ctx, p.db, record.ID.String())
		if err == nil {
			record.ID = existing.ID
			return p.Repository.UpdateTx(ctx, p.db, record, repository.UpdateByID(record.ID.String()))
		}

		if !repository.IsRecordNotFound(err) {
			return nil, err
		}
	}

	return p.Repository.CreateTx(ctx, p.db, record)
}

func (p *preferences) DeleteByAccountID(ctx context.Context, accountID uuid.UUID) error {
	_, err := p.db.NewDelete().
		Model((*Preferences)(nil)).
		Where("?TableAlias.account_id = ?", accountID.String()).
		ForceDelete().
		Exec(ctx)
	return err
}
