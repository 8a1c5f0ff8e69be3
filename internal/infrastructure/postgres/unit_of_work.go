package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/oksasatya/places-api/internal/domain/repository"
)

// UnitOfWork opens pgx transactions whose repositories share the tx.
// Users are locked with SELECT ... FOR UPDATE. Two transactions that touch
// the same user serialize on that lock as long as each takes it before
// writing a place that references the user.
type UnitOfWork struct {
	db TxBeginner
}

func NewUnitOfWork(db TxBeginner) *UnitOfWork {
	return &UnitOfWork{db: db}
}

func (u *UnitOfWork) Begin(ctx context.Context) (repository.Tx, error) {
	tx, err := u.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &pgTx{
		tx:     tx,
		users:  NewUserRepository(tx),
		places: NewPlaceRepository(tx),
	}, nil
}

type pgTx struct {
	tx     pgx.Tx
	users  *UserRepository
	places *PlaceRepository
	done   bool
}

func (t *pgTx) Users() repository.UserRepository   { return t.users }
func (t *pgTx) Places() repository.PlaceRepository { return t.places }

// Commit ends the tx. pgx rolls back on a failed commit, so the tx is done either way.
func (t *pgTx) Commit(ctx context.Context) error {
	if t.done {
		return pgx.ErrTxClosed
	}
	t.done = true
	return t.tx.Commit(ctx)
}

// Rollback is a no-op once the tx has ended.
func (t *pgTx) Rollback(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	if err := t.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return err
	}
	return nil
}

var _ repository.UnitOfWork = (*UnitOfWork)(nil)
