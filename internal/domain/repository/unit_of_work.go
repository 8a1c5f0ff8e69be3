package repository

import (
	"context"
	"errors"
	"fmt"
)

// Tx is an open unit of work spanning both stores. Writes made through
// Users() and Places() become visible to other readers only on Commit.
type Tx interface {
	Users() UserRepository
	Places() PlaceRepository
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UnitOfWork starts transactions. Implementations must serialize, or abort
// with an error, concurrent commits that touch the same user.
type UnitOfWork interface {
	Begin(ctx context.Context) (Tx, error)
}

// RunInTx begins a transaction, runs fn and commits. Any error from fn or
// from Commit rolls the transaction back. Nothing is retried.
func RunInTx(ctx context.Context, uow UnitOfWork, fn func(ctx context.Context, tx Tx) error) (err error) {
	tx, err := uow.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				err = errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
			}
		}
	}()

	if err = fn(ctx, tx); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
