package repositories

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UnitOfWork opens atomic scopes over the database. Every repository write is issued
// against a Tx obtained here and becomes durable only when that Tx commits.
type UnitOfWork struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewUnitOfWork creates a UnitOfWork on top of db.
func NewUnitOfWork(db *gorm.DB, log *zap.Logger) *UnitOfWork {
	if log == nil {
		log = zap.NewNop()
	}
	return &UnitOfWork{db: db, log: log}
}

// Tx is the handle of one open unit of work. It must be finished exactly once with
// Commit or Rollback and is not safe for concurrent use.
type Tx struct {
	db   *gorm.DB
	done bool
}

// Begin opens a new unit of work. Units of work do not nest.
func (u *UnitOfWork) Begin(ctx context.Context) (*Tx, error) {
	tx := u.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}
	return &Tx{db: tx}, nil
}

// Commit durably applies every staged write, or none of them.
func (t *Tx) Commit() error {
	if t.done {
		return ErrTxDone
	}
	t.done = true
	if err := t.db.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Rollback discards every staged write.
func (t *Tx) Rollback() error {
	if t.done {
		return ErrTxDone
	}
	t.done = true
	if err := t.db.Rollback().Error; err != nil {
		return fmt.Errorf("failed to roll back transaction: %w", err)
	}
	return nil
}

// Done reports whether the unit of work has been committed or rolled back.
func (t *Tx) Done() bool {
	return t.done
}

// Do runs fn inside a new unit of work. A nil return commits; an error or panic rolls
// back and the error (or panic) is passed through unchanged.
func (u *UnitOfWork) Do(ctx context.Context, fn func(tx *Tx) error) (err error) {
	tx, err := u.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				u.log.Error("rollback after panic failed", zap.Error(rbErr))
			}
			panic(p)
		}
	}()

	if err = fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			u.log.Error("rollback failed", zap.Error(rbErr), zap.NamedError("cause", err))
		}
		return err
	}
	return tx.Commit()
}
