package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Scope narrows a query. Scopes passed to GetAll are applied on top of the implicit
// "not deleted" filter.
type Scope = func(*gorm.DB) *gorm.DB

// entityPtr constrains P to be *E for a model E embedding models.BaseEntity.
type entityPtr[E any] interface {
	*E
	models.Entity
}

// SoftDeleteRepository is the storage contract shared by every entity: reads skip
// logically deleted rows, writes are staged inside a unit of work, and nothing is ever
// physically deleted.
type SoftDeleteRepository[E any, P entityPtr[E]] struct {
	db   *gorm.DB
	name string
	now  func() time.Time
}

// NewSoftDeleteRepository creates a repository for entity type E. name is used in error
// messages.
func NewSoftDeleteRepository[E any, P entityPtr[E]](db *gorm.DB, name string) *SoftDeleteRepository[E, P] {
	return &SoftDeleteRepository[E, P]{
		db:   db,
		name: name,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the time source used to stamp lifecycle fields.
func (r *SoftDeleteRepository[E, P]) SetClock(now func() time.Time) {
	r.now = now
}

// session picks the unit of work when one is given, the plain connection otherwise.
func (r *SoftDeleteRepository[E, P]) session(ctx context.Context, tx *Tx) *gorm.DB {
	if tx != nil {
		return tx.db.WithContext(ctx)
	}
	return r.db.WithContext(ctx)
}

func (r *SoftDeleteRepository[E, P]) writer(ctx context.Context, tx *Tx) (*gorm.DB, error) {
	if tx == nil {
		return nil, ErrNoTransaction
	}
	if tx.done {
		return nil, ErrTxDone
	}
	return tx.db.WithContext(ctx), nil
}

// GetByID returns the active row with the given id, or ErrNotFound.
func (r *SoftDeleteRepository[E, P]) GetByID(ctx context.Context, tx *Tx, id string) (P, error) {
	var entity E
	err := r.session(ctx, tx).First(&entity, "id = ? AND is_deleted = ?", id, false).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%s with ID %s: %w", r.name, id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get %s by ID %s: %w", r.name, id, err)
	}
	return P(&entity), nil
}

// GetByIDIncludingDeleted is the audit read path: it also returns logically deleted rows.
func (r *SoftDeleteRepository[E, P]) GetByIDIncludingDeleted(ctx context.Context, tx *Tx, id string) (P, error) {
	var entity E
	err := r.session(ctx, tx).First(&entity, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%s with ID %s: %w", r.name, id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get %s by ID %s: %w", r.name, id, err)
	}
	return P(&entity), nil
}

// GetAll returns every non-deleted row matching the given scopes.
func (r *SoftDeleteRepository[E, P]) GetAll(ctx context.Context, tx *Tx, scopes ...Scope) ([]E, error) {
	var entities []E
	err := r.session(ctx, tx).
		Scopes(scopes...).
		Where("is_deleted = ?", false).
		Find(&entities).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get all %ss: %w", r.name, err)
	}
	return entities, nil
}

// Add stages the creation of entity. An empty ID is filled with a new UUID; the
// lifecycle fields are reset to those of a fresh, active row.
func (r *SoftDeleteRepository[E, P]) Add(ctx context.Context, tx *Tx, entity P) error {
	db, err := r.writer(ctx, tx)
	if err != nil {
		return err
	}

	base := entity.Base()
	if base.ID == "" {
		base.ID = uuid.New().String()
	} else if _, err := uuid.Parse(base.ID); err != nil {
		return fmt.Errorf("%s ID %q: %w", r.name, base.ID, ErrInvalidID)
	}
	base.CreatedDate = r.now()
	base.UpdatedDate = nil
	base.IsActive = true
	base.IsDeleted = false
	base.DeletedDate = nil

	if err := db.Omit(clause.Associations).Create(entity).Error; err != nil {
		return fmt.Errorf("failed to create %s: %w", r.name, err)
	}
	return nil
}

// Update stages a full update of a non-deleted row. Id, CreatedDate and the delete
// markers are never overwritten.
func (r *SoftDeleteRepository[E, P]) Update(ctx context.Context, tx *Tx, entity P) error {
	return r.update(ctx, tx, entity)
}

// update writes every column of entity except the lifecycle ones and omit.
func (r *SoftDeleteRepository[E, P]) update(ctx context.Context, tx *Tx, entity P, omit ...string) error {
	db, err := r.writer(ctx, tx)
	if err != nil {
		return err
	}

	base := entity.Base()
	now := r.now()
	base.UpdatedDate = &now

	res := db.Model(entity).
		Select("*").
		Omit(append([]string{clause.Associations, "id", "created_date", "is_deleted", "deleted_date"}, omit...)...).
		Where("is_deleted = ?", false).
		Updates(entity)
	if res.Error != nil {
		return fmt.Errorf("failed to update %s: %w", r.name, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s with ID %s not found for update: %w", r.name, base.ID, ErrNotFound)
	}
	return nil
}

// SoftDelete stages the logical delete of a row. DeletedDate is set only once.
func (r *SoftDeleteRepository[E, P]) SoftDelete(ctx context.Context, tx *Tx, id string) error {
	db, err := r.writer(ctx, tx)
	if err != nil {
		return err
	}

	now := r.now()
	res := db.Model(new(E)).
		Where("id = ? AND is_deleted = ?", id, false).
		Updates(map[string]any{
			"is_deleted":   true,
			"is_active":    false,
			"deleted_date": now,
			"updated_date": now,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to delete %s: %w", r.name, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s with ID %s not found for deletion: %w", r.name, id, ErrNotFound)
	}
	return nil
}

// softDeleteWhere stages the logical delete of every live row matching the condition and
// returns how many rows were marked.
func (r *SoftDeleteRepository[E, P]) softDeleteWhere(ctx context.Context, tx *Tx, query string, args ...any) (int64, error) {
	db, err := r.writer(ctx, tx)
	if err != nil {
		return 0, err
	}

	now := r.now()
	res := db.Model(new(E)).
		Where(query, args...).
		Where("is_deleted = ?", false).
		Updates(map[string]any{
			"is_deleted":   true,
			"is_active":    false,
			"deleted_date": now,
			"updated_date": now,
		})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete %ss: %w", r.name, res.Error)
	}
	return res.RowsAffected, nil
}
