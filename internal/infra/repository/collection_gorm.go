package repository

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/BruksfildServices01/schedmate/internal/models"
	"github.com/BruksfildServices01/schedmate/internal/remote"
)

// GormCollection implements remote.Collection on top of one gorm model.
type GormCollection[T any] struct {
	db *gorm.DB
}

func NewGormCollection[T any](db *gorm.DB) *GormCollection[T] {
	return &GormCollection[T]{db: db}
}

// NewStore wires the three dashboard collections around auth.
func NewStore(db *gorm.DB, auth remote.Auth) remote.Store {
	return remote.Store{
		Auth:     auth,
		Clients:  NewGormCollection[models.Client](db),
		Profiles: NewGormCollection[models.BusinessProfile](db),
		Bookings: NewGormCollection[models.Booking](db),
	}
}

// --------------------------------------------------
// Reads
// --------------------------------------------------

func (r *GormCollection[T]) Select(ctx context.Context, q remote.Query) ([]T, error) {
	var out []T
	if err := r.query(ctx, q).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormCollection[T]) Single(ctx context.Context, q remote.Query) (*T, error) {
	var out T
	if err := r.query(ctx, q).Take(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, remote.ErrNoRows
		}
		return nil, err
	}
	return &out, nil
}

func (r *GormCollection[T]) query(ctx context.Context, q remote.Query) *gorm.DB {
	tx := r.db.WithContext(ctx).Model(new(T))

	if len(q.Filter) > 0 {
		tx = tx.Where(map[string]any(q.Filter))
	}

	for _, o := range q.Order {
		tx = tx.Order(clause.OrderByColumn{
			Column: clause.Column{Name: o.Column},
			Desc:   o.Desc,
		})
	}

	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	return tx
}

// --------------------------------------------------
// Writes
// --------------------------------------------------

func (r *GormCollection[T]) Insert(ctx context.Context, rec *T) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *GormCollection[T]) Update(
	ctx context.Context,
	f remote.Filter,
	fields map[string]any,
) (int64, error) {

	if len(f) == 0 {
		return 0, remote.ErrUnscoped
	}

	res := r.db.WithContext(ctx).
		Model(new(T)).
		Where(map[string]any(f)).
		Updates(fields)

	return res.RowsAffected, res.Error
}

func (r *GormCollection[T]) Delete(ctx context.Context, f remote.Filter) (int64, error) {
	if len(f) == 0 {
		return 0, remote.ErrUnscoped
	}

	res := r.db.WithContext(ctx).
		Where(map[string]any(f)).
		Delete(new(T))

	return res.RowsAffected, res.Error
}

func (r *GormCollection[T]) Upsert(ctx context.Context, rec *T, conflictKey string) error {
	stmt := &gorm.Statement{DB: r.db}
	if err := stmt.Parse(rec); err != nil {
		return err
	}

	field := stmt.Schema.LookUpField(conflictKey)
	if field == nil {
		return fmt.Errorf("upsert: unknown conflict column %q", conflictKey)
	}
	key, _ := field.ValueOf(ctx, reflect.ValueOf(rec).Elem())

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: field.DBName}},
			UpdateAll: true,
		}).Create(rec).Error; err != nil {
			return err
		}

		var saved T
		if err := tx.Where(clause.Eq{
			Column: clause.Column{Name: field.DBName},
			Value:  key,
		}).Take(&saved).Error; err != nil {
			return err
		}

		*rec = saved
		return nil
	})
}
