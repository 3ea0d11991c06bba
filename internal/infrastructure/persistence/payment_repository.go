package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/atelier/backend/internal/domain/order"
	"github.com/atelier/backend/internal/domain/payment"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPaymentRepository implements payment.Repository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByID finds a payment by its ID
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*payment.Payment, error) {
	var p payment.Payment
	if err := r.db.WithContext(ctx).
		First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// FindByOrder finds the full ledger of an order, oldest first. Recomputation
// folds over this list, so ordering is part of the contract.
func (r *GormPaymentRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]payment.Payment, error) {
	var payments []payment.Payment
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// FindAll finds payments with filtering
func (r *GormPaymentRepository) FindAll(ctx context.Context, filter shared.Filter) ([]payment.Payment, error) {
	var payments []payment.Payment
	query := r.db.WithContext(ctx).Model(&payment.Payment{})
	query = r.applyFilter(query, filter)
	if err := query.Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// Save creates or updates a payment
func (r *GormPaymentRepository) Save(ctx context.Context, p *payment.Payment) error {
	return r.db.WithContext(ctx).Save(p).Error
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormPaymentRepository) SaveWithLock(ctx context.Context, p *payment.Payment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return r.saveWithLockTx(tx, p)
	})
}

// SaveWithRecompute persists the entry and recomputes the owning order's
// balance in the same transaction. The order update is guarded on version,
// so a concurrent ledger mutation rolls back the payment write as well.
func (r *GormPaymentRepository) SaveWithRecompute(ctx context.Context, p *payment.Payment) (*order.Order, error) {
	var o *order.Order
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(p).Error; err != nil {
			return err
		}
		var err error
		o, err = r.recomputeOrderTx(tx, p.OrderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return o, nil
}

// SaveWithLockAndRecompute is SaveWithRecompute with a version check on the
// payment row itself
func (r *GormPaymentRepository) SaveWithLockAndRecompute(ctx context.Context, p *payment.Payment) (*order.Order, error) {
	var o *order.Order
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.saveWithLockTx(tx, p); err != nil {
			return err
		}
		var err error
		o, err = r.recomputeOrderTx(tx, p.OrderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return o, nil
}

// saveWithLockTx performs the version-checked payment update inside tx
func (r *GormPaymentRepository) saveWithLockTx(tx *gorm.DB, p *payment.Payment) error {
	var currentVersion int
	if err := tx.Model(&payment.Payment{}).
		Where("id = ?", p.ID).
		Select("version").
		Scan(&currentVersion).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return shared.ErrNotFound
		}
		return err
	}
	if currentVersion == 0 {
		return shared.ErrNotFound
	}

	if currentVersion != p.Version {
		return shared.ErrConcurrencyConflict
	}

	p.Version++
	p.UpdatedAt = time.Now()

	result := tx.Model(&payment.Payment{}).
		Where("id = ? AND version = ?", p.ID, currentVersion).
		Updates(map[string]interface{}{
			"amount":       p.Amount,
			"status":       p.Status,
			"type":         p.Type,
			"payment_date": p.PaymentDate,
			"notes":        p.Notes,
			"version":      p.Version,
			"updated_at":   p.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// recomputeOrderTx reloads the order and its full ledger inside tx, folds
// the ledger into the aggregate and writes the result under a version guard.
// The fold sees the payment write of the enclosing transaction.
func (r *GormPaymentRepository) recomputeOrderTx(tx *gorm.DB, orderID uuid.UUID) (*order.Order, error) {
	var o order.Order
	if err := tx.First(&o, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}

	var ledger []payment.Payment
	if err := tx.Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&ledger).Error; err != nil {
		return nil, err
	}

	o.ApplyLedger(payment.LedgerTotal(ledger))

	currentVersion := o.Version
	o.Version++
	o.UpdatedAt = time.Now()

	result := tx.Model(&order.Order{}).
		Where("id = ? AND version = ?", o.ID, currentVersion).
		Updates(map[string]interface{}{
			"paid":       o.Paid,
			"remaining":  o.Remaining,
			"status":     o.Status,
			"version":    o.Version,
			"updated_at": o.UpdatedAt,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, shared.ErrConcurrencyConflict
	}
	return &o, nil
}

// Count counts payments with optional filters
func (r *GormPaymentRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&payment.Payment{})
	query = r.applyFilterWithoutPagination(query, filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormPaymentRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	sortField := ValidateSortField(filter.OrderBy, PaymentSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	return query.Order(sortField + " " + sortOrder)
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormPaymentRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "order_id":
			query = query.Where("order_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "type":
			query = query.Where("type = ?", value)
		case "start_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at >= ?", t)
			}
		case "end_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at <= ?", t)
			}
		}
	}

	return query
}

// Ensure GormPaymentRepository implements payment.Repository
var _ payment.Repository = (*GormPaymentRepository)(nil)
