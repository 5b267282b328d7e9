package ledger

import (
	"context" // Context for store operations
	"errors"  // Error inspection

	"pawapay_webhook/internal/domain" // Importing domain models

	"gorm.io/gorm" // GORM ORM library
)

// MySQLStore implements Store on a GORM MySQL connection. The connection
// must be opened with TranslateError enabled so duplicate-key violations
// surface as gorm.ErrDuplicatedKey.
type MySQLStore struct {
	db *gorm.DB // GORM database handle
}

// NewMySQLStore wraps a GORM connection in a Store
func NewMySQLStore(db *gorm.DB) *MySQLStore {
	return &MySQLStore{db: db}
}

// FindTransactionByReference looks up a transaction by its gateway reference id
func (s *MySQLStore) FindTransactionByReference(ctx context.Context, referenceID string) (*domain.Transaction, error) {
	var txn domain.Transaction // Transaction struct to hold the row
	// Query by the unique reference id column
	if err := s.db.WithContext(ctx).Where("reference_id = ?", referenceID).First(&txn).Error; err != nil {
		// Map a missing row to the package sentinel
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err // Other database error
	}
	return &txn, nil // Return the matched transaction
}

// SettleTransaction applies a terminal status and the wallet balance effect atomically.
// The UPDATE is guarded on status still being pending; zero rows affected means a
// concurrent delivery already settled the transaction and the whole operation aborts.
func (s *MySQLStore) SettleTransaction(ctx context.Context, txnID, walletID, newStatus, description string, effect BalanceEffect) error {
	// Atomic settle
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{"status": newStatus} // Status transition
		// Only overwrite the description when the caller supplied one
		if description != "" {
			updates["description"] = description
		}
		// Conditional transition: only a pending transaction may settle
		res := tx.Model(&domain.Transaction{}).
			Where("id = ? AND status = ?", txnID, domain.StatusPending).
			Updates(updates)
		if res.Error != nil {
			return res.Error // Return error to rollback
		}
		// Zero rows means the transaction already left pending
		if res.RowsAffected == 0 {
			return ErrAlreadySettled // Abort, the wallet must not be touched twice
		}
		// Apply the balance effect when there is one
		if effect.BalanceDelta != 0 || effect.PendingRelease != 0 {
			// GREATEST clamps the pending release at zero
			if err := tx.Model(&domain.Wallet{}).Where("id = ?", walletID).
				Updates(map[string]any{
					"balance":         gorm.Expr("balance + ?", effect.BalanceDelta),
					"pending_balance": gorm.Expr("GREATEST(pending_balance - ?, 0)", effect.PendingRelease),
				}).Error; err != nil {
				return err // Return error to rollback
			}
		}
		return nil // Commit transaction
	})
}

// CreateRefund inserts a completed refund transaction and credits the wallet atomically.
// The unique index on reference_id turns a re-delivered refund callback into a
// duplicate-key error, which maps to ErrDuplicateReference with no wallet mutation.
func (s *MySQLStore) CreateRefund(ctx context.Context, txn *domain.Transaction) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Insert the refund transaction record
		if err := tx.Create(txn).Error; err != nil {
			return err // Return error to rollback
		}
		// Credit the refunded amount to the wallet's available balance
		if err := tx.Model(&domain.Wallet{}).Where("id = ?", txn.WalletID).
			Update("balance", gorm.Expr("balance + ?", txn.Amount)).Error; err != nil {
			return err // Return error to rollback
		}
		return nil // Commit transaction
	})
	// Map a duplicate reference id to the package sentinel
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateReference
	}
	return err
}

// CreateReviewItem parks an unattributable refund for manual reconciliation
func (s *MySQLStore) CreateReviewItem(ctx context.Context, item *domain.ReviewItem) error {
	err := s.db.WithContext(ctx).Create(item).Error // Insert the review row
	// A refund id already parked is not an error worth retrying
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateReference
	}
	return err
}

// RecordEvent appends a webhook event row
func (s *MySQLStore) RecordEvent(ctx context.Context, event *domain.WebhookEvent) error {
	return s.db.WithContext(ctx).Create(event).Error // Insert the event row
}

// ListReviewItems returns review items, newest first, with the total count
func (s *MySQLStore) ListReviewItems(ctx context.Context, openOnly bool, offset, limit int) ([]domain.ReviewItem, int64, error) {
	q := s.db.WithContext(ctx).Model(&domain.ReviewItem{}) // Base query
	// Restrict to unresolved items when requested
	if openOnly {
		q = q.Where("open = ?", true)
	}
	var total int64 // Total count for pagination
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err // Counting failed
	}
	var items []domain.ReviewItem // Slice to hold review items
	// Fetch the requested page, newest first
	if err := q.Order("created_at desc").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return nil, 0, err // Fetching failed
	}
	return items, total, nil
}

// ListEvents returns webhook events, newest first, with the total count
func (s *MySQLStore) ListEvents(ctx context.Context, offset, limit int) ([]domain.WebhookEvent, int64, error) {
	var total int64 // Total count for pagination
	if err := s.db.WithContext(ctx).Model(&domain.WebhookEvent{}).Count(&total).Error; err != nil {
		return nil, 0, err // Counting failed
	}
	var events []domain.WebhookEvent // Slice to hold events
	// Fetch the requested page, newest first
	if err := s.db.WithContext(ctx).Order("created_at desc").Offset(offset).Limit(limit).Find(&events).Error; err != nil {
		return nil, 0, err // Fetching failed
	}
	return events, total, nil
}
