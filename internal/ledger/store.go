package ledger

import (
	"context" // Context for store operations
	"errors"  // Sentinel error values

	"pawapay_webhook/internal/domain" // Importing domain models
)

// Sentinel errors surfaced by Store implementations
var (
	ErrNotFound           = errors.New("transaction not found")         // No transaction matches the reference id
	ErrAlreadySettled     = errors.New("transaction already settled")   // Status already left pending, no-op
	ErrDuplicateReference = errors.New("reference id already recorded") // Unique reference constraint hit
)

// BalanceEffect describes the wallet mutation applied alongside a status
// transition. PendingRelease is clamped at zero by the store so a replayed
// release can never drive pending_balance negative.
type BalanceEffect struct {
	BalanceDelta   int64 // Signed change to the wallet's available balance
	PendingRelease int64 // Amount removed from the wallet's pending balance
}

// Store is the ledger the reconcilers read and conditionally mutate.
// Implementations must make SettleTransaction and CreateRefund atomic: the
// status transition and the wallet mutation commit together or not at all.
type Store interface {
	// FindTransactionByReference returns the transaction whose reference_id
	// matches the gateway's id, or ErrNotFound.
	FindTransactionByReference(ctx context.Context, referenceID string) (*domain.Transaction, error)

	// SettleTransaction moves a transaction out of pending and applies the
	// balance effect to its wallet in one atomic operation. The transition
	// is guarded on the transaction still being pending; if it already
	// advanced, ErrAlreadySettled is returned and nothing is written.
	SettleTransaction(ctx context.Context, txnID, walletID, newStatus, description string, effect BalanceEffect) error

	// CreateRefund inserts a new completed refund transaction and credits
	// its wallet's balance atomically. A reference id that was already
	// recorded returns ErrDuplicateReference with no wallet mutation.
	CreateRefund(ctx context.Context, txn *domain.Transaction) error

	// CreateReviewItem parks an unattributable refund for manual
	// reconciliation. A refund id already parked returns
	// ErrDuplicateReference.
	CreateReviewItem(ctx context.Context, item *domain.ReviewItem) error

	// RecordEvent appends a webhook event row for operator diagnosis.
	RecordEvent(ctx context.Context, event *domain.WebhookEvent) error

	// ListReviewItems returns review items, newest first, with the total count.
	ListReviewItems(ctx context.Context, openOnly bool, offset, limit int) ([]domain.ReviewItem, int64, error)

	// ListEvents returns webhook events, newest first, with the total count.
	ListEvents(ctx context.Context, offset, limit int) ([]domain.WebhookEvent, int64, error)
}
