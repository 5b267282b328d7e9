package webhook

import (
	"context" // Context for store operations
	"errors"  // Sentinel error inspection
	"strings" // Status lowercasing for descriptions

	"pawapay_webhook/internal/domain" // Importing domain models
	"pawapay_webhook/internal/ledger" // Ledger store interface

	"github.com/google/uuid"     // UUIDs for new ledger rows
	"github.com/sirupsen/logrus" // Logging library
)

// Gateway status strings PawaPay reports in callbacks
const (
	gatewayCompleted = "COMPLETED"
	gatewayFailed    = "FAILED"
	gatewayRejected  = "REJECTED"
)

// Reconciler applies classified callbacks to the ledger. One instance
// serves all three families; the per-family debit/credit rules live in
// settlementFor and applyRefund.
type Reconciler struct {
	store ledger.Store // Ledger store, injected at startup
}

// NewReconciler builds a Reconciler over a ledger store
func NewReconciler(store ledger.Store) *Reconciler {
	return &Reconciler{store: store}
}

// Apply reconciles one callback against the ledger and reports the outcome.
// A non-nil error always pairs with domain.OutcomeError and means the
// mutation may not have landed, so the gateway must retry.
func (r *Reconciler) Apply(ctx context.Context, cb *Callback) (string, error) {
	// Refunds create a new transaction; deposits and payouts settle an existing one
	if cb.Family == FamilyRefund {
		return r.applyRefund(ctx, cb)
	}
	return r.applySettlement(ctx, cb)
}

// applySettlement is the shared deposit/payout skeleton: look up the pending
// transaction by reference id, derive the per-family balance effect, and
// settle both records in one conditional store operation.
func (r *Reconciler) applySettlement(ctx context.Context, cb *Callback) (string, error) {
	txn, err := r.store.FindTransactionByReference(ctx, cb.ReferenceID) // Join on reference id
	// Unknown reference: acknowledge without ledger action so the gateway stops retrying
	if errors.Is(err, ledger.ErrNotFound) {
		logrus.WithFields(logrus.Fields{
			"family":       cb.Family,      // Callback family
			"reference_id": cb.ReferenceID, // Gateway reference id
		}).Warn("Transaction not found for callback") // Log the orphaned callback
		return domain.OutcomeNotFound, nil
	}
	if err != nil {
		return domain.OutcomeError, err // Store unavailable, force a retry
	}
	newStatus, effect, actionable := settlementFor(cb.Family, cb.Status, cb.Amount)
	// Unknown gateway statuses are forward-compatible no-ops
	if !actionable {
		logrus.WithFields(logrus.Fields{
			"family":       cb.Family,      // Callback family
			"reference_id": cb.ReferenceID, // Gateway reference id
			"status":       cb.Status,      // Unhandled gateway status
		}).Info("Callback status carries no ledger action") // Log and acknowledge
		return domain.OutcomeIgnored, nil
	}
	// Failure reasons land in the transaction description
	description := ""
	if newStatus == domain.StatusFailed {
		description = cb.Reason // Gateway-supplied reason
		if description == "" {
			// Fall back to a generic note, e.g. "Deposit failed"
			description = capitalize(string(cb.Family)) + " " + strings.ToLower(cb.Status)
		}
	}
	// Settle status and wallet together, conditional on the transaction still pending
	err = r.store.SettleTransaction(ctx, txn.ID, txn.WalletID, newStatus, description, effect)
	// Already settled: a duplicate or concurrent delivery won the race, nothing to do
	if errors.Is(err, ledger.ErrAlreadySettled) {
		return domain.OutcomeDuplicate, nil
	}
	if err != nil {
		return domain.OutcomeError, err // Mutation failed, force a retry
	}
	// Log the applied movement
	logrus.WithFields(logrus.Fields{
		"family":       cb.Family,      // Callback family
		"reference_id": cb.ReferenceID, // Gateway reference id
		"wallet_id":    txn.WalletID,   // Affected wallet
		"amount":       cb.Amount,      // Amount in minor units
		"status":       newStatus,      // Resulting transaction status
	}).Info("Callback applied to ledger") // Log success
	return domain.OutcomeApplied, nil
}

// settlementFor maps a gateway status to the terminal transaction status and
// the wallet balance effect for the family. actionable is false for statuses
// that carry no ledger action.
//
// The asymmetry between the families is intentional: a completed deposit
// moves the amount from pending into balance, a failed deposit releases the
// reservation without granting it, a completed payout needs no mutation
// because the money left the wallet at initiation, and a failed payout
// reverses that debit.
func settlementFor(family Family, gatewayStatus string, amount int64) (newStatus string, effect ledger.BalanceEffect, actionable bool) {
	switch gatewayStatus {
	case gatewayCompleted:
		if family == FamilyDeposit {
			// Reserved funds become usable
			return domain.StatusCompleted, ledger.BalanceEffect{BalanceDelta: amount, PendingRelease: amount}, true
		}
		// Payout: the debit already happened at initiation
		return domain.StatusCompleted, ledger.BalanceEffect{}, true
	case gatewayFailed, gatewayRejected:
		if family == FamilyDeposit {
			// Release the reservation without crediting anything
			return domain.StatusFailed, ledger.BalanceEffect{PendingRelease: amount}, true
		}
		// Payout: refund the initiation debit back into balance
		return domain.StatusFailed, ledger.BalanceEffect{BalanceDelta: amount}, true
	}
	return "", ledger.BalanceEffect{}, false // Unknown status, no-op
}

// capitalize upper-cases the first letter of an ASCII word
func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// applyRefund handles refund callbacks: locate the original deposit to
// discover the wallet, then create a brand-new completed refund transaction
// crediting that wallet. The original deposit transaction is never mutated.
func (r *Reconciler) applyRefund(ctx context.Context, cb *Callback) (string, error) {
	// Only a completed refund moves money; everything else is acknowledged
	if cb.Status != gatewayCompleted {
		return domain.OutcomeIgnored, nil
	}
	original, err := r.store.FindTransactionByReference(ctx, cb.DepositID) // Find the refunded deposit
	// Unattributable refund: park it for manual reconciliation instead of dropping it
	if cb.DepositID == "" || errors.Is(err, ledger.ErrNotFound) {
		return r.parkForReview(ctx, cb)
	}
	if err != nil {
		return domain.OutcomeError, err // Store unavailable, force a retry
	}
	// New refund transaction crediting the original deposit's wallet
	refund := &domain.Transaction{
		ID:          uuid.NewString(),                     // Fresh internal id
		WalletID:    original.WalletID,                    // Wallet discovered via the deposit
		ReferenceID: cb.ReferenceID,                       // The refund id, unique join key
		Type:        domain.TypeRefund,                    // Transaction type
		Amount:      cb.Amount,                            // Refund amount
		Status:      domain.StatusCompleted,               // Created already terminal
		Description: "Refund for deposit " + cb.DepositID, // Link back to the deposit
	}
	err = r.store.CreateRefund(ctx, refund)
	// The refund id was already recorded: a re-delivery, wallet untouched
	if errors.Is(err, ledger.ErrDuplicateReference) {
		return domain.OutcomeDuplicate, nil
	}
	if err != nil {
		return domain.OutcomeError, err // Mutation failed, force a retry
	}
	// Log the credited refund
	logrus.WithFields(logrus.Fields{
		"refund_id":  cb.ReferenceID,    // The refund's gateway id
		"deposit_id": cb.DepositID,      // The reversed deposit
		"wallet_id":  original.WalletID, // Credited wallet
		"amount":     cb.Amount,         // Amount in minor units
	}).Info("Refund applied to ledger") // Log success
	return domain.OutcomeApplied, nil
}

// parkForReview records an unattributable refund so an operator can chase
// the money trail by hand. Failing to persist the flag is a hard error: the
// gateway must retry rather than let the refund vanish.
func (r *Reconciler) parkForReview(ctx context.Context, cb *Callback) (string, error) {
	item := &domain.ReviewItem{
		ID:        uuid.NewString(), // Fresh review item id
		RefundID:  cb.ReferenceID,   // The refund's gateway id
		DepositID: cb.DepositID,     // Whatever deposit id the payload carried
		Amount:    cb.Amount,        // Refund amount
		Open:      true,             // Unresolved until an operator closes it
	}
	err := r.store.CreateReviewItem(ctx, item)
	// Already parked on an earlier delivery, acknowledge again
	if err != nil && !errors.Is(err, ledger.ErrDuplicateReference) {
		return domain.OutcomeError, err // Could not persist the flag, force a retry
	}
	// Log the refund needing manual attention
	logrus.WithFields(logrus.Fields{
		"refund_id":  cb.ReferenceID, // The refund's gateway id
		"deposit_id": cb.DepositID,   // The deposit id that failed to resolve
		"amount":     cb.Amount,      // Amount in minor units
	}).Warn("Refund parked for manual review") // Log the open gap
	return domain.OutcomeNeedsReview, nil
}
