package webhook

import (
	"encoding/json" // json.Number extraction
	"errors"        // Sentinel error values
	"fmt"           // Error wrapping

	"pawapay_webhook/internal/utils" // Amount parsing
)

// Family tags the three PawaPay callback kinds
type Family string

// Callback families
const (
	FamilyDeposit Family = "deposit" // Collection from a customer
	FamilyPayout  Family = "payout"  // Withdrawal to a customer
	FamilyRefund  Family = "refund"  // Reversal of a completed deposit
)

// Classification errors
var (
	ErrUnknownCallback = errors.New("unknown callback type")      // None of the three id keys present
	ErrBadPayload      = errors.New("malformed callback payload") // Field failed defensive validation
)

// Callback is a classified PawaPay delivery, normalized for reconciliation
type Callback struct {
	Family      Family // Which of the three event families matched
	ReferenceID string // The gateway's deposit/payout/refund id
	Status      string // Gateway status string: COMPLETED, FAILED, REJECTED, ...
	Amount      int64  // Amount in minor currency units
	Reason      string // Optional failure reason from the gateway
	DepositID   string // Refunds only: the original deposit being reversed
}

// DedupeKey identifies a delivery for the duplicate fast-path: the same
// reference id reported with the same status is the same event.
func (cb *Callback) DedupeKey() string {
	return string(cb.Family) + ":" + cb.ReferenceID + ":" + cb.Status
}

// Classify determines the event family of a decoded payload by key presence
// and extracts the fields the reconcilers need. refundId is checked before
// depositId because refund callbacks also carry the original depositId.
// exponent is the ledger currency's decimal places for amount parsing.
func Classify(data map[string]any, exponent int) (*Callback, error) {
	cb := &Callback{
		Status: stringField(data, "status"), // Gateway status string
		Reason: stringField(data, "reason"), // Optional failure reason
	}
	// Presence-based dispatch on the distinguishing id key
	switch {
	case hasField(data, "refundId"):
		cb.Family = FamilyRefund                       // Refund event
		cb.ReferenceID = stringField(data, "refundId") // The refund's own id
		cb.DepositID = stringField(data, "depositId")  // The deposit it reverses
	case hasField(data, "depositId"):
		cb.Family = FamilyDeposit // Deposit event
		cb.ReferenceID = stringField(data, "depositId")
	case hasField(data, "payoutId"):
		cb.Family = FamilyPayout // Payout event
		cb.ReferenceID = stringField(data, "payoutId")
	default:
		return nil, ErrUnknownCallback // No recognizable id key
	}
	// An id key present but empty is not a usable reference
	if cb.ReferenceID == "" {
		return nil, ErrBadPayload
	}
	amount, err := amountField(data, exponent) // Defensive amount validation
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	cb.Amount = amount
	return cb, nil
}

// hasField reports whether the payload carries the given key
func hasField(data map[string]any, key string) bool {
	_, ok := data[key]
	return ok
}

// stringField extracts a string-valued field, returning "" for anything else
func stringField(data map[string]any, key string) string {
	if v, ok := data[key].(string); ok {
		return v
	}
	return "" // Missing or non-string
}

// amountField parses the amount, which PawaPay sends as a decimal string
// but tolerant decoding also accepts as a bare number. Missing means zero.
func amountField(data map[string]any, exponent int) (int64, error) {
	switch v := data["amount"].(type) {
	case nil:
		return 0, nil // Absent amount, original treats it as zero
	case string:
		return utils.ParseAmount(v, exponent) // Decimal string form
	case json.Number:
		return utils.ParseAmount(v.String(), exponent) // Bare JSON number form
	default:
		return 0, utils.ErrBadAmount // Anything else is malformed
	}
}
