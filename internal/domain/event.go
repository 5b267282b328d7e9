package domain

// Webhook processing outcomes
const (
	OutcomeApplied     = "applied"      // Ledger mutated for this callback
	OutcomeDuplicate   = "duplicate"    // Transaction already settled, nothing to do
	OutcomeNotFound    = "not_found"    // No transaction matches the reference id
	OutcomeIgnored     = "ignored"      // Gateway status carries no ledger action
	OutcomeNeedsReview = "needs_review" // Refund could not be attributed to a wallet
	OutcomeError       = "error"        // Ledger mutation failed, gateway will retry
)

// WebhookEvent Model: one row per received callback, for operator diagnosis
type WebhookEvent struct {
	ID            string `gorm:"primaryKey;size:64" json:"id"`           // Event row id
	Family        string `gorm:"size:16;index" json:"family"`            // Callback family: deposit, payout, refund
	ReferenceID   string `gorm:"size:64;index" json:"reference_id"`      // PawaPay reference id from the payload
	GatewayStatus string `gorm:"size:32" json:"gateway_status"`          // Status string as reported by PawaPay
	Outcome       string `gorm:"size:16;index" json:"outcome"`           // Processing outcome
	Error         string `gorm:"size:255" json:"error"`                  // Error text when outcome is error
	CreatedAt     int64  `gorm:"autoCreateTime:milli" json:"created_at"` // Timestamp of receipt in milliseconds
}
