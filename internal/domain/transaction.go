package domain

// Transaction statuses
const (
	StatusPending   = "pending"   // Waiting for a gateway callback
	StatusCompleted = "completed" // Gateway confirmed the money movement
	StatusFailed    = "failed"    // Gateway reported failure or rejection
)

// Transaction types
const (
	TypeDeposit = "deposit" // Customer-to-wallet collection via mobile money
	TypePayout  = "payout"  // Wallet-to-customer withdrawal
	TypeRefund  = "refund"  // Reversal of a previously completed deposit
)

// Transaction Model
type Transaction struct {
	ID          string `gorm:"primaryKey;size:64" json:"id"`            // Internal transaction id
	WalletID    string `gorm:"size:64;index" json:"wallet_id"`          // Foreign key to the owning Wallet
	ReferenceID string `gorm:"size:64;uniqueIndex" json:"reference_id"` // PawaPay deposit/payout/refund id, join key for callbacks
	Type        string `gorm:"size:16" json:"type"`                     // Transaction type: deposit, payout, refund
	Amount      int64  `gorm:"not null" json:"amount"`                  // Amount in minor currency units
	Status      string `gorm:"size:16;index" json:"status"`             // Transaction status: pending, completed, failed
	Description string `gorm:"size:255" json:"description"`             // Free text, carries the gateway failure reason
	CreatedAt   int64  `gorm:"autoCreateTime:milli" json:"created_at"`  // Timestamp of creation in milliseconds
	UpdatedAt   int64  `gorm:"autoUpdateTime:milli" json:"updated_at"`  // Timestamp of last update in milliseconds
}
