package domain

// Wallet Model
type Wallet struct {
	ID             string `gorm:"primaryKey;size:64" json:"id"`              // Opaque wallet id assigned by the payment-initiation flow
	Balance        int64  `gorm:"not null;default:0" json:"balance"`         // Funds available for use, in minor currency units
	PendingBalance int64  `gorm:"not null;default:0" json:"pending_balance"` // Funds reserved against in-flight transactions
	UpdatedAt      int64  `gorm:"autoUpdateTime:milli" json:"updated_at"`    // Timestamp of last update in milliseconds
}
