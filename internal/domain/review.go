package domain

// ReviewItem Model: a refund that could not be attributed to a wallet,
// parked for manual reconciliation instead of being silently dropped
type ReviewItem struct {
	ID        string `gorm:"primaryKey;size:64" json:"id"`           // Review item id
	RefundID  string `gorm:"size:64;uniqueIndex" json:"refund_id"`   // PawaPay refund id
	DepositID string `gorm:"size:64" json:"deposit_id"`              // Original deposit id the refund points at
	Amount    int64  `gorm:"not null" json:"amount"`                 // Refund amount in minor currency units
	Open      bool   `gorm:"not null;default:true" json:"open"`      // True until an operator resolves it
	CreatedAt int64  `gorm:"autoCreateTime:milli" json:"created_at"` // Timestamp of creation in milliseconds
}
