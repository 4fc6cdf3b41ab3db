package models

type Balance struct {
	ID        int `json:"id" db:"id"`
	PartID    int `json:"part_id" db:"part_id"`
	SectionID int `json:"section_id" db:"section_id"`
	OpNumber  int `json:"op_number" db:"op_number"`
	Quantity  int `json:"quantity" db:"quantity"`
}

// BalanceAdjustment is a compensating ledger line written when a posted
// receipt is deleted, so the balance history stays explainable.
type BalanceAdjustment struct {
	ID             int    `json:"id" db:"id"`
	BalanceID      int    `json:"balance_id" db:"balance_id"`
	QuantityChange int    `json:"quantity_change" db:"quantity_change"`
	Reason         string `json:"reason" db:"reason"`
	ReceiptID      *int   `json:"receipt_id,omitempty" db:"receipt_id"`
}
