package models

import "time"

// TransferAudit is the immutable before/after snapshot written once per
// transfer. It is self-contained: it keeps the balance keys and quantities
// of both sides so a revert never has to recompute anything. The only
// permitted mutation is the single false->true is_reverted transition.
type TransferAudit struct {
	ID                int        `json:"id" db:"id"`
	TransferID        int        `json:"transfer_id" db:"transfer_id"`
	PartID            int        `json:"part_id" db:"part_id"`
	FromSectionID     int        `json:"from_section_id" db:"from_section_id"`
	FromOpNumber      int        `json:"from_op_number" db:"from_op_number"`
	ToSectionID       *int       `json:"to_section_id,omitempty" db:"to_section_id"`
	ToOpNumber        int        `json:"to_op_number" db:"to_op_number"`
	Quantity          int        `json:"quantity" db:"quantity"`
	ScrapQuantity     int        `json:"scrap_quantity" db:"scrap_quantity"`
	FromBalanceBefore int        `json:"from_balance_before" db:"from_balance_before"`
	FromBalanceAfter  int        `json:"from_balance_after" db:"from_balance_after"`
	ToBalanceBefore   int        `json:"to_balance_before" db:"to_balance_before"`
	ToBalanceAfter    int        `json:"to_balance_after" db:"to_balance_after"`
	LabelID           *int       `json:"label_id,omitempty" db:"label_id"`
	LabelBefore       *int       `json:"label_before,omitempty" db:"label_before"`
	LabelAfter        *int       `json:"label_after,omitempty" db:"label_after"`
	IsReverted        bool       `json:"is_reverted" db:"is_reverted"`
	RevertedAt        *time.Time `json:"reverted_at,omitempty" db:"reverted_at"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
}

// IsToWarehouse reports whether the audited transfer terminated in the
// warehouse.
func (a *TransferAudit) IsToWarehouse() bool {
	return a.ToOpNumber == ToWarehouse
}
