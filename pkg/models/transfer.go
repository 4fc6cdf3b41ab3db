package models

import "time"

// ToWarehouse is the destination sentinel: a transfer whose to_op_number is
// zero terminates in the finished-goods warehouse instead of a route point.
const ToWarehouse = 0

type Transfer struct {
	ID            int       `json:"id" db:"id"`
	PartID        int       `json:"part_id" db:"part_id"`
	FromSectionID int       `json:"from_section_id" db:"from_section_id"`
	FromOpNumber  int       `json:"from_op_number" db:"from_op_number"`
	ToSectionID   *int      `json:"to_section_id,omitempty" db:"to_section_id"`
	ToOpNumber    int       `json:"to_op_number" db:"to_op_number"`
	TransferDate  time.Time `json:"transfer_date" db:"transfer_date"`
	Quantity      int       `json:"quantity" db:"quantity"`
	Comment       string    `json:"comment" db:"comment"`
	LabelID       *int      `json:"label_id,omitempty" db:"label_id"`
}

// IsToWarehouse reports whether the transfer terminates in the warehouse.
func (t *Transfer) IsToWarehouse() bool {
	return t.ToOpNumber == ToWarehouse
}

// TransferOperation is one signed ledger line of a transfer: negative at the
// source route point, positive at the destination.
type TransferOperation struct {
	ID             int  `json:"id" db:"id"`
	TransferID     int  `json:"transfer_id" db:"transfer_id"`
	SectionID      *int `json:"section_id,omitempty" db:"section_id"`
	OpNumber       int  `json:"op_number" db:"op_number"`
	QuantityChange int  `json:"quantity_change" db:"quantity_change"`
}

// Scrap writes off the entire remainder left at the source after a transfer.
type Scrap struct {
	ID         int    `json:"id" db:"id"`
	TransferID int    `json:"transfer_id" db:"transfer_id"`
	Quantity   int    `json:"quantity" db:"quantity"`
	Type       string `json:"type" db:"scrap_type"`
	Comment    string `json:"comment" db:"comment"`
}

type ScrapRequest struct {
	Quantity int    `json:"quantity" binding:"required"`
	Type     string `json:"type"`
	Comment  string `json:"comment"`
}

type TransferItemRequest struct {
	PartID       int           `json:"part_id" binding:"required"`
	FromOpNumber int           `json:"from_op_number" binding:"required"`
	ToOpNumber   int           `json:"to_op_number"` // zero means warehouse
	TransferDate time.Time     `json:"transfer_date" binding:"required"`
	Quantity     int           `json:"quantity" binding:"required"`
	Comment      string        `json:"comment"`
	Scrap        *ScrapRequest `json:"scrap"`
	LabelID      *int          `json:"label_id"`
}

type TransferBatchRequest struct {
	Items []TransferItemRequest `json:"items" binding:"required,min=1"`
}

type TransferItemResult struct {
	TransferID        int    `json:"transfer_id"`
	AuditID           int    `json:"audit_id"`
	FromBalanceBefore int    `json:"from_balance_before"`
	FromBalanceAfter  int    `json:"from_balance_after"`
	ToBalanceBefore   int    `json:"to_balance_before"`
	ToBalanceAfter    int    `json:"to_balance_after"`
	Scrap             *Scrap `json:"scrap,omitempty"`
	Label             *Label `json:"label,omitempty"`
}

type TransferBatchResult struct {
	Saved bool                 `json:"saved"`
	Items []TransferItemResult `json:"items"`
}

// TransferRemovalResult is the shared response shape of DeleteTransfer and
// RevertTransfer.
type TransferRemovalResult struct {
	TransferID          int            `json:"transfer_id"`
	FromBalanceBefore   int            `json:"from_balance_before"`
	FromBalanceAfter    int            `json:"from_balance_after"`
	ToBalanceBefore     int            `json:"to_balance_before"`
	ToBalanceAfter      int            `json:"to_balance_after"`
	DeletedOperationIDs []int          `json:"deleted_operation_ids"`
	Scrap               *Scrap         `json:"scrap,omitempty"`
	WarehouseItem       *WarehouseItem `json:"warehouse_item,omitempty"`
}
