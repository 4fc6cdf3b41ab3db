package models

import "time"

type Receipt struct {
	ID          int       `json:"id" db:"id"`
	PartID      int       `json:"part_id" db:"part_id"`
	OpNumber    int       `json:"op_number" db:"op_number"`
	SectionID   int       `json:"section_id" db:"section_id"`
	ReceiptDate time.Time `json:"receipt_date" db:"receipt_date"`
	Quantity    int       `json:"quantity" db:"quantity"`
	Comment     string    `json:"comment" db:"comment"`
	LabelID     *int      `json:"label_id,omitempty" db:"label_id"`
	BalanceID   int       `json:"balance_id" db:"balance_id"`
}

type ReceiptItemRequest struct {
	PartID      int       `json:"part_id" binding:"required"`
	OpNumber    int       `json:"op_number" binding:"required"`
	SectionID   int       `json:"section_id" binding:"required"`
	ReceiptDate time.Time `json:"receipt_date" binding:"required"`
	Quantity    int       `json:"quantity" binding:"required"`
	Comment     string    `json:"comment"`
	LabelID     *int      `json:"label_id"`
}

type ReceiptBatchRequest struct {
	Items []ReceiptItemRequest `json:"items" binding:"required,min=1"`
}

type ReceiptItemResult struct {
	PartID    int `json:"part_id"`
	OpNumber  int `json:"op_number"`
	SectionID int `json:"section_id"`
	Was       int `json:"was"`
	Become    int `json:"become"`
	BalanceID int `json:"balance_id"`
	ReceiptID int `json:"receipt_id"`
}

type ReceiptBatchResult struct {
	Saved bool                `json:"saved"`
	Items []ReceiptItemResult `json:"items"`
}
