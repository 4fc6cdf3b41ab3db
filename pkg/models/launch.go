package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Launch struct {
	ID               int             `json:"id" db:"id"`
	PartID           int             `json:"part_id" db:"part_id"`
	FromOpNumber     int             `json:"from_op_number" db:"from_op_number"`
	LaunchDate       time.Time       `json:"launch_date" db:"launch_date"`
	Quantity         int             `json:"quantity" db:"quantity"`
	DocumentNumber   string          `json:"document_number" db:"document_number"`
	SumHoursToFinish decimal.Decimal `json:"sum_hours_to_finish" db:"sum_hours_to_finish"`
}

// LaunchOperation is one allocated line per route step in the launch tail,
// carrying quantity * stepNormHours.
type LaunchOperation struct {
	ID          int             `json:"id" db:"id"`
	LaunchID    int             `json:"launch_id" db:"launch_id"`
	OpNumber    int             `json:"op_number" db:"op_number"`
	OperationID int             `json:"operation_id" db:"operation_id"`
	SectionID   int             `json:"section_id" db:"section_id"`
	Hours       decimal.Decimal `json:"hours" db:"hours"`
}

type LaunchItemRequest struct {
	PartID         int       `json:"part_id" binding:"required"`
	FromOpNumber   int       `json:"from_op_number" binding:"required"`
	LaunchDate     time.Time `json:"launch_date" binding:"required"`
	Quantity       int       `json:"quantity" binding:"required"`
	DocumentNumber string    `json:"document_number"`
}

type LaunchBatchRequest struct {
	Items []LaunchItemRequest `json:"items" binding:"required,min=1"`
}

type LaunchItemResult struct {
	PartID           int             `json:"part_id"`
	FromOpNumber     int             `json:"from_op_number"`
	SectionID        int             `json:"section_id"`
	Remaining        int             `json:"remaining"`
	SumHoursToFinish decimal.Decimal `json:"sum_hours_to_finish"`
	LaunchID         int             `json:"launch_id"`
}

type LaunchBatchResult struct {
	Saved bool               `json:"saved"`
	Items []LaunchItemResult `json:"items"`
}
