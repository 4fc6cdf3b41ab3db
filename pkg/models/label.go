package models

import "time"

// Label is a traceable manufacturing batch. Once any quantity has been
// consumed, or the label is referenced by a receipt, transfer or warehouse
// item, the label may no longer be edited or deleted.
type Label struct {
	ID                int       `json:"id" db:"id"`
	PartID            int       `json:"part_id" db:"part_id"`
	Number            string    `json:"number" db:"number"`
	Quantity          int       `json:"quantity" db:"quantity"`
	RemainingQuantity int       `json:"remaining_quantity" db:"remaining_quantity"`
	LabelDate         time.Time `json:"label_date" db:"label_date"`
}
