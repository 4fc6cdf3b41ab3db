package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// OpKeyWidth is the fixed width of a normalized operation-number key.
// Operation numbers are compared as zero-padded strings so that numeric
// numbers of different lengths sort consistently.
const OpKeyWidth = 10

// OpKey returns the normalized ordering key for an operation number.
func OpKey(opNumber int) string {
	return fmt.Sprintf("%0*d", OpKeyWidth, opNumber)
}

type RouteStep struct {
	ID          int             `json:"id" db:"id"`
	PartID      int             `json:"part_id" db:"part_id"`
	OpNumber    int             `json:"op_number" db:"op_number"`
	OperationID int             `json:"operation_id" db:"operation_id"`
	SectionID   int             `json:"section_id" db:"section_id"`
	NormHours   decimal.Decimal `json:"norm_hours" db:"norm_hours"`
}

// Key returns the step's normalized ordering key.
func (s *RouteStep) Key() string {
	return OpKey(s.OpNumber)
}

type FlatRouteStep struct {
	ID            int             `db:"id"`
	PartID        int             `db:"part_id"`
	OpNumber      int             `db:"op_number"`
	OperationID   int             `db:"operation_id"`
	OperationName string          `db:"operation_name"`
	SectionID     int             `db:"section_id"`
	SectionName   string          `db:"section_name"`
	NormHours     decimal.Decimal `db:"norm_hours"`
}
