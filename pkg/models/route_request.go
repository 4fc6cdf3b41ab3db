package models

import "github.com/shopspring/decimal"

type RouteStepUpsertRequest struct {
	PartName      string          `json:"part_name" binding:"required"`
	PartCode      *string         `json:"part_code"`
	OperationName string          `json:"operation_name" binding:"required"`
	OpNumber      int             `json:"op_number" binding:"required"`
	NormHours     decimal.Decimal `json:"norm_hours"`
	SectionName   string          `json:"section_name" binding:"required"`
}

type RouteStepBatchRequest struct {
	Items []RouteStepUpsertRequest `json:"items" binding:"required,min=1"`
}

type RouteStepDeleteRequest struct {
	PartID   int `json:"part_id" binding:"required"`
	OpNumber int `json:"op_number" binding:"required"`
}
