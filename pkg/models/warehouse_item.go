package models

// WarehouseItem is one finished-goods stock entry, created when a transfer
// terminates in the warehouse.
type WarehouseItem struct {
	ID         int  `json:"id" db:"id"`
	PartID     int  `json:"part_id" db:"part_id"`
	Quantity   int  `json:"quantity" db:"quantity"`
	TransferID *int `json:"transfer_id,omitempty" db:"transfer_id"`
}

// WarehouseLabelItem ties a warehouse item to the label it was consumed from.
type WarehouseLabelItem struct {
	ID              int `json:"id" db:"id"`
	WarehouseItemID int `json:"warehouse_item_id" db:"warehouse_item_id"`
	LabelID         int `json:"label_id" db:"label_id"`
	Quantity        int `json:"quantity" db:"quantity"`
}
