package warehouse

import (
	"context"
	"fmt"

	"github.com/Ilay3/UchetNZP-sub000/internal/repository"
	"github.com/Ilay3/UchetNZP-sub000/pkg/models"

	"github.com/doug-martin/goqu/v9"
)

// WarehouseRepository stores finished-goods stock. The warehouse has no
// per-operation key: the "balance" of a part is the sum of its item rows.
type WarehouseRepository interface {
	GetPartQuantity(tx *goqu.TxDatabase, partID int) (int, error)
	InsertItem(tx *goqu.TxDatabase, item models.WarehouseItem) (models.WarehouseItem, error)
	InsertLabelItem(tx *goqu.TxDatabase, item models.WarehouseLabelItem) (models.WarehouseLabelItem, error)
	GetItemByTransfer(tx *goqu.TxDatabase, transferID int) (*models.WarehouseItem, error)
	DeleteItem(tx *goqu.TxDatabase, itemID int) error
	GetItems(ctx context.Context, partID int) ([]models.WarehouseItem, error)
}

type warehouseRepository struct {
	repo *repository.Repository
}

func NewRepository(r *repository.Repository) *warehouseRepository {
	return &warehouseRepository{repo: r}
}

func (r *warehouseRepository) GetPartQuantity(tx *goqu.TxDatabase, partID int) (int, error) {
	var quantity int
	_, err := tx.From("warehouse_items").
		Select(goqu.L("COALESCE(SUM(quantity), 0)")).
		Where(goqu.Ex{"part_id": partID}).
		ScanVal(&quantity)
	if err != nil {
		return 0, fmt.Errorf("failed to sum warehouse quantity for part %d: %w", partID, err)
	}

	return quantity, nil
}

func (r *warehouseRepository) InsertItem(tx *goqu.TxDatabase, item models.WarehouseItem) (models.WarehouseItem, error) {
	query := tx.Insert("warehouse_items").
		Rows(goqu.Record{
			"part_id":     item.PartID,
			"quantity":    item.Quantity,
			"transfer_id": item.TransferID,
		}).
		Returning("id")

	if _, err := query.Executor().ScanVal(&item.ID); err != nil {
		return models.WarehouseItem{}, fmt.Errorf("failed to insert warehouse item: %w", err)
	}

	return item, nil
}

func (r *warehouseRepository) InsertLabelItem(tx *goqu.TxDatabase, item models.WarehouseLabelItem) (models.WarehouseLabelItem, error) {
	query := tx.Insert("warehouse_label_items").
		Rows(goqu.Record{
			"warehouse_item_id": item.WarehouseItemID,
			"label_id":          item.LabelID,
			"quantity":          item.Quantity,
		}).
		Returning("id")

	if _, err := query.Executor().ScanVal(&item.ID); err != nil {
		return models.WarehouseLabelItem{}, fmt.Errorf("failed to insert warehouse label item: %w", err)
	}

	return item, nil
}

func (r *warehouseRepository) GetItemByTransfer(tx *goqu.TxDatabase, transferID int) (*models.WarehouseItem, error) {
	var item models.WarehouseItem
	found, err := tx.From("warehouse_items").
		Where(goqu.Ex{"transfer_id": transferID}).
		ScanStruct(&item)
	if err != nil {
		return nil, fmt.Errorf("failed to select warehouse item for transfer %d: %w", transferID, err)
	}
	if !found {
		return nil, nil
	}
	return &item, nil
}

// DeleteItem removes a warehouse item and its label linkage rows.
func (r *warehouseRepository) DeleteItem(tx *goqu.TxDatabase, itemID int) error {
	if _, err := tx.Delete("warehouse_label_items").
		Where(goqu.Ex{"warehouse_item_id": itemID}).
		Executor().
		Exec(); err != nil {
		return fmt.Errorf("failed to delete warehouse label items: %w", err)
	}

	if _, err := tx.Delete("warehouse_items").
		Where(goqu.Ex{"id": itemID}).
		Executor().
		Exec(); err != nil {
		return fmt.Errorf("failed to delete warehouse item %d: %w", itemID, err)
	}

	return nil
}

func (r *warehouseRepository) GetItems(ctx context.Context, partID int) ([]models.WarehouseItem, error) {
	query := r.repo.GoquDBWrapper.From("warehouse_items").
		Order(goqu.I("id").Asc())
	if partID != 0 {
		query = query.Where(goqu.Ex{"part_id": partID})
	}

	var items []models.WarehouseItem
	if err := query.ScanStructsContext(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to select warehouse items: %w", err)
	}

	return items, nil
}
