package transfers

import (
	"fmt"

	"github.com/Ilay3/UchetNZP-sub000/internal/repository"
	"github.com/Ilay3/UchetNZP-sub000/pkg/models"

	"github.com/doug-martin/goqu/v9"
)

type TransferRepository interface {
	InsertTransfer(tx *goqu.TxDatabase, t models.Transfer) (models.Transfer, error)
	InsertTransferOperations(tx *goqu.TxDatabase, operations []models.TransferOperation) error
	GetTransfer(tx *goqu.TxDatabase, id int) (*models.Transfer, error)
	GetTransferOperationIDs(tx *goqu.TxDatabase, transferID int) ([]int, error)
	DeleteTransfer(tx *goqu.TxDatabase, id int) error
	InsertScrap(tx *goqu.TxDatabase, scrap models.Scrap) (models.Scrap, error)
	GetScrapByTransfer(tx *goqu.TxDatabase, transferID int) (*models.Scrap, error)
	DeleteScrapByTransfer(tx *goqu.TxDatabase, transferID int) error
}

type transferRepository struct {
	repo *repository.Repository
}

func NewRepository(r *repository.Repository) *transferRepository {
	return &transferRepository{repo: r}
}

func (r *transferRepository) InsertTransfer(tx *goqu.TxDatabase, t models.Transfer) (models.Transfer, error) {
	query := tx.Insert("transfers").
		Rows(goqu.Record{
			"part_id":         t.PartID,
			"from_section_id": t.FromSectionID,
			"from_op_number":  t.FromOpNumber,
			"to_section_id":   t.ToSectionID,
			"to_op_number":    t.ToOpNumber,
			"transfer_date":   t.TransferDate,
			"quantity":        t.Quantity,
			"comment":         t.Comment,
			"label_id":        t.LabelID,
		}).
		Returning("id")

	if _, err := query.Executor().ScanVal(&t.ID); err != nil {
		return models.Transfer{}, fmt.Errorf("failed to insert transfer record: %w", err)
	}

	return t, nil
}

func (r *transferRepository) InsertTransferOperations(tx *goqu.TxDatabase, operations []models.TransferOperation) error {
	var records []goqu.Record
	for _, op := range operations {
		records = append(records, goqu.Record{
			"transfer_id":     op.TransferID,
			"section_id":      op.SectionID,
			"op_number":       op.OpNumber,
			"quantity_change": op.QuantityChange,
		})
	}

	query := tx.Insert("transfer_operations").Rows(records)
	if _, err := query.Executor().Exec(); err != nil {
		return fmt.Errorf("failed to insert transfer operations: %w", err)
	}

	return nil
}

func (r *transferRepository) GetTransfer(tx *goqu.TxDatabase, id int) (*models.Transfer, error) {
	var t models.Transfer
	found, err := tx.From("transfers").
		Where(goqu.Ex{"id": id}).
		ScanStruct(&t)
	if err != nil {
		return nil, fmt.Errorf("failed to select transfer %d: %w", id, err)
	}
	if !found {
		return nil, nil
	}
	return &t, nil
}

func (r *transferRepository) GetTransferOperationIDs(tx *goqu.TxDatabase, transferID int) ([]int, error) {
	var ids []int
	err := tx.From("transfer_operations").
		Select("id").
		Where(goqu.Ex{"transfer_id": transferID}).
		Order(goqu.I("id").Asc()).
		ScanVals(&ids)
	if err != nil {
		return nil, fmt.Errorf("failed to select transfer operation ids: %w", err)
	}

	return ids, nil
}

func (r *transferRepository) DeleteTransfer(tx *goqu.TxDatabase, id int) error {
	if _, err := tx.Delete("transfer_operations").
		Where(goqu.Ex{"transfer_id": id}).
		Executor().
		Exec(); err != nil {
		return fmt.Errorf("failed to delete transfer operations: %w", err)
	}

	if _, err := tx.Delete("transfers").
		Where(goqu.Ex{"id": id}).
		Executor().
		Exec(); err != nil {
		return fmt.Errorf("failed to delete transfer %d: %w", id, err)
	}

	return nil
}

func (r *transferRepository) InsertScrap(tx *goqu.TxDatabase, scrap models.Scrap) (models.Scrap, error) {
	query := tx.Insert("scraps").
		Rows(goqu.Record{
			"transfer_id": scrap.TransferID,
			"quantity":    scrap.Quantity,
			"scrap_type":  scrap.Type,
			"comment":     scrap.Comment,
		}).
		Returning("id")

	if _, err := query.Executor().ScanVal(&scrap.ID); err != nil {
		return models.Scrap{}, fmt.Errorf("failed to insert scrap record: %w", err)
	}

	return scrap, nil
}

func (r *transferRepository) GetScrapByTransfer(tx *goqu.TxDatabase, transferID int) (*models.Scrap, error) {
	var scrap models.Scrap
	found, err := tx.From("scraps").
		Where(goqu.Ex{"transfer_id": transferID}).
		ScanStruct(&scrap)
	if err != nil {
		return nil, fmt.Errorf("failed to select scrap of transfer %d: %w", transferID, err)
	}
	if !found {
		return nil, nil
	}
	return &scrap, nil
}

func (r *transferRepository) DeleteScrapByTransfer(tx *goqu.TxDatabase, transferID int) error {
	_, err := tx.Delete("scraps").
		Where(goqu.Ex{"transfer_id": transferID}).
		Executor().
		Exec()
	if err != nil {
		return fmt.Errorf("failed to delete scrap of transfer %d: %w", transferID, err)
	}

	return nil
}
