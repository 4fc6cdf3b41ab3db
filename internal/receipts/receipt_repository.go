package receipts

import (
	"fmt"

	"github.com/Ilay3/UchetNZP-sub000/internal/repository"
	"github.com/Ilay3/UchetNZP-sub000/pkg/models"

	"github.com/doug-martin/goqu/v9"
)

type ReceiptRepository interface {
	InsertReceipt(tx *goqu.TxDatabase, receipt models.Receipt) (models.Receipt, error)
	GetReceipt(tx *goqu.TxDatabase, id int) (*models.Receipt, error)
	DeleteReceipt(tx *goqu.TxDatabase, id int) error
}

type receiptRepository struct {
	repo *repository.Repository
}

func NewRepository(r *repository.Repository) *receiptRepository {
	return &receiptRepository{repo: r}
}

func (r *receiptRepository) InsertReceipt(tx *goqu.TxDatabase, receipt models.Receipt) (models.Receipt, error) {
	query := tx.Insert("receipts").
		Rows(goqu.Record{
			"part_id":      receipt.PartID,
			"op_number":    receipt.OpNumber,
			"section_id":   receipt.SectionID,
			"receipt_date": receipt.ReceiptDate,
			"quantity":     receipt.Quantity,
			"comment":      receipt.Comment,
			"label_id":     receipt.LabelID,
			"balance_id":   receipt.BalanceID,
		}).
		Returning("id")

	if _, err := query.Executor().ScanVal(&receipt.ID); err != nil {
		return models.Receipt{}, fmt.Errorf("failed to insert receipt: %w", err)
	}

	return receipt, nil
}

func (r *receiptRepository) GetReceipt(tx *goqu.TxDatabase, id int) (*models.Receipt, error) {
	var receipt models.Receipt
	found, err := tx.From("receipts").
		Where(goqu.Ex{"id": id}).
		ScanStruct(&receipt)
	if err != nil {
		return nil, fmt.Errorf("failed to select receipt %d: %w", id, err)
	}
	if !found {
		return nil, nil
	}
	return &receipt, nil
}

func (r *receiptRepository) DeleteReceipt(tx *goqu.TxDatabase, id int) error {
	_, err := tx.Delete("receipts").
		Where(goqu.Ex{"id": id}).
		Executor().
		Exec()
	if err != nil {
		return fmt.Errorf("failed to delete receipt %d: %w", id, err)
	}

	return nil
}
