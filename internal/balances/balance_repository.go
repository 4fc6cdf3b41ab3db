package balances

import (
	"context"
	"fmt"

	"github.com/Ilay3/UchetNZP-sub000/internal/repository"
	custom_error "github.com/Ilay3/UchetNZP-sub000/pkg/errors"
	"github.com/Ilay3/UchetNZP-sub000/pkg/models"

	"github.com/doug-martin/goqu/v9"
)

// BalanceRepository is the keyed on-hand ledger. A balance is addressed by
// (part, section, op number); a missing row reads as quantity zero and is
// created by the first mutation that needs it. Every mutation runs on the
// owning batch transaction.
type BalanceRepository interface {
	GetBalance(tx *goqu.TxDatabase, partID, sectionID, opNumber int) (*models.Balance, error)
	GetOrCreateBalance(tx *goqu.TxDatabase, partID, sectionID, opNumber int) (models.Balance, error)
	AddQuantity(tx *goqu.TxDatabase, balanceID, delta int) (int, error)
	SetQuantity(tx *goqu.TxDatabase, balanceID, value int) error
	InsertAdjustment(tx *goqu.TxDatabase, adjustment models.BalanceAdjustment) error
	GetBalances(ctx context.Context, partID, sectionID int) ([]models.Balance, error)
}

type balanceRepository struct {
	repo *repository.Repository
}

func NewRepository(r *repository.Repository) *balanceRepository {
	return &balanceRepository{repo: r}
}

func (r *balanceRepository) GetBalance(tx *goqu.TxDatabase, partID, sectionID, opNumber int) (*models.Balance, error) {
	var balance models.Balance
	found, err := tx.From("balances").
		Where(goqu.Ex{"part_id": partID, "section_id": sectionID, "op_number": opNumber}).
		ScanStruct(&balance)
	if err != nil {
		return nil, fmt.Errorf("failed to select balance %d/%d/%d: %w", partID, sectionID, opNumber, err)
	}
	if !found {
		return nil, nil
	}
	return &balance, nil
}

func (r *balanceRepository) GetOrCreateBalance(tx *goqu.TxDatabase, partID, sectionID, opNumber int) (models.Balance, error) {
	balance, err := r.GetBalance(tx, partID, sectionID, opNumber)
	if err != nil {
		return models.Balance{}, err
	}
	if balance != nil {
		return *balance, nil
	}

	created := models.Balance{PartID: partID, SectionID: sectionID, OpNumber: opNumber}
	query := tx.Insert("balances").
		Rows(goqu.Record{
			"part_id":    partID,
			"section_id": sectionID,
			"op_number":  opNumber,
			"quantity":   0,
		}).
		Returning("id")
	if _, err := query.Executor().ScanVal(&created.ID); err != nil {
		return models.Balance{}, fmt.Errorf("failed to insert balance %d/%d/%d: %w", partID, sectionID, opNumber, err)
	}

	return created, nil
}

// AddQuantity applies a signed delta and returns the new quantity. The
// non-negative invariant is enforced in the statement itself: a decrement
// below zero matches no row and surfaces as a conflict, never a clamp.
func (r *balanceRepository) AddQuantity(tx *goqu.TxDatabase, balanceID, delta int) (int, error) {
	var newQuantity int
	found, err := tx.Update("balances").
		Set(goqu.Record{"quantity": goqu.L("quantity + ?", delta)}).
		Where(goqu.Ex{"id": balanceID}).
		Where(goqu.L("quantity + ? >= 0", delta)).
		Returning("quantity").
		Executor().
		ScanVal(&newQuantity)
	if err != nil {
		return 0, fmt.Errorf("failed to update balance %d: %w", balanceID, err)
	}
	if !found {
		return 0, custom_error.NewConflictError("insufficient balance %d for change %d", balanceID, delta)
	}

	return newQuantity, nil
}

// SetQuantity writes an absolute value, used by the audit-driven revert
// which restores recorded before-values instead of re-adding deltas.
func (r *balanceRepository) SetQuantity(tx *goqu.TxDatabase, balanceID, value int) error {
	if value < 0 {
		return custom_error.NewConflictError("balance %d cannot be set to negative quantity %d", balanceID, value)
	}

	_, err := tx.Update("balances").
		Set(goqu.Record{"quantity": value}).
		Where(goqu.Ex{"id": balanceID}).
		Executor().
		Exec()
	if err != nil {
		return fmt.Errorf("failed to set balance %d quantity: %w", balanceID, err)
	}

	return nil
}

func (r *balanceRepository) InsertAdjustment(tx *goqu.TxDatabase, adjustment models.BalanceAdjustment) error {
	query := tx.Insert("balance_adjustments").
		Rows(goqu.Record{
			"balance_id":      adjustment.BalanceID,
			"quantity_change": adjustment.QuantityChange,
			"reason":          adjustment.Reason,
			"receipt_id":      adjustment.ReceiptID,
		})

	if _, err := query.Executor().Exec(); err != nil {
		return fmt.Errorf("failed to insert balance adjustment: %w", err)
	}

	return nil
}

func (r *balanceRepository) GetBalances(ctx context.Context, partID, sectionID int) ([]models.Balance, error) {
	query := r.repo.GoquDBWrapper.From("balances").
		Order(goqu.I("part_id").Asc(), goqu.I("op_number").Asc())

	if partID != 0 {
		query = query.Where(goqu.Ex{"part_id": partID})
	}
	if sectionID != 0 {
		query = query.Where(goqu.Ex{"section_id": sectionID})
	}

	var result []models.Balance
	if err := query.ScanStructsContext(ctx, &result); err != nil {
		return nil, fmt.Errorf("failed to select balances: %w", err)
	}

	return result, nil
}
