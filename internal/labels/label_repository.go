package labels

import (
	"context"
	"fmt"

	"github.com/Ilay3/UchetNZP-sub000/internal/repository"
	custom_error "github.com/Ilay3/UchetNZP-sub000/pkg/errors"
	"github.com/Ilay3/UchetNZP-sub000/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/lib/pq"
)

// LabelRepository stores manufacturing-batch labels. The transfer engine
// consumes and restores remaining quantities through it; candidate selection
// derives per-operation remainders from receipts and non-reverted audit
// rows.
type LabelRepository interface {
	GetLabel(tx *goqu.TxDatabase, id int) (*models.Label, error)
	GetLabels(ctx context.Context, partID int) ([]models.Label, error)
	GetMaxNumericNumber(tx *goqu.TxDatabase) (int, error)
	NumberExists(tx *goqu.TxDatabase, number string) (bool, error)
	InsertLabel(tx *goqu.TxDatabase, label models.Label) (models.Label, error)
	UpdateLabel(tx *goqu.TxDatabase, label models.Label) error
	DeleteLabel(tx *goqu.TxDatabase, id int) error
	AddRemaining(tx *goqu.TxDatabase, labelID, delta int) (int, error)
	SetRemaining(tx *goqu.TxDatabase, labelID, value int) error
	IsReferenced(tx *goqu.TxDatabase, labelID int) (bool, error)
	GetCandidateLabels(tx *goqu.TxDatabase, partID, sectionID, opNumber int) ([]models.Label, error)
	GetQuantityAtOperation(tx *goqu.TxDatabase, labelID, sectionID, opNumber int) (int, error)
}

type labelRepository struct {
	repo *repository.Repository
}

func NewRepository(r *repository.Repository) *labelRepository {
	return &labelRepository{repo: r}
}

func (r *labelRepository) GetLabel(tx *goqu.TxDatabase, id int) (*models.Label, error) {
	var label models.Label
	found, err := tx.From("labels").
		Where(goqu.Ex{"id": id}).
		ScanStruct(&label)
	if err != nil {
		return nil, fmt.Errorf("failed to select label %d: %w", id, err)
	}
	if !found {
		return nil, nil
	}
	return &label, nil
}

func (r *labelRepository) GetLabels(ctx context.Context, partID int) ([]models.Label, error) {
	query := r.repo.GoquDBWrapper.From("labels").
		Order(goqu.I("number").Asc())
	if partID != 0 {
		query = query.Where(goqu.Ex{"part_id": partID})
	}

	var result []models.Label
	if err := query.ScanStructsContext(ctx, &result); err != nil {
		return nil, fmt.Errorf("failed to select labels: %w", err)
	}

	return result, nil
}

// GetMaxNumericNumber returns the highest purely numeric label number, zero
// when no such label exists. Suffixed numbers (NNNNN/M) do not participate
// in sequential generation.
func (r *labelRepository) GetMaxNumericNumber(tx *goqu.TxDatabase) (int, error) {
	var max int
	_, err := tx.From("labels").
		Select(goqu.L("COALESCE(MAX(number::integer), 0)")).
		Where(goqu.L(`number ~ '^[0-9]+$'`)).
		ScanVal(&max)
	if err != nil {
		return 0, fmt.Errorf("failed to select max label number: %w", err)
	}

	return max, nil
}

func (r *labelRepository) NumberExists(tx *goqu.TxDatabase, number string) (bool, error) {
	var count int
	_, err := tx.From("labels").
		Select(goqu.COUNT("id")).
		Where(goqu.Ex{"number": number}).
		ScanVal(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check label number %s: %w", number, err)
	}

	return count > 0, nil
}

func (r *labelRepository) InsertLabel(tx *goqu.TxDatabase, label models.Label) (models.Label, error) {
	query := tx.Insert("labels").
		Rows(goqu.Record{
			"part_id":            label.PartID,
			"number":             label.Number,
			"quantity":           label.Quantity,
			"remaining_quantity": label.RemainingQuantity,
			"label_date":         label.LabelDate,
		}).
		Returning("id")

	if _, err := query.Executor().ScanVal(&label.ID); err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return models.Label{}, custom_error.WrapDBError("Duplicate label number "+label.Number, string(pqErr.Code))
		}
		return models.Label{}, fmt.Errorf("failed to insert label %s: %w", label.Number, err)
	}

	return label, nil
}

func (r *labelRepository) UpdateLabel(tx *goqu.TxDatabase, label models.Label) error {
	_, err := tx.Update("labels").
		Set(goqu.Record{
			"quantity":           label.Quantity,
			"remaining_quantity": label.RemainingQuantity,
			"label_date":         label.LabelDate,
		}).
		Where(goqu.Ex{"id": label.ID}).
		Executor().
		Exec()
	if err != nil {
		return fmt.Errorf("failed to update label %d: %w", label.ID, err)
	}

	return nil
}

func (r *labelRepository) DeleteLabel(tx *goqu.TxDatabase, id int) error {
	_, err := tx.Delete("labels").
		Where(goqu.Ex{"id": id}).
		Executor().
		Exec()
	if err != nil {
		return fmt.Errorf("failed to delete label %d: %w", id, err)
	}

	return nil
}

// AddRemaining applies a signed delta to remaining_quantity, keeping it
// inside [0, quantity] at the statement level.
func (r *labelRepository) AddRemaining(tx *goqu.TxDatabase, labelID, delta int) (int, error) {
	var remaining int
	found, err := tx.Update("labels").
		Set(goqu.Record{"remaining_quantity": goqu.L("remaining_quantity + ?", delta)}).
		Where(goqu.Ex{"id": labelID}).
		Where(goqu.L("remaining_quantity + ? BETWEEN 0 AND quantity", delta)).
		Returning("remaining_quantity").
		Executor().
		ScanVal(&remaining)
	if err != nil {
		return 0, fmt.Errorf("failed to update label %d remaining quantity: %w", labelID, err)
	}
	if !found {
		return 0, custom_error.NewConflictError("label %d cannot absorb remaining-quantity change %d", labelID, delta)
	}

	return remaining, nil
}

func (r *labelRepository) SetRemaining(tx *goqu.TxDatabase, labelID, value int) error {
	_, err := tx.Update("labels").
		Set(goqu.Record{"remaining_quantity": value}).
		Where(goqu.Ex{"id": labelID}).
		Executor().
		Exec()
	if err != nil {
		return fmt.Errorf("failed to set label %d remaining quantity: %w", labelID, err)
	}

	return nil
}

// IsReferenced reports whether any receipt, transfer or warehouse label item
// points at the label. A referenced label is immutable.
func (r *labelRepository) IsReferenced(tx *goqu.TxDatabase, labelID int) (bool, error) {
	for _, table := range []string{"receipts", "transfers", "warehouse_label_items"} {
		var count int
		_, err := tx.From(table).
			Select(goqu.COUNT("id")).
			Where(goqu.Ex{"label_id": labelID}).
			ScanVal(&count)
		if err != nil {
			return false, fmt.Errorf("failed to check label references in %s: %w", table, err)
		}
		if count > 0 {
			return true, nil
		}
	}

	return false, nil
}

// GetCandidateLabels lists labels whose originating receipt posted into the
// given route point, ordered by label number ascending. The lowest-numbered
// qualifying label wins FIFO selection.
func (r *labelRepository) GetCandidateLabels(tx *goqu.TxDatabase, partID, sectionID, opNumber int) ([]models.Label, error) {
	var result []models.Label
	err := tx.From(goqu.T("labels").As("l")).
		Select(goqu.DISTINCT(goqu.I("l.id")), goqu.I("l.part_id"), goqu.I("l.number"),
			goqu.I("l.quantity"), goqu.I("l.remaining_quantity"), goqu.I("l.label_date")).
		Join(goqu.T("receipts").As("r"), goqu.On(goqu.Ex{"r.label_id": goqu.I("l.id")})).
		Where(goqu.Ex{
			"r.part_id":    partID,
			"r.section_id": sectionID,
			"r.op_number":  opNumber,
		}).
		Order(goqu.I("l.number").Asc()).
		ScanStructs(&result)
	if err != nil {
		return nil, fmt.Errorf("failed to select candidate labels: %w", err)
	}

	return result, nil
}

// GetQuantityAtOperation derives how much of a label currently sits at one
// route point: receipts into it, plus incoming non-warehouse transfers,
// minus quantity and scrap already transferred out. Only non-reverted audit
// rows count.
func (r *labelRepository) GetQuantityAtOperation(tx *goqu.TxDatabase, labelID, sectionID, opNumber int) (int, error) {
	var received int
	_, err := tx.From("receipts").
		Select(goqu.L("COALESCE(SUM(quantity), 0)")).
		Where(goqu.Ex{"label_id": labelID, "section_id": sectionID, "op_number": opNumber}).
		ScanVal(&received)
	if err != nil {
		return 0, fmt.Errorf("failed to sum label receipts: %w", err)
	}

	var incoming int
	_, err = tx.From("transfer_audits").
		Select(goqu.L("COALESCE(SUM(quantity), 0)")).
		Where(goqu.Ex{
			"label_id":      labelID,
			"to_section_id": sectionID,
			"to_op_number":  opNumber,
			"is_reverted":   false,
		}).
		Where(goqu.C("to_op_number").Neq(models.ToWarehouse)).
		ScanVal(&incoming)
	if err != nil {
		return 0, fmt.Errorf("failed to sum incoming label transfers: %w", err)
	}

	var outgoing int
	_, err = tx.From("transfer_audits").
		Select(goqu.L("COALESCE(SUM(quantity + scrap_quantity), 0)")).
		Where(goqu.Ex{
			"label_id":        labelID,
			"from_section_id": sectionID,
			"from_op_number":  opNumber,
			"is_reverted":     false,
		}).
		ScanVal(&outgoing)
	if err != nil {
		return 0, fmt.Errorf("failed to sum outgoing label transfers: %w", err)
	}

	return received + incoming - outgoing, nil
}
