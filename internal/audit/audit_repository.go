package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/Ilay3/UchetNZP-sub000/internal/repository"
	custom_error "github.com/Ilay3/UchetNZP-sub000/pkg/errors"
	"github.com/Ilay3/UchetNZP-sub000/pkg/models"

	"github.com/doug-martin/goqu/v9"
)

// AuditRepository persists the per-transfer before/after snapshots. An audit
// row is written exactly once; its only mutation is the single false->true
// is_reverted transition.
type AuditRepository interface {
	InsertAudit(tx *goqu.TxDatabase, a models.TransferAudit) (models.TransferAudit, error)
	GetAudit(tx *goqu.TxDatabase, id int) (*models.TransferAudit, error)
	MarkReverted(tx *goqu.TxDatabase, id int, at time.Time) error
	DeleteByTransfer(tx *goqu.TxDatabase, transferID int) error
	GetAudits(ctx context.Context, filter AuditFilter) ([]models.TransferAudit, error)
}

// AuditFilter narrows the audit listing. Zero values mean "no filter".
type AuditFilter struct {
	PartID int
	From   *time.Time
	To     *time.Time
}

type auditRepository struct {
	repo *repository.Repository
}

func NewRepository(r *repository.Repository) *auditRepository {
	return &auditRepository{repo: r}
}

func (r *auditRepository) InsertAudit(tx *goqu.TxDatabase, a models.TransferAudit) (models.TransferAudit, error) {
	query := tx.Insert("transfer_audits").
		Rows(goqu.Record{
			"transfer_id":         a.TransferID,
			"part_id":             a.PartID,
			"from_section_id":     a.FromSectionID,
			"from_op_number":      a.FromOpNumber,
			"to_section_id":       a.ToSectionID,
			"to_op_number":        a.ToOpNumber,
			"quantity":            a.Quantity,
			"scrap_quantity":      a.ScrapQuantity,
			"from_balance_before": a.FromBalanceBefore,
			"from_balance_after":  a.FromBalanceAfter,
			"to_balance_before":   a.ToBalanceBefore,
			"to_balance_after":    a.ToBalanceAfter,
			"label_id":            a.LabelID,
			"label_before":        a.LabelBefore,
			"label_after":         a.LabelAfter,
			"is_reverted":         false,
			"created_at":          a.CreatedAt,
		}).
		Returning("id")

	if _, err := query.Executor().ScanVal(&a.ID); err != nil {
		return models.TransferAudit{}, fmt.Errorf("failed to insert transfer audit: %w", err)
	}

	return a, nil
}

func (r *auditRepository) GetAudit(tx *goqu.TxDatabase, id int) (*models.TransferAudit, error) {
	var a models.TransferAudit
	found, err := tx.From("transfer_audits").
		Where(goqu.Ex{"id": id}).
		ScanStruct(&a)
	if err != nil {
		return nil, fmt.Errorf("failed to select transfer audit %d: %w", id, err)
	}
	if !found {
		return nil, nil
	}
	return &a, nil
}

// MarkReverted performs the one allowed transition. The is_reverted guard in
// the statement makes a double revert fail instead of silently re-applying.
func (r *auditRepository) MarkReverted(tx *goqu.TxDatabase, id int, at time.Time) error {
	result, err := tx.Update("transfer_audits").
		Set(goqu.Record{"is_reverted": true, "reverted_at": at}).
		Where(goqu.Ex{"id": id, "is_reverted": false}).
		Executor().
		Exec()
	if err != nil {
		return fmt.Errorf("failed to mark audit %d reverted: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return custom_error.NewConflictError("audit %d is already reverted", id)
	}

	return nil
}

func (r *auditRepository) DeleteByTransfer(tx *goqu.TxDatabase, transferID int) error {
	_, err := tx.Delete("transfer_audits").
		Where(goqu.Ex{"transfer_id": transferID}).
		Executor().
		Exec()
	if err != nil {
		return fmt.Errorf("failed to delete audits of transfer %d: %w", transferID, err)
	}

	return nil
}

func (r *auditRepository) GetAudits(ctx context.Context, filter AuditFilter) ([]models.TransferAudit, error) {
	query := r.repo.GoquDBWrapper.From("transfer_audits").
		Order(goqu.I("id").Desc())
	if filter.PartID != 0 {
		query = query.Where(goqu.Ex{"part_id": filter.PartID})
	}
	if filter.From != nil {
		query = query.Where(goqu.C("created_at").Gte(*filter.From))
	}
	if filter.To != nil {
		query = query.Where(goqu.C("created_at").Lt(*filter.To))
	}

	var audits []models.TransferAudit
	if err := query.ScanStructsContext(ctx, &audits); err != nil {
		return nil, fmt.Errorf("failed to select transfer audits: %w", err)
	}

	return audits, nil
}
