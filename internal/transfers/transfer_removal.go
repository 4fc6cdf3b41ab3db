package transfers

import (
	"context"
	"time"

	custom_error "github.com/Ilay3/UchetNZP-sub000/pkg/errors"
	"github.com/Ilay3/UchetNZP-sub000/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"go.uber.org/zap"
)

// DeleteTransfer undoes a transfer by applying the opposite deltas and
// removing every record it produced, the audit row included. Quantities
// moved or scrapped return to the source balance; the destination gives the
// moved quantity back, which fails with a conflict when later activity has
// already consumed it.
func (s *TransferService) DeleteTransfer(ctx context.Context, transferID int) (models.TransferRemovalResult, error) {
	var result models.TransferRemovalResult
	err := s.txRunner.WithTransaction(ctx, func(tx *goqu.TxDatabase) error {
		transfer, err := s.transferRepo.GetTransfer(tx, transferID)
		if err != nil {
			return err
		}
		if transfer == nil {
			return custom_error.NewNotFoundError("transfer", "id %d", transferID)
		}

		scrap, err := s.transferRepo.GetScrapByTransfer(tx, transferID)
		if err != nil {
			return err
		}
		scrapQuantity := 0
		if scrap != nil {
			scrapQuantity = scrap.Quantity
		}

		fromBalance, err := s.balanceRepo.GetOrCreateBalance(tx, transfer.PartID, transfer.FromSectionID, transfer.FromOpNumber)
		if err != nil {
			return err
		}
		fromAfter, err := s.balanceRepo.AddQuantity(tx, fromBalance.ID, transfer.Quantity+scrapQuantity)
		if err != nil {
			return err
		}

		var toBefore, toAfter int
		var warehouseItem *models.WarehouseItem
		if transfer.IsToWarehouse() {
			toBefore, err = s.warehouseRepo.GetPartQuantity(tx, transfer.PartID)
			if err != nil {
				return err
			}
			warehouseItem, err = s.warehouseRepo.GetItemByTransfer(tx, transferID)
			if err != nil {
				return err
			}
			toAfter = toBefore
			if warehouseItem != nil {
				if err := s.warehouseRepo.DeleteItem(tx, warehouseItem.ID); err != nil {
					return err
				}
				toAfter = toBefore - warehouseItem.Quantity
			}
		} else {
			toBalance, err := s.balanceRepo.GetBalance(tx, transfer.PartID, *transfer.ToSectionID, transfer.ToOpNumber)
			if err != nil {
				return err
			}
			if toBalance == nil {
				return custom_error.NewConflictError("destination balance of transfer %d no longer exists", transferID)
			}
			toBefore = toBalance.Quantity
			toAfter, err = s.balanceRepo.AddQuantity(tx, toBalance.ID, -transfer.Quantity)
			if err != nil {
				return err
			}
		}

		if transfer.LabelID != nil {
			if err := s.restoreLabel(tx, *transfer.LabelID, transfer, scrapQuantity); err != nil {
				return err
			}
		}

		operationIDs, err := s.transferRepo.GetTransferOperationIDs(tx, transferID)
		if err != nil {
			return err
		}
		if err := s.transferRepo.DeleteScrapByTransfer(tx, transferID); err != nil {
			return err
		}
		if err := s.auditRepo.DeleteByTransfer(tx, transferID); err != nil {
			return err
		}
		if err := s.transferRepo.DeleteTransfer(tx, transferID); err != nil {
			return err
		}

		result = models.TransferRemovalResult{
			TransferID:          transferID,
			FromBalanceBefore:   fromAfter - transfer.Quantity - scrapQuantity,
			FromBalanceAfter:    fromAfter,
			ToBalanceBefore:     toBefore,
			ToBalanceAfter:      toAfter,
			DeletedOperationIDs: operationIDs,
			Scrap:               scrap,
			WarehouseItem:       warehouseItem,
		}
		return nil
	})
	if err != nil {
		return models.TransferRemovalResult{}, err
	}

	s.log.Info("transfer deleted", zap.Int("transferID", transferID))
	return result, nil
}

// restoreLabel gives consumed quantity back to the label, capped so
// remaining never exceeds the label's total.
func (s *TransferService) restoreLabel(tx *goqu.TxDatabase, labelID int, transfer *models.Transfer, scrapQuantity int) error {
	label, err := s.labelRepo.GetLabel(tx, labelID)
	if err != nil {
		return err
	}
	if label == nil {
		return nil
	}

	consumed := transfer.Quantity
	if transfer.IsToWarehouse() {
		consumed += scrapQuantity
	}
	headroom := label.Quantity - label.RemainingQuantity
	if consumed > headroom {
		consumed = headroom
	}
	if consumed <= 0 {
		return nil
	}

	_, err = s.labelRepo.AddRemaining(tx, labelID, consumed)
	return err
}

// RevertTransfer rolls both sides back to the exact balances captured in the
// audit snapshot. The transfer's records are removed but the audit row is
// kept and flagged, so an audit cannot be reverted twice.
func (s *TransferService) RevertTransfer(ctx context.Context, auditID int) (models.TransferRemovalResult, error) {
	var result models.TransferRemovalResult
	err := s.txRunner.WithTransaction(ctx, func(tx *goqu.TxDatabase) error {
		auditRow, err := s.auditRepo.GetAudit(tx, auditID)
		if err != nil {
			return err
		}
		if auditRow == nil {
			return custom_error.NewNotFoundError("transfer audit", "id %d", auditID)
		}
		if err := s.auditRepo.MarkReverted(tx, auditID, time.Now()); err != nil {
			return err
		}

		fromBalance, err := s.balanceRepo.GetOrCreateBalance(tx, auditRow.PartID, auditRow.FromSectionID, auditRow.FromOpNumber)
		if err != nil {
			return err
		}
		fromCurrent := fromBalance.Quantity
		if err := s.balanceRepo.SetQuantity(tx, fromBalance.ID, auditRow.FromBalanceBefore); err != nil {
			return err
		}

		var toCurrent, toRestored int
		var warehouseItem *models.WarehouseItem
		if auditRow.IsToWarehouse() {
			toCurrent, err = s.warehouseRepo.GetPartQuantity(tx, auditRow.PartID)
			if err != nil {
				return err
			}
			warehouseItem, err = s.warehouseRepo.GetItemByTransfer(tx, auditRow.TransferID)
			if err != nil {
				return err
			}
			toRestored = toCurrent
			if warehouseItem != nil {
				if err := s.warehouseRepo.DeleteItem(tx, warehouseItem.ID); err != nil {
					return err
				}
				toRestored = toCurrent - warehouseItem.Quantity
			}
		} else {
			toBalance, err := s.balanceRepo.GetOrCreateBalance(tx, auditRow.PartID, *auditRow.ToSectionID, auditRow.ToOpNumber)
			if err != nil {
				return err
			}
			toCurrent = toBalance.Quantity
			if err := s.balanceRepo.SetQuantity(tx, toBalance.ID, auditRow.ToBalanceBefore); err != nil {
				return err
			}
			toRestored = auditRow.ToBalanceBefore
		}

		if auditRow.LabelID != nil && auditRow.LabelBefore != nil {
			if err := s.labelRepo.SetRemaining(tx, *auditRow.LabelID, *auditRow.LabelBefore); err != nil {
				return err
			}
		}

		scrap, err := s.transferRepo.GetScrapByTransfer(tx, auditRow.TransferID)
		if err != nil {
			return err
		}
		operationIDs, err := s.transferRepo.GetTransferOperationIDs(tx, auditRow.TransferID)
		if err != nil {
			return err
		}
		if err := s.transferRepo.DeleteScrapByTransfer(tx, auditRow.TransferID); err != nil {
			return err
		}
		if err := s.transferRepo.DeleteTransfer(tx, auditRow.TransferID); err != nil {
			return err
		}

		result = models.TransferRemovalResult{
			TransferID:          auditRow.TransferID,
			FromBalanceBefore:   fromCurrent,
			FromBalanceAfter:    auditRow.FromBalanceBefore,
			ToBalanceBefore:     toCurrent,
			ToBalanceAfter:      toRestored,
			DeletedOperationIDs: operationIDs,
			Scrap:               scrap,
			WarehouseItem:       warehouseItem,
		}
		return nil
	})
	if err != nil {
		return models.TransferRemovalResult{}, err
	}

	s.log.Info("transfer reverted", zap.Int("auditID", auditID), zap.Int("transferID", result.TransferID))
	return result, nil
}
