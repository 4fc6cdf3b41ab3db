package receipts

import (
	"context"

	"github.com/Ilay3/UchetNZP-sub000/internal/balances"
	"github.com/Ilay3/UchetNZP-sub000/internal/labels"
	"github.com/Ilay3/UchetNZP-sub000/internal/repository"
	"github.com/Ilay3/UchetNZP-sub000/internal/routing"
	custom_error "github.com/Ilay3/UchetNZP-sub000/pkg/errors"
	"github.com/Ilay3/UchetNZP-sub000/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"go.uber.org/zap"
)

// ReceiptService posts WIP receipts against route points. A batch is one
// all-or-nothing transaction.
type ReceiptService struct {
	txRunner    repository.TxRunner
	receiptRepo ReceiptRepository
	routeRepo   routing.RouteRepository
	balanceRepo balances.BalanceRepository
	labelRepo   labels.LabelRepository
	log         *zap.Logger
}

func NewService(
	txRunner repository.TxRunner,
	receiptRepo ReceiptRepository,
	routeRepo routing.RouteRepository,
	balanceRepo balances.BalanceRepository,
	labelRepo labels.LabelRepository,
	log *zap.Logger,
) *ReceiptService {
	return &ReceiptService{
		txRunner:    txRunner,
		receiptRepo: receiptRepo,
		routeRepo:   routeRepo,
		balanceRepo: balanceRepo,
		labelRepo:   labelRepo,
		log:         log,
	}
}

func (s *ReceiptService) AddReceipts(ctx context.Context, items []models.ReceiptItemRequest) (models.ReceiptBatchResult, error) {
	for _, item := range items {
		if item.Quantity <= 0 {
			return models.ReceiptBatchResult{}, custom_error.NewValidationError("quantity", "receipt quantity must be positive")
		}
	}

	var results []models.ReceiptItemResult
	err := s.txRunner.WithTransaction(ctx, func(tx *goqu.TxDatabase) error {
		for _, item := range items {
			result, err := s.receiveOne(tx, item)
			if err != nil {
				return err
			}
			results = append(results, result)
		}
		return nil
	})
	if err != nil {
		return models.ReceiptBatchResult{}, err
	}

	s.log.Info("receipt batch saved", zap.Int("items", len(results)))
	return models.ReceiptBatchResult{Saved: true, Items: results}, nil
}

func (s *ReceiptService) receiveOne(tx *goqu.TxDatabase, item models.ReceiptItemRequest) (models.ReceiptItemResult, error) {
	step, err := s.routeRepo.GetRouteStep(tx, item.PartID, item.OpNumber)
	if err != nil {
		return models.ReceiptItemResult{}, err
	}
	if step == nil {
		return models.ReceiptItemResult{}, custom_error.NewNotFoundError("route step", "part %d has no operation %d", item.PartID, item.OpNumber)
	}
	if step.SectionID != item.SectionID {
		return models.ReceiptItemResult{}, custom_error.NewValidationError("section_id",
			"section does not match the route section for this operation")
	}

	if item.LabelID != nil {
		label, err := s.labelRepo.GetLabel(tx, *item.LabelID)
		if err != nil {
			return models.ReceiptItemResult{}, err
		}
		if label == nil {
			return models.ReceiptItemResult{}, custom_error.NewNotFoundError("label", "id %d", *item.LabelID)
		}
		if label.PartID != item.PartID {
			return models.ReceiptItemResult{}, custom_error.NewConflictError("label %s belongs to a different part", label.Number)
		}
	}

	balance, err := s.balanceRepo.GetOrCreateBalance(tx, item.PartID, item.SectionID, item.OpNumber)
	if err != nil {
		return models.ReceiptItemResult{}, err
	}
	was := balance.Quantity

	become, err := s.balanceRepo.AddQuantity(tx, balance.ID, item.Quantity)
	if err != nil {
		return models.ReceiptItemResult{}, err
	}

	receipt, err := s.receiptRepo.InsertReceipt(tx, models.Receipt{
		PartID:      item.PartID,
		OpNumber:    item.OpNumber,
		SectionID:   item.SectionID,
		ReceiptDate: item.ReceiptDate,
		Quantity:    item.Quantity,
		Comment:     item.Comment,
		LabelID:     item.LabelID,
		BalanceID:   balance.ID,
	})
	if err != nil {
		return models.ReceiptItemResult{}, err
	}

	return models.ReceiptItemResult{
		PartID:    item.PartID,
		OpNumber:  item.OpNumber,
		SectionID: item.SectionID,
		Was:       was,
		Become:    become,
		BalanceID: balance.ID,
		ReceiptID: receipt.ID,
	}, nil
}

// DeleteReceipt takes a posted receipt back out of the balance and writes a
// compensating adjustment line. It fails when the balance has since been
// consumed below the receipt quantity.
func (s *ReceiptService) DeleteReceipt(ctx context.Context, receiptID int) error {
	return s.txRunner.WithTransaction(ctx, func(tx *goqu.TxDatabase) error {
		receipt, err := s.receiptRepo.GetReceipt(tx, receiptID)
		if err != nil {
			return err
		}
		if receipt == nil {
			return custom_error.NewNotFoundError("receipt", "id %d", receiptID)
		}

		if _, err := s.balanceRepo.AddQuantity(tx, receipt.BalanceID, -receipt.Quantity); err != nil {
			return err
		}

		if err := s.balanceRepo.InsertAdjustment(tx, models.BalanceAdjustment{
			BalanceID:      receipt.BalanceID,
			QuantityChange: -receipt.Quantity,
			Reason:         "receipt deleted",
			ReceiptID:      &receipt.ID,
		}); err != nil {
			return err
		}

		return s.receiptRepo.DeleteReceipt(tx, receiptID)
	})
}
