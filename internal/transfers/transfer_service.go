package transfers

import (
	"context"
	"time"

	"github.com/Ilay3/UchetNZP-sub000/internal/audit"
	"github.com/Ilay3/UchetNZP-sub000/internal/balances"
	"github.com/Ilay3/UchetNZP-sub000/internal/labels"
	"github.com/Ilay3/UchetNZP-sub000/internal/repository"
	"github.com/Ilay3/UchetNZP-sub000/internal/routing"
	"github.com/Ilay3/UchetNZP-sub000/internal/warehouse"
	custom_error "github.com/Ilay3/UchetNZP-sub000/pkg/errors"
	"github.com/Ilay3/UchetNZP-sub000/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"go.uber.org/zap"
)

// TransferService moves WIP quantities forward along routes and into the
// finished-goods warehouse. It exclusively owns the mutation path for
// balances and labels; a batch of transfer items is one all-or-nothing
// transaction, and items observe the in-transaction effects of the items
// before them.
type TransferService struct {
	txRunner      repository.TxRunner
	transferRepo  TransferRepository
	routeRepo     routing.RouteRepository
	balanceRepo   balances.BalanceRepository
	labelRepo     labels.LabelRepository
	warehouseRepo warehouse.WarehouseRepository
	auditRepo     audit.AuditRepository
	log           *zap.Logger
}

func NewService(
	txRunner repository.TxRunner,
	transferRepo TransferRepository,
	routeRepo routing.RouteRepository,
	balanceRepo balances.BalanceRepository,
	labelRepo labels.LabelRepository,
	warehouseRepo warehouse.WarehouseRepository,
	auditRepo audit.AuditRepository,
	log *zap.Logger,
) *TransferService {
	return &TransferService{
		txRunner:      txRunner,
		transferRepo:  transferRepo,
		routeRepo:     routeRepo,
		balanceRepo:   balanceRepo,
		labelRepo:     labelRepo,
		warehouseRepo: warehouseRepo,
		auditRepo:     auditRepo,
		log:           log,
	}
}

// labelOpKey addresses the per-batch cache of derived label-at-operation
// quantities.
type labelOpKey struct {
	labelID   int
	sectionID int
	opNumber  int
}

func (s *TransferService) AddTransfers(ctx context.Context, items []models.TransferItemRequest) (models.TransferBatchResult, error) {
	for _, item := range items {
		if item.Quantity <= 0 {
			return models.TransferBatchResult{}, custom_error.NewValidationError("quantity", "transfer quantity must be positive")
		}
		if item.Scrap != nil && item.Scrap.Quantity <= 0 {
			return models.TransferBatchResult{}, custom_error.NewValidationError("scrap.quantity", "scrap quantity must be positive")
		}
	}

	var results []models.TransferItemResult
	err := s.txRunner.WithTransaction(ctx, func(tx *goqu.TxDatabase) error {
		labelQuantities := make(map[labelOpKey]int)
		for _, item := range items {
			result, err := s.transferOne(tx, item, labelQuantities)
			if err != nil {
				return err
			}
			results = append(results, result)
		}
		return nil
	})
	if err != nil {
		return models.TransferBatchResult{}, err
	}

	s.log.Info("transfer batch saved", zap.Int("items", len(results)))
	return models.TransferBatchResult{Saved: true, Items: results}, nil
}

func (s *TransferService) transferOne(tx *goqu.TxDatabase, item models.TransferItemRequest, labelQuantities map[labelOpKey]int) (models.TransferItemResult, error) {
	toWarehouse := item.ToOpNumber == models.ToWarehouse

	// Route validation: the source must be on the route, and a non-warehouse
	// destination must sort strictly after it. Material only moves forward.
	route, err := s.routeRepo.GetRouteStepsTx(tx, item.PartID)
	if err != nil {
		return models.TransferItemResult{}, err
	}
	routing.SortSteps(route)

	fromStep := findStep(route, item.FromOpNumber)
	if fromStep == nil {
		return models.TransferItemResult{}, custom_error.NewNotFoundError("route step", "part %d has no operation %d", item.PartID, item.FromOpNumber)
	}

	var toStep *models.RouteStep
	if !toWarehouse {
		toStep = findStep(route, item.ToOpNumber)
		if toStep == nil {
			return models.TransferItemResult{}, custom_error.NewNotFoundError("route step", "part %d has no operation %d", item.PartID, item.ToOpNumber)
		}
		if toStep.Key() <= fromStep.Key() {
			return models.TransferItemResult{}, custom_error.NewValidationError("to_op_number",
				"destination operation must come after the source operation in route order")
		}
	}

	// Source balance check.
	fromBalance, err := s.balanceRepo.GetBalance(tx, item.PartID, fromStep.SectionID, item.FromOpNumber)
	if err != nil {
		return models.TransferItemResult{}, err
	}
	fromBefore := 0
	if fromBalance != nil {
		fromBefore = fromBalance.Quantity
	}
	if item.Quantity > fromBefore {
		return models.TransferItemResult{}, custom_error.NewConflictError(
			"insufficient balance at part %d operation %d: have %d, need %d",
			item.PartID, item.FromOpNumber, fromBefore, item.Quantity)
	}

	// Scrap always consumes the entire remainder left at the source, so a
	// declared quantity differing from that remainder is rejected.
	scrapQuantity := 0
	if item.Scrap != nil {
		remainder := fromBefore - item.Quantity
		if item.Scrap.Quantity != remainder {
			return models.TransferItemResult{}, custom_error.NewConflictError(
				"scrap quantity %d does not match the source remainder %d", item.Scrap.Quantity, remainder)
		}
		scrapQuantity = item.Scrap.Quantity
	}

	// Destination balance resolution.
	var toBalance models.Balance
	var toBefore int
	if toWarehouse {
		toBefore, err = s.warehouseRepo.GetPartQuantity(tx, item.PartID)
		if err != nil {
			return models.TransferItemResult{}, err
		}
	} else {
		toBalance, err = s.balanceRepo.GetOrCreateBalance(tx, item.PartID, toStep.SectionID, item.ToOpNumber)
		if err != nil {
			return models.TransferItemResult{}, err
		}
		toBefore = toBalance.Quantity
	}

	// Label resolution. Scrap only burns label quantity when the transfer
	// terminates at the warehouse.
	labelNeed := item.Quantity
	if toWarehouse {
		labelNeed += scrapQuantity
	}
	label, err := s.resolveLabel(tx, item, fromStep.SectionID, labelNeed, labelQuantities)
	if err != nil {
		return models.TransferItemResult{}, err
	}

	// Mutation.
	fromRow := fromBalance
	if fromRow == nil {
		created, err := s.balanceRepo.GetOrCreateBalance(tx, item.PartID, fromStep.SectionID, item.FromOpNumber)
		if err != nil {
			return models.TransferItemResult{}, err
		}
		fromRow = &created
	}
	fromAfter, err := s.balanceRepo.AddQuantity(tx, fromRow.ID, -(item.Quantity + scrapQuantity))
	if err != nil {
		return models.TransferItemResult{}, err
	}

	toAfter := toBefore + item.Quantity
	if !toWarehouse {
		toAfter, err = s.balanceRepo.AddQuantity(tx, toBalance.ID, item.Quantity)
		if err != nil {
			return models.TransferItemResult{}, err
		}
	}

	var labelID *int
	var labelBefore, labelAfter *int
	if label != nil {
		before := label.RemainingQuantity
		after, err := s.labelRepo.AddRemaining(tx, label.ID, -labelNeed)
		if err != nil {
			return models.TransferItemResult{}, err
		}
		label.RemainingQuantity = after
		labelID, labelBefore, labelAfter = &label.ID, &before, &after

		// The cached source quantity follows the derivation formula, which
		// counts moved and scrapped pieces as gone from the operation.
		fromKey := labelOpKey{label.ID, fromStep.SectionID, item.FromOpNumber}
		if _, ok := labelQuantities[fromKey]; ok {
			labelQuantities[fromKey] -= item.Quantity + scrapQuantity
		}
		if !toWarehouse {
			toKey := labelOpKey{label.ID, toStep.SectionID, item.ToOpNumber}
			if _, ok := labelQuantities[toKey]; ok {
				labelQuantities[toKey] += item.Quantity
			}
		}
	}

	// Record creation.
	var toSectionID *int
	if !toWarehouse {
		toSectionID = &toStep.SectionID
	}
	transfer, err := s.transferRepo.InsertTransfer(tx, models.Transfer{
		PartID:        item.PartID,
		FromSectionID: fromStep.SectionID,
		FromOpNumber:  item.FromOpNumber,
		ToSectionID:   toSectionID,
		ToOpNumber:    item.ToOpNumber,
		TransferDate:  item.TransferDate,
		Quantity:      item.Quantity,
		Comment:       item.Comment,
		LabelID:       labelID,
	})
	if err != nil {
		return models.TransferItemResult{}, err
	}

	fromSectionID := fromStep.SectionID
	operations := []models.TransferOperation{
		{TransferID: transfer.ID, SectionID: &fromSectionID, OpNumber: item.FromOpNumber, QuantityChange: -(item.Quantity + scrapQuantity)},
		{TransferID: transfer.ID, SectionID: toSectionID, OpNumber: item.ToOpNumber, QuantityChange: item.Quantity},
	}
	if err := s.transferRepo.InsertTransferOperations(tx, operations); err != nil {
		return models.TransferItemResult{}, err
	}

	var scrap *models.Scrap
	if item.Scrap != nil {
		created, err := s.transferRepo.InsertScrap(tx, models.Scrap{
			TransferID: transfer.ID,
			Quantity:   scrapQuantity,
			Type:       item.Scrap.Type,
			Comment:    item.Scrap.Comment,
		})
		if err != nil {
			return models.TransferItemResult{}, err
		}
		scrap = &created
	}

	if toWarehouse {
		warehouseItem, err := s.warehouseRepo.InsertItem(tx, models.WarehouseItem{
			PartID:     item.PartID,
			Quantity:   item.Quantity,
			TransferID: &transfer.ID,
		})
		if err != nil {
			return models.TransferItemResult{}, err
		}
		if label != nil {
			if _, err := s.warehouseRepo.InsertLabelItem(tx, models.WarehouseLabelItem{
				WarehouseItemID: warehouseItem.ID,
				LabelID:         label.ID,
				Quantity:        item.Quantity,
			}); err != nil {
				return models.TransferItemResult{}, err
			}
		}
	}

	auditRow, err := s.auditRepo.InsertAudit(tx, models.TransferAudit{
		TransferID:        transfer.ID,
		PartID:            item.PartID,
		FromSectionID:     fromStep.SectionID,
		FromOpNumber:      item.FromOpNumber,
		ToSectionID:       toSectionID,
		ToOpNumber:        item.ToOpNumber,
		Quantity:          item.Quantity,
		ScrapQuantity:     scrapQuantity,
		FromBalanceBefore: fromBefore,
		FromBalanceAfter:  fromAfter,
		ToBalanceBefore:   toBefore,
		ToBalanceAfter:    toAfter,
		LabelID:           labelID,
		LabelBefore:       labelBefore,
		LabelAfter:        labelAfter,
		CreatedAt:         time.Now(),
	})
	if err != nil {
		return models.TransferItemResult{}, err
	}

	return models.TransferItemResult{
		TransferID:        transfer.ID,
		AuditID:           auditRow.ID,
		FromBalanceBefore: fromBefore,
		FromBalanceAfter:  fromAfter,
		ToBalanceBefore:   toBefore,
		ToBalanceAfter:    toAfter,
		Scrap:             scrap,
		Label:             label,
	}, nil
}

// resolveLabel picks the batch label a transfer consumes from. An explicit
// label id is taken as-is; otherwise candidates originating at the source
// route point are tried in ascending number order and the first one holding
// enough derived quantity at that operation wins. Finding no candidate is
// not an error: label tracking is best-effort provenance.
func (s *TransferService) resolveLabel(tx *goqu.TxDatabase, item models.TransferItemRequest, fromSectionID, labelNeed int, labelQuantities map[labelOpKey]int) (*models.Label, error) {
	if item.LabelID != nil {
		label, err := s.labelRepo.GetLabel(tx, *item.LabelID)
		if err != nil {
			return nil, err
		}
		if label == nil {
			return nil, custom_error.NewNotFoundError("label", "id %d", *item.LabelID)
		}
		if label.PartID != item.PartID {
			return nil, custom_error.NewConflictError("label %s belongs to a different part", label.Number)
		}
		return label, nil
	}

	candidates, err := s.labelRepo.GetCandidateLabels(tx, item.PartID, fromSectionID, item.FromOpNumber)
	if err != nil {
		return nil, err
	}

	for i := range candidates {
		candidate := &candidates[i]
		key := labelOpKey{candidate.ID, fromSectionID, item.FromOpNumber}
		atOperation, ok := labelQuantities[key]
		if !ok {
			atOperation, err = s.labelRepo.GetQuantityAtOperation(tx, candidate.ID, fromSectionID, item.FromOpNumber)
			if err != nil {
				return nil, err
			}
			labelQuantities[key] = atOperation
		}
		if atOperation >= labelNeed {
			return candidate, nil
		}
	}

	return nil, nil
}

func findStep(route []models.RouteStep, opNumber int) *models.RouteStep {
	for i := range route {
		if route[i].OpNumber == opNumber {
			return &route[i]
		}
	}
	return nil
}
