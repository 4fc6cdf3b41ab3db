package launches

import (
	"context"

	"github.com/Ilay3/UchetNZP-sub000/internal/balances"
	"github.com/Ilay3/UchetNZP-sub000/internal/repository"
	"github.com/Ilay3/UchetNZP-sub000/internal/routing"
	custom_error "github.com/Ilay3/UchetNZP-sub000/pkg/errors"
	"github.com/Ilay3/UchetNZP-sub000/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LaunchService enters new WIP against a route's starting operation. A batch
// is one transaction: any failing item rolls the whole batch back, partial
// application is never permitted.
type LaunchService struct {
	txRunner    repository.TxRunner
	launchRepo  LaunchRepository
	routeRepo   routing.RouteRepository
	balanceRepo balances.BalanceRepository
	log         *zap.Logger
}

func NewService(
	txRunner repository.TxRunner,
	launchRepo LaunchRepository,
	routeRepo routing.RouteRepository,
	balanceRepo balances.BalanceRepository,
	log *zap.Logger,
) *LaunchService {
	return &LaunchService{
		txRunner:    txRunner,
		launchRepo:  launchRepo,
		routeRepo:   routeRepo,
		balanceRepo: balanceRepo,
		log:         log,
	}
}

func (s *LaunchService) AddLaunches(ctx context.Context, items []models.LaunchItemRequest) (models.LaunchBatchResult, error) {
	for _, item := range items {
		if item.Quantity <= 0 {
			return models.LaunchBatchResult{}, custom_error.NewValidationError("quantity", "launch quantity must be positive")
		}
	}

	var results []models.LaunchItemResult
	err := s.txRunner.WithTransaction(ctx, func(tx *goqu.TxDatabase) error {
		for _, item := range items {
			result, err := s.launchOne(tx, item)
			if err != nil {
				return err
			}
			results = append(results, result)
		}
		return nil
	})
	if err != nil {
		return models.LaunchBatchResult{}, err
	}

	s.log.Info("launch batch saved", zap.Int("items", len(results)))
	return models.LaunchBatchResult{Saved: true, Items: results}, nil
}

func (s *LaunchService) launchOne(tx *goqu.TxDatabase, item models.LaunchItemRequest) (models.LaunchItemResult, error) {
	step, err := s.routeRepo.GetRouteStep(tx, item.PartID, item.FromOpNumber)
	if err != nil {
		return models.LaunchItemResult{}, err
	}
	if step == nil {
		return models.LaunchItemResult{}, custom_error.NewNotFoundError("route step", "part %d has no operation %d", item.PartID, item.FromOpNumber)
	}

	balance, err := s.balanceRepo.GetBalance(tx, item.PartID, step.SectionID, item.FromOpNumber)
	if err != nil {
		return models.LaunchItemResult{}, err
	}
	available := 0
	if balance != nil {
		available = balance.Quantity
	}
	if available < item.Quantity {
		return models.LaunchItemResult{}, custom_error.NewConflictError(
			"insufficient balance at part %d operation %d: have %d, need %d",
			item.PartID, item.FromOpNumber, available, item.Quantity)
	}

	route, err := s.routeRepo.GetRouteStepsTx(tx, item.PartID)
	if err != nil {
		return models.LaunchItemResult{}, err
	}
	routing.SortSteps(route)
	tail := routing.TailFrom(route, item.FromOpNumber)
	if len(tail) == 0 {
		return models.LaunchItemResult{}, custom_error.NewConflictError(
			"part %d has no route tail from operation %d, nothing to produce against",
			item.PartID, item.FromOpNumber)
	}

	remaining, err := s.balanceRepo.AddQuantity(tx, balance.ID, -item.Quantity)
	if err != nil {
		return models.LaunchItemResult{}, err
	}

	sumHours := routing.SumTailHours(tail, item.Quantity)
	launch, err := s.launchRepo.InsertLaunch(tx, models.Launch{
		PartID:           item.PartID,
		FromOpNumber:     item.FromOpNumber,
		LaunchDate:       item.LaunchDate,
		Quantity:         item.Quantity,
		DocumentNumber:   item.DocumentNumber,
		SumHoursToFinish: sumHours,
	})
	if err != nil {
		return models.LaunchItemResult{}, err
	}

	quantity := decimal.NewFromInt(int64(item.Quantity))
	operations := make([]models.LaunchOperation, 0, len(tail))
	for _, tailStep := range tail {
		operations = append(operations, models.LaunchOperation{
			LaunchID:    launch.ID,
			OpNumber:    tailStep.OpNumber,
			OperationID: tailStep.OperationID,
			SectionID:   tailStep.SectionID,
			Hours:       tailStep.NormHours.Mul(quantity),
		})
	}
	if err := s.launchRepo.InsertLaunchOperations(tx, operations); err != nil {
		return models.LaunchItemResult{}, err
	}

	return models.LaunchItemResult{
		PartID:           item.PartID,
		FromOpNumber:     item.FromOpNumber,
		SectionID:        step.SectionID,
		Remaining:        remaining,
		SumHoursToFinish: sumHours,
		LaunchID:         launch.ID,
	}, nil
}

// DeleteLaunch undoes a launch, restoring the quantity to the balance it was
// taken from.
func (s *LaunchService) DeleteLaunch(ctx context.Context, launchID int) error {
	return s.txRunner.WithTransaction(ctx, func(tx *goqu.TxDatabase) error {
		launch, err := s.launchRepo.GetLaunch(tx, launchID)
		if err != nil {
			return err
		}
		if launch == nil {
			return custom_error.NewNotFoundError("launch", "id %d", launchID)
		}

		step, err := s.routeRepo.GetRouteStep(tx, launch.PartID, launch.FromOpNumber)
		if err != nil {
			return err
		}
		if step == nil {
			return custom_error.NewConflictError("route step of launch %d no longer exists", launchID)
		}

		balance, err := s.balanceRepo.GetOrCreateBalance(tx, launch.PartID, step.SectionID, launch.FromOpNumber)
		if err != nil {
			return err
		}
		if _, err := s.balanceRepo.AddQuantity(tx, balance.ID, launch.Quantity); err != nil {
			return err
		}

		return s.launchRepo.DeleteLaunch(tx, launchID)
	})
}
