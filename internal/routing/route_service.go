package routing

import (
	"context"
	"sort"

	"github.com/Ilay3/UchetNZP-sub000/internal/catalog"
	"github.com/Ilay3/UchetNZP-sub000/internal/repository"
	custom_error "github.com/Ilay3/UchetNZP-sub000/pkg/errors"
	"github.com/Ilay3/UchetNZP-sub000/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// NormHoursScale is the rounding scale for route-step norm hours.
const NormHoursScale = 3

type RouteService struct {
	txRunner    repository.TxRunner
	routeRepo   RouteRepository
	catalogRepo catalog.Resolver
	log         *zap.Logger
}

func NewService(txRunner repository.TxRunner, routeRepo RouteRepository, catalogRepo catalog.Resolver, log *zap.Logger) *RouteService {
	return &RouteService{
		txRunner:    txRunner,
		routeRepo:   routeRepo,
		catalogRepo: catalogRepo,
		log:         log,
	}
}

// SortSteps orders route steps by their normalized zero-padded keys. The
// padding makes op numbers of different digit counts sort the same way
// numerically and lexicographically.
func SortSteps(steps []models.RouteStep) {
	sort.SliceStable(steps, func(i, j int) bool {
		return steps[i].Key() < steps[j].Key()
	})
}

// TailFrom returns the suffix of an ordered route whose normalized keys are
// >= the key of fromOpNumber. An empty tail is a valid result, not an error.
func TailFrom(steps []models.RouteStep, fromOpNumber int) []models.RouteStep {
	fromKey := models.OpKey(fromOpNumber)
	tail := make([]models.RouteStep, 0, len(steps))
	for _, step := range steps {
		if step.Key() >= fromKey {
			tail = append(tail, step)
		}
	}
	return tail
}

// GetRoute returns the part's full route in key order. An empty route yields
// an empty sequence, never an error.
func (s *RouteService) GetRoute(ctx context.Context, partID int) ([]models.RouteStep, error) {
	steps, err := s.routeRepo.GetRouteSteps(ctx, partID)
	if err != nil {
		return nil, err
	}

	SortSteps(steps)
	return steps, nil
}

func (s *RouteService) GetTailToFinish(ctx context.Context, partID, fromOpNumber int) ([]models.RouteStep, error) {
	steps, err := s.GetRoute(ctx, partID)
	if err != nil {
		return nil, err
	}

	return TailFrom(steps, fromOpNumber), nil
}

// UpsertRouteSteps applies a batch of route-step upserts in one transaction.
// Parts, operations and sections are resolved or created through a batch
// cache so repeated names inside the batch hit storage once.
func (s *RouteService) UpsertRouteSteps(ctx context.Context, items []models.RouteStepUpsertRequest) ([]models.RouteStep, error) {
	for i, item := range items {
		if item.OpNumber <= 0 {
			return nil, custom_error.NewValidationError("op_number", "operation number must be positive")
		}
		if !item.NormHours.IsPositive() {
			return nil, custom_error.NewValidationError("norm_hours", "norm hours must be positive")
		}
		items[i].NormHours = item.NormHours.Round(NormHoursScale)
	}

	var saved []models.RouteStep
	err := s.txRunner.WithTransaction(ctx, func(tx *goqu.TxDatabase) error {
		cache := catalog.NewBatchCache(s.catalogRepo)

		for _, item := range items {
			part, err := cache.Part(tx, item.PartName, item.PartCode)
			if err != nil {
				return err
			}
			operation, err := cache.Operation(tx, item.OperationName)
			if err != nil {
				return err
			}
			section, err := cache.Section(tx, item.SectionName)
			if err != nil {
				return err
			}

			step, err := s.routeRepo.UpsertRouteStep(tx, models.RouteStep{
				PartID:      part.ID,
				OpNumber:    item.OpNumber,
				OperationID: operation.ID,
				SectionID:   section.ID,
				NormHours:   item.NormHours,
			})
			if err != nil {
				return err
			}

			saved = append(saved, step)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("route steps upserted", zap.Int("count", len(saved)))
	return saved, nil
}

// DeleteRouteStep removes a route step unless a balance or launch still
// references it.
func (s *RouteService) DeleteRouteStep(ctx context.Context, partID, opNumber int) error {
	return s.txRunner.WithTransaction(ctx, func(tx *goqu.TxDatabase) error {
		active, err := s.routeRepo.StepHasActivity(tx, partID, opNumber)
		if err != nil {
			return err
		}
		if active {
			return custom_error.NewConflictError("route step %d of part %d is referenced by balances or launches", opNumber, partID)
		}

		deleted, err := s.routeRepo.DeleteRouteStep(tx, partID, opNumber)
		if err != nil {
			return err
		}
		if !deleted {
			return custom_error.NewNotFoundError("route step", "part %d has no operation %d", partID, opNumber)
		}

		return nil
	})
}

// SumTailHours multiplies the quantity by the summed norm hours of a tail.
func SumTailHours(tail []models.RouteStep, quantity int) decimal.Decimal {
	sum := decimal.Zero
	for _, step := range tail {
		sum = sum.Add(step.NormHours)
	}
	return sum.Mul(decimal.NewFromInt(int64(quantity)))
}
