package routing

import (
	"context"
	"fmt"

	"github.com/Ilay3/UchetNZP-sub000/internal/repository"
	"github.com/Ilay3/UchetNZP-sub000/pkg/models"

	"github.com/doug-martin/goqu/v9"
)

// RouteRepository is the storage surface of the route graph. Methods taking
// a tx participate in the caller's batch transaction; the launch and
// transfer engines resolve route steps through this interface.
type RouteRepository interface {
	GetRouteSteps(ctx context.Context, partID int) ([]models.RouteStep, error)
	GetRouteStepsTx(tx *goqu.TxDatabase, partID int) ([]models.RouteStep, error)
	GetRouteStep(tx *goqu.TxDatabase, partID, opNumber int) (*models.RouteStep, error)
	UpsertRouteStep(tx *goqu.TxDatabase, step models.RouteStep) (models.RouteStep, error)
	DeleteRouteStep(tx *goqu.TxDatabase, partID, opNumber int) (bool, error)
	StepHasActivity(tx *goqu.TxDatabase, partID, opNumber int) (bool, error)
}

type routeRepository struct {
	repo *repository.Repository
}

func NewRepository(r *repository.Repository) *routeRepository {
	return &routeRepository{repo: r}
}

func (r *routeRepository) GetRouteSteps(ctx context.Context, partID int) ([]models.RouteStep, error) {
	var steps []models.RouteStep
	err := r.repo.GoquDBWrapper.From("route_steps").
		Where(goqu.Ex{"part_id": partID}).
		ScanStructsContext(ctx, &steps)
	if err != nil {
		return nil, fmt.Errorf("failed to select route steps for part %d: %w", partID, err)
	}
	return steps, nil
}

func (r *routeRepository) GetRouteStepsTx(tx *goqu.TxDatabase, partID int) ([]models.RouteStep, error) {
	var steps []models.RouteStep
	err := tx.From("route_steps").
		Where(goqu.Ex{"part_id": partID}).
		ScanStructs(&steps)
	if err != nil {
		return nil, fmt.Errorf("failed to select route steps for part %d: %w", partID, err)
	}
	return steps, nil
}

func (r *routeRepository) GetRouteStep(tx *goqu.TxDatabase, partID, opNumber int) (*models.RouteStep, error) {
	var step models.RouteStep
	found, err := tx.From("route_steps").
		Where(goqu.Ex{"part_id": partID, "op_number": opNumber}).
		ScanStruct(&step)
	if err != nil {
		return nil, fmt.Errorf("failed to select route step %d/%d: %w", partID, opNumber, err)
	}
	if !found {
		return nil, nil
	}
	return &step, nil
}

// UpsertRouteStep is idempotent by (part_id, op_number): a second call with
// the same pair updates operation, section and norm hours in place.
func (r *routeRepository) UpsertRouteStep(tx *goqu.TxDatabase, step models.RouteStep) (models.RouteStep, error) {
	query := tx.Insert("route_steps").
		Rows(goqu.Record{
			"part_id":      step.PartID,
			"op_number":    step.OpNumber,
			"operation_id": step.OperationID,
			"section_id":   step.SectionID,
			"norm_hours":   step.NormHours,
		}).
		OnConflict(goqu.DoUpdate("part_id, op_number", goqu.Record{
			"operation_id": step.OperationID,
			"section_id":   step.SectionID,
			"norm_hours":   step.NormHours,
		})).
		Returning("id")

	if _, err := query.Executor().ScanVal(&step.ID); err != nil {
		return models.RouteStep{}, fmt.Errorf("failed to upsert route step %d/%d: %w", step.PartID, step.OpNumber, err)
	}

	return step, nil
}

func (r *routeRepository) DeleteRouteStep(tx *goqu.TxDatabase, partID, opNumber int) (bool, error) {
	result, err := tx.Delete("route_steps").
		Where(goqu.Ex{"part_id": partID, "op_number": opNumber}).
		Executor().
		Exec()
	if err != nil {
		return false, fmt.Errorf("failed to delete route step %d/%d: %w", partID, opNumber, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check rows affected: %w", err)
	}

	return affected > 0, nil
}

// StepHasActivity reports whether a route step is still referenced by a
// non-zero balance or by a launch, which blocks its deletion.
func (r *routeRepository) StepHasActivity(tx *goqu.TxDatabase, partID, opNumber int) (bool, error) {
	var balanceCount int
	_, err := tx.From("balances").
		Select(goqu.COUNT("id")).
		Where(goqu.Ex{"part_id": partID, "op_number": opNumber}).
		Where(goqu.C("quantity").Gt(0)).
		ScanVal(&balanceCount)
	if err != nil {
		return false, fmt.Errorf("failed to check balances for route step: %w", err)
	}
	if balanceCount > 0 {
		return true, nil
	}

	var launchCount int
	_, err = tx.From("launches").
		Select(goqu.COUNT("id")).
		Where(goqu.Ex{"part_id": partID, "from_op_number": opNumber}).
		ScanVal(&launchCount)
	if err != nil {
		return false, fmt.Errorf("failed to check launches for route step: %w", err)
	}

	return launchCount > 0, nil
}
