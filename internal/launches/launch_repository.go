package launches

import (
	"fmt"

	"github.com/Ilay3/UchetNZP-sub000/internal/repository"
	"github.com/Ilay3/UchetNZP-sub000/pkg/models"

	"github.com/doug-martin/goqu/v9"
)

type LaunchRepository interface {
	InsertLaunch(tx *goqu.TxDatabase, launch models.Launch) (models.Launch, error)
	InsertLaunchOperations(tx *goqu.TxDatabase, operations []models.LaunchOperation) error
	GetLaunch(tx *goqu.TxDatabase, id int) (*models.Launch, error)
	DeleteLaunch(tx *goqu.TxDatabase, id int) error
}

type launchRepository struct {
	repo *repository.Repository
}

func NewRepository(r *repository.Repository) *launchRepository {
	return &launchRepository{repo: r}
}

func (r *launchRepository) InsertLaunch(tx *goqu.TxDatabase, launch models.Launch) (models.Launch, error) {
	query := tx.Insert("launches").
		Rows(goqu.Record{
			"part_id":             launch.PartID,
			"from_op_number":      launch.FromOpNumber,
			"launch_date":         launch.LaunchDate,
			"quantity":            launch.Quantity,
			"document_number":     launch.DocumentNumber,
			"sum_hours_to_finish": launch.SumHoursToFinish,
		}).
		Returning("id")

	if _, err := query.Executor().ScanVal(&launch.ID); err != nil {
		return models.Launch{}, fmt.Errorf("failed to insert launch: %w", err)
	}

	return launch, nil
}

func (r *launchRepository) InsertLaunchOperations(tx *goqu.TxDatabase, operations []models.LaunchOperation) error {
	var records []goqu.Record
	for _, op := range operations {
		records = append(records, goqu.Record{
			"launch_id":    op.LaunchID,
			"op_number":    op.OpNumber,
			"operation_id": op.OperationID,
			"section_id":   op.SectionID,
			"hours":        op.Hours,
		})
	}

	query := tx.Insert("launch_operations").Rows(records)
	if _, err := query.Executor().Exec(); err != nil {
		return fmt.Errorf("failed to insert launch operations: %w", err)
	}

	return nil
}

func (r *launchRepository) GetLaunch(tx *goqu.TxDatabase, id int) (*models.Launch, error) {
	var launch models.Launch
	found, err := tx.From("launches").
		Where(goqu.Ex{"id": id}).
		ScanStruct(&launch)
	if err != nil {
		return nil, fmt.Errorf("failed to select launch %d: %w", id, err)
	}
	if !found {
		return nil, nil
	}
	return &launch, nil
}

func (r *launchRepository) DeleteLaunch(tx *goqu.TxDatabase, id int) error {
	if _, err := tx.Delete("launch_operations").
		Where(goqu.Ex{"launch_id": id}).
		Executor().
		Exec(); err != nil {
		return fmt.Errorf("failed to delete launch operations: %w", err)
	}

	if _, err := tx.Delete("launches").
		Where(goqu.Ex{"id": id}).
		Executor().
		Exec(); err != nil {
		return fmt.Errorf("failed to delete launch %d: %w", id, err)
	}

	return nil
}
