package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Ilay3/UchetNZP-sub000/internal/repository"
	"github.com/Ilay3/UchetNZP-sub000/pkg/models"

	"github.com/doug-martin/goqu/v9"
)

// CatalogRepository resolves and creates Part/Operation/Section master data.
// Resolution inside a batch runs on the batch transaction; plain reads go
// through the shared goqu wrapper.
type CatalogRepository struct {
	repo *repository.Repository
}

func NewRepository(r *repository.Repository) *CatalogRepository {
	return &CatalogRepository{repo: r}
}

// Normalize is the cache/lookup key for catalog names.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (r *CatalogRepository) FindPartByName(tx *goqu.TxDatabase, name string) (*models.Part, error) {
	var part models.Part
	found, err := tx.From("parts").
		Where(goqu.L("lower(name) = ?", Normalize(name))).
		ScanStruct(&part)
	if err != nil {
		return nil, fmt.Errorf("failed to select part by name: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &part, nil
}

func (r *CatalogRepository) FindPartByCode(tx *goqu.TxDatabase, code string) (*models.Part, error) {
	var part models.Part
	found, err := tx.From("parts").
		Where(goqu.Ex{"code": code}).
		ScanStruct(&part)
	if err != nil {
		return nil, fmt.Errorf("failed to select part by code: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &part, nil
}

// ResolvePart finds a part by case-insensitive name first, then by code, and
// creates it when neither matches.
func (r *CatalogRepository) ResolvePart(tx *goqu.TxDatabase, name string, code *string) (models.Part, error) {
	if part, err := r.FindPartByName(tx, name); err != nil {
		return models.Part{}, err
	} else if part != nil {
		return *part, nil
	}

	if code != nil && *code != "" {
		if part, err := r.FindPartByCode(tx, *code); err != nil {
			return models.Part{}, err
		} else if part != nil {
			return *part, nil
		}
	}

	part := models.Part{Name: strings.TrimSpace(name), Code: code}
	query := tx.Insert("parts").
		Rows(goqu.Record{"name": part.Name, "code": part.Code}).
		Returning("id")
	if _, err := query.Executor().ScanVal(&part.ID); err != nil {
		return models.Part{}, fmt.Errorf("failed to insert part %q: %w", part.Name, err)
	}

	return part, nil
}

func (r *CatalogRepository) ResolveOperation(tx *goqu.TxDatabase, name string) (models.Operation, error) {
	var operation models.Operation
	found, err := tx.From("operations").
		Where(goqu.L("lower(name) = ?", Normalize(name))).
		ScanStruct(&operation)
	if err != nil {
		return models.Operation{}, fmt.Errorf("failed to select operation: %w", err)
	}
	if found {
		return operation, nil
	}

	operation.Name = strings.TrimSpace(name)
	query := tx.Insert("operations").
		Rows(goqu.Record{"name": operation.Name, "code": operation.Code}).
		Returning("id")
	if _, err := query.Executor().ScanVal(&operation.ID); err != nil {
		return models.Operation{}, fmt.Errorf("failed to insert operation %q: %w", operation.Name, err)
	}

	return operation, nil
}

func (r *CatalogRepository) ResolveSection(tx *goqu.TxDatabase, name string) (models.Section, error) {
	var section models.Section
	found, err := tx.From("sections").
		Where(goqu.L("lower(name) = ?", Normalize(name))).
		ScanStruct(&section)
	if err != nil {
		return models.Section{}, fmt.Errorf("failed to select section: %w", err)
	}
	if found {
		return section, nil
	}

	section.Name = strings.TrimSpace(name)
	query := tx.Insert("sections").
		Rows(goqu.Record{"name": section.Name, "code": section.Code}).
		Returning("id")
	if _, err := query.Executor().ScanVal(&section.ID); err != nil {
		return models.Section{}, fmt.Errorf("failed to insert section %q: %w", section.Name, err)
	}

	return section, nil
}

func (r *CatalogRepository) GetPart(ctx context.Context, id int) (*models.Part, error) {
	var part models.Part
	found, err := r.repo.GoquDBWrapper.From("parts").
		Where(goqu.Ex{"id": id}).
		ScanStructContext(ctx, &part)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to select part %d: %w", id, err)
	}
	if !found {
		return nil, nil
	}
	return &part, nil
}

func (r *CatalogRepository) GetParts(ctx context.Context) ([]models.Part, error) {
	var parts []models.Part
	err := r.repo.GoquDBWrapper.From("parts").
		Order(goqu.I("name").Asc()).
		ScanStructsContext(ctx, &parts)
	if err != nil {
		return nil, fmt.Errorf("failed to select parts: %w", err)
	}
	return parts, nil
}

func (r *CatalogRepository) GetOperations(ctx context.Context) ([]models.Operation, error) {
	var operations []models.Operation
	err := r.repo.GoquDBWrapper.From("operations").
		Order(goqu.I("name").Asc()).
		ScanStructsContext(ctx, &operations)
	if err != nil {
		return nil, fmt.Errorf("failed to select operations: %w", err)
	}
	return operations, nil
}

func (r *CatalogRepository) GetSections(ctx context.Context) ([]models.Section, error) {
	var sections []models.Section
	err := r.repo.GoquDBWrapper.From("sections").
		Order(goqu.I("name").Asc()).
		ScanStructsContext(ctx, &sections)
	if err != nil {
		return nil, fmt.Errorf("failed to select sections: %w", err)
	}
	return sections, nil
}
