package catalog

import (
	"github.com/Ilay3/UchetNZP-sub000/pkg/models"

	"github.com/doug-martin/goqu/v9"
)

// Resolver is the slice of CatalogRepository a batch cache needs.
type Resolver interface {
	ResolvePart(tx *goqu.TxDatabase, name string, code *string) (models.Part, error)
	ResolveOperation(tx *goqu.TxDatabase, name string) (models.Operation, error)
	ResolveSection(tx *goqu.TxDatabase, name string) (models.Section, error)
}

// BatchCache memoizes resolve-or-create lookups for the lifetime of one
// batch transaction, so later items in a batch see parts/operations/sections
// created by earlier items without re-querying storage. Create one per
// batch, discard it with the batch.
type BatchCache struct {
	resolver   Resolver
	parts      map[string]models.Part
	operations map[string]models.Operation
	sections   map[string]models.Section
}

func NewBatchCache(resolver Resolver) *BatchCache {
	return &BatchCache{
		resolver:   resolver,
		parts:      make(map[string]models.Part),
		operations: make(map[string]models.Operation),
		sections:   make(map[string]models.Section),
	}
}

func (c *BatchCache) Part(tx *goqu.TxDatabase, name string, code *string) (models.Part, error) {
	key := Normalize(name)
	if part, ok := c.parts[key]; ok {
		return part, nil
	}

	part, err := c.resolver.ResolvePart(tx, name, code)
	if err != nil {
		return models.Part{}, err
	}
	c.parts[key] = part

	return part, nil
}

func (c *BatchCache) Operation(tx *goqu.TxDatabase, name string) (models.Operation, error) {
	key := Normalize(name)
	if operation, ok := c.operations[key]; ok {
		return operation, nil
	}

	operation, err := c.resolver.ResolveOperation(tx, name)
	if err != nil {
		return models.Operation{}, err
	}
	c.operations[key] = operation

	return operation, nil
}

func (c *BatchCache) Section(tx *goqu.TxDatabase, name string) (models.Section, error) {
	key := Normalize(name)
	if section, ok := c.sections[key]; ok {
		return section, nil
	}

	section, err := c.resolver.ResolveSection(tx, name)
	if err != nil {
		return models.Section{}, err
	}
	c.sections[key] = section

	return section, nil
}
