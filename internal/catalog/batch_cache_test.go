package catalog

import (
	"testing"

	"github.com/Ilay3/UchetNZP-sub000/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) ResolvePart(tx *goqu.TxDatabase, name string, code *string) (models.Part, error) {
	args := m.Called(tx, name, code)
	return args.Get(0).(models.Part), args.Error(1)
}

func (m *MockResolver) ResolveOperation(tx *goqu.TxDatabase, name string) (models.Operation, error) {
	args := m.Called(tx, name)
	return args.Get(0).(models.Operation), args.Error(1)
}

func (m *MockResolver) ResolveSection(tx *goqu.TxDatabase, name string) (models.Section, error) {
	args := m.Called(tx, name)
	return args.Get(0).(models.Section), args.Error(1)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "shaft", Normalize("  Shaft "))
	assert.Equal(t, "turning", Normalize("TURNING"))
}

func TestBatchCacheResolvesOnce(t *testing.T) {
	mockResolver := new(MockResolver)
	cache := NewBatchCache(mockResolver)
	tx := new(goqu.TxDatabase)

	mockResolver.On("ResolvePart", tx, "Shaft", (*string)(nil)).
		Return(models.Part{ID: 1, Name: "Shaft"}, nil).Once()
	mockResolver.On("ResolveOperation", tx, "Turning").
		Return(models.Operation{ID: 2, Name: "Turning"}, nil).Once()

	for i := 0; i < 3; i++ {
		part, err := cache.Part(tx, "Shaft", nil)
		assert.NoError(t, err)
		assert.Equal(t, 1, part.ID)
	}

	// different spelling of the same name hits the cache too
	operation, err := cache.Operation(tx, "Turning")
	assert.NoError(t, err)
	_, err = cache.Operation(tx, "  turning ")
	assert.NoError(t, err)
	assert.Equal(t, 2, operation.ID)

	mockResolver.AssertExpectations(t)
}
