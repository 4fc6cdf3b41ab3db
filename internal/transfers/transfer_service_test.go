package transfers

import (
	"context"
	"testing"
	"time"

	"github.com/Ilay3/UchetNZP-sub000/internal/audit"
	custom_error "github.com/Ilay3/UchetNZP-sub000/pkg/errors"
	"github.com/Ilay3/UchetNZP-sub000/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type stubTxRunner struct{}

func (stubTxRunner) WithTransaction(_ context.Context, fn func(tx *goqu.TxDatabase) error) error {
	return fn(new(goqu.TxDatabase))
}

func (stubTxRunner) WithSerializableTransaction(_ context.Context, fn func(tx *goqu.TxDatabase) error) error {
	return fn(new(goqu.TxDatabase))
}

type MockTransferRepository struct {
	mock.Mock
}

func (m *MockTransferRepository) InsertTransfer(tx *goqu.TxDatabase, t models.Transfer) (models.Transfer, error) {
	args := m.Called(tx, t)
	return args.Get(0).(models.Transfer), args.Error(1)
}

func (m *MockTransferRepository) InsertTransferOperations(tx *goqu.TxDatabase, operations []models.TransferOperation) error {
	args := m.Called(tx, operations)
	return args.Error(0)
}

func (m *MockTransferRepository) GetTransfer(tx *goqu.TxDatabase, id int) (*models.Transfer, error) {
	args := m.Called(tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transfer), args.Error(1)
}

func (m *MockTransferRepository) GetTransferOperationIDs(tx *goqu.TxDatabase, transferID int) ([]int, error) {
	args := m.Called(tx, transferID)
	return args.Get(0).([]int), args.Error(1)
}

func (m *MockTransferRepository) DeleteTransfer(tx *goqu.TxDatabase, id int) error {
	args := m.Called(tx, id)
	return args.Error(0)
}

func (m *MockTransferRepository) InsertScrap(tx *goqu.TxDatabase, scrap models.Scrap) (models.Scrap, error) {
	args := m.Called(tx, scrap)
	return args.Get(0).(models.Scrap), args.Error(1)
}

func (m *MockTransferRepository) GetScrapByTransfer(tx *goqu.TxDatabase, transferID int) (*models.Scrap, error) {
	args := m.Called(tx, transferID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Scrap), args.Error(1)
}

func (m *MockTransferRepository) DeleteScrapByTransfer(tx *goqu.TxDatabase, transferID int) error {
	args := m.Called(tx, transferID)
	return args.Error(0)
}

type MockRouteRepository struct {
	mock.Mock
}

func (m *MockRouteRepository) GetRouteSteps(ctx context.Context, partID int) ([]models.RouteStep, error) {
	args := m.Called(ctx, partID)
	return args.Get(0).([]models.RouteStep), args.Error(1)
}

func (m *MockRouteRepository) GetRouteStepsTx(tx *goqu.TxDatabase, partID int) ([]models.RouteStep, error) {
	args := m.Called(tx, partID)
	return args.Get(0).([]models.RouteStep), args.Error(1)
}

func (m *MockRouteRepository) GetRouteStep(tx *goqu.TxDatabase, partID, opNumber int) (*models.RouteStep, error) {
	args := m.Called(tx, partID, opNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RouteStep), args.Error(1)
}

func (m *MockRouteRepository) UpsertRouteStep(tx *goqu.TxDatabase, step models.RouteStep) (models.RouteStep, error) {
	args := m.Called(tx, step)
	return args.Get(0).(models.RouteStep), args.Error(1)
}

func (m *MockRouteRepository) DeleteRouteStep(tx *goqu.TxDatabase, partID, opNumber int) (bool, error) {
	args := m.Called(tx, partID, opNumber)
	return args.Bool(0), args.Error(1)
}

func (m *MockRouteRepository) StepHasActivity(tx *goqu.TxDatabase, partID, opNumber int) (bool, error) {
	args := m.Called(tx, partID, opNumber)
	return args.Bool(0), args.Error(1)
}

type MockBalanceRepository struct {
	mock.Mock
}

func (m *MockBalanceRepository) GetBalance(tx *goqu.TxDatabase, partID, sectionID, opNumber int) (*models.Balance, error) {
	args := m.Called(tx, partID, sectionID, opNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Balance), args.Error(1)
}

func (m *MockBalanceRepository) GetOrCreateBalance(tx *goqu.TxDatabase, partID, sectionID, opNumber int) (models.Balance, error) {
	args := m.Called(tx, partID, sectionID, opNumber)
	return args.Get(0).(models.Balance), args.Error(1)
}

func (m *MockBalanceRepository) AddQuantity(tx *goqu.TxDatabase, balanceID, delta int) (int, error) {
	args := m.Called(tx, balanceID, delta)
	return args.Int(0), args.Error(1)
}

func (m *MockBalanceRepository) SetQuantity(tx *goqu.TxDatabase, balanceID, value int) error {
	args := m.Called(tx, balanceID, value)
	return args.Error(0)
}

func (m *MockBalanceRepository) InsertAdjustment(tx *goqu.TxDatabase, adjustment models.BalanceAdjustment) error {
	args := m.Called(tx, adjustment)
	return args.Error(0)
}

func (m *MockBalanceRepository) GetBalances(ctx context.Context, partID, sectionID int) ([]models.Balance, error) {
	args := m.Called(ctx, partID, sectionID)
	return args.Get(0).([]models.Balance), args.Error(1)
}

type MockLabelRepository struct {
	mock.Mock
}

func (m *MockLabelRepository) GetLabel(tx *goqu.TxDatabase, id int) (*models.Label, error) {
	args := m.Called(tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Label), args.Error(1)
}

func (m *MockLabelRepository) GetLabels(ctx context.Context, partID int) ([]models.Label, error) {
	args := m.Called(ctx, partID)
	return args.Get(0).([]models.Label), args.Error(1)
}

func (m *MockLabelRepository) GetMaxNumericNumber(tx *goqu.TxDatabase) (int, error) {
	args := m.Called(tx)
	return args.Int(0), args.Error(1)
}

func (m *MockLabelRepository) NumberExists(tx *goqu.TxDatabase, number string) (bool, error) {
	args := m.Called(tx, number)
	return args.Bool(0), args.Error(1)
}

func (m *MockLabelRepository) InsertLabel(tx *goqu.TxDatabase, label models.Label) (models.Label, error) {
	args := m.Called(tx, label)
	return args.Get(0).(models.Label), args.Error(1)
}

func (m *MockLabelRepository) UpdateLabel(tx *goqu.TxDatabase, label models.Label) error {
	args := m.Called(tx, label)
	return args.Error(0)
}

func (m *MockLabelRepository) DeleteLabel(tx *goqu.TxDatabase, id int) error {
	args := m.Called(tx, id)
	return args.Error(0)
}

func (m *MockLabelRepository) AddRemaining(tx *goqu.TxDatabase, labelID, delta int) (int, error) {
	args := m.Called(tx, labelID, delta)
	return args.Int(0), args.Error(1)
}

func (m *MockLabelRepository) SetRemaining(tx *goqu.TxDatabase, labelID, value int) error {
	args := m.Called(tx, labelID, value)
	return args.Error(0)
}

func (m *MockLabelRepository) IsReferenced(tx *goqu.TxDatabase, labelID int) (bool, error) {
	args := m.Called(tx, labelID)
	return args.Bool(0), args.Error(1)
}

func (m *MockLabelRepository) GetCandidateLabels(tx *goqu.TxDatabase, partID, sectionID, opNumber int) ([]models.Label, error) {
	args := m.Called(tx, partID, sectionID, opNumber)
	return args.Get(0).([]models.Label), args.Error(1)
}

func (m *MockLabelRepository) GetQuantityAtOperation(tx *goqu.TxDatabase, labelID, sectionID, opNumber int) (int, error) {
	args := m.Called(tx, labelID, sectionID, opNumber)
	return args.Int(0), args.Error(1)
}

type MockWarehouseRepository struct {
	mock.Mock
}

func (m *MockWarehouseRepository) GetPartQuantity(tx *goqu.TxDatabase, partID int) (int, error) {
	args := m.Called(tx, partID)
	return args.Int(0), args.Error(1)
}

func (m *MockWarehouseRepository) InsertItem(tx *goqu.TxDatabase, item models.WarehouseItem) (models.WarehouseItem, error) {
	args := m.Called(tx, item)
	return args.Get(0).(models.WarehouseItem), args.Error(1)
}

func (m *MockWarehouseRepository) InsertLabelItem(tx *goqu.TxDatabase, item models.WarehouseLabelItem) (models.WarehouseLabelItem, error) {
	args := m.Called(tx, item)
	return args.Get(0).(models.WarehouseLabelItem), args.Error(1)
}

func (m *MockWarehouseRepository) GetItemByTransfer(tx *goqu.TxDatabase, transferID int) (*models.WarehouseItem, error) {
	args := m.Called(tx, transferID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WarehouseItem), args.Error(1)
}

func (m *MockWarehouseRepository) DeleteItem(tx *goqu.TxDatabase, itemID int) error {
	args := m.Called(tx, itemID)
	return args.Error(0)
}

func (m *MockWarehouseRepository) GetItems(ctx context.Context, partID int) ([]models.WarehouseItem, error) {
	args := m.Called(ctx, partID)
	return args.Get(0).([]models.WarehouseItem), args.Error(1)
}

type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) InsertAudit(tx *goqu.TxDatabase, a models.TransferAudit) (models.TransferAudit, error) {
	args := m.Called(tx, a)
	return args.Get(0).(models.TransferAudit), args.Error(1)
}

func (m *MockAuditRepository) GetAudit(tx *goqu.TxDatabase, id int) (*models.TransferAudit, error) {
	args := m.Called(tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TransferAudit), args.Error(1)
}

func (m *MockAuditRepository) MarkReverted(tx *goqu.TxDatabase, id int, at time.Time) error {
	args := m.Called(tx, id, at)
	return args.Error(0)
}

func (m *MockAuditRepository) DeleteByTransfer(tx *goqu.TxDatabase, transferID int) error {
	args := m.Called(tx, transferID)
	return args.Error(0)
}

func (m *MockAuditRepository) GetAudits(ctx context.Context, filter audit.AuditFilter) ([]models.TransferAudit, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]models.TransferAudit), args.Error(1)
}

type testMocks struct {
	transferRepo  *MockTransferRepository
	routeRepo     *MockRouteRepository
	balanceRepo   *MockBalanceRepository
	labelRepo     *MockLabelRepository
	warehouseRepo *MockWarehouseRepository
	auditRepo     *MockAuditRepository
}

func newTestService() (*TransferService, testMocks) {
	m := testMocks{
		transferRepo:  new(MockTransferRepository),
		routeRepo:     new(MockRouteRepository),
		balanceRepo:   new(MockBalanceRepository),
		labelRepo:     new(MockLabelRepository),
		warehouseRepo: new(MockWarehouseRepository),
		auditRepo:     new(MockAuditRepository),
	}
	service := NewService(stubTxRunner{}, m.transferRepo, m.routeRepo, m.balanceRepo, m.labelRepo, m.warehouseRepo, m.auditRepo, zap.NewNop())
	return service, m
}

func twoStepRoute() []models.RouteStep {
	return []models.RouteStep{
		{PartID: 1, OpNumber: 10, SectionID: 7, NormHours: decimal.NewFromInt(1)},
		{PartID: 1, OpNumber: 20, SectionID: 8, NormHours: decimal.NewFromInt(2)},
	}
}

func transferDate() time.Time {
	return time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)
}

func TestAddTransfersForward(t *testing.T) {
	service, m := newTestService()

	m.routeRepo.On("GetRouteStepsTx", mock.Anything, 1).Return(twoStepRoute(), nil).Once()
	m.balanceRepo.On("GetBalance", mock.Anything, 1, 7, 10).
		Return(&models.Balance{ID: 55, Quantity: 5}, nil).Once()
	m.balanceRepo.On("GetOrCreateBalance", mock.Anything, 1, 8, 20).
		Return(models.Balance{ID: 56, Quantity: 0}, nil).Once()
	m.labelRepo.On("GetCandidateLabels", mock.Anything, 1, 7, 10).Return([]models.Label{}, nil).Once()
	m.balanceRepo.On("AddQuantity", mock.Anything, 55, -3).Return(2, nil).Once()
	m.balanceRepo.On("AddQuantity", mock.Anything, 56, 3).Return(3, nil).Once()
	m.transferRepo.On("InsertTransfer", mock.Anything, mock.MatchedBy(func(tr models.Transfer) bool {
		return tr.PartID == 1 && tr.FromOpNumber == 10 && tr.ToOpNumber == 20 &&
			tr.Quantity == 3 && tr.ToSectionID != nil && *tr.ToSectionID == 8 && tr.LabelID == nil
	})).Return(models.Transfer{ID: 21}, nil).Once()
	m.transferRepo.On("InsertTransferOperations", mock.Anything, mock.MatchedBy(func(ops []models.TransferOperation) bool {
		return len(ops) == 2 && ops[0].QuantityChange == -3 && ops[1].QuantityChange == 3 &&
			ops[0].OpNumber == 10 && ops[1].OpNumber == 20
	})).Return(nil).Once()
	m.auditRepo.On("InsertAudit", mock.Anything, mock.MatchedBy(func(a models.TransferAudit) bool {
		return a.TransferID == 21 && a.FromBalanceBefore == 5 && a.FromBalanceAfter == 2 &&
			a.ToBalanceBefore == 0 && a.ToBalanceAfter == 3 && a.ScrapQuantity == 0 && a.LabelID == nil
	})).Return(models.TransferAudit{ID: 31, TransferID: 21}, nil).Once()

	result, err := service.AddTransfers(context.Background(), []models.TransferItemRequest{
		{PartID: 1, FromOpNumber: 10, ToOpNumber: 20, TransferDate: transferDate(), Quantity: 3},
	})

	assert.NoError(t, err)
	assert.True(t, result.Saved)
	assert.Equal(t, 21, result.Items[0].TransferID)
	assert.Equal(t, 31, result.Items[0].AuditID)
	assert.Equal(t, 5, result.Items[0].FromBalanceBefore)
	assert.Equal(t, 2, result.Items[0].FromBalanceAfter)
	assert.Equal(t, 3, result.Items[0].ToBalanceAfter)

	m.transferRepo.AssertExpectations(t)
	m.balanceRepo.AssertExpectations(t)
	m.auditRepo.AssertExpectations(t)
}

func TestAddTransfersBackwardRejected(t *testing.T) {
	service, m := newTestService()

	m.routeRepo.On("GetRouteStepsTx", mock.Anything, 1).Return(twoStepRoute(), nil).Once()

	_, err := service.AddTransfers(context.Background(), []models.TransferItemRequest{
		{PartID: 1, FromOpNumber: 20, ToOpNumber: 10, TransferDate: transferDate(), Quantity: 1},
	})
	assert.True(t, custom_error.IsValidation(err))
}

func TestAddTransfersInsufficientBalance(t *testing.T) {
	service, m := newTestService()

	m.routeRepo.On("GetRouteStepsTx", mock.Anything, 1).Return(twoStepRoute(), nil).Once()
	m.balanceRepo.On("GetBalance", mock.Anything, 1, 7, 10).
		Return(&models.Balance{ID: 55, Quantity: 2}, nil).Once()

	_, err := service.AddTransfers(context.Background(), []models.TransferItemRequest{
		{PartID: 1, FromOpNumber: 10, ToOpNumber: 20, TransferDate: transferDate(), Quantity: 3},
	})
	assert.True(t, custom_error.IsConflict(err))
}

func TestAddTransfersScrapMustMatchRemainder(t *testing.T) {
	service, m := newTestService()

	m.routeRepo.On("GetRouteStepsTx", mock.Anything, 1).Return(twoStepRoute(), nil).Once()
	m.balanceRepo.On("GetBalance", mock.Anything, 1, 7, 10).
		Return(&models.Balance{ID: 55, Quantity: 5}, nil).Once()

	// balance 5, moving 3 leaves 2, declaring scrap 1 must fail
	_, err := service.AddTransfers(context.Background(), []models.TransferItemRequest{
		{PartID: 1, FromOpNumber: 10, ToOpNumber: 20, TransferDate: transferDate(), Quantity: 3,
			Scrap: &models.ScrapRequest{Quantity: 1, Type: "setup"}},
	})
	assert.True(t, custom_error.IsConflict(err))
}

func TestAddTransfersToWarehouseWithScrapAndLabel(t *testing.T) {
	service, m := newTestService()

	m.routeRepo.On("GetRouteStepsTx", mock.Anything, 1).Return(twoStepRoute(), nil).Once()
	m.balanceRepo.On("GetBalance", mock.Anything, 1, 8, 20).
		Return(&models.Balance{ID: 56, Quantity: 5}, nil).Once()
	m.warehouseRepo.On("GetPartQuantity", mock.Anything, 1).Return(10, nil).Once()

	// FIFO: label 00001 has too little at the operation, 00002 wins
	candidates := []models.Label{
		{ID: 1, PartID: 1, Number: "00001", Quantity: 20, RemainingQuantity: 2},
		{ID: 2, PartID: 1, Number: "00002", Quantity: 20, RemainingQuantity: 18},
	}
	m.labelRepo.On("GetCandidateLabels", mock.Anything, 1, 8, 20).Return(candidates, nil).Once()
	m.labelRepo.On("GetQuantityAtOperation", mock.Anything, 1, 8, 20).Return(2, nil).Once()
	m.labelRepo.On("GetQuantityAtOperation", mock.Anything, 2, 8, 20).Return(12, nil).Once()

	// moving 3 with scrap 2 consumes 5 from the label at a warehouse-bound transfer
	m.balanceRepo.On("AddQuantity", mock.Anything, 56, -5).Return(0, nil).Once()
	m.labelRepo.On("AddRemaining", mock.Anything, 2, -5).Return(13, nil).Once()
	m.transferRepo.On("InsertTransfer", mock.Anything, mock.MatchedBy(func(tr models.Transfer) bool {
		return tr.ToOpNumber == models.ToWarehouse && tr.ToSectionID == nil &&
			tr.LabelID != nil && *tr.LabelID == 2
	})).Return(models.Transfer{ID: 22}, nil).Once()
	m.transferRepo.On("InsertTransferOperations", mock.Anything, mock.MatchedBy(func(ops []models.TransferOperation) bool {
		return len(ops) == 2 && ops[0].QuantityChange == -5 && ops[1].QuantityChange == 3 &&
			ops[1].SectionID == nil && ops[1].OpNumber == models.ToWarehouse
	})).Return(nil).Once()
	m.transferRepo.On("InsertScrap", mock.Anything, mock.MatchedBy(func(s models.Scrap) bool {
		return s.TransferID == 22 && s.Quantity == 2 && s.Type == "defect"
	})).Return(models.Scrap{ID: 5, TransferID: 22, Quantity: 2, Type: "defect"}, nil).Once()
	m.warehouseRepo.On("InsertItem", mock.Anything, mock.MatchedBy(func(w models.WarehouseItem) bool {
		return w.PartID == 1 && w.Quantity == 3 && w.TransferID != nil && *w.TransferID == 22
	})).Return(models.WarehouseItem{ID: 61, PartID: 1, Quantity: 3}, nil).Once()
	m.warehouseRepo.On("InsertLabelItem", mock.Anything, mock.MatchedBy(func(w models.WarehouseLabelItem) bool {
		return w.WarehouseItemID == 61 && w.LabelID == 2 && w.Quantity == 3
	})).Return(models.WarehouseLabelItem{ID: 71}, nil).Once()
	m.auditRepo.On("InsertAudit", mock.Anything, mock.MatchedBy(func(a models.TransferAudit) bool {
		return a.ScrapQuantity == 2 && a.FromBalanceBefore == 5 && a.FromBalanceAfter == 0 &&
			a.ToBalanceBefore == 10 && a.ToBalanceAfter == 13 &&
			a.LabelID != nil && *a.LabelID == 2 &&
			a.LabelBefore != nil && *a.LabelBefore == 18 &&
			a.LabelAfter != nil && *a.LabelAfter == 13
	})).Return(models.TransferAudit{ID: 32, TransferID: 22}, nil).Once()

	result, err := service.AddTransfers(context.Background(), []models.TransferItemRequest{
		{PartID: 1, FromOpNumber: 20, ToOpNumber: models.ToWarehouse, TransferDate: transferDate(), Quantity: 3,
			Scrap: &models.ScrapRequest{Quantity: 2, Type: "defect"}},
	})

	assert.NoError(t, err)
	assert.Equal(t, 0, result.Items[0].FromBalanceAfter)
	assert.NotNil(t, result.Items[0].Scrap)
	assert.NotNil(t, result.Items[0].Label)
	assert.Equal(t, 13, result.Items[0].Label.RemainingQuantity)

	m.labelRepo.AssertExpectations(t)
	m.warehouseRepo.AssertExpectations(t)
	m.auditRepo.AssertExpectations(t)
}

func TestAddTransfersExplicitLabelWrongPart(t *testing.T) {
	service, m := newTestService()

	labelID := 9
	m.routeRepo.On("GetRouteStepsTx", mock.Anything, 1).Return(twoStepRoute(), nil).Once()
	m.balanceRepo.On("GetBalance", mock.Anything, 1, 7, 10).
		Return(&models.Balance{ID: 55, Quantity: 5}, nil).Once()
	m.balanceRepo.On("GetOrCreateBalance", mock.Anything, 1, 8, 20).
		Return(models.Balance{ID: 56, Quantity: 0}, nil).Once()
	m.labelRepo.On("GetLabel", mock.Anything, 9).
		Return(&models.Label{ID: 9, PartID: 4, Number: "00009"}, nil).Once()

	_, err := service.AddTransfers(context.Background(), []models.TransferItemRequest{
		{PartID: 1, FromOpNumber: 10, ToOpNumber: 20, TransferDate: transferDate(), Quantity: 3, LabelID: &labelID},
	})
	assert.True(t, custom_error.IsConflict(err))
}

func TestRevertTransferRestoresSnapshots(t *testing.T) {
	service, m := newTestService()

	toSection := 8
	labelID, labelBefore, labelAfter := 2, 18, 15
	auditRow := &models.TransferAudit{
		ID: 31, TransferID: 21, PartID: 1,
		FromSectionID: 7, FromOpNumber: 10,
		ToSectionID: &toSection, ToOpNumber: 20,
		Quantity:          3,
		FromBalanceBefore: 5, FromBalanceAfter: 2,
		ToBalanceBefore: 0, ToBalanceAfter: 3,
		LabelID: &labelID, LabelBefore: &labelBefore, LabelAfter: &labelAfter,
	}

	m.auditRepo.On("GetAudit", mock.Anything, 31).Return(auditRow, nil).Once()
	m.auditRepo.On("MarkReverted", mock.Anything, 31, mock.Anything).Return(nil).Once()
	m.balanceRepo.On("GetOrCreateBalance", mock.Anything, 1, 7, 10).
		Return(models.Balance{ID: 55, Quantity: 2}, nil).Once()
	m.balanceRepo.On("SetQuantity", mock.Anything, 55, 5).Return(nil).Once()
	m.balanceRepo.On("GetOrCreateBalance", mock.Anything, 1, 8, 20).
		Return(models.Balance{ID: 56, Quantity: 3}, nil).Once()
	m.balanceRepo.On("SetQuantity", mock.Anything, 56, 0).Return(nil).Once()
	m.labelRepo.On("SetRemaining", mock.Anything, 2, 18).Return(nil).Once()
	m.transferRepo.On("GetScrapByTransfer", mock.Anything, 21).Return(nil, nil).Once()
	m.transferRepo.On("GetTransferOperationIDs", mock.Anything, 21).Return([]int{101, 102}, nil).Once()
	m.transferRepo.On("DeleteScrapByTransfer", mock.Anything, 21).Return(nil).Once()
	m.transferRepo.On("DeleteTransfer", mock.Anything, 21).Return(nil).Once()

	result, err := service.RevertTransfer(context.Background(), 31)

	assert.NoError(t, err)
	assert.Equal(t, 21, result.TransferID)
	assert.Equal(t, 5, result.FromBalanceAfter)
	assert.Equal(t, 0, result.ToBalanceAfter)
	assert.Equal(t, []int{101, 102}, result.DeletedOperationIDs)

	m.auditRepo.AssertExpectations(t)
	m.balanceRepo.AssertExpectations(t)
	m.transferRepo.AssertExpectations(t)
}

func TestRevertTransferOnlyOnce(t *testing.T) {
	service, m := newTestService()

	auditRow := &models.TransferAudit{ID: 31, TransferID: 21, PartID: 1, FromSectionID: 7, FromOpNumber: 10, IsReverted: true}
	m.auditRepo.On("GetAudit", mock.Anything, 31).Return(auditRow, nil).Once()
	m.auditRepo.On("MarkReverted", mock.Anything, 31, mock.Anything).
		Return(custom_error.NewConflictError("transfer audit 31 is already reverted")).Once()

	_, err := service.RevertTransfer(context.Background(), 31)
	assert.True(t, custom_error.IsConflict(err))

	m.auditRepo.On("GetAudit", mock.Anything, 99).Return(nil, nil).Once()
	_, err = service.RevertTransfer(context.Background(), 99)
	assert.True(t, custom_error.IsNotFound(err))
}

func TestDeleteTransferRestoresEverything(t *testing.T) {
	service, m := newTestService()

	toSection := 8
	labelID := 2
	transfer := &models.Transfer{
		ID: 21, PartID: 1,
		FromSectionID: 7, FromOpNumber: 10,
		ToSectionID: &toSection, ToOpNumber: 20,
		Quantity: 3, LabelID: &labelID,
	}

	m.transferRepo.On("GetTransfer", mock.Anything, 21).Return(transfer, nil).Once()
	m.transferRepo.On("GetScrapByTransfer", mock.Anything, 21).Return(nil, nil).Once()
	m.balanceRepo.On("GetOrCreateBalance", mock.Anything, 1, 7, 10).
		Return(models.Balance{ID: 55, Quantity: 2}, nil).Once()
	m.balanceRepo.On("AddQuantity", mock.Anything, 55, 3).Return(5, nil).Once()
	m.balanceRepo.On("GetBalance", mock.Anything, 1, 8, 20).
		Return(&models.Balance{ID: 56, Quantity: 3}, nil).Once()
	m.balanceRepo.On("AddQuantity", mock.Anything, 56, -3).Return(0, nil).Once()
	m.labelRepo.On("GetLabel", mock.Anything, 2).
		Return(&models.Label{ID: 2, PartID: 1, Number: "00002", Quantity: 20, RemainingQuantity: 15}, nil).Once()
	m.labelRepo.On("AddRemaining", mock.Anything, 2, 3).Return(18, nil).Once()
	m.transferRepo.On("GetTransferOperationIDs", mock.Anything, 21).Return([]int{101, 102}, nil).Once()
	m.transferRepo.On("DeleteScrapByTransfer", mock.Anything, 21).Return(nil).Once()
	m.auditRepo.On("DeleteByTransfer", mock.Anything, 21).Return(nil).Once()
	m.transferRepo.On("DeleteTransfer", mock.Anything, 21).Return(nil).Once()

	result, err := service.DeleteTransfer(context.Background(), 21)

	assert.NoError(t, err)
	assert.Equal(t, 5, result.FromBalanceAfter)
	assert.Equal(t, 0, result.ToBalanceAfter)
	assert.Equal(t, []int{101, 102}, result.DeletedOperationIDs)

	m.transferRepo.AssertExpectations(t)
	m.balanceRepo.AssertExpectations(t)
	m.labelRepo.AssertExpectations(t)
	m.auditRepo.AssertExpectations(t)
}

func TestDeleteWarehouseTransferRestoresScrapAndLabel(t *testing.T) {
	service, m := newTestService()

	labelID := 2
	transfer := &models.Transfer{
		ID: 22, PartID: 1,
		FromSectionID: 8, FromOpNumber: 20,
		ToSectionID: nil, ToOpNumber: models.ToWarehouse,
		Quantity: 3, LabelID: &labelID,
	}

	m.transferRepo.On("GetTransfer", mock.Anything, 22).Return(transfer, nil).Once()
	m.transferRepo.On("GetScrapByTransfer", mock.Anything, 22).
		Return(&models.Scrap{ID: 5, TransferID: 22, Quantity: 2, Type: "defect"}, nil).Once()
	// the moved and scrapped pieces both return to the source balance
	m.balanceRepo.On("GetOrCreateBalance", mock.Anything, 1, 8, 20).
		Return(models.Balance{ID: 56, Quantity: 0}, nil).Once()
	m.balanceRepo.On("AddQuantity", mock.Anything, 56, 5).Return(5, nil).Once()
	m.warehouseRepo.On("GetPartQuantity", mock.Anything, 1).Return(13, nil).Once()
	transferID := 22
	m.warehouseRepo.On("GetItemByTransfer", mock.Anything, 22).
		Return(&models.WarehouseItem{ID: 61, PartID: 1, Quantity: 3, TransferID: &transferID}, nil).Once()
	m.warehouseRepo.On("DeleteItem", mock.Anything, 61).Return(nil).Once()
	// a warehouse-bound transfer consumed quantity plus scrap from the label
	m.labelRepo.On("GetLabel", mock.Anything, 2).
		Return(&models.Label{ID: 2, PartID: 1, Number: "00002", Quantity: 20, RemainingQuantity: 13}, nil).Once()
	m.labelRepo.On("AddRemaining", mock.Anything, 2, 5).Return(18, nil).Once()
	m.transferRepo.On("GetTransferOperationIDs", mock.Anything, 22).Return([]int{103, 104}, nil).Once()
	m.transferRepo.On("DeleteScrapByTransfer", mock.Anything, 22).Return(nil).Once()
	m.auditRepo.On("DeleteByTransfer", mock.Anything, 22).Return(nil).Once()
	m.transferRepo.On("DeleteTransfer", mock.Anything, 22).Return(nil).Once()

	result, err := service.DeleteTransfer(context.Background(), 22)

	assert.NoError(t, err)
	assert.Equal(t, 0, result.FromBalanceBefore)
	assert.Equal(t, 5, result.FromBalanceAfter)
	assert.Equal(t, 13, result.ToBalanceBefore)
	assert.Equal(t, 10, result.ToBalanceAfter)
	assert.Equal(t, []int{103, 104}, result.DeletedOperationIDs)
	assert.NotNil(t, result.Scrap)
	assert.NotNil(t, result.WarehouseItem)

	m.transferRepo.AssertExpectations(t)
	m.balanceRepo.AssertExpectations(t)
	m.labelRepo.AssertExpectations(t)
	m.warehouseRepo.AssertExpectations(t)
	m.auditRepo.AssertExpectations(t)
}

func TestAddTransfersLabelCacheCountsScrap(t *testing.T) {
	service, m := newTestService()

	m.routeRepo.On("GetRouteStepsTx", mock.Anything, 1).Return(twoStepRoute(), nil).Twice()

	// first item: balance 5, move 3, scrap the remaining 2
	m.balanceRepo.On("GetBalance", mock.Anything, 1, 7, 10).
		Return(&models.Balance{ID: 55, Quantity: 5}, nil).Once()
	m.balanceRepo.On("GetOrCreateBalance", mock.Anything, 1, 8, 20).
		Return(models.Balance{ID: 56, Quantity: 0}, nil).Once()
	candidates := []models.Label{{ID: 1, PartID: 1, Number: "00001", Quantity: 20, RemainingQuantity: 10}}
	m.labelRepo.On("GetCandidateLabels", mock.Anything, 1, 7, 10).Return(candidates, nil).Twice()
	// derived once; later items in the batch read the cached value
	m.labelRepo.On("GetQuantityAtOperation", mock.Anything, 1, 7, 10).Return(10, nil).Once()
	m.balanceRepo.On("AddQuantity", mock.Anything, 55, -5).Return(0, nil).Once()
	m.balanceRepo.On("AddQuantity", mock.Anything, 56, 3).Return(3, nil).Once()
	m.labelRepo.On("AddRemaining", mock.Anything, 1, -3).Return(7, nil).Once()
	m.transferRepo.On("InsertTransfer", mock.Anything, mock.MatchedBy(func(tr models.Transfer) bool {
		return tr.Quantity == 3 && tr.LabelID != nil && *tr.LabelID == 1
	})).Return(models.Transfer{ID: 23}, nil).Once()
	m.transferRepo.On("InsertScrap", mock.Anything, mock.MatchedBy(func(s models.Scrap) bool {
		return s.TransferID == 23 && s.Quantity == 2
	})).Return(models.Scrap{ID: 6, TransferID: 23, Quantity: 2, Type: "defect"}, nil).Once()
	m.auditRepo.On("InsertAudit", mock.Anything, mock.MatchedBy(func(a models.TransferAudit) bool {
		return a.TransferID == 23 && a.LabelBefore != nil && *a.LabelBefore == 10
	})).Return(models.TransferAudit{ID: 33, TransferID: 23}, nil).Once()

	// second item: the label now holds 10-3-2=5 at the operation, not 10-3=7,
	// so moving 6 finds no sufficient label
	m.balanceRepo.On("GetBalance", mock.Anything, 1, 7, 10).
		Return(&models.Balance{ID: 55, Quantity: 6}, nil).Once()
	m.balanceRepo.On("GetOrCreateBalance", mock.Anything, 1, 8, 20).
		Return(models.Balance{ID: 56, Quantity: 3}, nil).Once()
	m.balanceRepo.On("AddQuantity", mock.Anything, 55, -6).Return(0, nil).Once()
	m.balanceRepo.On("AddQuantity", mock.Anything, 56, 6).Return(9, nil).Once()
	m.transferRepo.On("InsertTransfer", mock.Anything, mock.MatchedBy(func(tr models.Transfer) bool {
		return tr.Quantity == 6 && tr.LabelID == nil
	})).Return(models.Transfer{ID: 24}, nil).Once()
	m.auditRepo.On("InsertAudit", mock.Anything, mock.MatchedBy(func(a models.TransferAudit) bool {
		return a.TransferID == 24 && a.LabelID == nil
	})).Return(models.TransferAudit{ID: 34, TransferID: 24}, nil).Once()

	m.transferRepo.On("InsertTransferOperations", mock.Anything, mock.Anything).Return(nil).Twice()

	result, err := service.AddTransfers(context.Background(), []models.TransferItemRequest{
		{PartID: 1, FromOpNumber: 10, ToOpNumber: 20, TransferDate: transferDate(), Quantity: 3,
			Scrap: &models.ScrapRequest{Quantity: 2, Type: "defect"}},
		{PartID: 1, FromOpNumber: 10, ToOpNumber: 20, TransferDate: transferDate(), Quantity: 6},
	})

	assert.NoError(t, err)
	assert.NotNil(t, result.Items[0].Label)
	assert.Nil(t, result.Items[1].Label)

	m.labelRepo.AssertExpectations(t)
	m.transferRepo.AssertExpectations(t)
	m.auditRepo.AssertExpectations(t)
}
