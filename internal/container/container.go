package container

import (
	"database/sql"

	"github.com/Ilay3/UchetNZP-sub000/internal/audit"
	"github.com/Ilay3/UchetNZP-sub000/internal/balances"
	"github.com/Ilay3/UchetNZP-sub000/internal/catalog"
	"github.com/Ilay3/UchetNZP-sub000/internal/labels"
	"github.com/Ilay3/UchetNZP-sub000/internal/launches"
	"github.com/Ilay3/UchetNZP-sub000/internal/receipts"
	"github.com/Ilay3/UchetNZP-sub000/internal/repository"
	"github.com/Ilay3/UchetNZP-sub000/internal/routing"
	"github.com/Ilay3/UchetNZP-sub000/internal/transfers"
	"github.com/Ilay3/UchetNZP-sub000/internal/warehouse"

	"go.uber.org/zap"
)

// Container wires repositories, services and handlers once at startup.
type Container struct {
	Repository       *repository.Repository
	CatalogHandler   *catalog.CatalogHandler
	RoutingHandler   *routing.RoutingHandler
	BalancesHandler  *balances.BalancesHandler
	LabelsHandler    *labels.LabelsHandler
	LaunchesHandler  *launches.LaunchesHandler
	ReceiptsHandler  *receipts.ReceiptsHandler
	TransfersHandler *transfers.TransfersHandler
	WarehouseHandler *warehouse.WarehouseHandler
	AuditHandler     *audit.AuditHandler
}

func NewAppContainer(db *sql.DB, log *zap.Logger) *Container {
	repo := repository.NewRepository(db)

	catalogRepo := catalog.NewRepository(repo)
	routeRepo := routing.NewRepository(repo)
	balanceRepo := balances.NewRepository(repo)
	labelRepo := labels.NewRepository(repo)
	launchRepo := launches.NewRepository(repo)
	receiptRepo := receipts.NewRepository(repo)
	transferRepo := transfers.NewRepository(repo)
	warehouseRepo := warehouse.NewRepository(repo)
	auditRepo := audit.NewRepository(repo)

	routeService := routing.NewService(repo, routeRepo, catalogRepo, log)
	labelService := labels.NewService(repo, labelRepo, catalogRepo, log)
	launchService := launches.NewService(repo, launchRepo, routeRepo, balanceRepo, log)
	receiptService := receipts.NewService(repo, receiptRepo, routeRepo, balanceRepo, labelRepo, log)
	transferService := transfers.NewService(repo, transferRepo, routeRepo, balanceRepo, labelRepo, warehouseRepo, auditRepo, log)

	return &Container{
		Repository:       repo,
		CatalogHandler:   catalog.NewHandler(catalogRepo, log),
		RoutingHandler:   routing.NewHandler(routeService, log),
		BalancesHandler:  balances.NewHandler(balanceRepo, log),
		LabelsHandler:    labels.NewHandler(labelService, log),
		LaunchesHandler:  launches.NewHandler(launchService, log),
		ReceiptsHandler:  receipts.NewHandler(receiptService, log),
		TransfersHandler: transfers.NewHandler(transferService, log),
		WarehouseHandler: warehouse.NewHandler(warehouseRepo, log),
		AuditHandler:     audit.NewHandler(auditRepo, log),
	}
}
