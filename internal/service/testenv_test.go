package service

import (
	"context"
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"dealership/internal/database"
	"dealership/internal/repository"
	"dealership/internal/websocket"
)

// testEnv wires the full service graph against an in-memory sqlite database
// so scenarios run through the same transaction and audit paths as production.
type testEnv struct {
	db  *gorm.DB
	tx  repository.TransactionManager
	hub *websocket.Hub

	statuses     StatusService
	clients      ClientService
	suppliers    SupplierService
	vehicles     VehicleService
	contracts    ContractService
	installments InstallmentService
	reservations ReservationService
	purchases    PurchaseInvoiceService
	sales        SaleInvoiceService
	audits       AuditService

	seq int
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	// Every new connection to :memory: is a fresh database.
	sqlDB.SetMaxOpenConns(1)

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	txManager := repository.NewTransactionManager(db)
	statusRepo := repository.NewStatusRepository(db)
	vehicleRepo := repository.NewVehicleRepository(db)
	clientRepo := repository.NewClientRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)
	contractRepo := repository.NewContractRepository(db)
	installmentRepo := repository.NewInstallmentRepository(db)
	reservationRepo := repository.NewReservationRepository(db)
	purchaseRepo := repository.NewPurchaseInvoiceRepository(db)
	saleRepo := repository.NewSaleInvoiceRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	statuses := NewStatusService(statusRepo)
	if err := statuses.Seed(context.Background()); err != nil {
		t.Fatalf("seed statuses: %v", err)
	}

	audits := NewAuditService(auditRepo)
	hub := websocket.NewHub()
	vehicles := NewVehicleService(vehicleRepo, statusRepo, audits, hub)

	return &testEnv{
		db:           db,
		tx:           txManager,
		hub:          hub,
		statuses:     statuses,
		clients:      NewClientService(clientRepo),
		suppliers:    NewSupplierService(supplierRepo),
		vehicles:     vehicles,
		contracts:    NewContractService(contractRepo, installmentRepo, clientRepo, vehicleRepo, vehicles, audits, txManager),
		installments: NewInstallmentService(installmentRepo, audits, txManager),
		reservations: NewReservationService(reservationRepo, clientRepo, vehicleRepo, vehicles, audits, txManager),
		purchases:    NewPurchaseInvoiceService(purchaseRepo, supplierRepo, vehicleRepo, audits, txManager),
		sales:        NewSaleInvoiceService(saleRepo, purchaseRepo, clientRepo, vehicleRepo, reservationRepo, vehicles, audits, txManager),
		audits:       audits,
	}
}

func (e *testEnv) next() int {
	e.seq++
	return e.seq
}

func (e *testEnv) createClient(t *testing.T) ClientResponse {
	t.Helper()
	n := e.next()
	client, err := e.clients.CreateClient(context.Background(), CreateClientRequest{
		Type:     "INDIVIDUAL",
		Document: fmt.Sprintf("4871%04dX", n),
		Name:     "Marta",
		Surname:  "Vidal",
		Address:  "Calle Mayor 1",
		City:     "Madrid",
	})
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	return client
}

func (e *testEnv) createSupplier(t *testing.T) SupplierResponse {
	t.Helper()
	n := e.next()
	supplier, err := e.suppliers.CreateSupplier(context.Background(), CreateSupplierRequest{
		TaxID:     fmt.Sprintf("B%08d", n),
		LegalName: "Autos del Norte SL",
		TradeName: "Autos del Norte",
		Address:   "Poligono Sur 14",
		City:      "Bilbao",
	})
	if err != nil {
		t.Fatalf("create supplier: %v", err)
	}
	return supplier
}

// createVehicle registers a vehicle; purchased also attaches a purchase
// invoice (base 15000.00, VAT 21) so the vehicle can be rented.
func (e *testEnv) createVehicle(t *testing.T, purchased bool) VehicleResponse {
	t.Helper()
	n := e.next()
	vehicle, err := e.vehicles.CreateVehicle(context.Background(), CreateVehicleRequest{
		Plate:           fmt.Sprintf("%04d KLM", n),
		Brand:           "SEAT",
		Model:           "Leon",
		ManufactureYear: 2022,
		Mileage:         12000,
		VIN:             fmt.Sprintf("VSSZZZ5FZ%08d", n),
		FuelType:        "PETROL",
	})
	if err != nil {
		t.Fatalf("create vehicle: %v", err)
	}
	if purchased {
		e.addPurchase(t, vehicle.ID)
	}
	return vehicle
}

func (e *testEnv) addPurchase(t *testing.T, vehicleID string) PurchaseInvoiceResponse {
	t.Helper()
	supplier := e.createSupplier(t)
	n := e.next()
	invoice, err := e.purchases.CreatePurchaseInvoice(context.Background(), CreatePurchaseInvoiceRequest{
		InvoiceNumber: fmt.Sprintf("PI-2025-%04d", n),
		InvoiceDate:   "2025-01-10",
		SupplierID:    supplier.ID,
		VehicleID:     vehicleID,
		BaseAmount:    "15000.00",
		VATRate:       "21",
	}, "test")
	if err != nil {
		t.Fatalf("create purchase invoice: %v", err)
	}
	return invoice
}

// createContract opens a one-year contract (2025-01-15 to 2026-01-15) at
// 500/month on a freshly purchased vehicle.
func (e *testEnv) createContract(t *testing.T) ContractResponse {
	t.Helper()
	client := e.createClient(t)
	vehicle := e.createVehicle(t, true)
	contract, err := e.contracts.CreateContract(context.Background(), CreateContractRequest{
		ClientID:   client.ID,
		VehicleID:  vehicle.ID,
		StartDate:  "2025-01-15",
		EndDate:    "2026-01-15",
		MonthlyFee: "500",
	}, "test")
	if err != nil {
		t.Fatalf("create contract: %v", err)
	}
	return contract
}

func (e *testEnv) vehicleStatus(t *testing.T, vehicleID string) string {
	t.Helper()
	vehicle, err := e.vehicles.GetVehicle(context.Background(), vehicleID)
	if err != nil {
		t.Fatalf("get vehicle: %v", err)
	}
	return vehicle.Status
}
