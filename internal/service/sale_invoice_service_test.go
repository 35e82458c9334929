package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"dealership/pkg/apperror"
)

func (e *testEnv) createSale(t *testing.T, clientID, vehicleID, reservationID string) SaleInvoiceResponse {
	t.Helper()
	n := e.next()
	invoice, err := e.sales.CreateSaleInvoice(context.Background(), CreateSaleInvoiceRequest{
		InvoiceNumber: fmt.Sprintf("SI-2025-%04d", n),
		InvoiceDate:   "2025-03-10",
		ClientID:      clientID,
		VehicleID:     vehicleID,
		ReservationID: reservationID,
		BaseAmount:    "18000.00",
		VATRate:       "21",
	}, "test")
	if err != nil {
		t.Fatalf("create sale invoice: %v", err)
	}
	return invoice
}

func TestCreateSaleInvoiceSellsVehicle(t *testing.T) {
	env := newTestEnv(t)
	client := env.createClient(t)
	vehicle := env.createVehicle(t, true)

	invoice := env.createSale(t, client.ID, vehicle.ID, "")

	if invoice.Total != "21780.00" {
		t.Fatalf("total = %s, want 21780.00", invoice.Total)
	}
	if got := env.vehicleStatus(t, vehicle.ID); got != "SOLD" {
		t.Fatalf("vehicle status = %s, want SOLD", got)
	}
}

func TestSaleWithoutPurchaseRecordAllowed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	client := env.createClient(t)
	vehicle := env.createVehicle(t, false)

	env.createSale(t, client.ID, vehicle.ID, "")

	if got := env.vehicleStatus(t, vehicle.ID); got != "SOLD" {
		t.Fatalf("vehicle status = %s, want SOLD", got)
	}

	// With no acquisition cost on record the full sale counts as profit.
	profit, err := env.sales.VehicleProfit(ctx, vehicle.ID)
	if err != nil {
		t.Fatalf("profit: %v", err)
	}
	if profit.PurchaseTotal != nil {
		t.Fatalf("purchase total = %v, want nil", *profit.PurchaseTotal)
	}
	if profit.Profit != "21780.00" {
		t.Fatalf("profit = %s, want 21780.00", profit.Profit)
	}
}

func TestSaleRejectsVehicleInRental(t *testing.T) {
	env := newTestEnv(t)
	contract := env.createContract(t)
	client := env.createClient(t)

	_, err := env.sales.CreateSaleInvoice(context.Background(), CreateSaleInvoiceRequest{
		InvoiceNumber: "SI-2025-9001",
		InvoiceDate:   "2025-03-10",
		ClientID:      client.ID,
		VehicleID:     contract.VehicleID,
		BaseAmount:    "18000.00",
		VATRate:       "21",
	}, "test")

	var rule *apperror.BusinessRuleError
	if !errors.As(err, &rule) {
		t.Fatalf("expected BusinessRuleError, got %v", err)
	}
}

func TestSoldVehicleCannotBeSoldAgain(t *testing.T) {
	env := newTestEnv(t)
	client := env.createClient(t)
	vehicle := env.createVehicle(t, true)
	env.createSale(t, client.ID, vehicle.ID, "")

	_, err := env.sales.CreateSaleInvoice(context.Background(), CreateSaleInvoiceRequest{
		InvoiceNumber: "SI-2025-9002",
		InvoiceDate:   "2025-03-11",
		ClientID:      client.ID,
		VehicleID:     vehicle.ID,
		BaseAmount:    "17000.00",
		VATRate:       "21",
	}, "test")

	var dup *apperror.DuplicateError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateError, got %v", err)
	}
}

func TestSaleCompletesReferencedReservation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	client := env.createClient(t)
	vehicle := env.createVehicle(t, true)
	reservation := env.createReservation(t, client.ID, vehicle.ID, futureDate(14))
	if _, err := env.reservations.ConfirmReservation(ctx, reservation.ID, "test"); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	invoice := env.createSale(t, client.ID, vehicle.ID, reservation.ID)

	if invoice.ReservationID == nil || *invoice.ReservationID != reservation.ID {
		t.Fatalf("invoice reservation = %v, want %s", invoice.ReservationID, reservation.ID)
	}
	completed, err := env.reservations.GetReservation(ctx, reservation.ID)
	if err != nil {
		t.Fatalf("get reservation: %v", err)
	}
	if completed.State != "COMPLETED" || completed.IsActive {
		t.Fatalf("reservation state = %s active = %t, want COMPLETED inactive", completed.State, completed.IsActive)
	}
	if got := env.vehicleStatus(t, vehicle.ID); got != "SOLD" {
		t.Fatalf("vehicle status = %s, want SOLD", got)
	}
}

func TestSaleMustReferenceLiveReservation(t *testing.T) {
	env := newTestEnv(t)
	client := env.createClient(t)
	vehicle := env.createVehicle(t, true)
	env.createReservation(t, client.ID, vehicle.ID, futureDate(14))

	_, err := env.sales.CreateSaleInvoice(context.Background(), CreateSaleInvoiceRequest{
		InvoiceNumber: "SI-2025-9003",
		InvoiceDate:   "2025-03-10",
		ClientID:      client.ID,
		VehicleID:     vehicle.ID,
		BaseAmount:    "18000.00",
		VATRate:       "21",
	}, "test")

	var rule *apperror.BusinessRuleError
	if !errors.As(err, &rule) {
		t.Fatalf("expected BusinessRuleError, got %v", err)
	}
}

func TestSaleRejectsUnconfirmedReservation(t *testing.T) {
	env := newTestEnv(t)
	client := env.createClient(t)
	vehicle := env.createVehicle(t, true)
	reservation := env.createReservation(t, client.ID, vehicle.ID, futureDate(14))

	// Only a confirmed reservation closes into a sale; a pending one has to
	// be confirmed first.
	_, err := env.sales.CreateSaleInvoice(context.Background(), CreateSaleInvoiceRequest{
		InvoiceNumber: "SI-2025-9005",
		InvoiceDate:   "2025-03-10",
		ClientID:      client.ID,
		VehicleID:     vehicle.ID,
		ReservationID: reservation.ID,
		BaseAmount:    "18000.00",
		VATRate:       "21",
	}, "test")

	var invalid *apperror.InvalidOperationError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidOperationError, got %v", err)
	}
}

func TestSaleRejectsReservationOfAnotherClient(t *testing.T) {
	env := newTestEnv(t)
	holder := env.createClient(t)
	buyer := env.createClient(t)
	vehicle := env.createVehicle(t, true)
	reservation := env.createReservation(t, holder.ID, vehicle.ID, futureDate(14))

	_, err := env.sales.CreateSaleInvoice(context.Background(), CreateSaleInvoiceRequest{
		InvoiceNumber: "SI-2025-9004",
		InvoiceDate:   "2025-03-10",
		ClientID:      buyer.ID,
		VehicleID:     vehicle.ID,
		ReservationID: reservation.ID,
		BaseAmount:    "18000.00",
		VATRate:       "21",
	}, "test")

	var rule *apperror.BusinessRuleError
	if !errors.As(err, &rule) {
		t.Fatalf("expected BusinessRuleError, got %v", err)
	}
}

func TestVehicleProfit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	client := env.createClient(t)
	vehicle := env.createVehicle(t, true)
	env.createSale(t, client.ID, vehicle.ID, "")

	profit, err := env.sales.VehicleProfit(ctx, vehicle.ID)
	if err != nil {
		t.Fatalf("profit: %v", err)
	}
	if profit.SaleTotal != "21780.00" {
		t.Fatalf("sale total = %s, want 21780.00", profit.SaleTotal)
	}
	if profit.PurchaseTotal == nil || *profit.PurchaseTotal != "18150.00" {
		t.Fatalf("purchase total = %v, want 18150.00", profit.PurchaseTotal)
	}
	if profit.Profit != "3630.00" {
		t.Fatalf("profit = %s, want 3630.00", profit.Profit)
	}
}

func TestVehicleProfitRequiresSale(t *testing.T) {
	env := newTestEnv(t)
	vehicle := env.createVehicle(t, true)

	_, err := env.sales.VehicleProfit(context.Background(), vehicle.ID)

	var rule *apperror.BusinessRuleError
	if !errors.As(err, &rule) {
		t.Fatalf("expected BusinessRuleError, got %v", err)
	}
}

func TestProfitSummary(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	client := env.createClient(t)

	first := env.createVehicle(t, true)
	second := env.createVehicle(t, true)
	env.createVehicle(t, true) // never sold
	env.createSale(t, client.ID, first.ID, "")
	env.createSale(t, client.ID, second.ID, "")

	summary, err := env.sales.ProfitSummary(ctx, "2025-01-01", "2025-12-31")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.VehiclesSold != 2 {
		t.Fatalf("vehicles sold = %d, want 2", summary.VehiclesSold)
	}
	if summary.TotalProfit != "7260.00" {
		t.Fatalf("total profit = %s, want 7260.00", summary.TotalProfit)
	}

	empty, err := env.sales.ProfitSummary(ctx, "2024-01-01", "2024-12-31")
	if err != nil {
		t.Fatalf("empty summary: %v", err)
	}
	if empty.VehiclesSold != 0 || empty.TotalProfit != "0.00" {
		t.Fatalf("empty summary = %+v, want no sales", empty)
	}
}
