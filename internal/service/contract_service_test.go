package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"dealership/internal/model"
	"dealership/pkg/apperror"
)

func TestCreateContractBuildsInstallmentSchedule(t *testing.T) {
	env := newTestEnv(t)

	contract := env.createContract(t)

	wantNumber := fmt.Sprintf("RENT-%d-0001", time.Now().Year())
	if contract.ContractNumber != wantNumber {
		t.Fatalf("contract number = %s, want %s", contract.ContractNumber, wantNumber)
	}
	if contract.State != "PENDING" {
		t.Fatalf("state = %s, want PENDING", contract.State)
	}
	if contract.DurationMonths != 12 {
		t.Fatalf("duration = %d, want 12", contract.DurationMonths)
	}
	if contract.TotalAmount != "6000.00" {
		t.Fatalf("total = %s, want 6000.00", contract.TotalAmount)
	}
	if len(contract.Installments) != 12 {
		t.Fatalf("installments = %d, want 12", len(contract.Installments))
	}
	first, last := contract.Installments[0], contract.Installments[11]
	if first.DueDate != "2025-02-15" || last.DueDate != "2026-01-15" {
		t.Fatalf("due dates %s..%s, want 2025-02-15..2026-01-15", first.DueDate, last.DueDate)
	}
	for _, inst := range contract.Installments {
		if inst.Amount != "500.00" || inst.State != "PENDING" {
			t.Fatalf("installment %d: amount %s state %s", inst.Number, inst.Amount, inst.State)
		}
	}

	// The vehicle goes into rental the moment the contract exists, not on
	// activation.
	if got := env.vehicleStatus(t, contract.VehicleID); got != "IN_RENTAL" {
		t.Fatalf("vehicle status = %s, want IN_RENTAL", got)
	}
}

func TestContractNumbersAreSequential(t *testing.T) {
	env := newTestEnv(t)

	first := env.createContract(t)
	second := env.createContract(t)

	year := time.Now().Year()
	if want := fmt.Sprintf("RENT-%d-0001", year); first.ContractNumber != want {
		t.Fatalf("first number = %s, want %s", first.ContractNumber, want)
	}
	if want := fmt.Sprintf("RENT-%d-0002", year); second.ContractNumber != want {
		t.Fatalf("second number = %s, want %s", second.ContractNumber, want)
	}
}

func TestContractNumberSequenceSpansYears(t *testing.T) {
	env := newTestEnv(t)
	first := env.createContract(t)

	// Age the first contract's number into the previous year. The sequence
	// counts every contract ever created, so the year in the prefix does not
	// reset it.
	aged := fmt.Sprintf("RENT-%d-0001", time.Now().Year()-1)
	err := env.db.Model(&model.RentalContract{}).
		Where("id = ?", first.ID).
		Update("contract_number", aged).Error
	if err != nil {
		t.Fatalf("age contract number: %v", err)
	}

	second := env.createContract(t)
	if want := fmt.Sprintf("RENT-%d-0002", time.Now().Year()); second.ContractNumber != want {
		t.Fatalf("second number = %s, want %s", second.ContractNumber, want)
	}
}

func TestCreateContractRejectsSecondLiveContract(t *testing.T) {
	env := newTestEnv(t)
	contract := env.createContract(t)
	client := env.createClient(t)

	// The first contract already took the vehicle into rental.
	_, err := env.contracts.CreateContract(context.Background(), CreateContractRequest{
		ClientID:   client.ID,
		VehicleID:  contract.VehicleID,
		StartDate:  "2025-03-01",
		EndDate:    "2025-09-01",
		MonthlyFee: "400",
	}, "test")

	var rule *apperror.BusinessRuleError
	if !errors.As(err, &rule) {
		t.Fatalf("expected BusinessRuleError, got %v", err)
	}
}

func TestCreateContractRequiresPurchasedVehicle(t *testing.T) {
	env := newTestEnv(t)
	client := env.createClient(t)
	vehicle := env.createVehicle(t, false)

	_, err := env.contracts.CreateContract(context.Background(), CreateContractRequest{
		ClientID:   client.ID,
		VehicleID:  vehicle.ID,
		StartDate:  "2025-01-15",
		EndDate:    "2026-01-15",
		MonthlyFee: "500",
	}, "test")

	var rule *apperror.BusinessRuleError
	if !errors.As(err, &rule) {
		t.Fatalf("expected BusinessRuleError, got %v", err)
	}
}

func TestCreateContractRejectsShortTerm(t *testing.T) {
	env := newTestEnv(t)
	client := env.createClient(t)
	vehicle := env.createVehicle(t, true)

	_, err := env.contracts.CreateContract(context.Background(), CreateContractRequest{
		ClientID:   client.ID,
		VehicleID:  vehicle.ID,
		StartDate:  "2025-01-15",
		EndDate:    "2025-02-10",
		MonthlyFee: "500",
	}, "test")

	var rule *apperror.BusinessRuleError
	if !errors.As(err, &rule) {
		t.Fatalf("expected BusinessRuleError, got %v", err)
	}
}

func TestContractLifecycleMovesVehicle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	contract := env.createContract(t)

	if got := env.vehicleStatus(t, contract.VehicleID); got != "IN_RENTAL" {
		t.Fatalf("vehicle status after create = %s, want IN_RENTAL", got)
	}

	activated, err := env.contracts.ActivateContract(ctx, contract.ID, "test")
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	if activated.State != "ACTIVE" {
		t.Fatalf("state = %s, want ACTIVE", activated.State)
	}
	if got := env.vehicleStatus(t, contract.VehicleID); got != "IN_RENTAL" {
		t.Fatalf("vehicle status after activate = %s, want IN_RENTAL", got)
	}

	// A second activation has no pending contract to work on.
	if _, err := env.contracts.ActivateContract(ctx, contract.ID, "test"); err == nil {
		t.Fatal("expected error activating twice")
	} else {
		var invalid *apperror.InvalidOperationError
		if !errors.As(err, &invalid) {
			t.Fatalf("expected InvalidOperationError, got %v", err)
		}
	}

	finished, err := env.contracts.FinalizeContract(ctx, contract.ID, "test")
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if finished.State != "FINISHED" {
		t.Fatalf("state = %s, want FINISHED", finished.State)
	}
	if got := env.vehicleStatus(t, contract.VehicleID); got != "AVAILABLE" {
		t.Fatalf("vehicle status = %s, want AVAILABLE", got)
	}
}

func TestFinalizeRequiresActiveContract(t *testing.T) {
	env := newTestEnv(t)
	contract := env.createContract(t)

	_, err := env.contracts.FinalizeContract(context.Background(), contract.ID, "test")

	var invalid *apperror.InvalidOperationError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidOperationError, got %v", err)
	}
}

func TestCancelContractCancelsUnpaidInstallments(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	contract := env.createContract(t)

	paid, err := env.installments.MarkPaid(ctx, contract.Installments[0].ID, PayInstallmentRequest{
		PaymentDate: "2025-02-10",
	}, "test")
	if err != nil {
		t.Fatalf("pay installment: %v", err)
	}
	if paid.State != "PAID" {
		t.Fatalf("installment state = %s, want PAID", paid.State)
	}

	cancelled, err := env.contracts.CancelContract(ctx, contract.ID, "client default", "test")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.State != "CANCELLED" {
		t.Fatalf("contract state = %s, want CANCELLED", cancelled.State)
	}

	// Cancelling a pending contract hands the vehicle back too.
	if got := env.vehicleStatus(t, contract.VehicleID); got != "AVAILABLE" {
		t.Fatalf("vehicle status = %s, want AVAILABLE", got)
	}

	schedule, err := env.installments.ListByContract(ctx, contract.ID)
	if err != nil {
		t.Fatalf("list installments: %v", err)
	}
	for _, inst := range schedule {
		want := "CANCELLED"
		if inst.Number == 1 {
			want = "PAID"
		}
		if inst.State != want {
			t.Fatalf("installment %d state = %s, want %s", inst.Number, inst.State, want)
		}
	}
}

func TestCancelActiveContractReleasesVehicle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	contract := env.createContract(t)

	if _, err := env.contracts.ActivateContract(ctx, contract.ID, "test"); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if _, err := env.contracts.CancelContract(ctx, contract.ID, "vehicle totalled", "test"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if got := env.vehicleStatus(t, contract.VehicleID); got != "AVAILABLE" {
		t.Fatalf("vehicle status = %s, want AVAILABLE", got)
	}
}

func TestCancelFinishedContractRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	contract := env.createContract(t)

	if _, err := env.contracts.ActivateContract(ctx, contract.ID, "test"); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if _, err := env.contracts.FinalizeContract(ctx, contract.ID, "test"); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	_, err := env.contracts.CancelContract(ctx, contract.ID, "too late", "test")
	var rule *apperror.BusinessRuleError
	if !errors.As(err, &rule) {
		t.Fatalf("expected BusinessRuleError, got %v", err)
	}
}

func TestCancelContractTwice(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	contract := env.createContract(t)

	if _, err := env.contracts.CancelContract(ctx, contract.ID, "client default", "test"); err != nil {
		t.Fatalf("first cancel: %v", err)
	}

	// A repeated cancellation only appends another audit entry; the vehicle
	// keeps the status the first cancellation gave it.
	again, err := env.contracts.CancelContract(ctx, contract.ID, "reason updated", "test")
	if err != nil {
		t.Fatalf("second cancel: %v", err)
	}
	if again.State != "CANCELLED" {
		t.Fatalf("contract state = %s, want CANCELLED", again.State)
	}
	if got := env.vehicleStatus(t, contract.VehicleID); got != "AVAILABLE" {
		t.Fatalf("vehicle status = %s, want AVAILABLE", got)
	}
}

func TestCancelContractRequiresReason(t *testing.T) {
	env := newTestEnv(t)
	contract := env.createContract(t)

	_, err := env.contracts.CancelContract(context.Background(), contract.ID, "", "test")

	var rule *apperror.BusinessRuleError
	if !errors.As(err, &rule) {
		t.Fatalf("expected BusinessRuleError, got %v", err)
	}
}

func TestUpdateContractRegeneratesScheduleWhilePending(t *testing.T) {
	env := newTestEnv(t)
	contract := env.createContract(t)

	updated, err := env.contracts.UpdateContract(context.Background(), contract.ID, UpdateContractRequest{
		ClientID:   contract.ClientID,
		VehicleID:  contract.VehicleID,
		StartDate:  "2025-01-15",
		EndDate:    "2025-07-15",
		MonthlyFee: "600",
	}, "test")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.DurationMonths != 6 {
		t.Fatalf("duration = %d, want 6", updated.DurationMonths)
	}
	if len(updated.Installments) != 6 {
		t.Fatalf("installments = %d, want 6", len(updated.Installments))
	}
	if updated.Installments[0].Amount != "600.00" {
		t.Fatalf("amount = %s, want 600.00", updated.Installments[0].Amount)
	}
	if updated.TotalAmount != "3600.00" {
		t.Fatalf("total = %s, want 3600.00", updated.TotalAmount)
	}
}

func TestUpdateContractReassignsClientAndVehicleWhilePending(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	contract := env.createContract(t)
	newClient := env.createClient(t)
	replacement := env.createVehicle(t, true)

	updated, err := env.contracts.UpdateContract(ctx, contract.ID, UpdateContractRequest{
		ClientID:   newClient.ID,
		VehicleID:  replacement.ID,
		StartDate:  "2025-01-15",
		EndDate:    "2026-01-15",
		MonthlyFee: "500",
	}, "test")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ClientID != newClient.ID {
		t.Fatalf("client = %s, want %s", updated.ClientID, newClient.ID)
	}
	if updated.VehicleID != replacement.ID {
		t.Fatalf("vehicle = %s, want %s", updated.VehicleID, replacement.ID)
	}

	// The original vehicle is handed back and the replacement goes into
	// rental in its place.
	if got := env.vehicleStatus(t, contract.VehicleID); got != "AVAILABLE" {
		t.Fatalf("old vehicle status = %s, want AVAILABLE", got)
	}
	if got := env.vehicleStatus(t, replacement.ID); got != "IN_RENTAL" {
		t.Fatalf("new vehicle status = %s, want IN_RENTAL", got)
	}
}

func TestUpdateContractTermsFrozenAfterActivation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	contract := env.createContract(t)

	if _, err := env.contracts.ActivateContract(ctx, contract.ID, "test"); err != nil {
		t.Fatalf("activate: %v", err)
	}

	_, err := env.contracts.UpdateContract(ctx, contract.ID, UpdateContractRequest{
		ClientID:   contract.ClientID,
		VehicleID:  contract.VehicleID,
		StartDate:  "2025-01-15",
		EndDate:    "2026-01-15",
		MonthlyFee: "650",
	}, "test")
	var invalid *apperror.InvalidOperationError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidOperationError, got %v", err)
	}

	// Swapping the vehicle is frozen too.
	replacement := env.createVehicle(t, true)
	_, err = env.contracts.UpdateContract(ctx, contract.ID, UpdateContractRequest{
		ClientID:   contract.ClientID,
		VehicleID:  replacement.ID,
		StartDate:  "2025-01-15",
		EndDate:    "2026-01-15",
		MonthlyFee: "500",
	}, "test")
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidOperationError, got %v", err)
	}

	// Kilometer terms and notes stay editable on an active contract.
	updated, err := env.contracts.UpdateContract(ctx, contract.ID, UpdateContractRequest{
		ClientID:   contract.ClientID,
		VehicleID:  contract.VehicleID,
		StartDate:  "2025-01-15",
		EndDate:    "2026-01-15",
		MonthlyFee: "500",
		IncludedKm: 20000,
		Notes:      "extended mileage allowance",
	}, "test")
	if err != nil {
		t.Fatalf("update km terms: %v", err)
	}
	if updated.IncludedKm != 20000 {
		t.Fatalf("included km = %d, want 20000", updated.IncludedKm)
	}
}
