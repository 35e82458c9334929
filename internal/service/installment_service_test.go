package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"dealership/pkg/apperror"
)

func TestMarkPaidRecordsPaymentDate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	contract := env.createContract(t)

	paid, err := env.installments.MarkPaid(ctx, contract.Installments[0].ID, PayInstallmentRequest{
		PaymentDate: "2025-02-20",
		Notes:       "bank transfer",
	}, "test")
	if err != nil {
		t.Fatalf("pay: %v", err)
	}
	if paid.State != "PAID" {
		t.Fatalf("state = %s, want PAID", paid.State)
	}
	if paid.PaymentDate == nil || *paid.PaymentDate != "2025-02-20" {
		t.Fatalf("payment date = %v, want 2025-02-20", paid.PaymentDate)
	}

	_, err = env.installments.MarkPaid(ctx, contract.Installments[0].ID, PayInstallmentRequest{}, "test")
	var rule *apperror.BusinessRuleError
	if !errors.As(err, &rule) {
		t.Fatalf("expected BusinessRuleError paying twice, got %v", err)
	}
}

func TestMarkPaidRejectsCancelledInstallment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	contract := env.createContract(t)

	if _, err := env.contracts.CancelContract(ctx, contract.ID, "client default", "test"); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	_, err := env.installments.MarkPaid(ctx, contract.Installments[0].ID, PayInstallmentRequest{}, "test")
	var rule *apperror.BusinessRuleError
	if !errors.As(err, &rule) {
		t.Fatalf("expected BusinessRuleError, got %v", err)
	}
}

func TestOverdueSweepFlagsPastDueOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	// The fixture contract runs 2025-01-15 to 2026-01-15, so its whole
	// schedule is already past due.
	contract := env.createContract(t)

	if _, err := env.installments.MarkPaid(ctx, contract.Installments[0].ID, PayInstallmentRequest{}, "test"); err != nil {
		t.Fatalf("pay: %v", err)
	}

	result, err := env.installments.OverdueSweep(ctx, "cron")
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if result.Flagged != 11 {
		t.Fatalf("flagged = %d, want 11", result.Flagged)
	}

	overdue, err := env.installments.ListByState(ctx, "OVERDUE")
	if err != nil {
		t.Fatalf("list overdue: %v", err)
	}
	if len(overdue) != 11 {
		t.Fatalf("overdue rows = %d, want 11", len(overdue))
	}

	// Rerunning finds nothing new.
	result, err = env.installments.OverdueSweep(ctx, "cron")
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if result.Flagged != 0 {
		t.Fatalf("second sweep flagged = %d, want 0", result.Flagged)
	}
}

func TestOverdueInstallmentStaysPayable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	contract := env.createContract(t)

	if _, err := env.installments.OverdueSweep(ctx, "cron"); err != nil {
		t.Fatalf("sweep: %v", err)
	}

	paid, err := env.installments.MarkPaid(ctx, contract.Installments[0].ID, PayInstallmentRequest{}, "test")
	if err != nil {
		t.Fatalf("pay overdue: %v", err)
	}
	if paid.State != "PAID" {
		t.Fatalf("state = %s, want PAID", paid.State)
	}
}

func TestMarkOverdueRequiresPastDueDate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	client := env.createClient(t)
	vehicle := env.createVehicle(t, true)

	// A contract starting next month has no due installments yet.
	start := time.Now().UTC().AddDate(0, 1, 0)
	contract, err := env.contracts.CreateContract(ctx, CreateContractRequest{
		ClientID:   client.ID,
		VehicleID:  vehicle.ID,
		StartDate:  start.Format("2006-01-02"),
		EndDate:    start.AddDate(1, 0, 0).Format("2006-01-02"),
		MonthlyFee: "500",
	}, "test")
	if err != nil {
		t.Fatalf("create contract: %v", err)
	}

	_, err = env.installments.MarkOverdue(ctx, contract.Installments[0].ID, "test")
	var rule *apperror.BusinessRuleError
	if !errors.As(err, &rule) {
		t.Fatalf("expected BusinessRuleError, got %v", err)
	}

	result, err := env.installments.OverdueSweep(ctx, "cron")
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if result.Flagged != 0 {
		t.Fatalf("flagged = %d, want 0", result.Flagged)
	}
}

func TestDueWithinListsPendingSchedule(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.createContract(t)

	// All twelve fixture installments are due before tomorrow.
	due, err := env.installments.DueWithin(ctx, 0)
	if err != nil {
		t.Fatalf("due within: %v", err)
	}
	if len(due) != 12 {
		t.Fatalf("due rows = %d, want 12", len(due))
	}
}
