package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"dealership/internal/model"
	"dealership/pkg/apperror"
)

func (e *testEnv) createReservation(t *testing.T, clientID, vehicleID, deadline string) ReservationResponse {
	t.Helper()
	reservation, err := e.reservations.CreateReservation(context.Background(), CreateReservationRequest{
		ClientID:  clientID,
		VehicleID: vehicleID,
		Deadline:  deadline,
		Price:     "18000",
		Deposit:   "1500",
	}, "test")
	if err != nil {
		t.Fatalf("create reservation: %v", err)
	}
	return reservation
}

// backdateDeadline moves a reservation's deadline into the past, which the
// service itself never accepts on creation.
func (e *testEnv) backdateDeadline(t *testing.T, reservationID string) {
	t.Helper()
	past := time.Now().UTC().AddDate(0, 0, -3)
	err := e.db.Model(&model.Reservation{}).
		Where("id = ?", reservationID).
		Update("deadline", past).Error
	if err != nil {
		t.Fatalf("backdate deadline: %v", err)
	}
}

func futureDate(days int) string {
	return time.Now().UTC().AddDate(0, 0, days).Format("2006-01-02")
}

func TestCreateReservationHoldsVehicle(t *testing.T) {
	env := newTestEnv(t)
	client := env.createClient(t)
	vehicle := env.createVehicle(t, true)

	reservation := env.createReservation(t, client.ID, vehicle.ID, futureDate(14))

	if reservation.State != "PENDING" {
		t.Fatalf("state = %s, want PENDING", reservation.State)
	}
	if reservation.Price != "18000.00" {
		t.Fatalf("price = %s, want 18000.00", reservation.Price)
	}
	if reservation.Deposit == nil || *reservation.Deposit != "1500.00" {
		t.Fatalf("deposit = %v, want 1500.00", reservation.Deposit)
	}
	if got := env.vehicleStatus(t, vehicle.ID); got != "RESERVED" {
		t.Fatalf("vehicle status = %s, want RESERVED", got)
	}
}

func TestCreateReservationRejectsHeldVehicle(t *testing.T) {
	env := newTestEnv(t)
	client := env.createClient(t)
	vehicle := env.createVehicle(t, true)
	env.createReservation(t, client.ID, vehicle.ID, "")

	other := env.createClient(t)
	_, err := env.reservations.CreateReservation(context.Background(), CreateReservationRequest{
		ClientID:  other.ID,
		VehicleID: vehicle.ID,
		Price:     "17500",
	}, "test")

	var rule *apperror.BusinessRuleError
	if !errors.As(err, &rule) {
		t.Fatalf("expected BusinessRuleError, got %v", err)
	}
}

func TestCreateReservationRejectsPastDeadline(t *testing.T) {
	env := newTestEnv(t)
	client := env.createClient(t)
	vehicle := env.createVehicle(t, true)

	_, err := env.reservations.CreateReservation(context.Background(), CreateReservationRequest{
		ClientID:  client.ID,
		VehicleID: vehicle.ID,
		Deadline:  "2025-01-01",
		Price:     "18000",
	}, "test")

	var rule *apperror.BusinessRuleError
	if !errors.As(err, &rule) {
		t.Fatalf("expected BusinessRuleError, got %v", err)
	}
}

func TestConfirmReservation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	client := env.createClient(t)
	vehicle := env.createVehicle(t, true)
	reservation := env.createReservation(t, client.ID, vehicle.ID, futureDate(14))

	confirmed, err := env.reservations.ConfirmReservation(ctx, reservation.ID, "test")
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if confirmed.State != "CONFIRMED" {
		t.Fatalf("state = %s, want CONFIRMED", confirmed.State)
	}

	_, err = env.reservations.ConfirmReservation(ctx, reservation.ID, "test")
	var invalid *apperror.InvalidOperationError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidOperationError confirming twice, got %v", err)
	}
}

func TestConfirmExpiredReservation(t *testing.T) {
	env := newTestEnv(t)
	client := env.createClient(t)
	vehicle := env.createVehicle(t, true)
	reservation := env.createReservation(t, client.ID, vehicle.ID, futureDate(14))
	env.backdateDeadline(t, reservation.ID)

	_, err := env.reservations.ConfirmReservation(context.Background(), reservation.ID, "test")

	var rule *apperror.BusinessRuleError
	if !errors.As(err, &rule) {
		t.Fatalf("expected BusinessRuleError, got %v", err)
	}
}

func TestCancelReservationReleasesVehicle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	client := env.createClient(t)
	vehicle := env.createVehicle(t, true)
	reservation := env.createReservation(t, client.ID, vehicle.ID, "")

	if _, err := env.reservations.CancelReservation(ctx, reservation.ID, "", "test"); err == nil {
		t.Fatal("expected error cancelling without a reason")
	}

	cancelled, err := env.reservations.CancelReservation(ctx, reservation.ID, "client withdrew", "test")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.State != "CANCELLED" || cancelled.IsActive {
		t.Fatalf("state = %s active = %t, want CANCELLED inactive", cancelled.State, cancelled.IsActive)
	}
	if got := env.vehicleStatus(t, vehicle.ID); got != "AVAILABLE" {
		t.Fatalf("vehicle status = %s, want AVAILABLE", got)
	}

	// Cancelling again is permitted and only appends another audit entry.
	again, err := env.reservations.CancelReservation(ctx, reservation.ID, "again", "test")
	if err != nil {
		t.Fatalf("second cancel: %v", err)
	}
	if again.State != "CANCELLED" {
		t.Fatalf("state = %s, want CANCELLED", again.State)
	}
	if got := env.vehicleStatus(t, vehicle.ID); got != "AVAILABLE" {
		t.Fatalf("vehicle status = %s, want AVAILABLE", got)
	}
}

func TestCancelCompletedReservationRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	client := env.createClient(t)
	vehicle := env.createVehicle(t, true)
	reservation := env.createReservation(t, client.ID, vehicle.ID, futureDate(14))

	if _, err := env.reservations.ConfirmReservation(ctx, reservation.ID, "test"); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	env.createSale(t, client.ID, vehicle.ID, reservation.ID)

	_, err := env.reservations.CancelReservation(ctx, reservation.ID, "changed mind", "test")
	var rule *apperror.BusinessRuleError
	if !errors.As(err, &rule) {
		t.Fatalf("expected BusinessRuleError, got %v", err)
	}
}

func TestListExpiredReservations(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	client := env.createClient(t)
	expiredVehicle := env.createVehicle(t, true)
	liveVehicle := env.createVehicle(t, true)

	expired := env.createReservation(t, client.ID, expiredVehicle.ID, futureDate(7))
	env.createReservation(t, client.ID, liveVehicle.ID, futureDate(30))
	env.backdateDeadline(t, expired.ID)

	rows, err := env.reservations.ListExpired(ctx)
	if err != nil {
		t.Fatalf("list expired: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != expired.ID {
		t.Fatalf("expired rows = %v, want just %s", rows, expired.ID)
	}

	// The sweep consumes the backlog.
	if _, err := env.reservations.ExpirySweep(ctx, "cron"); err != nil {
		t.Fatalf("sweep: %v", err)
	}
	rows, err = env.reservations.ListExpired(ctx)
	if err != nil {
		t.Fatalf("list expired after sweep: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expired rows after sweep = %d, want 0", len(rows))
	}
}

func TestExpirySweepReleasesExpiredHolds(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	client := env.createClient(t)
	expiredVehicle := env.createVehicle(t, true)
	liveVehicle := env.createVehicle(t, true)

	expired := env.createReservation(t, client.ID, expiredVehicle.ID, futureDate(7))
	env.createReservation(t, client.ID, liveVehicle.ID, futureDate(30))
	env.backdateDeadline(t, expired.ID)

	result, err := env.reservations.ExpirySweep(ctx, "cron")
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if result.Flagged != 1 {
		t.Fatalf("flagged = %d, want 1", result.Flagged)
	}
	if got := env.vehicleStatus(t, expiredVehicle.ID); got != "AVAILABLE" {
		t.Fatalf("expired vehicle status = %s, want AVAILABLE", got)
	}
	if got := env.vehicleStatus(t, liveVehicle.ID); got != "RESERVED" {
		t.Fatalf("live vehicle status = %s, want RESERVED", got)
	}

	released, err := env.reservations.GetReservation(ctx, expired.ID)
	if err != nil {
		t.Fatalf("get reservation: %v", err)
	}
	if released.State != "CANCELLED" {
		t.Fatalf("state = %s, want CANCELLED", released.State)
	}

	result, err = env.reservations.ExpirySweep(ctx, "cron")
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if result.Flagged != 0 {
		t.Fatalf("second sweep flagged = %d, want 0", result.Flagged)
	}
}
