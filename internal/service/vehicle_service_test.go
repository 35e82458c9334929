package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"dealership/internal/model"
	"dealership/internal/repository"
	"dealership/pkg/apperror"
)

func TestCreateVehicleStartsAvailable(t *testing.T) {
	env := newTestEnv(t)

	vehicle := env.createVehicle(t, false)

	if vehicle.Status != "AVAILABLE" {
		t.Fatalf("status = %s, want AVAILABLE", vehicle.Status)
	}
	if vehicle.HasPurchase || vehicle.HasSale {
		t.Fatalf("fresh vehicle reports purchase %t sale %t", vehicle.HasPurchase, vehicle.HasSale)
	}
	if !vehicle.IsActive {
		t.Fatal("fresh vehicle is inactive")
	}
}

func TestCreateVehicleRejectsDuplicatePlate(t *testing.T) {
	env := newTestEnv(t)
	vehicle := env.createVehicle(t, false)

	_, err := env.vehicles.CreateVehicle(context.Background(), CreateVehicleRequest{
		Plate:           vehicle.Plate,
		Brand:           "Renault",
		Model:           "Clio",
		ManufactureYear: 2021,
		FuelType:        "DIESEL",
	})

	var dup *apperror.DuplicateError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateError, got %v", err)
	}
}

func TestCreateVehicleRejectsBadYear(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.vehicles.CreateVehicle(context.Background(), CreateVehicleRequest{
		Plate:           "0001 XYZ",
		Brand:           "Ford",
		Model:           "T",
		ManufactureYear: 1885,
		FuelType:        "PETROL",
	})

	var rule *apperror.BusinessRuleError
	if !errors.As(err, &rule) {
		t.Fatalf("expected BusinessRuleError, got %v", err)
	}
}

func TestUpdateMileageIsMonotonic(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	vehicle := env.createVehicle(t, false)

	updated, err := env.vehicles.UpdateMileage(ctx, vehicle.ID, UpdateMileageRequest{Mileage: 15000})
	if err != nil {
		t.Fatalf("raise mileage: %v", err)
	}
	if updated.Mileage != 15000 {
		t.Fatalf("mileage = %d, want 15000", updated.Mileage)
	}

	_, err = env.vehicles.UpdateMileage(ctx, vehicle.ID, UpdateMileageRequest{Mileage: 9000})
	var rule *apperror.BusinessRuleError
	if !errors.As(err, &rule) {
		t.Fatalf("expected BusinessRuleError, got %v", err)
	}
}

func TestDeactivateVehicleBlockedWhileHeld(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	client := env.createClient(t)
	vehicle := env.createVehicle(t, true)
	env.createReservation(t, client.ID, vehicle.ID, "")

	err := env.vehicles.DeactivateVehicle(ctx, vehicle.ID)
	var rule *apperror.BusinessRuleError
	if !errors.As(err, &rule) {
		t.Fatalf("expected BusinessRuleError, got %v", err)
	}

	free := env.createVehicle(t, false)
	if err := env.vehicles.DeactivateVehicle(ctx, free.ID); err != nil {
		t.Fatalf("deactivate free vehicle: %v", err)
	}
}

func TestApplyStatusEventRejectsUnreachableTransition(t *testing.T) {
	env := newTestEnv(t)
	vehicle := env.createVehicle(t, false)
	id, err := uuid.Parse(vehicle.ID)
	if err != nil {
		t.Fatalf("parse id: %v", err)
	}

	_, err = env.vehicles.ApplyStatusEvent(context.Background(), id, model.EventRentalEnded, "test")

	var invalid *apperror.InvalidOperationError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidOperationError, got %v", err)
	}
}

func TestStatusUpdateDetectsStaleVersion(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	vehicle := env.createVehicle(t, false)
	id, err := uuid.Parse(vehicle.ID)
	if err != nil {
		t.Fatalf("parse id: %v", err)
	}

	// A concurrent transition bumps the version before this request lands.
	if err := env.db.Model(&model.Vehicle{}).Where("id = ?", id).Update("version", 7).Error; err != nil {
		t.Fatalf("bump version: %v", err)
	}

	statusRepo := repository.NewStatusRepository(env.db)
	vehicleRepo := repository.NewVehicleRepository(env.db)
	reserved, err := statusRepo.FindByName(ctx, "RESERVED")
	if err != nil {
		t.Fatalf("find status: %v", err)
	}

	ok, err := vehicleRepo.UpdateStatus(ctx, id, reserved.ID, 0)
	if err != nil {
		t.Fatalf("stale update: %v", err)
	}
	if ok {
		t.Fatal("stale version applied")
	}

	ok, err = vehicleRepo.UpdateStatus(ctx, id, reserved.ID, 7)
	if err != nil {
		t.Fatalf("current update: %v", err)
	}
	if !ok {
		t.Fatal("current version rejected")
	}
}

func TestStatusBroadcastWaitsForCommit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	vehicle := env.createVehicle(t, false)
	id, err := uuid.Parse(vehicle.ID)
	if err != nil {
		t.Fatalf("parse id: %v", err)
	}

	// A transition inside a transaction that rolls back must never reach
	// websocket subscribers.
	rollback := errors.New("caller backs out")
	err = env.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := env.vehicles.ApplyStatusEvent(txCtx, id, model.EventReservationPlaced, "test"); err != nil {
			return err
		}
		return rollback
	})
	if !errors.Is(err, rollback) {
		t.Fatalf("tx error = %v, want the caller's", err)
	}
	select {
	case msg := <-env.hub.Broadcast:
		t.Fatalf("broadcast leaked from rolled back transaction: %s", msg)
	default:
	}
	if got := env.vehicleStatus(t, vehicle.ID); got != "AVAILABLE" {
		t.Fatalf("vehicle status = %s, want AVAILABLE", got)
	}

	// The same transition committed broadcasts exactly once.
	if _, err := env.vehicles.ApplyStatusEvent(ctx, id, model.EventReservationPlaced, "test"); err != nil {
		t.Fatalf("place: %v", err)
	}
	select {
	case msg := <-env.hub.Broadcast:
		if !strings.Contains(string(msg), "RESERVED") {
			t.Fatalf("broadcast = %s, want a RESERVED transition", msg)
		}
	default:
		t.Fatal("no broadcast after commit")
	}
	select {
	case msg := <-env.hub.Broadcast:
		t.Fatalf("extra broadcast: %s", msg)
	default:
	}
}

func TestApplyStatusEventBumpsVersion(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	vehicle := env.createVehicle(t, false)
	id, err := uuid.Parse(vehicle.ID)
	if err != nil {
		t.Fatalf("parse id: %v", err)
	}

	placed, err := env.vehicles.ApplyStatusEvent(ctx, id, model.EventReservationPlaced, "test")
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	if placed.StatusName() != "RESERVED" {
		t.Fatalf("status = %s, want RESERVED", placed.StatusName())
	}
	if placed.Version != 1 {
		t.Fatalf("version = %d, want 1", placed.Version)
	}

	released, err := env.vehicles.ApplyStatusEvent(ctx, id, model.EventReservationReleased, "test")
	if err != nil {
		t.Fatalf("release: %v", err)
	}
	if released.StatusName() != "AVAILABLE" || released.Version != 2 {
		t.Fatalf("status = %s version = %d, want AVAILABLE 2", released.StatusName(), released.Version)
	}
}
