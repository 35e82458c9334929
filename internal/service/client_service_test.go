package service

import (
	"context"
	"errors"
	"testing"

	"dealership/pkg/apperror"
)

func TestCreateClientRejectsDuplicateDocument(t *testing.T) {
	env := newTestEnv(t)
	client := env.createClient(t)

	_, err := env.clients.CreateClient(context.Background(), CreateClientRequest{
		Type:     "INDIVIDUAL",
		Document: client.Document,
		Name:     "Luis",
		Address:  "Calle Sol 9",
	})

	var dup *apperror.DuplicateError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateError, got %v", err)
	}
}

func TestCompanyClientRequiresCompanyName(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.clients.CreateClient(ctx, CreateClientRequest{
		Type:     "COMPANY",
		Document: "B76543210",
		Name:     "Contact",
		Address:  "Gran Via 22",
	})
	var rule *apperror.BusinessRuleError
	if !errors.As(err, &rule) {
		t.Fatalf("expected BusinessRuleError, got %v", err)
	}

	company, err := env.clients.CreateClient(ctx, CreateClientRequest{
		Type:        "COMPANY",
		Document:    "B76543210",
		Name:        "Contact",
		CompanyName: "Flotas Iberia SL",
		Address:     "Gran Via 22",
	})
	if err != nil {
		t.Fatalf("create company: %v", err)
	}
	if company.DisplayName != "Flotas Iberia SL" {
		t.Fatalf("display name = %s, want Flotas Iberia SL", company.DisplayName)
	}
}

func TestDeactivatedClientCannotRentOrReserve(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	client := env.createClient(t)
	vehicle := env.createVehicle(t, true)

	if err := env.clients.DeactivateClient(ctx, client.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	_, err := env.contracts.CreateContract(ctx, CreateContractRequest{
		ClientID:   client.ID,
		VehicleID:  vehicle.ID,
		StartDate:  "2025-01-15",
		EndDate:    "2026-01-15",
		MonthlyFee: "500",
	}, "test")
	var rule *apperror.BusinessRuleError
	if !errors.As(err, &rule) {
		t.Fatalf("expected BusinessRuleError on contract, got %v", err)
	}

	_, err = env.reservations.CreateReservation(ctx, CreateReservationRequest{
		ClientID:  client.ID,
		VehicleID: vehicle.ID,
		Price:     "18000",
	}, "test")
	if !errors.As(err, &rule) {
		t.Fatalf("expected BusinessRuleError on reservation, got %v", err)
	}
}
