package model

import "testing"

func TestNextStatus(t *testing.T) {
	cases := []struct {
		current string
		event   StatusEvent
		want    string
	}{
		{StatusAvailable, EventRentalStarted, StatusInRental},
		{StatusInRental, EventRentalEnded, StatusAvailable},
		{StatusAvailable, EventReservationPlaced, StatusReserved},
		{StatusReserved, EventReservationReleased, StatusAvailable},
		{StatusAvailable, EventVehicleSold, StatusSold},
		{StatusReserved, EventVehicleSold, StatusSold},
	}
	for _, tc := range cases {
		got, err := NextStatus(tc.current, tc.event)
		if err != nil {
			t.Fatalf("NextStatus(%s, %s): %v", tc.current, tc.event, err)
		}
		if got != tc.want {
			t.Fatalf("NextStatus(%s, %s) = %s, want %s", tc.current, tc.event, got, tc.want)
		}
	}
}

func TestNextStatusRejectsUnreachableTransitions(t *testing.T) {
	blocked := []struct {
		current string
		event   StatusEvent
	}{
		{StatusInRental, EventRentalStarted},
		{StatusInRental, EventVehicleSold},
		{StatusInRental, EventReservationPlaced},
		{StatusReserved, EventRentalStarted},
		{StatusSold, EventRentalStarted},
		{StatusSold, EventReservationPlaced},
		{StatusSold, EventVehicleSold},
		{StatusAvailable, EventRentalEnded},
		{StatusAvailable, EventReservationReleased},
	}
	for _, tc := range blocked {
		if _, err := NextStatus(tc.current, tc.event); err == nil {
			t.Fatalf("expected NextStatus(%s, %s) to fail", tc.current, tc.event)
		}
	}
	if _, err := NextStatus(StatusAvailable, StatusEvent("REPAINTED")); err == nil {
		t.Fatalf("expected unknown event to fail")
	}
}
