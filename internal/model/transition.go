package model

import "fmt"

// StatusEvent names a business fact that moves a vehicle through its lifecycle.
type StatusEvent string

const (
	EventRentalStarted       StatusEvent = "RENTAL_STARTED"
	EventRentalEnded         StatusEvent = "RENTAL_ENDED"
	EventReservationPlaced   StatusEvent = "RESERVATION_PLACED"
	EventReservationReleased StatusEvent = "RESERVATION_RELEASED"
	EventVehicleSold         StatusEvent = "VEHICLE_SOLD"
)

// statusTransitions maps (current status, event) to the next status. It is the
// single authority on vehicle status changes; the engines never write a status
// name directly.
var statusTransitions = map[StatusEvent]map[string]string{
	EventRentalStarted: {
		StatusAvailable: StatusInRental,
	},
	EventRentalEnded: {
		StatusInRental: StatusAvailable,
	},
	EventReservationPlaced: {
		StatusAvailable: StatusReserved,
	},
	EventReservationReleased: {
		StatusReserved: StatusAvailable,
	},
	EventVehicleSold: {
		StatusAvailable: StatusSold,
		StatusReserved:  StatusSold,
	},
}

// NextStatus resolves the status an event leads to from the current one.
// An unknown pair means the requested transition is not reachable.
func NextStatus(current string, event StatusEvent) (string, error) {
	targets, ok := statusTransitions[event]
	if !ok {
		return "", fmt.Errorf("unknown status event: %s", event)
	}
	next, ok := targets[current]
	if !ok {
		return "", fmt.Errorf("event %s not allowed from status %s", event, current)
	}
	return next, nil
}
