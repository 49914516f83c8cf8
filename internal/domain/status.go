package domain

import "regexp"

// DeliveryStatus is the lifecycle state of a delivery.
type DeliveryStatus string

// List of delivery statuses. The set is closed: Next must have a case for every value.
const (
	DeliveryPending          DeliveryStatus = "pending"
	DeliveryConfirmed        DeliveryStatus = "confirmed"
	DeliveryScheduled        DeliveryStatus = "scheduled"
	DeliveryOutForPickup     DeliveryStatus = "out_for_pickup"
	DeliveryPickedUp         DeliveryStatus = "picked_up"
	DeliveryAtWarehouse      DeliveryStatus = "at_warehouse"
	DeliveryInTransit        DeliveryStatus = "in_transit"
	DeliveryOutForDelivery   DeliveryStatus = "out_for_delivery"
	DeliveryAttempted        DeliveryStatus = "delivery_attempted"
	DeliveryDelivered        DeliveryStatus = "delivered"
	DeliveryReturned         DeliveryStatus = "returned"
	DeliveryReturnedToSender DeliveryStatus = "returned_to_sender"
	DeliveryOnHold           DeliveryStatus = "on_hold"
	DeliveryFailed           DeliveryStatus = "failed"
	DeliveryCancelled        DeliveryStatus = "cancelled"
)

// DeliveryStatuses lists every delivery status in declaration order.
var DeliveryStatuses = [...]DeliveryStatus{
	DeliveryPending,
	DeliveryConfirmed,
	DeliveryScheduled,
	DeliveryOutForPickup,
	DeliveryPickedUp,
	DeliveryAtWarehouse,
	DeliveryInTransit,
	DeliveryOutForDelivery,
	DeliveryAttempted,
	DeliveryDelivered,
	DeliveryReturned,
	DeliveryReturnedToSender,
	DeliveryOnHold,
	DeliveryFailed,
	DeliveryCancelled,
}

// Next returns the statuses reachable from s in one transition.
// Terminal statuses return an empty set; unknown values return nil.
//
//exhaustive:enforce
func (s DeliveryStatus) Next() []DeliveryStatus {
	switch s {
	case DeliveryPending:
		return []DeliveryStatus{DeliveryConfirmed, DeliveryScheduled, DeliveryCancelled}
	case DeliveryConfirmed:
		return []DeliveryStatus{DeliveryScheduled, DeliveryOutForPickup, DeliveryCancelled}
	case DeliveryScheduled:
		return []DeliveryStatus{DeliveryOutForPickup, DeliveryCancelled}
	case DeliveryOutForPickup:
		return []DeliveryStatus{DeliveryPickedUp, DeliveryFailed, DeliveryCancelled}
	case DeliveryPickedUp:
		return []DeliveryStatus{DeliveryAtWarehouse, DeliveryInTransit, DeliveryOnHold, DeliveryCancelled}
	case DeliveryAtWarehouse:
		return []DeliveryStatus{DeliveryInTransit, DeliveryOutForDelivery, DeliveryOnHold, DeliveryCancelled}
	case DeliveryInTransit:
		return []DeliveryStatus{DeliveryOutForDelivery, DeliveryAtWarehouse, DeliveryOnHold, DeliveryCancelled}
	case DeliveryOutForDelivery:
		return []DeliveryStatus{DeliveryDelivered, DeliveryAttempted, DeliveryFailed, DeliveryCancelled}
	case DeliveryAttempted:
		return []DeliveryStatus{DeliveryOutForDelivery, DeliveryReturned, DeliveryFailed, DeliveryCancelled}
	case DeliveryReturned:
		return []DeliveryStatus{DeliveryReturnedToSender, DeliveryOutForDelivery}
	case DeliveryOnHold:
		return []DeliveryStatus{
			DeliveryOutForPickup, DeliveryPickedUp, DeliveryAtWarehouse,
			DeliveryInTransit, DeliveryOutForDelivery, DeliveryCancelled,
		}
	case DeliveryFailed:
		return []DeliveryStatus{
			DeliveryOutForPickup, DeliveryPickedUp, DeliveryInTransit,
			DeliveryOutForDelivery, DeliveryReturned, DeliveryCancelled,
		}
	case DeliveryReturnedToSender, DeliveryDelivered, DeliveryCancelled:
		return []DeliveryStatus{}
	default:
		return nil
	}
}

// CanTransition reports whether target is reachable from s in one step.
func (s DeliveryStatus) CanTransition(target DeliveryStatus) bool {
	for _, n := range s.Next() {
		if n == target {
			return true
		}
	}
	return false
}

// Terminal reports whether s has no outgoing transitions.
func (s DeliveryStatus) Terminal() bool {
	next := s.Next()
	return next != nil && len(next) == 0
}

// Valid checks if the DeliveryStatus is one of the known statuses.
func (s DeliveryStatus) Valid() bool {
	return s.Next() != nil
}

// List of possible courier statuses
const (
	CourierAvailable CourierStatus = "available"
	CourierBusy      CourierStatus = "busy"
	CourierOffline   CourierStatus = "offline"
)

// List of possible courier transport types
const (
	TransportTypeFoot    CourierTransportType = "on_foot"
	TransportTypeScooter CourierTransportType = "scooter"
	TransportTypeCar     CourierTransportType = "car"
)

var allowedCourierStatuses = [...]CourierStatus{
	CourierAvailable, CourierBusy, CourierOffline,
}

var allowedTransportTypes = [...]CourierTransportType{
	TransportTypeFoot, TransportTypeScooter, TransportTypeCar,
}

// Valid checks if the CourierStatus is valid
func (s CourierStatus) Valid() bool {
	for _, v := range allowedCourierStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Valid checks if the CourierTransportType is valid
func (t CourierTransportType) Valid() bool {
	for _, v := range allowedTransportTypes {
		if t == v {
			return true
		}
	}
	return false
}

// rePhone is a regex to validate phone numbers
var rePhone = regexp.MustCompile(`^\+[0-9]{11}$`)

// ValidatePhone validates the phone number format
func ValidatePhone(s string) bool {
	return rePhone.MatchString(s)
}
