package domain

import "time"

// PaymentStatus is the billing state of a delivery. The lifecycle core stores it but never changes it.
type PaymentStatus string

// List of payment statuses
const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// Valid checks if the PaymentStatus is valid
func (p PaymentStatus) Valid() bool {
	switch p {
	case PaymentUnpaid, PaymentPaid, PaymentRefunded:
		return true
	default:
		return false
	}
}

// Delivery is a parcel shipment tracked from intake to terminal disposition.
//
// Status only changes through lifecycle.Apply and CourierID only through
// assignment.Policy. Breakdown and PricingVersion are a snapshot taken at
// creation and are never recomputed against a newer pricing config.
type Delivery struct {
	ID             int64            `json:"id"`
	TrackingNumber string           `json:"tracking_number"`
	Status         DeliveryStatus   `json:"status"`
	CourierID      *int64           `json:"courier_id,omitempty"`
	Inputs         PricingInputs    `json:"inputs"`
	Breakdown      PricingBreakdown `json:"pricing_breakdown"`
	PricingVersion string           `json:"pricing_version"`
	PaymentStatus  PaymentStatus    `json:"payment_status"`
	Version        int64            `json:"version"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// AssignedTo reports whether the delivery currently references the courier.
func (d *Delivery) AssignedTo(courierID int64) bool {
	return d.CourierID != nil && *d.CourierID == courierID
}

// AssignResult - struct representing the result of assigning a courier to a delivery.
// Policy echoes the assignment mode that made the decision.
type AssignResult struct {
	Delivery    *Delivery `json:"delivery"`
	Courier     Courier   `json:"courier"`
	Policy      string    `json:"policy"`
	Reconfirmed bool      `json:"reconfirmed"`
	Warning     string    `json:"warning,omitempty"`
}

// QuoteCheck is the result of re-pricing a delivery under its recorded pricing version.
type QuoteCheck struct {
	DeliveryID     int64            `json:"delivery_id"`
	PricingVersion string           `json:"pricing_version"`
	Matches        bool             `json:"matches"`
	Recorded       PricingBreakdown `json:"recorded"`
	Recomputed     PricingBreakdown `json:"recomputed"`
}
