package handlers

import (
	"time"

	"github.com/shopspring/decimal"

	"parcel-service/internal/domain"
)

// inputsDTO is the wire form of domain.PricingInputs.
type inputsDTO struct {
	DeliveryType    string           `json:"delivery_type" validate:"required"`
	PackageWeightKg decimal.Decimal  `json:"package_weight_kg"`
	DistanceKm      decimal.Decimal  `json:"distance_km"`
	LengthCm        *decimal.Decimal `json:"length_cm,omitempty"`
	WidthCm         *decimal.Decimal `json:"width_cm,omitempty"`
	HeightCm        *decimal.Decimal `json:"height_cm,omitempty"`
	DeclaredValue   *decimal.Decimal `json:"declared_value,omitempty"`
	PickupDate      string           `json:"pickup_date" validate:"required,datetime=2006-01-02"`
	PickupTime      string           `json:"pickup_time" validate:"required,datetime=15:04"`
	IsUrgent        bool             `json:"is_urgent"`
}

type quoteRequest = inputsDTO

type createDeliveryRequest = inputsDTO

type transitionRequest struct {
	Status   string  `json:"status" validate:"required"`
	Location *string `json:"location,omitempty" validate:"omitempty,max=255"`
	Notes    *string `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

type assignCourierRequest struct {
	CourierID int64 `json:"courier_id" validate:"required,gt=0"`
}

type deliveryDTO struct {
	ID               int64                   `json:"id"`
	TrackingNumber   string                  `json:"tracking_number"`
	Status           domain.DeliveryStatus   `json:"status"`
	CourierID        *int64                  `json:"courier_id"`
	Inputs           inputsDTO               `json:"inputs"`
	PricingBreakdown domain.PricingBreakdown `json:"pricing_breakdown"`
	PricingVersion   string                  `json:"pricing_version"`
	PaymentStatus    domain.PaymentStatus    `json:"payment_status"`
	Version          int64                   `json:"version"`
	CreatedAt        time.Time               `json:"created_at"`
	UpdatedAt        time.Time               `json:"updated_at"`
}

type assignResultDTO struct {
	Delivery    deliveryDTO    `json:"delivery"`
	Courier     domain.Courier `json:"courier"`
	Policy      string         `json:"policy"`
	Reconfirmed bool           `json:"reconfirmed"`
	Warning     string         `json:"warning,omitempty"`
}

type trackingEventDTO struct {
	ID        int64                 `json:"id"`
	Status    domain.DeliveryStatus `json:"status"`
	Location  *string               `json:"location,omitempty"`
	Notes     *string               `json:"notes,omitempty"`
	Timestamp time.Time             `json:"timestamp"`
}

type eventsResponse struct {
	DeliveryID int64              `json:"delivery_id"`
	Events     []trackingEventDTO `json:"events"`
}
