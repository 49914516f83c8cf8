package handlers

import (
	"context"

	"parcel-service/internal/domain"
	"parcel-service/internal/service/courier"
	"parcel-service/internal/service/delivery"
	"parcel-service/internal/service/pricing"
)

type deliveryUsecase interface {
	Create(ctx context.Context, in domain.PricingInputs) (*domain.Delivery, error)
	Get(ctx context.Context, id int64) (*domain.Delivery, error)
	SubmitTransition(ctx context.Context, id int64, target domain.DeliveryStatus, note domain.TransitionNote) (*domain.Delivery, error)
	AssignCourier(ctx context.Context, deliveryID, courierID int64) (domain.AssignResult, error)
	Events(ctx context.Context, id int64) ([]domain.TrackingEvent, error)
	VerifyQuote(ctx context.Context, id int64) (domain.QuoteCheck, error)
}

// NewDeliveryUsecase wires a delivery Service into a deliveryUsecase.
func NewDeliveryUsecase(svc *delivery.Service) deliveryUsecase {
	return svc
}

type pricingUsecase interface {
	Calculate(ctx context.Context, in domain.PricingInputs) (domain.PricingBreakdown, error)
	Active(ctx context.Context) (*domain.PricingConfig, error)
}

// NewPricingUsecase wires a pricing Service into a pricingUsecase.
func NewPricingUsecase(svc *pricing.Service) pricingUsecase {
	return svc
}

type courierUsecase interface {
	Get(ctx context.Context, id int64) (*domain.Courier, error)
}

// NewCourierUsecase wires a courier Service into a courierUsecase.
func NewCourierUsecase(svc *courier.Service) courierUsecase {
	return svc
}
