package handlers

import (
	"fmt"
	"time"

	"parcel-service/internal/apperr"
	"parcel-service/internal/domain"
)

func (in inputsDTO) toModel() (domain.PricingInputs, error) {
	date, err := time.Parse(domain.DateLayout, in.PickupDate)
	if err != nil {
		return domain.PricingInputs{}, fmt.Errorf("%w: pickup_date: %v", apperr.ErrInvalid, err)
	}
	tod, err := domain.ParseTimeOfDay(in.PickupTime)
	if err != nil {
		return domain.PricingInputs{}, fmt.Errorf("%w: pickup_time: %v", apperr.ErrInvalid, err)
	}
	return domain.PricingInputs{
		DeliveryType:    domain.DeliveryType(in.DeliveryType),
		PackageWeightKg: in.PackageWeightKg,
		DistanceKm:      in.DistanceKm,
		LengthCm:        in.LengthCm,
		WidthCm:         in.WidthCm,
		HeightCm:        in.HeightCm,
		DeclaredValue:   in.DeclaredValue,
		PickupDate:      date,
		PickupTime:      tod,
		IsUrgent:        in.IsUrgent,
	}, nil
}

func inputsToResponse(in domain.PricingInputs) inputsDTO {
	return inputsDTO{
		DeliveryType:    string(in.DeliveryType),
		PackageWeightKg: in.PackageWeightKg,
		DistanceKm:      in.DistanceKm,
		LengthCm:        in.LengthCm,
		WidthCm:         in.WidthCm,
		HeightCm:        in.HeightCm,
		DeclaredValue:   in.DeclaredValue,
		PickupDate:      in.PickupDate.Format(domain.DateLayout),
		PickupTime:      in.PickupTime.String(),
		IsUrgent:        in.IsUrgent,
	}
}

func (r transitionRequest) toModel() (domain.DeliveryStatus, domain.TransitionNote) {
	return domain.DeliveryStatus(r.Status), domain.TransitionNote{Location: r.Location, Notes: r.Notes}
}

func deliveryToResponse(d *domain.Delivery) deliveryDTO {
	return deliveryDTO{
		ID:               d.ID,
		TrackingNumber:   d.TrackingNumber,
		Status:           d.Status,
		CourierID:        d.CourierID,
		Inputs:           inputsToResponse(d.Inputs),
		PricingBreakdown: d.Breakdown,
		PricingVersion:   d.PricingVersion,
		PaymentStatus:    d.PaymentStatus,
		Version:          d.Version,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
}

func assignResultToResponse(res domain.AssignResult) assignResultDTO {
	return assignResultDTO{
		Delivery:    deliveryToResponse(res.Delivery),
		Courier:     res.Courier,
		Policy:      res.Policy,
		Reconfirmed: res.Reconfirmed,
		Warning:     res.Warning,
	}
}

func eventsToResponse(deliveryID int64, evs []domain.TrackingEvent) eventsResponse {
	out := eventsResponse{DeliveryID: deliveryID, Events: make([]trackingEventDTO, 0, len(evs))}
	for _, ev := range evs {
		out.Events = append(out.Events, trackingEventDTO{
			ID:        ev.ID,
			Status:    ev.Status,
			Location:  ev.Location,
			Notes:     ev.Notes,
			Timestamp: ev.Timestamp,
		})
	}
	return out
}
