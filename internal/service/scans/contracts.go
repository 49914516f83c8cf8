package scans

import (
	"context"

	"parcel-service/internal/domain"
)

//go:generate mockgen -source=contracts.go -destination=scans_mocks_test.go -package=scans_test

// Transitioner applies a status transition to a delivery.
type Transitioner interface {
	SubmitTransition(ctx context.Context, id int64, target domain.DeliveryStatus, note domain.TransitionNote) (*domain.Delivery, error)
}

type counter interface {
	Inc()
}
