//go:generate mockgen -source=contracts.go -destination=delivery_mocks_test.go -package=delivery_test

package delivery

import (
	"context"

	"parcel-service/internal/domain"
	"parcel-service/internal/ports/deliverytx"
)

// TxRepository is the repository visible inside a transaction.
type TxRepository = deliverytx.Repository

type deliveryRepository interface {
	WithTx(ctx context.Context, fn func(tx deliverytx.Repository) error) error
}

// Pricer quotes deliveries under the active or a recorded pricing version.
type Pricer interface {
	Calculate(ctx context.Context, in domain.PricingInputs) (domain.PricingBreakdown, error)
	CalculateAt(ctx context.Context, version string, in domain.PricingInputs) (domain.PricingBreakdown, error)
}
