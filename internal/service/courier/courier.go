// Package courier exposes read access to couriers for operators.
package courier

import (
	"context"
	"fmt"
	"time"

	"parcel-service/internal/apperr"
	"parcel-service/internal/domain"
	"parcel-service/internal/ports/deliverytx"
)

// Service looks couriers up in the same store the assignment flow writes to.
type Service struct {
	repo             deliverytx.Runner
	operationTimeout time.Duration
}

// NewService creates a courier Service.
func NewService(r deliverytx.Runner, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Service{repo: r, operationTimeout: timeout}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

// Get returns a courier by id.
func (s *Service) Get(ctx context.Context, id int64) (*domain.Courier, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: courier id must be positive", apperr.ErrInvalid)
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var out *domain.Courier
	err := s.repo.WithTx(ctx, func(tx deliverytx.Repository) error {
		c, err := tx.GetCourier(ctx, id)
		if err != nil {
			return err
		}
		if c == nil {
			return fmt.Errorf("%w: courier %d", apperr.ErrNotFound, id)
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
