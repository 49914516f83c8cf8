package memory

import (
	"context"
	"fmt"
	"sync"

	"parcel-service/internal/apperr"
	"parcel-service/internal/domain"
)

// PricingStore holds immutable pricing configs keyed by version.
type PricingStore struct {
	mu     sync.RWMutex
	byVer  map[string]domain.PricingConfig
	active string
	nextID int64
}

// NewPricingStore creates an empty pricing store.
func NewPricingStore() *PricingStore {
	return &PricingStore{byVer: make(map[string]domain.PricingConfig)}
}

// Put stores a new version. An existing version is never overwritten. When
// cfg.IsActive is set the version becomes the active one.
func (s *PricingStore) Put(cfg domain.PricingConfig) error {
	if cfg.Version == "" {
		return fmt.Errorf("%w: pricing config version is required", apperr.ErrInvalid)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byVer[cfg.Version]; ok {
		return fmt.Errorf("%w: pricing version %s exists", apperr.ErrConflict, cfg.Version)
	}
	s.nextID++
	cfg.ID = s.nextID
	if cfg.IsActive {
		s.deactivate()
		s.active = cfg.Version
	}
	s.byVer[cfg.Version] = cfg
	return nil
}

// Activate marks version as the single active config.
func (s *PricingStore) Activate(ctx context.Context, version string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, ok := s.byVer[version]
	if !ok {
		return fmt.Errorf("%w: pricing version %s", apperr.ErrNotFound, version)
	}
	s.deactivate()
	cfg.IsActive = true
	s.byVer[version] = cfg
	s.active = version
	return nil
}

func (s *PricingStore) deactivate() {
	if s.active == "" {
		return
	}
	prev := s.byVer[s.active]
	prev.IsActive = false
	s.byVer[s.active] = prev
}

// Active returns the active config, or nil when none is active.
func (s *PricingStore) Active(ctx context.Context) (*domain.PricingConfig, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.active == "" {
		return nil, nil
	}
	cfg := s.byVer[s.active]
	return &cfg, nil
}

// ByVersion returns the config with the given version, or nil when unknown.
func (s *PricingStore) ByVersion(ctx context.Context, version string) (*domain.PricingConfig, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg, ok := s.byVer[version]
	if !ok {
		return nil, nil
	}
	return &cfg, nil
}
