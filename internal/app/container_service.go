package app

import (
	"time"

	"go.uber.org/dig"

	"parcel-service/internal/assignment"
	"parcel-service/internal/config"
	"parcel-service/internal/jobs"
	"parcel-service/internal/logx"
	"parcel-service/internal/service/courier"
	"parcel-service/internal/service/delivery"
	pricingsvc "parcel-service/internal/service/pricing"
)

func registerService(container *dig.Container) error {
	return provideAll(container,
		newAssignmentPolicy,
		func(
			st *Storage,
			cache pricingsvc.ConfigCache,
			m *appMetrics,
			timeout time.Duration,
			logger logx.Logger,
		) *pricingsvc.Service {
			return pricingsvc.NewService(st.Pricing, cache, m.Pricing, timeout, logger)
		},
		func(
			st *Storage,
			pricer *pricingsvc.Service,
			policy assignment.Policy,
			m *appMetrics,
			timeout time.Duration,
			logger logx.Logger,
		) *delivery.Service {
			return delivery.NewDeliveryService(st.Tx, st.Events, pricer, policy, m.Lifecycle, timeout, logger)
		},
		func(st *Storage, timeout time.Duration) *courier.Service {
			return courier.NewService(st.Tx, timeout)
		},
		func(cfg *config.Config, svc *pricingsvc.Service, timeout time.Duration, logger logx.Logger) *jobs.PricingRefreshJob {
			return jobs.NewPricingRefreshJob(svc, cfg.Pricing.RefreshSpec, timeout, logger)
		},
	)
}

// newAssignmentPolicy resolves the courier assignment mode. A deployment that
// never chose one runs strict, and says so loudly.
func newAssignmentPolicy(cfg *config.Config, logger logx.Logger) (assignment.Policy, error) {
	mode, err := assignment.ParseMode(cfg.Assignment.Policy)
	if err != nil {
		return assignment.Policy{}, err
	}
	if !cfg.Assignment.Explicit {
		logger.Warn("courier assignment policy not configured, defaulting to strict",
			logx.String("event", "assignment_policy_defaulted"),
		)
	}
	logger.Info("courier assignment policy", logx.String("policy", string(mode)))
	return assignment.Policy{Mode: mode}, nil
}
