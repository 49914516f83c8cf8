// Package pricing computes delivery quotes from a pricing config.
//
// Compute is a pure function: it reads no clock, performs no I/O and keeps no
// state, so identical inputs priced under the same config version always yield
// the same breakdown. All arithmetic is exact decimal arithmetic; only the
// final estimated cost is rounded.
package pricing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"parcel-service/internal/apperr"
	"parcel-service/internal/domain"
)

var (
	five   = decimal.NewFromInt(5)
	ten    = decimal.NewFromInt(10)
	twenty = decimal.NewFromInt(20)
)

// BracketFor returns the weight bracket containing weightKg.
// Lower bounds are inclusive: 5.0 belongs to 5-10, 10.0 to 10-20, 20.0 to 20+.
func BracketFor(weightKg decimal.Decimal) domain.WeightBracket {
	switch {
	case weightKg.LessThan(five):
		return domain.Bracket0To5
	case weightKg.LessThan(ten):
		return domain.Bracket5To10
	case weightKg.LessThan(twenty):
		return domain.Bracket10To20
	default:
		return domain.Bracket20Plus
	}
}

// Validate checks inputs against cfg without computing anything.
func Validate(in domain.PricingInputs, cfg *domain.PricingConfig) error {
	if cfg == nil {
		return fmt.Errorf("%w: pricing config is required", apperr.ErrInvalid)
	}
	if !in.PackageWeightKg.IsPositive() {
		return fmt.Errorf("%w: package_weight_kg must be > 0", apperr.ErrInvalid)
	}
	if in.DistanceKm.IsNegative() {
		return fmt.Errorf("%w: distance_km must be >= 0", apperr.ErrInvalid)
	}
	optional := []struct {
		name string
		v    *decimal.Decimal
	}{
		{"length_cm", in.LengthCm},
		{"width_cm", in.WidthCm},
		{"height_cm", in.HeightCm},
		{"declared_value", in.DeclaredValue},
	}
	for _, o := range optional {
		if o.v != nil && o.v.IsNegative() {
			return fmt.Errorf("%w: %s must be >= 0", apperr.ErrInvalid, o.name)
		}
	}
	if in.PickupTime < 0 || in.PickupTime >= 24*60 {
		return fmt.Errorf("%w: pickup_time out of range", apperr.ErrInvalid)
	}
	if _, ok := cfg.BaseRates[in.DeliveryType]; !ok {
		return fmt.Errorf("%w: no base rate for delivery type %q", apperr.ErrInvalid, in.DeliveryType)
	}
	if _, ok := cfg.DeliveryTypeMultipliers[in.DeliveryType]; !ok {
		return fmt.Errorf("%w: no multiplier for delivery type %q", apperr.ErrInvalid, in.DeliveryType)
	}
	bracket := BracketFor(in.PackageWeightKg)
	if _, ok := cfg.WeightRates[bracket]; !ok {
		return fmt.Errorf("%w: no weight rate for bracket %s", apperr.ErrInvalid, bracket)
	}
	if cfg.DecimalPlaces < 0 {
		return fmt.Errorf("%w: decimal_places must be >= 0", apperr.ErrInvalid)
	}
	return nil
}

// Compute prices a delivery under cfg. Inputs are validated first and no
// partial breakdown is returned on error.
func Compute(in domain.PricingInputs, cfg *domain.PricingConfig) (domain.PricingBreakdown, error) {
	if err := Validate(in, cfg); err != nil {
		return domain.PricingBreakdown{}, err
	}

	var b domain.PricingBreakdown
	b.PricingVersion = cfg.Version

	b.BaseRate = cfg.BaseRates[in.DeliveryType]
	b.DistanceRate = in.DistanceKm.Mul(cfg.DistanceRatePerKm)

	b.WeightBracket = BracketFor(in.PackageWeightKg)
	b.WeightRate = in.PackageWeightKg.Mul(cfg.WeightRates[b.WeightBracket])

	b.VolumeCm3 = volume(in)
	b.SizeRate = b.VolumeCm3.Mul(cfg.SizeRatePerCubicCm)

	b.DeliveryTypeMultiplier = cfg.DeliveryTypeMultipliers[in.DeliveryType]
	b.Subtotal = decimal.Sum(b.BaseRate, b.DistanceRate, b.WeightRate, b.SizeRate).
		Mul(b.DeliveryTypeMultiplier)

	zero := decimal.Zero
	b.FuelSurcharge = b.Subtotal.Mul(cfg.Surcharges.Fuel)
	b.PeakHourSurcharge = zero
	if cfg.InPeakHours(in.PickupTime) {
		b.PeakHourSurcharge = b.Subtotal.Mul(cfg.Surcharges.PeakHour)
	}
	b.WeekendSurcharge = zero
	if isWeekend(in.PickupDate) {
		b.WeekendSurcharge = b.Subtotal.Mul(cfg.Surcharges.Weekend)
	}
	b.HolidaySurcharge = zero
	if cfg.IsHoliday(in.PickupDate) {
		b.HolidaySurcharge = b.Subtotal.Mul(cfg.Surcharges.Holiday)
	}
	b.UrgentSurcharge = zero
	if in.IsUrgent {
		b.UrgentSurcharge = b.Subtotal.Mul(cfg.Surcharges.Urgent)
	}

	b.InsuranceCost = zero
	if in.DeclaredValue != nil {
		b.InsuranceCost = in.DeclaredValue.Mul(cfg.InsuranceRate)
	}

	b.RawTotal = decimal.Sum(b.Subtotal, b.Surcharges(), b.InsuranceCost)

	b.MinimumCharge = cfg.MinimumCharge
	total := b.RawTotal
	if total.LessThan(cfg.MinimumCharge) {
		total = cfg.MinimumCharge
		b.MinimumChargeApplied = true
	}
	b.EstimatedCost = total.Round(cfg.DecimalPlaces)
	// a minimum with more precision than decimal_places must not round below itself
	if b.EstimatedCost.LessThan(cfg.MinimumCharge) {
		b.EstimatedCost = cfg.MinimumCharge.RoundCeil(cfg.DecimalPlaces)
	}

	return b, nil
}

// volume is zero unless all three dimensions are present.
func volume(in domain.PricingInputs) decimal.Decimal {
	if in.LengthCm == nil || in.WidthCm == nil || in.HeightCm == nil {
		return decimal.Zero
	}
	return in.LengthCm.Mul(*in.WidthCm).Mul(*in.HeightCm)
}

func isWeekend(d time.Time) bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
