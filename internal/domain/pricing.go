package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire and storage format of calendar dates.
const DateLayout = "2006-01-02"

type (
	// DeliveryType is a service level such as standard or express.
	DeliveryType string
	// WeightBracket is a weight range with its own per-kg rate.
	WeightBracket string
)

// Weight brackets. Lower bound inclusive, upper bound exclusive; 20+ is open-ended.
const (
	Bracket0To5   WeightBracket = "0-5"
	Bracket5To10  WeightBracket = "5-10"
	Bracket10To20 WeightBracket = "10-20"
	Bracket20Plus WeightBracket = "20+"
)

// TimeOfDay is a wall-clock time expressed in minutes since midnight.
type TimeOfDay int

// ParseTimeOfDay parses "15:04" into a TimeOfDay.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("time of day %q: expected HH:MM", s)
	}
	hh, err := strconv.Atoi(h)
	if err != nil || hh < 0 || hh > 23 {
		return 0, fmt.Errorf("time of day %q: bad hour", s)
	}
	mm, err := strconv.Atoi(m)
	if err != nil || mm < 0 || mm > 59 {
		return 0, fmt.Errorf("time of day %q: bad minute", s)
	}
	return TimeOfDay(hh*60 + mm), nil
}

// String formats t as HH:MM.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// MarshalText implements encoding.TextMarshaler.
func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *TimeOfDay) UnmarshalText(b []byte) error {
	v, err := ParseTimeOfDay(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// PeakWindow is a half-open [Start, End) interval of the day. A window whose
// End is before its Start wraps past midnight.
type PeakWindow struct {
	Start TimeOfDay `json:"start"`
	End   TimeOfDay `json:"end"`
}

// Contains reports whether t falls inside the window.
func (w PeakWindow) Contains(t TimeOfDay) bool {
	if w.Start <= w.End {
		return t >= w.Start && t < w.End
	}
	return t >= w.Start || t < w.End
}

// SurchargeRates are proportional add-ons applied to the subtotal.
type SurchargeRates struct {
	Fuel     decimal.Decimal `json:"fuel"`
	PeakHour decimal.Decimal `json:"peak_hour"`
	Weekend  decimal.Decimal `json:"weekend"`
	Holiday  decimal.Decimal `json:"holiday"`
	Urgent   decimal.Decimal `json:"urgent"`
}

// PricingConfig is a versioned set of rates. A config is immutable once any
// quote references its version; new rates are published as a new version.
type PricingConfig struct {
	ID                      int64                             `json:"id"`
	Version                 string                            `json:"version"`
	IsActive                bool                              `json:"is_active"`
	BaseRates               map[DeliveryType]decimal.Decimal  `json:"base_rates"`
	DistanceRatePerKm       decimal.Decimal                   `json:"distance_rate_per_km"`
	WeightRates             map[WeightBracket]decimal.Decimal `json:"weight_rates"`
	SizeRatePerCubicCm      decimal.Decimal                   `json:"size_rate_per_cubic_cm"`
	DeliveryTypeMultipliers map[DeliveryType]decimal.Decimal  `json:"delivery_type_multipliers"`
	Surcharges              SurchargeRates                    `json:"surcharges"`
	PeakHours               []PeakWindow                      `json:"peak_hours"`
	Holidays                []string                          `json:"holidays"`
	InsuranceRate           decimal.Decimal                   `json:"insurance_rate"`
	MinimumCharge           decimal.Decimal                   `json:"minimum_charge"`
	DecimalPlaces           int32                             `json:"decimal_places"`
}

// IsHoliday reports whether the calendar date of d is listed in the config.
func (c *PricingConfig) IsHoliday(d time.Time) bool {
	day := d.Format(DateLayout)
	for _, h := range c.Holidays {
		if h == day {
			return true
		}
	}
	return false
}

// InPeakHours reports whether t falls into any configured peak window.
func (c *PricingConfig) InPeakHours(t TimeOfDay) bool {
	for _, w := range c.PeakHours {
		if w.Contains(t) {
			return true
		}
	}
	return false
}

// PricingInputs are the delivery attributes a quote is computed from.
type PricingInputs struct {
	DeliveryType    DeliveryType     `json:"delivery_type"`
	PackageWeightKg decimal.Decimal  `json:"package_weight_kg"`
	DistanceKm      decimal.Decimal  `json:"distance_km"`
	LengthCm        *decimal.Decimal `json:"length_cm,omitempty"`
	WidthCm         *decimal.Decimal `json:"width_cm,omitempty"`
	HeightCm        *decimal.Decimal `json:"height_cm,omitempty"`
	DeclaredValue   *decimal.Decimal `json:"declared_value,omitempty"`
	PickupDate      time.Time        `json:"pickup_date"`
	PickupTime      TimeOfDay        `json:"pickup_time"`
	IsUrgent        bool             `json:"is_urgent"`
}

// PricingBreakdown is the itemised result of one pricing computation.
// It is a value object: once attached to a delivery it is never mutated.
type PricingBreakdown struct {
	BaseRate               decimal.Decimal `json:"base_rate"`
	DistanceRate           decimal.Decimal `json:"distance_rate"`
	WeightBracket          WeightBracket   `json:"weight_bracket"`
	WeightRate             decimal.Decimal `json:"weight_rate"`
	VolumeCm3              decimal.Decimal `json:"volume_cm3"`
	SizeRate               decimal.Decimal `json:"size_rate"`
	DeliveryTypeMultiplier decimal.Decimal `json:"delivery_type_multiplier"`
	Subtotal               decimal.Decimal `json:"subtotal"`
	FuelSurcharge          decimal.Decimal `json:"fuel_surcharge"`
	PeakHourSurcharge      decimal.Decimal `json:"peak_hour_surcharge"`
	WeekendSurcharge       decimal.Decimal `json:"weekend_surcharge"`
	HolidaySurcharge       decimal.Decimal `json:"holiday_surcharge"`
	UrgentSurcharge        decimal.Decimal `json:"urgent_surcharge"`
	InsuranceCost          decimal.Decimal `json:"insurance_cost"`
	RawTotal               decimal.Decimal `json:"raw_total"`
	MinimumCharge          decimal.Decimal `json:"minimum_charge"`
	MinimumChargeApplied   bool            `json:"minimum_charge_applied"`
	EstimatedCost          decimal.Decimal `json:"estimated_cost"`
	PricingVersion         string          `json:"pricing_version"`
}

// Surcharges returns the sum of all surcharge components.
func (b PricingBreakdown) Surcharges() decimal.Decimal {
	return decimal.Sum(
		b.FuelSurcharge,
		b.PeakHourSurcharge,
		b.WeekendSurcharge,
		b.HolidaySurcharge,
		b.UrgentSurcharge,
	)
}
