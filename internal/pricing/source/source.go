// Package source loads pricing configs and couriers from a TOML seed file.
//
// Money and rate values are written as quoted decimal strings so they are
// parsed exactly:
//
//	[[pricing]]
//	version = "2025-01"
//	active = true
//	distance_rate_per_km = "5"
//	[pricing.base_rates]
//	standard = "50"
package source

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"

	"parcel-service/internal/domain"
)

// Seed is the content of a seed file.
type Seed struct {
	Pricing  []domain.PricingConfig
	Couriers []domain.Courier
}

type fileDTO struct {
	Pricing  []pricingDTO `toml:"pricing"`
	Couriers []courierDTO `toml:"couriers"`
}

type pricingDTO struct {
	Version            string              `toml:"version"`
	Active             bool                `toml:"active"`
	BaseRates          map[string]string   `toml:"base_rates"`
	DistanceRatePerKm  string              `toml:"distance_rate_per_km"`
	WeightRates        map[string]string   `toml:"weight_rates"`
	SizeRatePerCubicCm string              `toml:"size_rate_per_cubic_cm"`
	Multipliers        map[string]string   `toml:"delivery_type_multipliers"`
	Surcharges         surchargesDTO       `toml:"surcharges"`
	PeakHours          []domain.PeakWindow `toml:"peak_hours"`
	Holidays           []string            `toml:"holidays"`
	InsuranceRate      string              `toml:"insurance_rate"`
	MinimumCharge      string              `toml:"minimum_charge"`
	DecimalPlaces      int32               `toml:"decimal_places"`
}

type surchargesDTO struct {
	Fuel     string `toml:"fuel"`
	PeakHour string `toml:"peak_hour"`
	Weekend  string `toml:"weekend"`
	Holiday  string `toml:"holiday"`
	Urgent   string `toml:"urgent"`
}

type courierDTO struct {
	ID            int64  `toml:"id"`
	Name          string `toml:"name"`
	Phone         string `toml:"phone"`
	Status        string `toml:"status"`
	TransportType string `toml:"transport_type"`
}

// LoadFile reads and converts a seed file.
func LoadFile(path string) (Seed, error) {
	var f fileDTO
	md, err := toml.DecodeFile(path, &f)
	if err != nil {
		return Seed{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return convert(f, md)
}

// Decode reads a seed from r.
func Decode(r io.Reader) (Seed, error) {
	var f fileDTO
	md, err := toml.NewDecoder(r).Decode(&f)
	if err != nil {
		return Seed{}, fmt.Errorf("decode seed: %w", err)
	}
	return convert(f, md)
}

func convert(f fileDTO, md toml.MetaData) (Seed, error) {
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Seed{}, fmt.Errorf("unknown keys in seed: %v", undecoded)
	}

	var out Seed
	active := 0
	for i, p := range f.Pricing {
		cfg, err := p.toDomain()
		if err != nil {
			return Seed{}, fmt.Errorf("pricing[%d] %q: %w", i, p.Version, err)
		}
		if cfg.IsActive {
			active++
		}
		out.Pricing = append(out.Pricing, cfg)
	}
	if active > 1 {
		return Seed{}, fmt.Errorf("%d pricing versions marked active, want at most one", active)
	}

	for i, c := range f.Couriers {
		courier := domain.Courier{
			ID:            c.ID,
			Name:          c.Name,
			Phone:         c.Phone,
			Status:        domain.CourierStatus(c.Status),
			TransportType: domain.CourierTransportType(c.TransportType),
			Version:       1,
		}
		if courier.ID <= 0 || !courier.Status.Valid() || !courier.TransportType.Valid() || !domain.ValidatePhone(courier.Phone) {
			return Seed{}, fmt.Errorf("couriers[%d]: invalid courier %+v", i, c)
		}
		out.Couriers = append(out.Couriers, courier)
	}
	return out, nil
}

func (p pricingDTO) toDomain() (domain.PricingConfig, error) {
	if p.Version == "" {
		return domain.PricingConfig{}, fmt.Errorf("version is required")
	}
	if p.DecimalPlaces < 0 {
		return domain.PricingConfig{}, fmt.Errorf("decimal_places must be >= 0")
	}

	var errs []error
	dec := func(name, s string) decimal.Decimal {
		if s == "" {
			return decimal.Zero
		}
		v, err := decimal.NewFromString(s)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		} else if v.IsNegative() {
			errs = append(errs, fmt.Errorf("%s must be >= 0", name))
		}
		return v
	}

	cfg := domain.PricingConfig{
		Version:                 p.Version,
		IsActive:                p.Active,
		BaseRates:               make(map[domain.DeliveryType]decimal.Decimal, len(p.BaseRates)),
		DistanceRatePerKm:       dec("distance_rate_per_km", p.DistanceRatePerKm),
		WeightRates:             make(map[domain.WeightBracket]decimal.Decimal, len(p.WeightRates)),
		SizeRatePerCubicCm:      dec("size_rate_per_cubic_cm", p.SizeRatePerCubicCm),
		DeliveryTypeMultipliers: make(map[domain.DeliveryType]decimal.Decimal, len(p.Multipliers)),
		Surcharges: domain.SurchargeRates{
			Fuel:     dec("surcharges.fuel", p.Surcharges.Fuel),
			PeakHour: dec("surcharges.peak_hour", p.Surcharges.PeakHour),
			Weekend:  dec("surcharges.weekend", p.Surcharges.Weekend),
			Holiday:  dec("surcharges.holiday", p.Surcharges.Holiday),
			Urgent:   dec("surcharges.urgent", p.Surcharges.Urgent),
		},
		PeakHours:     p.PeakHours,
		Holidays:      p.Holidays,
		InsuranceRate: dec("insurance_rate", p.InsuranceRate),
		MinimumCharge: dec("minimum_charge", p.MinimumCharge),
		DecimalPlaces: p.DecimalPlaces,
	}
	for _, k := range sortedKeys(p.BaseRates) {
		cfg.BaseRates[domain.DeliveryType(k)] = dec("base_rates."+k, p.BaseRates[k])
	}
	for _, k := range sortedKeys(p.WeightRates) {
		b := domain.WeightBracket(k)
		switch b {
		case domain.Bracket0To5, domain.Bracket5To10, domain.Bracket10To20, domain.Bracket20Plus:
		default:
			errs = append(errs, fmt.Errorf("weight_rates: unknown bracket %q", k))
		}
		cfg.WeightRates[b] = dec("weight_rates."+k, p.WeightRates[k])
	}
	for _, k := range sortedKeys(p.Multipliers) {
		cfg.DeliveryTypeMultipliers[domain.DeliveryType(k)] = dec("delivery_type_multipliers."+k, p.Multipliers[k])
	}
	for _, h := range p.Holidays {
		if _, err := time.Parse(domain.DateLayout, h); err != nil {
			errs = append(errs, fmt.Errorf("holidays: %w", err))
		}
	}

	if len(errs) > 0 {
		return domain.PricingConfig{}, errs[0]
	}
	return cfg, nil
}

// sortedKeys keeps the first reported error stable across runs.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
