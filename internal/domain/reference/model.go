// Package reference holds the static mill tables (storage tanks, oil density by
// temperature, silos) and the volume calculations built on them.
package reference

import (
	"context"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"millstock/internal/core/apperror"
)

// DefaultDensity is used when the density table has no row for a temperature (t/m³).
var DefaultDensity = decimal.RequireFromString("0.8841")

// MaxTanks is the number of CPO storage tanks read each day.
const MaxTanks = 4

// Tank is a CPO storage tank.
type Tank struct {
	Number   int             `db:"number" json:"number"`
	VolumeM3 decimal.Decimal `db:"volume_m3" json:"volumeM3"`
	HeightM  decimal.Decimal `db:"height_m" json:"heightM"`
}

// Density is the CPO density at a whole-degree temperature.
type Density struct {
	Temperature int             `db:"temperature" json:"temperature"`
	Density     decimal.Decimal `db:"density" json:"density"`
}

// SiloKind tells nut silos from kernel silos.
type SiloKind string

const (
	SiloNut    SiloKind = "nut"
	SiloKernel SiloKind = "kernel"
)

// Silo is a nut or kernel storage silo.
type Silo struct {
	Code        string          `db:"code" json:"code"`
	Kind        SiloKind        `db:"kind" json:"kind"`
	CapacityTon decimal.Decimal `db:"capacity_ton" json:"capacityTon"`
}

// Validate checks a tank row.
func (t Tank) Validate(ctx context.Context) error {
	if t.Number <= 0 {
		return apperror.NewValidation("tank number must be positive").WithDetail("number", t.Number)
	}
	if !t.VolumeM3.IsPositive() {
		return apperror.NewValidation("tank volume must be positive").WithDetail("number", t.Number)
	}
	if !t.HeightM.IsPositive() {
		return apperror.NewValidation("tank height must be positive").WithDetail("number", t.Number)
	}
	return nil
}

// Validate checks a density row.
func (d Density) Validate(ctx context.Context) error {
	if !d.Density.IsPositive() {
		return apperror.NewValidation("density must be positive").WithDetail("temperature", d.Temperature)
	}
	return nil
}

// Validate checks a silo row.
func (s Silo) Validate(ctx context.Context) error {
	if s.Code == "" {
		return apperror.NewValidation("silo code is required")
	}
	if s.Kind != SiloNut && s.Kind != SiloKernel {
		return apperror.NewValidation(fmt.Sprintf("silo kind must be %q or %q", SiloNut, SiloKernel)).
			WithDetail("code", s.Code)
	}
	if !s.CapacityTon.IsPositive() {
		return apperror.NewValidation("silo capacity must be positive").WithDetail("code", s.Code)
	}
	return nil
}

// Tables is a consistent view of all reference tables.
type Tables struct {
	Tanks     []Tank
	Densities []Density
	Silos     []Silo
}

// Tank looks a tank up by number.
func (t Tables) Tank(number int) (Tank, bool) {
	i := slices.IndexFunc(t.Tanks, func(tank Tank) bool { return tank.Number == number })
	if i < 0 {
		return Tank{}, false
	}
	return t.Tanks[i], true
}

// Silo looks a silo up by code.
func (t Tables) Silo(code string) (Silo, bool) {
	i := slices.IndexFunc(t.Silos, func(s Silo) bool { return s.Code == code })
	if i < 0 {
		return Silo{}, false
	}
	return t.Silos[i], true
}

// DensityAt returns the density for temperature rounded to the nearest whole
// degree, or DefaultDensity when the table has no such row.
func (t Tables) DensityAt(temperature decimal.Decimal) decimal.Decimal {
	deg := int(temperature.Round(0).IntPart())
	for _, d := range t.Densities {
		if d.Temperature == deg {
			return d.Density
		}
	}
	return DefaultDensity
}

// validateUnique rejects duplicate keys in a replacement table.
func validateUnique[T any, K comparable](rows []T, key func(T) K, what string) error {
	seen := make(map[K]struct{}, len(rows))
	for _, r := range rows {
		k := key(r)
		if _, dup := seen[k]; dup {
			return apperror.NewValidation(fmt.Sprintf("duplicate %s", what)).WithDetail("key", k)
		}
		seen[k] = struct{}{}
	}
	return nil
}
