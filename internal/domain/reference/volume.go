package reference

import (
	"fmt"

	"github.com/shopspring/decimal"

	"millstock/internal/core/apperror"
	"millstock/internal/core/types"
)

var hundred = decimal.NewFromInt(100)

// Reading is one tank dip: oil level and temperature.
type Reading struct {
	Tank        int             `json:"tank"`
	LevelCm     decimal.Decimal `json:"levelCm"`
	Temperature decimal.Decimal `json:"temperature"`
}

// TankVolume is the computed content of one tank.
type TankVolume struct {
	Tank        int             `json:"tank"`
	Density     decimal.Decimal `json:"density"`
	VolumePerCm decimal.Decimal `json:"volumePerCm"`
	Tons        types.Quantity  `json:"tons"`
}

// VolumeResult is the outcome of CPOVolume.
type VolumeResult struct {
	Tanks []TankVolume   `json:"tanks"`
	Total types.Quantity `json:"total"`
}

// CPOVolume converts tank dips into tons of CPO.
//
//	volume_per_cm = (volume_m3 × density) / (height_m × 100)
//	tank_tons     = volume_per_cm × level_cm
//
// Readings without a level contribute nothing. A reading for a tank missing
// from the table is rejected with UNKNOWN_TANK.
func (t Tables) CPOVolume(readings []Reading) (VolumeResult, error) {
	if len(readings) > MaxTanks {
		return VolumeResult{}, apperror.NewValidation(fmt.Sprintf("at most %d tank readings are allowed", MaxTanks))
	}

	res := VolumeResult{Tanks: make([]TankVolume, 0, len(readings))}
	for _, r := range readings {
		tank, ok := t.Tank(r.Tank)
		if !ok {
			return VolumeResult{}, apperror.NewBusinessRule(apperror.CodeUnknownTank,
				fmt.Sprintf("tank %d is not in the tank table", r.Tank)).
				WithDetail("tank", r.Tank)
		}
		if r.LevelCm.IsNegative() {
			return VolumeResult{}, apperror.NewValidation("tank level must not be negative").
				WithDetail("tank", r.Tank)
		}

		density := t.DensityAt(r.Temperature)
		perCm := tank.VolumeM3.Mul(density).Div(tank.HeightM.Mul(hundred))
		tons := types.NewQuantityFromDecimal(perCm.Mul(r.LevelCm))

		res.Tanks = append(res.Tanks, TankVolume{
			Tank:        r.Tank,
			Density:     density,
			VolumePerCm: perCm.Round(6),
			Tons:        tons,
		})
		res.Total += tons
	}
	return res, nil
}

// SiloQuantity returns capacity_ton × level_pct / 100 for the silo of code.
// The silo must exist and be of the expected kind.
func (t Tables) SiloQuantity(code string, kind SiloKind, levelPct decimal.Decimal) (types.Quantity, error) {
	silo, ok := t.Silo(code)
	if !ok {
		return 0, apperror.NewBusinessRule(apperror.CodeUnknownSilo,
			fmt.Sprintf("silo %q is not in the silo table", code)).
			WithDetail("code", code)
	}
	if silo.Kind != kind {
		return 0, apperror.NewBusinessRule(apperror.CodeUnknownSilo,
			fmt.Sprintf("silo %q is a %s silo, not %s", code, silo.Kind, kind)).
			WithDetail("code", code)
	}
	if levelPct.IsNegative() || levelPct.GreaterThan(hundred) {
		return 0, apperror.NewValidation("silo level must be between 0 and 100").
			WithDetail("code", code)
	}
	return types.NewQuantityFromDecimal(silo.CapacityTon.Mul(levelPct).Div(hundred)), nil
}
