package reference

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"millstock/internal/core/apperror"
	"millstock/internal/core/types"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testTables() Tables {
	return Tables{
		Tanks: []Tank{
			{Number: 1, VolumeM3: dec("1000"), HeightM: dec("10")},
			{Number: 2, VolumeM3: dec("500"), HeightM: dec("5")},
		},
		Densities: []Density{
			{Temperature: 45, Density: dec("0.8900")},
		},
		Silos: []Silo{
			{Code: "N1", Kind: SiloNut, CapacityTon: dec("120")},
			{Code: "K1", Kind: SiloKernel, CapacityTon: dec("80")},
		},
	}
}

func TestCPOVolume(t *testing.T) {
	res, err := testTables().CPOVolume([]Reading{
		{Tank: 1, LevelCm: dec("500"), Temperature: dec("45.3")},
		{Tank: 2, LevelCm: dec("100"), Temperature: dec("60")},
	})
	require.NoError(t, err)
	require.Len(t, res.Tanks, 2)

	// 1000 × 0.89 / 1000 = 0.89 t/cm
	assert.Equal(t, types.MustQuantity("445"), res.Tanks[0].Tons)
	// 500 × 0.8841 / 500 = 0.8841 t/cm
	assert.True(t, res.Tanks[1].Density.Equal(DefaultDensity))
	assert.Equal(t, types.MustQuantity("88.41"), res.Tanks[1].Tons)
	assert.Equal(t, types.MustQuantity("533.41"), res.Total)
}

func TestCPOVolume_ZeroLevelContributesNothing(t *testing.T) {
	res, err := testTables().CPOVolume([]Reading{{Tank: 1, Temperature: dec("45")}})
	require.NoError(t, err)
	assert.True(t, res.Total.IsZero())
}

func TestCPOVolume_UnknownTank(t *testing.T) {
	_, err := testTables().CPOVolume([]Reading{{Tank: 9, LevelCm: dec("10")}})
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeUnknownTank, appErr.Code)
}

func TestCPOVolume_TooManyReadings(t *testing.T) {
	readings := make([]Reading, MaxTanks+1)
	_, err := testTables().CPOVolume(readings)
	assert.Error(t, err)
}

func TestSiloQuantity(t *testing.T) {
	tables := testTables()

	q, err := tables.SiloQuantity("N1", SiloNut, dec("50"))
	require.NoError(t, err)
	assert.Equal(t, types.MustQuantity("60"), q)

	_, err = tables.SiloQuantity("K1", SiloNut, dec("50"))
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeUnknownSilo, appErr.Code)

	_, err = tables.SiloQuantity("N1", SiloNut, dec("101"))
	assert.Error(t, err)
}

func TestDensityAt_RoundsToWholeDegree(t *testing.T) {
	tables := testTables()
	assert.True(t, tables.DensityAt(dec("44.5")).Equal(dec("0.89")))
	assert.True(t, tables.DensityAt(dec("44.4")).Equal(DefaultDensity))
}
