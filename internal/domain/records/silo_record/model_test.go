package silo_record

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"millstock/internal/core/apperror"
	"millstock/internal/core/types"
	"millstock/internal/domain/reference"
)

func tables() reference.Tables {
	return reference.Tables{Silos: []reference.Silo{
		{Code: "N1", Kind: reference.SiloNut, CapacityTon: decimal.NewFromInt(100)},
		{Code: "N2", Kind: reference.SiloNut, CapacityTon: decimal.NewFromInt(50)},
		{Code: "K1", Kind: reference.SiloKernel, CapacityTon: decimal.NewFromInt(80)},
	}}
}

func TestRecord_Derive(t *testing.T) {
	r := NewRecord(types.NewDate(2024, 7, 1))
	r.NutSilos = []SiloReading{
		{Code: "N1", LevelPct: decimal.NewFromInt(40)},
		{Code: "N2", LevelPct: decimal.NewFromInt(60)},
	}
	r.KernelSilos = []SiloReading{{Code: "K1", LevelPct: decimal.NewFromInt(25)}}
	r.KernelBunker = types.MustQuantity("3")
	r.KernelBagged = types.MustQuantity("1.5")

	require.NoError(t, r.Derive(tables()))

	assert.Equal(t, types.MustQuantity("40"), r.NutSilos[0].Tons)
	assert.Equal(t, types.MustQuantity("70"), r.NutTotal)
	assert.Equal(t, types.MustQuantity("50"), r.NutSiloLevel)
	assert.Equal(t, types.MustQuantity("20"), r.KernelSilo)
	assert.Equal(t, types.MustQuantity("24.5"), r.KernelTotal)
	assert.Equal(t, types.MustQuantity("25"), r.KernelSiloLevel)
}

func TestRecord_DeriveWithoutReadings(t *testing.T) {
	r := NewRecord(types.NewDate(2024, 7, 1))
	r.KernelBagged = types.MustQuantity("2")

	require.NoError(t, r.Derive(tables()))
	assert.True(t, r.NutTotal.IsZero())
	assert.Equal(t, types.MustQuantity("2"), r.KernelTotal)
}

func TestRecord_DeriveRejectsWrongSiloKind(t *testing.T) {
	r := NewRecord(types.NewDate(2024, 7, 1))
	r.NutSilos = []SiloReading{{Code: "K1", LevelPct: decimal.NewFromInt(10)}}

	err := r.Derive(tables())
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeUnknownSilo, appErr.Code)
}

func TestRecord_ValidateDuplicateSilo(t *testing.T) {
	r := NewRecord(types.NewDate(2024, 7, 1))
	r.NutSilos = []SiloReading{{Code: "N1"}, {Code: "N1"}}
	assert.Error(t, r.Validate(context.Background()))
}
