package riskmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFilter(t *testing.T) {
	f, err := ParseFilter(" Orange ", "FIRE")
	require.NoError(t, err)
	assert.Equal(t, Filter{County: "orange", RiskType: RiskFire}, f)

	_, err = ParseFilter("kings", "")
	assert.ErrorIs(t, err, ErrUnknownCounty)

	_, err = ParseFilter("", "tornado")
	assert.ErrorIs(t, err, ErrUnknownRiskType)

	f, err = ParseFilter("", "")
	require.NoError(t, err)
	assert.Equal(t, Filter{}, f)
}

func TestParcels_FilterByCounty(t *testing.T) {
	all := Parcels(Filter{})
	assert.Len(t, all, len(parcels))

	got := Parcels(Filter{County: "riverside"})
	require.Len(t, got, 2)
	for _, p := range got {
		assert.Equal(t, "riverside", p.County)
	}
}

func TestParcels_OrderedByRisk(t *testing.T) {
	got := Parcels(Filter{RiskType: RiskFire})
	require.NotEmpty(t, got)
	assert.Equal(t, "SB-4002", got[0].ID)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Risks[RiskFire], got[i].Risks[RiskFire])
	}
}

func TestParcels_ReturnsCopies(t *testing.T) {
	got := Parcels(Filter{County: "orange"})
	got[0].Risks[RiskFlood] = 0
	again := Parcels(Filter{County: "orange"})
	assert.NotZero(t, again[0].Risks[RiskFlood])
}

func TestLevel(t *testing.T) {
	assert.Equal(t, "high", Level(70))
	assert.Equal(t, "medium", Level(40))
	assert.Equal(t, "low", Level(39))
}

func TestCountiesAndRiskTypes(t *testing.T) {
	assert.Len(t, Counties(), 4)
	assert.Equal(t, []RiskType{RiskFlood, RiskFire, RiskEarthquake, RiskMarket}, RiskTypes())
}
