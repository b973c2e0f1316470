package odds

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImpliedRemovesMargin(t *testing.T) {
	tests := []struct {
		name  string
		quote Triple
	}{
		{"typical favourite", Triple{Home: 2.0, Draw: 3.5, Away: 4.0}},
		{"heavy margin", Triple{Home: 1.5, Draw: 3.0, Away: 5.0}},
		{"long shots", Triple{Home: 10.0, Draw: 6.5, Away: 1.25}},
		{"no margin at all", Triple{Home: 3.0, Draw: 3.0, Away: 3.0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Implied(tt.quote)
			require.NoError(t, err)

			sum := p.Home + p.Draw + p.Away
			assert.InDelta(t, 1.0, sum, 1e-6, "probabilities must sum to 1")
			assert.GreaterOrEqual(t, p.Home, 0.0)
			assert.GreaterOrEqual(t, p.Draw, 0.0)
			assert.GreaterOrEqual(t, p.Away, 0.0)
		})
	}
}

func TestImpliedKnownValues(t *testing.T) {
	// 2.0/3.5/4.0 carries roughly 3.6% overround; stripped probabilities
	// are the raw inverses divided by their sum.
	p, err := Implied(Triple{Home: 2.0, Draw: 3.5, Away: 4.0})
	require.NoError(t, err)

	assert.InDelta(t, 0.4923, p.Home, 0.0001)
	assert.InDelta(t, 0.2813, p.Draw, 0.0001)
	assert.InDelta(t, 0.2462, p.Away, 0.0001)
}

func TestImpliedRejectsNonPositiveOdds(t *testing.T) {
	for _, quote := range []Triple{
		{Home: 0, Draw: 3.5, Away: 4.0},
		{Home: 2.0, Draw: -1, Away: 4.0},
		{Home: 2.0, Draw: 3.5, Away: 0},
	} {
		_, err := Implied(quote)
		assert.Error(t, err)
	}
}

func TestAverage(t *testing.T) {
	avg, err := Average([]Triple{
		{Home: 2.0, Draw: 3.4, Away: 4.0},
		{Home: 2.2, Draw: 3.6, Away: 3.8},
	})
	require.NoError(t, err)

	assert.InDelta(t, 2.1, avg.Home, 1e-9)
	assert.InDelta(t, 3.5, avg.Draw, 1e-9)
	assert.InDelta(t, 3.9, avg.Away, 1e-9)
}

func TestAverageSingleQuoteIsIdentity(t *testing.T) {
	q := Triple{Home: 1.85, Draw: 3.6, Away: 4.2}
	avg, err := Average([]Triple{q})
	require.NoError(t, err)
	assert.Equal(t, q, avg)
}

func TestAverageEmpty(t *testing.T) {
	_, err := Average(nil)
	assert.ErrorIs(t, err, ErrNoOdds)
}

func TestImpliedSumStaysNormalizedForExtremeOdds(t *testing.T) {
	p, err := Implied(Triple{Home: 1.01, Draw: 34.0, Away: 101.0})
	require.NoError(t, err)
	assert.True(t, math.Abs(p.Home+p.Draw+p.Away-1.0) < 1e-6)
	assert.Greater(t, p.Home, p.Draw)
	assert.Greater(t, p.Draw, p.Away)
}
