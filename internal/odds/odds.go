// Package odds holds the pure 1X2 odds math: averaging bookmaker quotes
// and stripping the overround to get fair probabilities.
package odds

import (
	"errors"
	"fmt"
)

// ErrNoOdds is returned when a match has no bookmaker quotes at all.
var ErrNoOdds = errors.New("no odds available")

// Triple is one set of home/draw/away values, either decimal odds or
// probabilities depending on context.
type Triple struct {
	Home float64
	Draw float64
	Away float64
}

// Implied converts decimal odds to fair probabilities by taking 1/odds
// per outcome and normalizing by the sum, which removes the bookmaker's
// margin. The result is non-negative and sums to 1.
func Implied(quote Triple) (Triple, error) {
	if quote.Home <= 0 || quote.Draw <= 0 || quote.Away <= 0 {
		return Triple{}, fmt.Errorf("odds must be positive, got %.3f/%.3f/%.3f",
			quote.Home, quote.Draw, quote.Away)
	}
	rawHome := 1 / quote.Home
	rawDraw := 1 / quote.Draw
	rawAway := 1 / quote.Away
	total := rawHome + rawDraw + rawAway
	return Triple{
		Home: rawHome / total,
		Draw: rawDraw / total,
		Away: rawAway / total,
	}, nil
}

// Average returns the arithmetic mean of the quotes per outcome.
func Average(quotes []Triple) (Triple, error) {
	if len(quotes) == 0 {
		return Triple{}, ErrNoOdds
	}
	var sum Triple
	for _, q := range quotes {
		sum.Home += q.Home
		sum.Draw += q.Draw
		sum.Away += q.Away
	}
	n := float64(len(quotes))
	return Triple{Home: sum.Home / n, Draw: sum.Draw / n, Away: sum.Away / n}, nil
}
