// Package options computes Black-Scholes quantities of options quoted by
// log-forward moneyness, normalized by the current index level.
package options

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Greeks of one option quote
type Greeks struct {
	Moneyness float64
	Delta     float64
	Vega      float64
}

// Moneyness is the log-forward moneyness log(K/S) - r*T
func Moneyness(price, strike, riskfree, maturity float64) float64 {
	return math.Log(strike/price) - riskfree*maturity
}

// d1 in terms of log-forward moneyness. Non-positive volatility or maturity
// yields NaN.
func d1(moneyness, maturity, vol float64) float64 {
	if vol <= 0 || maturity <= 0 {
		return math.NaN()
	}
	s := vol * math.Sqrt(maturity)
	return -moneyness/s + s/2
}

// Delta is N(d1) for calls and N(d1)-1 for puts
func Delta(moneyness, maturity, vol float64, call bool) float64 {
	d := distuv.UnitNormal.CDF(d1(moneyness, maturity, vol))
	if call {
		return d
	}
	return d - 1
}

// Vega is the sensitivity to volatility per unit of price, phi(d1)*sqrt(T)
func Vega(moneyness, maturity, vol float64) float64 {
	return distuv.UnitNormal.Prob(d1(moneyness, maturity, vol)) * math.Sqrt(maturity)
}

// Compute returns moneyness, delta and vega of one quote
func Compute(price, strike, riskfree, maturity, vol float64, call bool) Greeks {
	m := Moneyness(price, strike, riskfree, maturity)
	return Greeks{
		Moneyness: m,
		Delta:     Delta(m, maturity, vol, call),
		Vega:      Vega(m, maturity, vol),
	}
}

// OutOfTheMoney reports whether a quote is out of the money in forward
// terms: calls at or above the forward, puts below it
func OutOfTheMoney(moneyness float64, call bool) bool {
	if call {
		return moneyness >= 0
	}
	return moneyness < 0
}
