package scoring

import (
	"math"
	"math/big"
	"sort"
	"strconv"
)

// Method is the statistical method used to combine judge totals.
type Method string

const (
	MethodAvg     Method = "avg"
	MethodTrimmed Method = "trimmed"
	MethodSum     Method = "sum"
)

// Normalize maps unknown or empty methods to MethodAvg.
func (m Method) Normalize() Method {
	switch m {
	case MethodAvg, MethodTrimmed, MethodSum:
		return m
	default:
		return MethodAvg
	}
}

// AggregateJudgeScore combines the judge totals of one team. The result depends only
// on the multiset of totals and is rounded to two decimals, half away from zero.
// An empty slice yields 0.
func AggregateJudgeScore(totals []int, method Method) float64 {
	return ratToFloat(roundRat(aggregateRat(totals, method)))
}

func aggregateRat(totals []int, method Method) *big.Rat {
	n := len(totals)
	if n == 0 {
		return new(big.Rat)
	}

	sorted := append([]int(nil), totals...)
	sort.Ints(sorted)

	switch method.Normalize() {
	case MethodSum:
		return new(big.Rat).SetInt64(sumInts(sorted))
	case MethodTrimmed:
		if n >= 3 {
			// one instance of the minimum and one of the maximum
			inner := sorted[1 : n-1]
			return big.NewRat(sumInts(inner), int64(len(inner)))
		}
	}
	return big.NewRat(sumInts(sorted), int64(n))
}

func sumInts(xs []int) int64 {
	var s int64
	for _, x := range xs {
		s += int64(x)
	}
	return s
}

// Round2 rounds x to two decimals, half away from zero, on the shortest decimal
// representation of x. Round2(1.005) is 1.01.
func Round2(x float64) float64 {
	r, ok := floatToRat(x)
	if !ok {
		return x
	}
	return ratToFloat(roundRat(r))
}

// roundRat rounds r to a multiple of 1/100, ties away from zero.
func roundRat(r *big.Rat) *big.Rat {
	num := new(big.Int).Mul(r.Num(), big.NewInt(100))
	den := r.Denom()

	neg := num.Sign() < 0
	num.Abs(num)

	// q = floor((2|num| + den) / 2den)
	twice := new(big.Int).Lsh(num, 1)
	twice.Add(twice, den)
	q := twice.Quo(twice, new(big.Int).Lsh(den, 1))
	if neg {
		q.Neg(q)
	}
	return new(big.Rat).SetFrac(q, big.NewInt(100))
}

func floatToRat(x float64) (*big.Rat, bool) {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return nil, false
	}
	return new(big.Rat).SetString(strconv.FormatFloat(x, 'g', -1, 64))
}

func ratToFloat(r *big.Rat) float64 {
	f, _ := r.Float64()
	return f
}
