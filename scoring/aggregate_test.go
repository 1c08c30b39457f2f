package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAggregateJudgeScore(t *testing.T) {
	tests := []struct {
		name   string
		totals []int
		method Method
		want   float64
	}{
		{"no submissions", nil, MethodTrimmed, 0},
		{"avg", []int{70, 80, 90}, MethodAvg, 80},
		{"sum", []int{70, 80, 90}, MethodSum, 240},
		{"trimmed falls back to mean below three", []int{80, 90}, MethodTrimmed, 85},
		{"trimmed single value", []int{77}, MethodTrimmed, 77},
		{"trimmed drops one min and one max", []int{70, 80, 90, 100}, MethodTrimmed, 85},
		{"trimmed with three values", []int{10, 50, 90}, MethodTrimmed, 50},
		{"trimmed drops only one duplicate", []int{80, 80, 80, 90}, MethodTrimmed, 80},
		{"trimmed duplicate extremes", []int{60, 60, 90, 90}, MethodTrimmed, 75},
		{"unknown method is avg", []int{70, 80}, Method("median"), 75},
		{"empty method is avg", []int{70, 81}, "", 75.5},
		{"repeating decimal", []int{1, 2, 2}, MethodAvg, 1.67},
		{"rounds down below half", []int{0, 0, 1}, MethodAvg, 0.33},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, AggregateJudgeScore(tc.totals, tc.method))
		})
	}
}

func TestAggregateJudgeScore_HalfAwayFromZero(t *testing.T) {
	t.Run("Happy path - .xx5 rounds up", func(t *testing.T) {
		// 641 / 8 = 80.125
		totals := []int{80, 80, 80, 80, 80, 80, 80, 81}
		assert.Equal(t, 80.13, AggregateJudgeScore(totals, MethodAvg))
	})

	t.Run("Happy path - .xx5 below one", func(t *testing.T) {
		// 1 / 8 = 0.125
		totals := []int{1, 0, 0, 0, 0, 0, 0, 0}
		assert.Equal(t, 0.13, AggregateJudgeScore(totals, MethodAvg))
	})

	t.Run("Happy path - trimmed .xx5", func(t *testing.T) {
		// drop 0 and 100, 321 / 8 = 40.125
		totals := []int{0, 40, 40, 40, 40, 40, 40, 40, 41, 100}
		assert.Equal(t, 40.13, AggregateJudgeScore(totals, MethodTrimmed))
	})
}

func TestAggregateJudgeScore_OrderIndependent(t *testing.T) {
	base := []int{55, 91, 60, 78, 78, 100, 3}
	perms := [][]int{
		base,
		{3, 55, 60, 78, 78, 91, 100},
		{100, 91, 78, 78, 60, 55, 3},
		{78, 3, 100, 55, 78, 91, 60},
	}

	for _, m := range []Method{MethodAvg, MethodTrimmed, MethodSum} {
		want := AggregateJudgeScore(base, m)
		for _, p := range perms {
			assert.Equal(t, want, AggregateJudgeScore(p, m), "method %s perm %v", m, p)
		}
	}
}

func TestAggregateJudgeScore_DoesNotMutateInput(t *testing.T) {
	totals := []int{90, 10, 50}
	AggregateJudgeScore(totals, MethodTrimmed)
	assert.Equal(t, []int{90, 10, 50}, totals)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 1.01, Round2(1.005))
	assert.Equal(t, -1.01, Round2(-1.005))
	assert.Equal(t, 2.68, Round2(2.675))
	assert.Equal(t, 85.0, Round2(85))
	assert.Equal(t, 0.0, Round2(0.004))
	assert.Equal(t, 12.35, Round2(12.3456))
}
