package analytics

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregate_ShortSeries(t *testing.T) {
	tests := []struct {
		name   string
		series []float64
	}{
		{name: "nil series", series: nil},
		{name: "empty series", series: []float64{}},
		{name: "single trade", series: []float64{42.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, Aggregate(tt.series))
		})
	}
}

func TestAggregate_PerTradeBuckets(t *testing.T) {
	series := []float64{100, 80, 150, 130, 200}
	wantPnL := []float64{100, -20, 70, -20, 70}

	bars := Aggregate(series)
	require.Len(t, bars, 5)

	for i, bar := range bars {
		assert.Equal(t, i, bar.DayIndex)
		assert.Equal(t, 1, bar.TradeCount)
		assert.InDelta(t, wantPnL[i], bar.PnL, 1e-9)
	}
	assert.InDelta(t, 200, bars[len(bars)-1].Cumulative, 1e-9)
}

func TestAggregate_BucketsLongSeries(t *testing.T) {
	tests := []struct {
		name     string
		length   int
		wantBars int
	}{
		{name: "exactly max bars", length: 30, wantBars: 30},
		{name: "one over max", length: 31, wantBars: 16},
		{name: "two per bucket", length: 60, wantBars: 30},
		{name: "uneven last bucket", length: 65, wantBars: 22},
		{name: "large series", length: 1000, wantBars: 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			series := make([]float64, tt.length)
			cum := 0.0
			for i := range series {
				cum += float64(i%7) - 3
				series[i] = cum
			}

			bars := Aggregate(series)
			require.Len(t, bars, tt.wantBars)
			assert.LessOrEqual(t, len(bars), MaxBars)

			totalTrades := 0
			for i, bar := range bars {
				assert.Equal(t, i, bar.DayIndex)
				totalTrades += bar.TradeCount
			}
			assert.Equal(t, tt.length, totalTrades)
			assert.InDelta(t, series[len(series)-1], bars[len(bars)-1].Cumulative, 1e-9)
		})
	}
}

func TestAggregate_PnLSumsToFinalCumulative(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for _, length := range []int{2, 5, 29, 30, 31, 97, 500} {
		series := make([]float64, length)
		cum := 0.0
		for i := range series {
			cum += rng.Float64()*200 - 100
			series[i] = cum
		}

		bars := Aggregate(series)
		require.NotEmpty(t, bars)

		var sum float64
		for _, bar := range bars {
			sum += bar.PnL
		}
		assert.InDelta(t, series[length-1], sum, 1e-6, "length %d", length)
	}
}

func TestAggregate_NegativeAndZeroValues(t *testing.T) {
	series := []float64{-50, -50, 0, -120}
	bars := Aggregate(series)
	require.Len(t, bars, 4)

	assert.InDelta(t, -50, bars[0].PnL, 1e-9)
	assert.InDelta(t, 0, bars[1].PnL, 1e-9)
	assert.InDelta(t, 50, bars[2].PnL, 1e-9)
	assert.InDelta(t, -120, bars[3].PnL, 1e-9)
	assert.InDelta(t, -120, bars[3].Cumulative, 1e-9)
}
