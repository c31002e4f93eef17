package engine

import (
	"math"
	"testing"

	"TickPulse/internal/domain/models"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestMomentum(t *testing.T) {
	if got := momentum(nil, 180); got != 0 {
		t.Fatalf("momentum(nil) = %v, want 0", got)
	}
	if got := momentum([]float64{100}, 180); got != 0 {
		t.Fatalf("momentum(1 sample) = %v, want 0", got)
	}
	if got := momentum([]float64{0, 105}, 180); got != 0 {
		t.Fatalf("momentum with zero base = %v, want 0", got)
	}

	prices := []float64{100, 101, 102}
	if got := momentum(prices, 180); !almostEqual(got, 2.0) {
		t.Fatalf("momentum = %v, want 2.0", got)
	}

	// lookback shorter than history uses only the trailing samples
	prices = []float64{50, 100, 110}
	if got := momentum(prices, 2); !almostEqual(got, 10.0) {
		t.Fatalf("trailing momentum = %v, want 10.0", got)
	}

	down := []float64{100, 90}
	if got := momentum(down, 180); !almostEqual(got, -10.0) {
		t.Fatalf("negative momentum = %v, want -10.0", got)
	}
}

func TestRSIBounds(t *testing.T) {
	short := make([]float64, rsiPeriod-1)
	for i := range short {
		short[i] = 100 + float64(i)
	}
	if got := rsi(short); got != 50.0 {
		t.Fatalf("rsi(short history) = %v, want 50", got)
	}

	up := make([]float64, rsiPeriod)
	for i := range up {
		up[i] = 100 + float64(i)
	}
	if got := rsi(up); got != 100.0 {
		t.Fatalf("rsi(monotonic up) = %v, want 100", got)
	}

	down := make([]float64, rsiPeriod)
	for i := range down {
		down[i] = 200 - float64(i)
	}
	if got := rsi(down); got != 0.0 {
		t.Fatalf("rsi(monotonic down) = %v, want 0", got)
	}

	flat := make([]float64, rsiPeriod)
	for i := range flat {
		flat[i] = 100
	}
	if got := rsi(flat); got != 50.0 {
		t.Fatalf("rsi(flat) = %v, want 50", got)
	}
}

func TestRSIBalanced(t *testing.T) {
	// equal gains and losses should land at the midpoint
	prices := make([]float64, rsiPeriod)
	prices[0] = 100
	for i := 1; i < len(prices); i++ {
		if i%2 == 1 {
			prices[i] = prices[i-1] + 1
		} else {
			prices[i] = prices[i-1] - 1
		}
	}
	got := rsi(prices)
	if got < 45 || got > 55 {
		t.Fatalf("rsi(balanced) = %v, want near 50", got)
	}
}

func TestVolumeRatio(t *testing.T) {
	short := make([]int64, volumeLongWindow-1)
	if got := volumeRatio(short); got != 1.0 {
		t.Fatalf("volumeRatio(short history) = %v, want 1", got)
	}

	zeros := make([]int64, volumeLongWindow)
	if got := volumeRatio(zeros); got != 1.0 {
		t.Fatalf("volumeRatio(all zero) = %v, want 1", got)
	}

	// uniform volume: recent 30 vs half of 60 equals exactly 1
	uniform := make([]int64, volumeLongWindow)
	for i := range uniform {
		uniform[i] = 100
	}
	if got := volumeRatio(uniform); !almostEqual(got, 1.0) {
		t.Fatalf("volumeRatio(uniform) = %v, want 1", got)
	}

	// surge in the short window
	surge := make([]int64, volumeLongWindow)
	for i := range surge {
		surge[i] = 100
		if i >= volumeLongWindow-volumeShortWindow {
			surge[i] = 1000
		}
	}
	got := volumeRatio(surge)
	if got <= volumeSurgeGate {
		t.Fatalf("volumeRatio(surge) = %v, want above %v", got, volumeSurgeGate)
	}
}

func TestDetermineDirection(t *testing.T) {
	cases := []struct {
		name              string
		m3, m5, m10, rsiV float64
		want              models.Direction
	}{
		{"long", 0.10, 0.08, 0.05, 55, models.Long},
		{"long blocked by rsi", 0.10, 0.08, 0.05, 75, models.Neutral},
		{"long blocked by m10", 0.10, 0.08, -0.01, 55, models.Neutral},
		{"short", -0.10, -0.08, -0.05, 45, models.Short},
		{"short blocked by rsi", -0.10, -0.08, -0.05, 25, models.Neutral},
		{"weak m3", 0.03, 0.08, 0.05, 55, models.Neutral},
		{"flat", 0, 0, 0, 50, models.Neutral},
	}
	for _, tc := range cases {
		got := determineDirection(tc.m3, tc.m5, tc.m10, tc.rsiV)
		if got != tc.want {
			t.Errorf("%s: determineDirection = %s, want %s", tc.name, got, tc.want)
		}
	}
}
