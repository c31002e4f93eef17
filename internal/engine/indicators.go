package engine

// Pure indicator math over a rolling window snapshot. Every degenerate input
// (short history, zero denominators) maps to a defined neutral constant
// instead of an error: 0.0 momentum, 50.0 RSI, 1.0 volume ratio.

// momentum returns the percentage price change over the trailing lookback
// samples (1 sample ~= 1 second). Fewer than 2 samples, or a zero oldest
// price, yields 0.
func momentum(prices []float64, lookback int) float64 {
	if lookback > len(prices) {
		lookback = len(prices)
	}
	if lookback < 2 {
		return 0.0
	}
	sample := prices[len(prices)-lookback:]
	first := sample[0]
	if first == 0 {
		return 0.0
	}
	last := sample[len(sample)-1]
	return (last - first) / first * 100
}

// rsi is a simplified Relative Strength Index over the last rsiPeriod
// samples. Below the required history it returns the neutral midpoint 50.
func rsi(prices []float64) float64 {
	if len(prices) < rsiPeriod {
		return 50.0
	}
	sample := prices[len(prices)-rsiPeriod:]

	var gains, losses float64
	for i := 1; i < len(sample); i++ {
		delta := sample[i] - sample[i-1]
		if delta > 0 {
			gains += delta
		} else {
			losses -= delta
		}
	}
	avgGain := gains / rsiPeriod
	avgLoss := losses / rsiPeriod

	if avgLoss == 0 {
		if avgGain > 0 {
			return 100.0
		}
		return 50.0
	}
	rs := avgGain / avgLoss
	v := 100 - 100/(1+rs)
	if v < 0 {
		return 0.0
	}
	if v > 100 {
		return 100.0
	}
	return v
}

// volumeRatio contrasts the trailing short-window volume sum with half the
// trailing long-window sum. Values above 1 indicate a surge. Insufficient
// history or a zero baseline returns 1.
func volumeRatio(volumes []int64) float64 {
	if len(volumes) < volumeLongWindow {
		return 1.0
	}
	var recent, baseline int64
	long := volumes[len(volumes)-volumeLongWindow:]
	for _, v := range long {
		baseline += v
	}
	for _, v := range long[len(long)-volumeShortWindow:] {
		recent += v
	}
	avg := float64(baseline) / 2
	if avg == 0 {
		return 1.0
	}
	return float64(recent) / avg
}
