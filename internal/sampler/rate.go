package sampler

// KiB converts bytes per second into the KB/s shown on network charts.
const KiB = 1024

// Rate returns the per-second change between two cumulative counter readings
// taken intervalSeconds apart. A counter that went backwards (interface reset,
// wraparound) yields a negative rate; callers decide whether to clamp it.
// A non-positive interval yields 0.
func Rate(current, previous uint64, intervalSeconds float64) float64 {
	if intervalSeconds <= 0 {
		return 0
	}
	return (float64(current) - float64(previous)) / intervalSeconds
}
