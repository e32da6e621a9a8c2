package common

// InUnitInterval checks that p is a usable probability
func InUnitInterval(p float64) bool {
	return p >= 0 && p <= 1
}
