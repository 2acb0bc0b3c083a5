package utils

import "math"

// ContainsString returns true iff the provided string slice hay contains string
// needle.
func ContainsString(hay []string, needle string) bool {
	for _, str := range hay {
		if str == needle {
			return true
		}
	}
	return false
}

// SignedPow raises |x| to exp and puts x's sign back. 0 stays 0.
func SignedPow(x, exp float64) float64 {
	if x == 0 {
		return 0
	}
	return math.Copysign(math.Pow(math.Abs(x), exp), x)
}

// IsFinite is false for NaN and both infinities.
func IsFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
