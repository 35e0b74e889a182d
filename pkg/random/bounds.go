// Bound intersection between a declared rule limit and a caller override
package random

// MinOf returns the more restrictive lower bound: the larger of the rule
// minimum and the override. Either may be nil; with neither, absMin is used.
func MinOf[T any](ruleMin, override *T, absMin T, compare func(a, b T) int) T {
	switch {
	case ruleMin == nil && override == nil:
		return absMin
	case ruleMin == nil:
		return *override
	case override == nil:
		return *ruleMin
	}
	if compare(*override, *ruleMin) > 0 {
		return *override
	}
	return *ruleMin
}

// MaxOf returns the more restrictive upper bound: the smaller of the rule
// maximum and the override. Either may be nil; with neither, absMax is used.
func MaxOf[T any](ruleMax, override *T, absMax T, compare func(a, b T) int) T {
	switch {
	case ruleMax == nil && override == nil:
		return absMax
	case ruleMax == nil:
		return *override
	case override == nil:
		return *ruleMax
	}
	if compare(*override, *ruleMax) < 0 {
		return *override
	}
	return *ruleMax
}
