package planner

// DefaultSafetyBufferMinutes is the margin a rider needs at the stop before the bus arrives.
const DefaultSafetyBufferMinutes = 2.0

// CanCatch reports whether a rider walking for walkingMinutes reaches the stop
// at least safetyBufferMinutes before a bus arriving in busETAMinutes.
//
// This is a hard threshold, not a probability. A nil ETA means no upcoming bus
// and always yields false.
func CanCatch(walkingMinutes float64, busETAMinutes *float64, safetyBufferMinutes float64) bool {
	if busETAMinutes == nil {
		return false
	}
	return walkingMinutes < *busETAMinutes-safetyBufferMinutes
}
