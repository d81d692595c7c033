package util

import (
	"math"
	"time"
)

// AsInt32FromInt64 converts int64 to int32, clamping to the int32 range.
func AsInt32FromInt64(i int64) int32 {
	if i > math.MaxInt32 {
		return math.MaxInt32
	}
	if i < math.MinInt32 {
		return math.MinInt32
	}
	// #nosec G115 - bounded by explicit check
	return int32(i)
}

// DurationSeconds converts d to whole seconds for int32 config fields.
// Sub-second durations round up to one second so a configured timeout is
// never silently turned into "unset".
func DurationSeconds(d time.Duration) int32 {
	if d <= 0 {
		return 0
	}
	secs := int64(d / time.Second)
	if d%time.Second != 0 {
		secs++
	}
	return AsInt32FromInt64(secs)
}
