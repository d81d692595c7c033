package util

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAsInt32FromInt64(t *testing.T) {
	tests := []struct {
		name string
		in   int64
		want int32
	}{
		{name: "zero", in: 0, want: 0},
		{name: "positive", in: 42, want: 42},
		{name: "negative", in: -42, want: -42},
		{name: "max", in: math.MaxInt32, want: math.MaxInt32},
		{name: "overflow", in: math.MaxInt32 + 1, want: math.MaxInt32},
		{name: "underflow", in: math.MinInt32 - 1, want: math.MinInt32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, AsInt32FromInt64(tt.in))
		})
	}
}

func TestDurationSeconds(t *testing.T) {
	require.Equal(t, int32(0), DurationSeconds(0))
	require.Equal(t, int32(0), DurationSeconds(-time.Second))
	require.Equal(t, int32(1), DurationSeconds(200*time.Millisecond))
	require.Equal(t, int32(3), DurationSeconds(3*time.Second))
	require.Equal(t, int32(4), DurationSeconds(3500*time.Millisecond))
	require.Equal(t, int32(math.MaxInt32), DurationSeconds(time.Duration(math.MaxInt64)))
}
