package telemetry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestConfigApplyDefaults(t *testing.T) {
	tests := []struct {
		name      string
		in        Config
		wantRatio float64
		wantEvery time.Duration
	}{
		{name: "zero", in: Config{}, wantRatio: 1, wantEvery: 10 * time.Second},
		{name: "ratio above one", in: Config{SampleRatio: 2}, wantRatio: 1, wantEvery: 10 * time.Second},
		{name: "explicit", in: Config{SampleRatio: 0.25, ExportInterval: time.Minute}, wantRatio: 0.25, wantEvery: time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.in
			cfg.applyDefaults()
			require.InDelta(t, tt.wantRatio, cfg.SampleRatio, 1e-9)
			require.Equal(t, tt.wantEvery, cfg.ExportInterval)
		})
	}
}

func TestGetMetrics(t *testing.T) {
	m := GetMetrics()
	require.NotNil(t, m)
	require.Same(t, m, GetMetrics())
	require.NotNil(t, m.BehaviorGroupOperationsTotal)
	require.NotNil(t, m.LinksInsertedTotal)
	require.NotNil(t, m.ReconcileDuration)
	require.NotNil(t, Tracer())
}
