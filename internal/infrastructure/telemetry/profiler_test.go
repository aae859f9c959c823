package telemetry

import (
	"testing"

	"github.com/grafana/pyroscope-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewProfiler_Disabled(t *testing.T) {
	p, err := NewProfiler(ProfilerConfig{}, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, p.IsEnabled())
	assert.NoError(t, p.Stop())
	assert.NoError(t, p.Stop())
}

func TestNewProfiler_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  ProfilerConfig
	}{
		{"missing server", ProfilerConfig{Enabled: true, ApplicationName: "marketsync"}},
		{"missing application", ProfilerConfig{Enabled: true, ServerAddress: "http://pyroscope:4040"}},
		{"unknown profile type", ProfilerConfig{
			Enabled:         true,
			ServerAddress:   "http://pyroscope:4040",
			ApplicationName: "marketsync",
			ProfileTypes:    []string{"cpu", "wall"},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProfiler(tt.cfg, zap.NewNop())
			assert.Nil(t, p)
			assert.ErrorIs(t, err, ErrInvalidProfilerConfig)
		})
	}
}

func TestProfilerConfig_ProfileTypes(t *testing.T) {
	types, err := ProfilerConfig{}.profileTypes()
	require.NoError(t, err)
	assert.Contains(t, types, pyroscope.ProfileCPU)

	types, err = ProfilerConfig{ProfileTypes: []string{"goroutines", "mutex_count"}}.profileTypes()
	require.NoError(t, err)
	assert.Equal(t, []pyroscope.ProfileType{pyroscope.ProfileGoroutines, pyroscope.ProfileMutexCount}, types)
}
