package observability

import (
	"context"
	"strings"
	"testing"

	"socialgate/internal/models"
	"socialgate/internal/version"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_MetricsOnly(t *testing.T) {
	metrics := models.MetricsConfig{
		Enabled: true,
		Path:    "/metrics",
		Port:    9090,
	}
	obs := models.ObservabilityConfig{
		ServiceName: "test-service",
		Tracing: models.TracingConfig{
			Enabled: false,
		},
	}

	provider, err := Setup(metrics, obs, version.Info{})
	require.NoError(t, err)
	require.NotNil(t, provider)
	assert.NotNil(t, provider.PrometheusExporter())
	assert.NotNil(t, provider.Registry())
	assert.Nil(t, provider.tracerProvider)

	err = provider.Shutdown(context.Background())
	assert.NoError(t, err)
}

func TestSetup_TracingStdout(t *testing.T) {
	metrics := models.MetricsConfig{
		Enabled: false,
	}
	obs := models.ObservabilityConfig{
		ServiceName: "test-service",
		Tracing: models.TracingConfig{
			Enabled:    true,
			Exporter:   "stdout",
			SampleRate: 1.0,
		},
	}

	provider, err := Setup(metrics, obs, version.Info{})
	require.NoError(t, err)
	require.NotNil(t, provider)
	assert.NotNil(t, provider.tracerProvider)
	assert.Nil(t, provider.promExporter)
	assert.Nil(t, provider.Registry())

	err = provider.Shutdown(context.Background())
	assert.NoError(t, err)
}

func TestSetup_BothDisabled(t *testing.T) {
	provider, err := Setup(models.MetricsConfig{}, models.ObservabilityConfig{}, version.Info{})
	require.NoError(t, err)
	require.NotNil(t, provider)
	assert.Nil(t, provider.tracerProvider)
	assert.Nil(t, provider.promExporter)

	// Disabled signals still hand out usable no-op providers.
	assert.NotNil(t, provider.MeterProvider())
	assert.NotNil(t, provider.TracerProvider())

	err = provider.Shutdown(context.Background())
	assert.NoError(t, err)
}

func TestSetup_InvalidExporter(t *testing.T) {
	metrics := models.MetricsConfig{Enabled: false}
	obs := models.ObservabilityConfig{
		ServiceName: "test-service",
		Tracing: models.TracingConfig{
			Enabled:    true,
			Exporter:   "invalid",
			SampleRate: 1.0,
		},
	}

	provider, err := Setup(metrics, obs, version.Info{})
	assert.Error(t, err)
	assert.Nil(t, provider)
	assert.Contains(t, err.Error(), "unsupported trace exporter")
}

func TestSetup_SamplerConfigurations(t *testing.T) {
	tests := []struct {
		name       string
		sampleRate float64
	}{
		{"always sample", 1.0},
		{"never sample", 0.0},
		{"ratio based", 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metrics := models.MetricsConfig{Enabled: false}
			obs := models.ObservabilityConfig{
				ServiceName: "test",
				Tracing: models.TracingConfig{
					Enabled:    true,
					Exporter:   "stdout",
					SampleRate: tt.sampleRate,
				},
			}

			provider, err := Setup(metrics, obs, version.Info{})
			require.NoError(t, err)
			require.NotNil(t, provider)

			err = provider.Shutdown(context.Background())
			assert.NoError(t, err)
		})
	}
}

func TestProvider_ShutdownNilProviders(t *testing.T) {
	p := &Provider{}
	err := p.Shutdown(context.Background())
	assert.NoError(t, err)
}

func TestProvider_NilReceiverFallsBackToNoop(t *testing.T) {
	var p *Provider
	assert.NotNil(t, p.MeterProvider())
	assert.NotNil(t, p.TracerProvider())
}

// setupMetricsProvider returns a provider with metrics enabled and tracing
// off, shut down at test cleanup.
func setupMetricsProvider(t *testing.T) *Provider {
	t.Helper()
	provider, err := Setup(
		models.MetricsConfig{Enabled: true, Path: "/metrics", Port: 9090},
		models.ObservabilityConfig{ServiceName: "test"},
		version.Info{Version: "test"},
	)
	require.NoError(t, err)
	t.Cleanup(func() { provider.Shutdown(context.Background()) })
	return provider
}

// findMetric gathers the provider's registry and returns the first family
// whose name starts with prefix.
func findMetric(t *testing.T, provider *Provider, prefix string) *dto.MetricFamily {
	t.Helper()
	families, err := provider.Registry().Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if strings.HasPrefix(mf.GetName(), prefix) {
			return mf
		}
	}
	return nil
}

func labelValue(m *dto.Metric, name string) string {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}
