package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestRecordJob(t *testing.T) {
	reader := metric.NewManualReader()
	provider := metric.NewMeterProvider(metric.WithReader(reader))

	obs, err := newWithProvider(provider, "insertion-workers-test")
	require.NoError(t, err)

	ctx := context.Background()
	obs.RecordJob(ctx, "evaluate-eligibility", 12*time.Millisecond)
	obs.RecordJob(ctx, "evaluate-eligibility", 8*time.Millisecond)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	found := map[string]bool{}
	for _, m := range rm.ScopeMetrics[0].Metrics {
		found[m.Name] = true
		if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
			require.Len(t, sum.DataPoints, 1)
			assert.Equal(t, int64(2), sum.DataPoints[0].Value)
		}
	}
	assert.True(t, found["jobs.processed"])
	assert.True(t, found["jobs.duration"])

	require.NoError(t, obs.Shutdown())
}

func TestNilObservabilityIsSafe(t *testing.T) {
	var obs *Observability
	obs.RecordJob(context.Background(), "noop", time.Millisecond)
	assert.NoError(t, obs.Shutdown())
}
