package observability_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/autoimport/pkg/observability"
)

func TestInit_NoopWhenNothingConfigured(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer

	providers, err := observability.Init(observability.DefaultConfig(), &logs)
	require.NoError(t, err)

	_, span := providers.Tracer.Start(context.Background(), "fix")
	assert.False(t, span.SpanContext().IsValid())
	span.End()

	providers.Logger.Warn("hello")
	assert.Contains(t, logs.String(), "service=autoimport")

	require.NoError(t, providers.Shutdown(context.Background()))
}

func TestInit_WritesMetricsFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "autoimport.prom")

	cfg := observability.DefaultConfig()
	cfg.MetricsFile = path

	var logs bytes.Buffer

	providers, err := observability.Init(cfg, &logs)
	require.NoError(t, err)

	metrics, err := observability.NewFixMetrics(providers.Meter)
	require.NoError(t, err)

	metrics.RecordFile(context.Background(), observability.FileOutcome{Status: observability.StatusChanged, Added: 2})

	require.NoError(t, providers.Shutdown(context.Background()))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "autoimport_files_total")
	assert.Contains(t, string(content), `status="changed"`)
	assert.Contains(t, string(content), "autoimport_imports_added")
}

func TestParseOTLPHeaders(t *testing.T) {
	t.Parallel()

	assert.Nil(t, observability.ParseOTLPHeaders(""))
	assert.Nil(t, observability.ParseOTLPHeaders("garbage"))
	assert.Equal(t,
		map[string]string{"authorization": "Bearer x", "team": "py"},
		observability.ParseOTLPHeaders("authorization=Bearer x, team = py"),
	)
}
