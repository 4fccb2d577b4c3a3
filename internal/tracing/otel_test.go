package tracing

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestInitTracer_ExportsSpansOnShutdown(t *testing.T) {
	var buf bytes.Buffer
	shutdown, err := InitTracer("maas-test", &buf)
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(context.Background(), "dispatcher.Deliver")
	span.End()

	require.NoError(t, shutdown(context.Background()))
	assert.Contains(t, buf.String(), "dispatcher.Deliver")
	assert.Contains(t, buf.String(), "maas-test")
}
