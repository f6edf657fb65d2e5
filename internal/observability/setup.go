package observability

import (
	"context"

	"github.com/mlezhnin/exercise-tracker/internal/infrastructure/observability"
)

// Setup wires logging, metrics and tracing in one call and returns the
// tracing shutdown hook.
func Setup(serviceName, logLevel string) func(context.Context) error {
	observability.InitLogger(observability.ParseLevel(logLevel))
	observability.InitMetrics()
	return observability.InitTracing(serviceName)
}
