package obslog

import (
	"log/slog"
	"os"

	"go.opentelemetry.io/contrib/bridges/otelslog"
)

// New builds the module's root [slog.Logger]. When otelEndpoint is set, log
// records are bridged to an OpenTelemetry log pipeline under serviceName (so
// a deployment can ship logs alongside the orchestrator's traces and
// metrics); otherwise it falls back to a plain text handler on stderr, the
// same default cmd/cctool uses before any structured backend is configured.
//
// Either way the handler is wrapped with [WrapHandler] so attributes stashed
// on a request's Context (archive path, scanner name, manifest digest) are
// merged into every record without threading a logger through every call.
func New(serviceName, otelEndpoint string) *slog.Logger {
	var base slog.Handler
	if otelEndpoint != "" {
		base = otelslog.NewHandler(serviceName)
	} else {
		base = slog.NewTextHandler(os.Stderr, nil)
	}
	return slog.New(WrapHandler(base))
}
