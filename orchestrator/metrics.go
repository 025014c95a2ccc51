package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	tracer = otel.Tracer("github.com/modcut/modcut/orchestrator")
	meter  = otel.Meter("github.com/modcut/modcut/orchestrator")

	analyzerSeconds metric.Float64Histogram
)

var metricInit = sync.OnceValue(func() (err error) {
	analyzerSeconds, err = meter.Float64Histogram("analyzer.duration",
		metric.WithUnit("s"),
		metric.WithDescription("Wall-clock time spent in each orchestrator analyzer task."),
	)
	return err
})

var analyzerAttrKey = attribute.Key("analyzer")

func analyzerAttr(name string) attribute.KeyValue {
	return analyzerAttrKey.String(name)
}

// archivesOpened tallies archives by how Analyze's opening pass handled
// them: opened successfully or skipped as corrupt.
var archivesOpened = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "modcut",
		Subsystem: "orchestrator",
		Name:      "archives_total",
		Help:      "Total archives seen by Analyze, partitioned by outcome.",
	},
	[]string{"outcome"},
)

// analysisRuns counts completed Analyze calls, partitioned by whether the
// run returned a fatal error.
var analysisRuns = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "modcut",
		Subsystem: "orchestrator",
		Name:      "analyze_runs_total",
		Help:      "Total Analyze calls, partitioned by outcome.",
	},
	[]string{"outcome"},
)

// task wraps fn as an errgroup goroutine body: it performs the same
// already-cancelled early exit indexer/layerscanner.go's "launch" closure
// does, wraps the call in its own trace span, and records its duration
// against the analyzer.duration histogram keyed by name.
func task(ctx context.Context, name string, fn func() error) func() error {
	return func() error {
		select {
		case <-ctx.Done():
			return context.Cause(ctx)
		default:
		}
		ctx, span := tracer.Start(ctx, "analyzer."+name)
		defer span.End()

		start := time.Now()
		err := fn()
		analyzerSeconds.Record(ctx, time.Since(start).Seconds(),
			metric.WithAttributeSet(attribute.NewSet(analyzerAttr(name))))
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		return nil
	}
}
