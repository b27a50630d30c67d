package transcode

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/JhonEdwinVR/Meet-recording-Notes/pkg/transcode"

// Metrics holds the pipeline's OpenTelemetry instruments. A nil *Metrics
// records nothing.
type Metrics struct {
	// Runs counts transcodes by outcome (attribute "status").
	Runs metric.Int64Counter

	// Duration tracks wall time per transcode.
	Duration metric.Float64Histogram

	// AudioSeconds tracks the length of transcoded recordings.
	AudioSeconds metric.Float64Histogram

	// OutputBytes counts compressed bytes produced.
	OutputBytes metric.Int64Counter
}

var durationBuckets = []float64{
	0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60,
}

var audioBuckets = []float64{
	10, 30, 60, 300, 600, 1800, 3600, 7200,
}

// NewMetrics creates the instruments using mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.Runs, err = m.Int64Counter("meetnote.transcode.runs",
		metric.WithDescription("Transcode invocations by status."),
	); err != nil {
		return nil, err
	}
	if met.Duration, err = m.Float64Histogram("meetnote.transcode.duration",
		metric.WithDescription("Wall time of one transcode."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	); err != nil {
		return nil, err
	}
	if met.AudioSeconds, err = m.Float64Histogram("meetnote.transcode.audio_duration",
		metric.WithDescription("Playback length of transcoded recordings."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(audioBuckets...),
	); err != nil {
		return nil, err
	}
	if met.OutputBytes, err = m.Int64Counter("meetnote.transcode.output_bytes",
		metric.WithDescription("Compressed bytes produced."),
		metric.WithUnit("By"),
	); err != nil {
		return nil, err
	}
	return met, nil
}

func (m *Metrics) record(ctx context.Context, start time.Time, out *Output, err error) {
	if m == nil {
		return
	}
	status := metric.WithAttributes(attribute.String("status", Kind(err)))
	m.Runs.Add(ctx, 1, status)
	m.Duration.Record(ctx, time.Since(start).Seconds(), status)
	if err == nil && out != nil {
		m.AudioSeconds.Record(ctx, out.Duration.Seconds())
		m.OutputBytes.Add(ctx, int64(len(out.Data)))
	}
}
