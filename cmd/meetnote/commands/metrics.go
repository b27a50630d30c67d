package commands

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/JhonEdwinVR/Meet-recording-Notes/pkg/transcode"
)

// newMetrics returns pipeline instruments on the process meter provider.
func newMetrics() *transcode.Metrics {
	m, err := transcode.NewMetrics(meterProvider)
	if err != nil {
		printer.Verbosef("metrics disabled: %v", err)
		return nil
	}
	return m
}

// reportMetrics prints what the pipeline recorded during this run.
func reportMetrics(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	var rm metricdata.ResourceMetrics
	if err := metricReader.Collect(ctx, &rm); err != nil {
		printer.Verbosef("collect metrics: %v", err)
		return
	}
	for _, line := range metricLines(rm) {
		printer.Verbosef("%s", line)
	}
}

// metricLines renders counters as totals and histograms as count and sum.
func metricLines(rm metricdata.ResourceMetrics) []string {
	var lines []string
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					lines = append(lines, fmt.Sprintf("%s%s = %d", m.Name, attrs(dp.Attributes), dp.Value))
				}
			case metricdata.Histogram[float64]:
				for _, dp := range data.DataPoints {
					lines = append(lines, fmt.Sprintf("%s%s count=%d sum=%.3f%s",
						m.Name, attrs(dp.Attributes), dp.Count, dp.Sum, m.Unit))
				}
			}
		}
	}
	return lines
}

func attrs(set attribute.Set) string {
	if set.Len() == 0 {
		return ""
	}
	parts := make([]string, 0, set.Len())
	for _, kv := range set.ToSlice() {
		parts = append(parts, string(kv.Key)+"="+kv.Value.Emit())
	}
	return "{" + strings.Join(parts, ",") + "}"
}
