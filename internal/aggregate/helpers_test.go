package aggregate

import (
	"math"
	"time"

	"lifeos/internal/core"
)

var testNow = time.Date(2025, 2, 24, 12, 0, 0, 0, time.UTC)

func entry(ts string, sentiment core.Sentiment, tags ...string) core.DomainEntry {
	return core.DomainEntry{Content: "x", Timestamp: ts, Sentiment: sentiment, Tags: tags}
}

func withMetrics(e core.DomainEntry, metrics ...core.Metric) core.DomainEntry {
	e.Metrics = metrics
	return e
}

func metric(name, value string) core.Metric {
	return core.Metric{Name: name, Value: value}
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
