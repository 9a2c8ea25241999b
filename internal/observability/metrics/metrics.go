// Package metrics turns client lifecycle events into StatsD metrics.
package metrics

import (
	"strconv"
	"time"

	obserrors "github.com/fortunes/fortunes-web/internal/observability/errors"
	"github.com/fortunes/fortunes-web/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// AnalysisMetric captures the end of one analysis submission.
type AnalysisMetric struct {
	Outcome  string
	Attempts int
	Duration time.Duration
	Err      error
}

// EmitAnalysisOutcome emits the outcome counter, poll attempt gauge and total duration.
func EmitAnalysisOutcome(sink statsd.Sink, in AnalysisMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{"outcome": in.Outcome}
	if class := obserrors.Classify(in.Err); class != "" {
		tags["error_class"] = class
	}

	sink.Count("analysis.outcome", 1, tags)
	sink.Gauge("analysis.poll_attempts", float64(in.Attempts), CloneTags(tags))
	if in.Duration > 0 {
		sink.Timing("analysis.duration", in.Duration, CloneTags(tags))
	}
}

// APIMetric captures one HTTP round trip issued by the client wrapper.
type APIMetric struct {
	Method   string
	Route    string
	Status   int
	Duration time.Duration
	Err      error
}

// EmitAPIRequest emits request counters and latency.
func EmitAPIRequest(sink statsd.Sink, in APIMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"method": in.Method,
		"route":  in.Route,
		"result": ResultSuccess,
	}
	if in.Err != nil {
		tags["result"] = ResultError
		tags["error_class"] = obserrors.Classify(in.Err)
	} else {
		tags["status"] = strconv.Itoa(in.Status)
	}

	sink.Count("api.request", 1, tags)
	if in.Duration > 0 {
		sink.Timing("api.duration", in.Duration, CloneTags(tags))
	}
}

// CloneTags creates a shallow copy of a tag map, filtering out empty keys.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		if k == "" {
			continue
		}
		out[k] = v
	}
	return out
}
