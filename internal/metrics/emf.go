// Package metrics emits run metrics as CloudWatch Embedded Metric Format (EMF)
// documents: one JSON line per flush that log shippers can forward as-is and
// CloudWatch turns into metrics without any API calls.
//
// See: https://docs.aws.amazon.com/AmazonCloudWatch/latest/monitoring/CloudWatch_Embedded_Metric_Format_Specification.html
package metrics

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

// Standard CloudWatch metric units.
const (
	UnitMilliseconds = "Milliseconds"
	UnitCount        = "Count"
	UnitBytes        = "Bytes"
	UnitSeconds      = "Seconds"
	UnitNone         = "None"
)

// DefaultNamespace is used when no namespace is configured.
const DefaultNamespace = "PhotoSlideshow"

// metricDef holds the name and unit for a single metric.
type metricDef struct {
	Name string `json:"Name"`
	Unit string `json:"Unit"`
}

// emfDirective is the _aws metadata block required by EMF.
type emfDirective struct {
	Timestamp         int64      `json:"Timestamp"`
	CloudWatchMetrics []cwMetric `json:"CloudWatchMetrics"`
}

// cwMetric defines a CloudWatch metric namespace, dimensions, and metric definitions.
type cwMetric struct {
	Namespace  string      `json:"Namespace"`
	Dimensions [][]string  `json:"Dimensions"`
	Metrics    []metricDef `json:"Metrics"`
}

// Recorder accumulates dimensions, metrics, and properties for a single EMF flush.
// It is NOT safe for concurrent use from multiple goroutines; create one per run.
type Recorder struct {
	namespace  string
	out        io.Writer
	now        func() time.Time
	dimensions map[string]string
	metrics    map[string]metricDef
	values     map[string]any
	properties map[string]any
}

// New creates a Recorder for namespace that writes to stdout.
func New(namespace string) *Recorder {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &Recorder{
		namespace:  namespace,
		out:        os.Stdout,
		now:        time.Now,
		dimensions: make(map[string]string),
		metrics:    make(map[string]metricDef),
		values:     make(map[string]any),
		properties: make(map[string]any),
	}
}

// Output redirects the flushed document to w.
func (r *Recorder) Output(w io.Writer) *Recorder {
	r.out = w
	return r
}

// Dimension adds a dimension key-value pair. Dimensions are indexed in CloudWatch
// and appear as filterable attributes on the metric.
func (r *Recorder) Dimension(key, value string) *Recorder {
	r.dimensions[key] = value
	return r
}

// Metric records a named metric value with a CloudWatch unit.
func (r *Recorder) Metric(name string, value float64, unit string) *Recorder {
	r.metrics[name] = metricDef{Name: name, Unit: unit}
	r.values[name] = value
	return r
}

// Count is a convenience for recording a count metric (value = 1).
func (r *Recorder) Count(name string) *Recorder {
	return r.Metric(name, 1, UnitCount)
}

// Duration records d as a millisecond metric.
func (r *Recorder) Duration(name string, d time.Duration) *Recorder {
	return r.Metric(name, float64(d.Milliseconds()), UnitMilliseconds)
}

// Property adds a non-metric field to the EMF document. Properties are searchable
// in CloudWatch Logs Insights but do not create CloudWatch metrics.
func (r *Recorder) Property(key string, value any) *Recorder {
	r.properties[key] = value
	return r
}

// Flush serializes the EMF document as a single JSON line.
// After flushing, the Recorder should not be reused.
func (r *Recorder) Flush() {
	if r == nil || len(r.metrics) == 0 {
		return
	}

	doc := make(map[string]any)

	metricDefs := make([]metricDef, 0, len(r.metrics))
	for _, m := range r.metrics {
		metricDefs = append(metricDefs, m)
	}

	dimKeys := make([]string, 0, len(r.dimensions))
	for k := range r.dimensions {
		dimKeys = append(dimKeys, k)
	}

	doc["_aws"] = emfDirective{
		Timestamp: r.now().UnixMilli(),
		CloudWatchMetrics: []cwMetric{{
			Namespace:  r.namespace,
			Dimensions: [][]string{dimKeys},
			Metrics:    metricDefs,
		}},
	}

	for k, v := range r.dimensions {
		doc[k] = v
	}
	for k, v := range r.values {
		doc[k] = v
	}
	for k, v := range r.properties {
		doc[k] = v
	}

	data, err := json.Marshal(doc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "emf: failed to marshal metrics: %v\n", err)
		return
	}

	// EMF must be a single line
	fmt.Fprintln(r.out, string(data))
}
