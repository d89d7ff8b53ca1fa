// Package observability emits operational metrics to CloudWatch.
package observability

import (
	"context"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// flushLimit is CloudWatch's maximum datums per PutMetricData call.
const flushLimit = 20

// Metrics buffers metric datums and flushes them in batches. Emission is
// best-effort; a failed flush drops the batch rather than blocking requests.
type Metrics struct {
	namespace string
	client    *cloudwatch.Client

	mu     sync.Mutex
	buffer []types.MetricDatum
}

// NewMetrics creates a metrics emitter for the given namespace
func NewMetrics(namespace string, client *cloudwatch.Client) *Metrics {
	return &Metrics{
		namespace: namespace,
		client:    client,
	}
}

// Count records an occurrence of a named event
func (m *Metrics) Count(ctx context.Context, name string, value float64, dimensions map[string]string) {
	m.record(ctx, types.MetricDatum{
		MetricName: aws.String(name),
		Value:      aws.Float64(value),
		Unit:       types.StandardUnitCount,
		Timestamp:  aws.Time(time.Now()),
		Dimensions: toDimensions(dimensions),
	})
}

// Duration records how long an operation took
func (m *Metrics) Duration(ctx context.Context, name string, d time.Duration, dimensions map[string]string) {
	m.record(ctx, types.MetricDatum{
		MetricName: aws.String(name),
		Value:      aws.Float64(float64(d.Milliseconds())),
		Unit:       types.StandardUnitMilliseconds,
		Timestamp:  aws.Time(time.Now()),
		Dimensions: toDimensions(dimensions),
	})
}

func (m *Metrics) record(ctx context.Context, datum types.MetricDatum) {
	m.mu.Lock()
	m.buffer = append(m.buffer, datum)
	flush := len(m.buffer) >= flushLimit
	var batch []types.MetricDatum
	if flush {
		batch = m.buffer
		m.buffer = nil
	}
	m.mu.Unlock()

	if flush {
		m.put(ctx, batch)
	}
}

// Flush sends any buffered datums immediately
func (m *Metrics) Flush(ctx context.Context) {
	m.mu.Lock()
	batch := m.buffer
	m.buffer = nil
	m.mu.Unlock()

	if len(batch) > 0 {
		m.put(ctx, batch)
	}
}

func (m *Metrics) put(ctx context.Context, batch []types.MetricDatum) {
	if m.client == nil {
		return
	}
	// Errors are swallowed: metrics must never fail a request.
	_, _ = m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(m.namespace),
		MetricData: batch,
	})
}

func toDimensions(dims map[string]string) []types.Dimension {
	if len(dims) == 0 {
		return nil
	}
	out := make([]types.Dimension, 0, len(dims))
	for name, value := range dims {
		out = append(out, types.Dimension{
			Name:  aws.String(name),
			Value: aws.String(value),
		})
	}
	return out
}
