package planner

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/Isira-Kodikara/Kango-bus-app-sub000/internal/planner"

// Metrics records planning outcomes.
type Metrics struct {
	planDuration      metric.Float64Histogram
	planTotal         metric.Int64Counter
	directionFallback metric.Int64Counter
	pairFailures      metric.Int64Counter
}

// NewMetrics creates planner instruments on the global meter provider.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(instrumentationName)

	planDuration, err := meter.Float64Histogram(
		"planner.plan.duration",
		metric.WithDescription("Duration of journey planning in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	planTotal, err := meter.Int64Counter(
		"planner.plan.total",
		metric.WithDescription("Journey plans by outcome"),
		metric.WithUnit("{plan}"),
	)
	if err != nil {
		return nil, err
	}

	directionFallback, err := meter.Int64Counter(
		"planner.directions.fallback",
		metric.WithDescription("Walking legs estimated as a straight line because the directions provider failed"),
		metric.WithUnit("{leg}"),
	)
	if err != nil {
		return nil, err
	}

	pairFailures, err := meter.Int64Counter(
		"planner.search.pair_failures",
		metric.WithDescription("Stop pairs whose path search failed on malformed data"),
		metric.WithUnit("{pair}"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		planDuration:      planDuration,
		planTotal:         planTotal,
		directionFallback: directionFallback,
		pairFailures:      pairFailures,
	}, nil
}

// RecordPlan records the outcome of one PlanJourney call.
func (m *Metrics) RecordPlan(outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	ctx := context.TODO()
	m.planDuration.Record(ctx, duration.Seconds(), attrs)
	m.planTotal.Add(ctx, 1, attrs)
}

// RecordDirectionsFallback records a straight-line walking estimate.
func (m *Metrics) RecordDirectionsFallback(leg string) {
	if m == nil {
		return
	}
	m.directionFallback.Add(context.TODO(), 1, metric.WithAttributes(attribute.String("leg", leg)))
}

// RecordPairFailures records stop pairs that errored during a search.
func (m *Metrics) RecordPairFailures(n int) {
	if m == nil || n == 0 {
		return
	}
	m.pairFailures.Add(context.TODO(), int64(n))
}
