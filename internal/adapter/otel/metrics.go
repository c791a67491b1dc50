package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "taskforge"

// Metrics holds all TaskForge metric instruments.
type Metrics struct {
	CommandsExecuted metric.Int64Counter
	CommandsFailed   metric.Int64Counter
	CommandConflicts metric.Int64Counter
	QueriesExecuted  metric.Int64Counter
	CommandDuration  metric.Float64Histogram
	QueryDuration    metric.Float64Histogram
}

// NewMetrics creates all metric instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.CommandsExecuted, err = meter.Int64Counter("taskforge.commands.executed",
		metric.WithDescription("Number of engine commands executed"))
	if err != nil {
		return nil, err
	}

	m.CommandsFailed, err = meter.Int64Counter("taskforge.commands.failed",
		metric.WithDescription("Number of engine commands that returned an error"))
	if err != nil {
		return nil, err
	}

	m.CommandConflicts, err = meter.Int64Counter("taskforge.commands.conflicts",
		metric.WithDescription("Number of commands rejected by optimistic locking"))
	if err != nil {
		return nil, err
	}

	m.QueriesExecuted, err = meter.Int64Counter("taskforge.queries.executed",
		metric.WithDescription("Number of task queries executed"))
	if err != nil {
		return nil, err
	}

	m.CommandDuration, err = meter.Float64Histogram("taskforge.command.duration_seconds",
		metric.WithDescription("Command duration in seconds"))
	if err != nil {
		return nil, err
	}

	m.QueryDuration, err = meter.Float64Histogram("taskforge.query.duration_seconds",
		metric.WithDescription("Query duration in seconds"))
	if err != nil {
		return nil, err
	}

	return m, nil
}
