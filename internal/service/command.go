// Package service implements the engine components: task lifecycle,
// variables, identity links, audit history, queries, and saved filters.
// Every mutating operation runs through the command wrapper, which owns
// the transaction boundary and the command metrics.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	adapterotel "github.com/Strob0t/TaskForge/internal/adapter/otel"
	"github.com/Strob0t/TaskForge/internal/domain"
	"github.com/Strob0t/TaskForge/internal/port/database"
)

// Commands wraps mutating operations in one transaction each. The store's
// optimistic-lock check is the only concurrency guard; a conflicting write
// surfaces as domain.ErrConflict and is never retried here.
type Commands struct {
	store   database.Store
	metrics *adapterotel.Metrics
	log     *slog.Logger
}

// NewCommands creates a command wrapper. metrics may be nil.
func NewCommands(store database.Store, metrics *adapterotel.Metrics, log *slog.Logger) *Commands {
	if log == nil {
		log = slog.Default()
	}
	return &Commands{store: store, metrics: metrics, log: log}
}

// Execute runs fn inside a transaction and records the outcome.
func (c *Commands) Execute(ctx context.Context, name string, fn func(database.Store) error) error {
	start := time.Now()
	err := c.store.InTx(ctx, fn)
	c.observe(ctx, name, time.Since(start), err)
	return err
}

func (c *Commands) observe(ctx context.Context, name string, elapsed time.Duration, err error) {
	if c.metrics != nil {
		attrs := metric.WithAttributes(attribute.String("command", name))
		c.metrics.CommandsExecuted.Add(ctx, 1, attrs)
		c.metrics.CommandDuration.Record(ctx, elapsed.Seconds(), attrs)
		if err != nil {
			c.metrics.CommandsFailed.Add(ctx, 1, attrs)
			if errors.Is(err, domain.ErrConflict) {
				c.metrics.CommandConflicts.Add(ctx, 1, attrs)
			}
		}
	}
	if err != nil && !errors.Is(err, domain.ErrValidation) {
		c.log.Warn("command failed", "command", name, "error", err)
	}
}
