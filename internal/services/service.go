package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"

	"inkwell/internal/apperr"
	"inkwell/internal/cache"
	"inkwell/internal/events"
	"inkwell/internal/models"
	"inkwell/internal/notify"
	"inkwell/internal/repository"
	"inkwell/internal/telemetry"
)

// Deps is the wiring shared by every service. Nil collaborators fall back to
// no-op or process defaults.
type Deps struct {
	Store    repository.Store
	Notifier notify.Runner
	Events   events.Publisher
	Badge    cache.Badge
	Logger   *slog.Logger
	Clock    func() time.Time
	NewID    func() models.ID
}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Notifier == nil {
		d.Notifier = notify.Inline{Logger: d.Logger}
	}
	if d.Events == nil {
		d.Events = events.Nop{}
	}
	if d.Badge == nil {
		d.Badge = cache.Nop{}
	}
	if d.Clock == nil {
		d.Clock = time.Now
	}
	if d.NewID == nil {
		d.NewID = defaultIDs()
	}
	return d
}

func (d Deps) now() time.Time {
	return d.Clock().UTC()
}

func (d Deps) log(ctx context.Context) *slog.Logger {
	return telemetry.WithTrace(ctx, d.Logger)
}

// publish hands an event to the publisher; a failed publish is logged, not returned.
func (d Deps) publish(ctx context.Context, ev events.Event) {
	if ev.At.IsZero() {
		ev.At = d.now()
	}
	if err := d.Events.Publish(ctx, ev); err != nil {
		d.log(ctx).Warn("publish event", "type", ev.Type, "error", err)
	}
}

// NewSnowflakeIDs returns a generator of time-ordered ids for one node.
func NewSnowflakeIDs(node int64) (func() models.ID, error) {
	n, err := snowflake.NewNode(node)
	if err != nil {
		return nil, fmt.Errorf("snowflake node %d: %w", node, err)
	}
	return func() models.ID { return models.ID(n.Generate().Int64()) }, nil
}

// defaultIDs is shared so services built without an explicit generator never
// hand out the same id twice.
var defaultIDs = sync.OnceValue(func() func() models.ID {
	gen, err := NewSnowflakeIDs(1)
	if err != nil {
		panic(err)
	}
	return gen
})

// storageErr maps repository sentinels onto the apperr taxonomy.
func storageErr(err error, notFoundMsg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(notFoundMsg)
	}
	return apperr.Storage(err)
}
