// Package catalog provides the shared business logic for catalog writes.
//
// The HTTP API and the MCP server both go through this service. Every
// create, update and delete runs in a single store transaction, so field
// checks, natural-key uniqueness, reference resolution, the row write and the
// replacement of association rows either all happen or none do.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/ashita-ai/compendium/internal/model"
	"github.com/ashita-ai/compendium/internal/storage"
	"github.com/ashita-ai/compendium/internal/telemetry"
)

// Write operations, used as metric attributes.
const (
	opCreate = "create"
	opUpdate = "update"
	opDelete = "delete"
)

// labels are the singular entity names used in user-facing messages.
var labels = map[string]string{
	model.ResourceClasses:       "class",
	model.ResourceProficiencies: "proficiency",
	model.ResourceRaces:         "race",
	model.ResourceSubraces:      "subrace",
	model.ResourceSchools:       "school",
	model.ResourceSpells:        "spell",
	model.ResourceSubclasses:    "subclass",
}

// Service encapsulates catalog business logic shared by HTTP and MCP handlers.
type Service struct {
	db      *storage.DB
	metrics *telemetry.Metrics // nil disables Prometheus counting
	logger  *slog.Logger

	writes metric.Int64Counter
}

// New creates a catalog Service. metrics may be nil.
func New(db *storage.DB, metrics *telemetry.Metrics, logger *slog.Logger) *Service {
	meter := telemetry.Meter("compendium/catalog")
	writes, _ := meter.Int64Counter("compendium.catalog.writes",
		metric.WithDescription("Committed catalog writes by resource and operation"),
	)
	return &Service{db: db, metrics: metrics, logger: logger, writes: writes}
}

// write runs fn in one transaction. Unique and foreign-key violations that
// slip past the in-transaction checks (a concurrent writer got there first)
// are reported as validation errors, the same as the checks would have.
func (s *Service) write(ctx context.Context, resource, op string, fn func(q *storage.Queries) error) error {
	err := s.db.InTx(ctx, fn)
	switch {
	case err == nil:
		s.writes.Add(ctx, 1, metric.WithAttributes(
			attribute.String("resource", resource),
			attribute.String("op", op),
		))
		s.metrics.RecordWrite(resource, op)
		s.logger.Debug("catalog write", "resource", resource, "op", op)
		return nil
	case errors.Is(err, storage.ErrConflict):
		return model.FieldError("index", duplicateIndexMessage(resource))
	case errors.Is(err, storage.ErrInvalidReference):
		return model.FieldError(model.NonFieldErrors, "A referenced object does not exist.")
	default:
		return err
	}
}

func (s *Service) remove(ctx context.Context, resource string, id int64, del func(context.Context, *storage.Queries) error) error {
	err := s.write(ctx, resource, opDelete, func(q *storage.Queries) error {
		return del(ctx, q)
	})
	if err != nil {
		return fmt.Errorf("catalog: delete %s %d: %w", labels[resource], id, err)
	}
	return nil
}

// read runs fn on the pool. Each query sees committed data only, so a detail
// view never contains a half-replaced association set.
func read[T any](ctx context.Context, s *Service, what string, fn func(*storage.Queries) (T, error)) (T, error) {
	var out T
	err := s.db.Read(ctx, func(q *storage.Queries) error {
		var err error
		out, err = fn(q)
		return err
	})
	if err != nil {
		var zero T
		return zero, fmt.Errorf("catalog: %s: %w", what, err)
	}
	return out, nil
}

// Counts returns the number of rows per resource.
func (s *Service) Counts(ctx context.Context) (map[string]int64, error) {
	return read(ctx, s, "count resources", func(q *storage.Queries) (map[string]int64, error) {
		out := make(map[string]int64, len(model.Resources))
		for _, r := range model.Resources {
			n, err := q.CountRows(ctx, r)
			if err != nil {
				return nil, err
			}
			out[r] = n
		}
		return out, nil
	})
}

// IDByIndex resolves the natural key of a resource to its id.
func (s *Service) IDByIndex(ctx context.Context, resource, index string) (int64, error) {
	return read(ctx, s, "resolve "+labels[resource]+" "+index, func(q *storage.Queries) (int64, error) {
		return q.IDByIndex(ctx, resource, index)
	})
}

// IsNotFound reports whether err means the addressed entity does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, storage.ErrNotFound)
}

func duplicateIndexMessage(resource string) string {
	return labels[resource] + " with this index already exists."
}
