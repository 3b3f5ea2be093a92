package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ashita-ai/compendium/internal/model"
	"github.com/ashita-ai/compendium/internal/storage"
	"github.com/ashita-ai/compendium/internal/telemetry"
)

// fetchConcurrency bounds parallel file fetches.
const fetchConcurrency = 4

// step applies one seed file. Steps run in slice order, which is the order
// foreign keys require.
type step struct {
	file     string
	required bool
	apply    func(ctx context.Context, a *applier, t *table) error
}

var steps = []step{
	{file: "classes.csv", required: true, apply: applyClasses},
	{file: "proficiencies.csv", required: true, apply: applyProficiencies},
	{file: "races.csv", required: true, apply: applyRaces},
	{file: "subraces.csv", required: true, apply: applySubraces},
	{file: "subclasses.csv", required: true, apply: applySubclasses},
	{file: "subclasses_desc.csv", apply: applySubclassDescriptions},
	{file: "spells.csv", required: true, apply: applySpells},
	{file: "spells_desc.csv", apply: applySpellDescriptions},
	{file: "classes_proficiencies.csv", apply: linkStep(model.ResourceClasses, model.ResourceProficiencies, (*storage.Queries).AddClassProficiency)},
	{file: "proficiencies_classes.csv", apply: linkStep(model.ResourceProficiencies, model.ResourceClasses, addProficiencyClass)},
	{file: "proficiencies_races.csv", apply: applyProficiencyRaces},
	{file: "races_starting_proficiencies.csv", apply: linkStep(model.ResourceRaces, model.ResourceProficiencies, (*storage.Queries).AddRaceStartingProficiency)},
	{file: "subraces_starting_proficiencies.csv", apply: linkStep(model.ResourceSubraces, model.ResourceProficiencies, (*storage.Queries).AddSubraceStartingProficiency)},
	{file: "spells_classes.csv", apply: linkStep(model.ResourceSpells, model.ResourceClasses, (*storage.Queries).AddSpellClass)},
	{file: "spells_subclasses.csv", apply: linkStep(model.ResourceSpells, model.ResourceSubclasses, (*storage.Queries).AddSpellSubclass)},
}

// Files lists every file a seed reads, in apply order.
func Files() []string {
	out := make([]string, len(steps))
	for i, st := range steps {
		out[i] = st.file
	}
	return out
}

// Report summarizes a completed seed.
type Report struct {
	Rows     map[string]int // rows applied per file
	Skipped  []string       // optional files that were absent
	Duration time.Duration
}

// Loader applies seed files to the catalog.
type Loader struct {
	db      *storage.DB
	metrics *telemetry.Metrics
	logger  *slog.Logger
}

// NewLoader creates a Loader. metrics may be nil.
func NewLoader(db *storage.DB, metrics *telemetry.Metrics, logger *slog.Logger) *Loader {
	return &Loader{db: db, metrics: metrics, logger: logger}
}

// Load fetches every seed file from src and applies them in one transaction.
// Any error, including an unresolvable natural key, rolls back the whole
// seed.
func (l *Loader) Load(ctx context.Context, src Source) (Report, error) {
	start := time.Now()
	tables, err := l.fetch(ctx, src)
	if err != nil {
		return Report{}, err
	}

	report := Report{Rows: make(map[string]int, len(steps))}
	for i, st := range steps {
		if tables[i] == nil {
			report.Skipped = append(report.Skipped, st.file)
			l.logger.Info("seed: optional file missing, skipping", "file", st.file, "source", src.String())
		}
	}

	err = l.db.InTx(ctx, func(q *storage.Queries) error {
		a := newApplier(q)
		for i, st := range steps {
			t := tables[i]
			if t == nil {
				continue
			}
			if err := st.apply(ctx, a, t); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Report{}, fmt.Errorf("seed: apply from %s: %w", src, err)
	}

	for i, st := range steps {
		if t := tables[i]; t != nil {
			report.Rows[st.file] = len(t.rows)
			l.metrics.RecordSeedRows(st.file, len(t.rows))
		}
	}
	report.Duration = time.Since(start)
	l.logger.Info("seed: complete",
		"source", src.String(),
		"files", len(report.Rows),
		"skipped", len(report.Skipped),
		"duration_ms", report.Duration.Milliseconds(),
	)
	return report, nil
}

// fetch reads and parses every file concurrently. The result is indexed like
// steps; an absent optional file leaves a nil entry.
func (l *Loader) fetch(ctx context.Context, src Source) ([]*table, error) {
	tables := make([]*table, len(steps))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)

	for i, st := range steps {
		g.Go(func() error {
			rc, err := src.Open(gctx, st.file)
			if err != nil {
				if errors.Is(err, ErrNotExist) && !st.required {
					return nil
				}
				return err
			}
			defer func() { _ = rc.Close() }()

			t, err := parseTable(st.file, rc)
			if err != nil {
				return err
			}
			tables[i] = t
			l.logger.Debug("seed: fetched", "file", st.file, "rows", len(t.rows))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tables, nil
}
