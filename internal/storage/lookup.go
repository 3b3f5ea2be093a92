package storage

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/ashita-ai/compendium/internal/model"
)

// Entity tables. Table names are never taken from user input; helpers that
// splice a table into SQL accept only these.
const (
	tableClasses       = model.ResourceClasses
	tableProficiencies = model.ResourceProficiencies
	tableRaces         = model.ResourceRaces
	tableSubraces      = model.ResourceSubraces
	tableSchools       = model.ResourceSchools
	tableSpells        = model.ResourceSpells
	tableSubclasses    = model.ResourceSubclasses
)

var entityTables = map[string]bool{
	tableClasses:       true,
	tableProficiencies: true,
	tableRaces:         true,
	tableSubraces:      true,
	tableSchools:       true,
	tableSpells:        true,
	tableSubclasses:    true,
}

func checkTable(table string) error {
	if !entityTables[table] {
		return fmt.Errorf("storage: unknown table %q", table)
	}
	return nil
}

func scanRef(r rowScanner) (model.Ref, error) {
	var ref model.Ref
	err := r.Scan(&ref.ID, &ref.Name)
	return ref, err
}

func (q *Queries) deleteByID(ctx context.Context, table string, id int64) error {
	if err := checkTable(table); err != nil {
		return err
	}
	n, err := q.q.exec(ctx, `DELETE FROM `+table+` WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("storage: delete from %s %d: %w", table, id, translate(err))
	}
	if n == 0 {
		return fmt.Errorf("storage: delete from %s %d: %w", table, id, ErrNotFound)
	}
	return nil
}

// IndexTaken reports whether another row of table (any id other than
// excludeID) already uses the natural key index. Pass 0 to check all rows.
func (q *Queries) IndexTaken(ctx context.Context, table, index string, excludeID int64) (bool, error) {
	if err := checkTable(table); err != nil {
		return false, err
	}
	var n int64
	err := q.q.queryRow(ctx,
		`SELECT COUNT(*) FROM `+table+` WHERE "index" = $1 AND id <> $2`, index, excludeID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("storage: check %s index: %w", table, err)
	}
	return n > 0, nil
}

// IDByIndex resolves a natural key to its surrogate id, or ErrNotFound.
func (q *Queries) IDByIndex(ctx context.Context, table, index string) (int64, error) {
	if err := checkTable(table); err != nil {
		return 0, err
	}
	var id int64
	err := q.q.queryRow(ctx, `SELECT id FROM `+table+` WHERE "index" = $1`, index).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("storage: resolve %s %q: %w", table, index, translate(err))
	}
	return id, nil
}

// MissingIDs returns the ids from ids that have no row in table, in the
// order given. An empty result means every id resolved.
func (q *Queries) MissingIDs(ctx context.Context, table string, ids []int64) ([]int64, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "$" + strconv.Itoa(i+1)
		args[i] = id
	}

	found, err := collect(ctx, q.q, func(r rowScanner) (int64, error) {
		var id int64
		err := r.Scan(&id)
		return id, err
	}, `SELECT id FROM `+table+` WHERE id IN (`+strings.Join(placeholders, ", ")+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve %s ids: %w", table, err)
	}

	present := make(map[int64]bool, len(found))
	for _, id := range found {
		present[id] = true
	}
	var missing []int64
	for _, id := range ids {
		if !present[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}
