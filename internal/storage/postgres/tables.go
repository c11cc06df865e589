package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/motioncombat/internal/game/action"
)

// ErrTableExists is returned by Create when a table of the same name is stored.
var ErrTableExists = errors.New("table already exists")

// TableInfo summarizes one stored table.
type TableInfo struct {
	Name      string
	Variant   string
	Entries   int
	Revision  int
	UpdatedAt time.Time
}

// ActionTableRepository stores action tables as YAML documents plus an
// entry index used for clip lookups.
type ActionTableRepository struct {
	db *pgxpool.Pool
}

// NewActionTableRepository creates an ActionTableRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewActionTableRepository(db *pgxpool.Pool) *ActionTableRepository {
	return &ActionTableRepository{db: db}
}

// Create inserts t.
//
// Precondition: t must be non-nil.
// Postcondition: Returns ErrTableExists if a table named t.Name() is stored.
func (r *ActionTableRepository) Create(ctx context.Context, t *action.Table) error {
	doc, err := action.MarshalTable(t)
	if err != nil {
		return fmt.Errorf("encoding table %q: %w", t.Name(), err)
	}
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO action_tables (name, variant, document, entry_count)
			 VALUES ($1, $2, $3, $4)`,
			t.Name(), t.Variant().String(), string(doc), t.Len(),
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return ErrTableExists
			}
			return fmt.Errorf("inserting table %q: %w", t.Name(), err)
		}
		return writeEntries(ctx, tx, t)
	})
}

// Save inserts t or replaces the stored table of the same name.
//
// Precondition: t must be non-nil.
// Postcondition: Returns the stored revision, 1 for a new table and
// incremented on every replacement.
func (r *ActionTableRepository) Save(ctx context.Context, t *action.Table) (int, error) {
	doc, err := action.MarshalTable(t)
	if err != nil {
		return 0, fmt.Errorf("encoding table %q: %w", t.Name(), err)
	}
	var revision int
	err = inTx(ctx, r.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO action_tables (name, variant, document, entry_count)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (name) DO UPDATE
			 SET variant = EXCLUDED.variant,
			     document = EXCLUDED.document,
			     entry_count = EXCLUDED.entry_count,
			     revision = action_tables.revision + 1,
			     updated_at = NOW()
			 RETURNING revision`,
			t.Name(), t.Variant().String(), string(doc), t.Len(),
		).Scan(&revision)
		if err != nil {
			return fmt.Errorf("upserting table %q: %w", t.Name(), err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM action_entries WHERE table_name = $1`, t.Name()); err != nil {
			return fmt.Errorf("clearing entries of %q: %w", t.Name(), err)
		}
		return writeEntries(ctx, tx, t)
	})
	if err != nil {
		return 0, err
	}
	return revision, nil
}

func writeEntries(ctx context.Context, tx pgx.Tx, t *action.Table) error {
	rows := t.Rows()
	src := make([][]any, len(rows))
	for i, e := range rows {
		src[i] = []any{t.Name(), i, e.Name, e.Clip}
	}
	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{"action_entries"},
		[]string{"table_name", "position", "name", "clip"},
		pgx.CopyFromRows(src),
	)
	if err != nil {
		return fmt.Errorf("writing entries of %q: %w", t.Name(), err)
	}
	return nil
}

// Load returns the stored table named name.
//
// Postcondition: Returns ErrTableNotFound when no such table is stored.
func (r *ActionTableRepository) Load(ctx context.Context, name string) (*action.Table, error) {
	var doc string
	err := r.db.QueryRow(ctx, `SELECT document FROM action_tables WHERE name = $1`, name).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTableNotFound
		}
		return nil, fmt.Errorf("querying table %q: %w", name, err)
	}
	t, err := action.LoadTableBytes([]byte(doc))
	if err != nil {
		return nil, fmt.Errorf("decoding table %q: %w", name, err)
	}
	return t, nil
}

// LoadAll returns every stored table ordered by name.
func (r *ActionTableRepository) LoadAll(ctx context.Context) ([]*action.Table, error) {
	rows, err := r.db.Query(ctx, `SELECT name, document FROM action_tables ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("querying tables: %w", err)
	}
	defer rows.Close()

	var out []*action.Table
	for rows.Next() {
		var name, doc string
		if err := rows.Scan(&name, &doc); err != nil {
			return nil, fmt.Errorf("scanning table: %w", err)
		}
		t, err := action.LoadTableBytes([]byte(doc))
		if err != nil {
			return nil, fmt.Errorf("decoding table %q: %w", name, err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// List summarizes every stored table ordered by name.
func (r *ActionTableRepository) List(ctx context.Context) ([]TableInfo, error) {
	rows, err := r.db.Query(ctx,
		`SELECT name, variant, entry_count, revision, updated_at
		 FROM action_tables ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}
	infos, err := pgx.CollectRows(rows, pgx.RowToStructByPos[TableInfo])
	if err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}
	return infos, nil
}

// TablesUsingClip returns the names of tables with an entry playing clip.
func (r *ActionTableRepository) TablesUsingClip(ctx context.Context, clip string) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT DISTINCT table_name FROM action_entries WHERE clip = $1 ORDER BY table_name`, clip)
	if err != nil {
		return nil, fmt.Errorf("querying clip %q: %w", clip, err)
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("querying clip %q: %w", clip, err)
	}
	return names, nil
}

// Delete removes the table named name and its entry index.
//
// Postcondition: Returns ErrTableNotFound when no such table is stored.
func (r *ActionTableRepository) Delete(ctx context.Context, name string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM action_tables WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("deleting table %q: %w", name, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTableNotFound
	}
	return nil
}
