package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/motioncombat/internal/game/reaction"
)

// ReactionTableRepository stores hit-reaction tables as YAML documents.
type ReactionTableRepository struct {
	db *pgxpool.Pool
}

// NewReactionTableRepository creates a ReactionTableRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewReactionTableRepository(db *pgxpool.Pool) *ReactionTableRepository {
	return &ReactionTableRepository{db: db}
}

// Save inserts t or replaces the stored table of the same name.
//
// Postcondition: Returns the stored revision.
func (r *ReactionTableRepository) Save(ctx context.Context, t *reaction.Table) (int, error) {
	doc, err := reaction.MarshalTable(t)
	if err != nil {
		return 0, fmt.Errorf("encoding reactions %q: %w", t.Name(), err)
	}
	var revision int
	err = r.db.QueryRow(ctx,
		`INSERT INTO reaction_tables (name, document, row_count)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (name) DO UPDATE
		 SET document = EXCLUDED.document,
		     row_count = EXCLUDED.row_count,
		     revision = reaction_tables.revision + 1,
		     updated_at = NOW()
		 RETURNING revision`,
		t.Name(), string(doc), t.Len(),
	).Scan(&revision)
	if err != nil {
		return 0, fmt.Errorf("upserting reactions %q: %w", t.Name(), err)
	}
	return revision, nil
}

// Load returns the stored table named name.
//
// Postcondition: Returns ErrTableNotFound when no such table is stored.
func (r *ReactionTableRepository) Load(ctx context.Context, name string) (*reaction.Table, error) {
	var doc string
	err := r.db.QueryRow(ctx, `SELECT document FROM reaction_tables WHERE name = $1`, name).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTableNotFound
		}
		return nil, fmt.Errorf("querying reactions %q: %w", name, err)
	}
	t, err := reaction.LoadTableBytes([]byte(doc))
	if err != nil {
		return nil, fmt.Errorf("decoding reactions %q: %w", name, err)
	}
	return t, nil
}

// LoadAll returns every stored table ordered by name.
func (r *ReactionTableRepository) LoadAll(ctx context.Context) ([]*reaction.Table, error) {
	rows, err := r.db.Query(ctx, `SELECT document FROM reaction_tables ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("querying reactions: %w", err)
	}
	docs, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("querying reactions: %w", err)
	}
	out := make([]*reaction.Table, 0, len(docs))
	for _, doc := range docs {
		t, err := reaction.LoadTableBytes([]byte(doc))
		if err != nil {
			return nil, fmt.Errorf("decoding reactions: %w", err)
		}
		out = append(out, t)
	}
	return out, nil
}
