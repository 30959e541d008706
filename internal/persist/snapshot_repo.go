package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type SnapshotRepo struct {
	db *DB
}

func NewSnapshotRepo(db *DB) *SnapshotRepo {
	return &SnapshotRepo{db: db}
}

// Save writes the snapshot header and its rows in one transaction.
func (r *SnapshotRepo) Save(ctx context.Context, snap Snapshot) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("snapshot begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO entity_snapshots (id, taken_at, max_entities) VALUES ($1, $2, $3)`,
		snap.ID, snap.TakenAt, snap.Max,
	); err != nil {
		return fmt.Errorf("snapshot insert: %w", err)
	}

	rows := make([][]any, len(snap.Entities))
	for i, e := range snap.Entities {
		rows[i] = []any{snap.ID, int32(i), []byte(e.Name), []byte(e.Tag)}
	}
	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"entity_snapshot_rows"},
		[]string{"snapshot_id", "seq", "name", "tag"},
		pgx.CopyFromRows(rows),
	); err != nil {
		return fmt.Errorf("snapshot rows: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("snapshot commit: %w", err)
	}
	r.db.log.Debug("entity snapshot saved")
	return nil
}

// LoadLatest returns the most recent snapshot, or ErrNoSnapshot.
func (r *SnapshotRepo) LoadLatest(ctx context.Context) (Snapshot, error) {
	var (
		snap Snapshot
		id   string
	)
	err := r.db.Pool.QueryRow(ctx,
		`SELECT id::text, taken_at, max_entities
		 FROM entity_snapshots ORDER BY taken_at DESC LIMIT 1`,
	).Scan(&id, &snap.TakenAt, &snap.Max)
	if errors.Is(err, pgx.ErrNoRows) {
		return Snapshot{}, ErrNoSnapshot
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("snapshot header: %w", err)
	}
	if snap.ID, err = uuid.Parse(id); err != nil {
		return Snapshot{}, fmt.Errorf("snapshot id %q: %w", id, err)
	}

	rows, err := r.db.Pool.Query(ctx,
		`SELECT name, tag FROM entity_snapshot_rows
		 WHERE snapshot_id = $1 ORDER BY seq`, snap.ID,
	)
	if err != nil {
		return Snapshot{}, fmt.Errorf("snapshot rows: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name, tag []byte
		if err := rows.Scan(&name, &tag); err != nil {
			return Snapshot{}, fmt.Errorf("scan snapshot row: %w", err)
		}
		snap.Entities = append(snap.Entities, SnapshotEntity{Name: string(name), Tag: string(tag)})
	}
	return snap, rows.Err()
}

// Prune deletes all but the newest keep snapshots.
func (r *SnapshotRepo) Prune(ctx context.Context, keep int) (int64, error) {
	tag, err := r.db.Pool.Exec(ctx,
		`DELETE FROM entity_snapshots WHERE id NOT IN (
		     SELECT id FROM entity_snapshots ORDER BY taken_at DESC LIMIT $1
		 )`, keep,
	)
	if err != nil {
		return 0, fmt.Errorf("prune snapshots: %w", err)
	}
	return tag.RowsAffected(), nil
}
