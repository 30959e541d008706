package persist

import "context"

// Store saves and restores registry snapshots. FileStore and SnapshotRepo
// implement it.
type Store interface {
	Save(ctx context.Context, snap Snapshot) error
	LoadLatest(ctx context.Context) (Snapshot, error)
}

var (
	_ Store = (*FileStore)(nil)
	_ Store = (*SnapshotRepo)(nil)
)
