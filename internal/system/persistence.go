package system

import (
	"context"
	"time"

	"github.com/nngn/engine/internal/core/event"
	coresys "github.com/nngn/engine/internal/core/system"
	"github.com/nngn/engine/internal/persist"
	"github.com/nngn/engine/internal/world"
	"go.uber.org/zap"
)

// SnapshotSystem periodically saves a snapshot of the live entities, but
// only when a lifecycle event has been seen since the last save.
// Phase 4 (Persist).
type SnapshotSystem struct {
	world     *world.State
	store     persist.Store
	log       *zap.Logger
	tickCount int
	interval  int // auto-save every N ticks, 0 disables
	dirty     bool
	timeout   time.Duration
}

func NewSnapshotSystem(ws *world.State, store persist.Store, log *zap.Logger, intervalTicks int) *SnapshotSystem {
	s := &SnapshotSystem{
		world:    ws,
		store:    store,
		log:      log,
		interval: intervalTicks,
		timeout:  5 * time.Second,
	}
	event.Subscribe(ws.Bus(), func(event.EntityCreated) { s.dirty = true })
	event.Subscribe(ws.Bus(), func(event.EntityDestroyed) { s.dirty = true })
	event.Subscribe(ws.Bus(), func(event.EntityRenamed) { s.dirty = true })
	return s
}

func (s *SnapshotSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *SnapshotSystem) Update(_ time.Duration) {
	if s.interval <= 0 {
		return
	}
	s.tickCount++
	if s.tickCount < s.interval {
		return
	}
	s.tickCount = 0
	if !s.dirty {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.save(ctx); err != nil {
		s.log.Error("auto-save snapshot failed", zap.Error(err))
	}
}

// SaveNow saves unconditionally. Called on shutdown.
func (s *SnapshotSystem) SaveNow(ctx context.Context) error {
	return s.save(ctx)
}

// Dirty reports whether entities changed since the last successful save.
func (s *SnapshotSystem) Dirty() bool { return s.dirty }

func (s *SnapshotSystem) save(ctx context.Context) error {
	snap := persist.Capture(s.world)
	if err := s.store.Save(ctx, snap); err != nil {
		return err
	}
	s.dirty = false
	s.log.Info("snapshot saved",
		zap.Stringer("id", snap.ID),
		zap.Int("entities", len(snap.Entities)))
	return nil
}
