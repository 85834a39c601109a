package services

import (
	"context"
	"fmt"
	"sync"

	"timetable-api/models"
)

// Ledger is the shared scheduling state: the entity snapshot, the slot
// universe, the conflict index and the lecture store. mu serializes every
// read-check-write sequence over the index and the store.
type Ledger struct {
	mu       sync.Mutex
	universe *models.SlotUniverse
	snapshot *models.Snapshot
	index    *ConflictIndex
	store    LectureStore
	cache    *CacheService
}

// NewLedger loads the stored lectures and builds the conflict index from them.
func NewLedger(ctx context.Context, universe *models.SlotUniverse, snapshot *models.Snapshot, store LectureStore, cache *CacheService) (*Ledger, error) {
	lectures, err := store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load booked lectures: %w", err)
	}
	idx, err := BuildConflictIndex(snapshot, universe, lectures)
	if err != nil {
		return nil, fmt.Errorf("stored lectures do not fit the snapshot: %w", err)
	}
	return &Ledger{
		universe: universe,
		snapshot: snapshot,
		index:    idx,
		store:    store,
		cache:    cache,
	}, nil
}

func (l *Ledger) Universe() *models.SlotUniverse {
	return l.universe
}

func (l *Ledger) Snapshot() *models.Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshot
}

func (l *Ledger) Lectures(ctx context.Context) ([]models.BookedLecture, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.List(ctx)
}

// ReplaceSnapshot installs a new entity snapshot. It is refused when an
// existing booking would lose its class-subject or its slot.
func (l *Ledger) ReplaceSnapshot(ctx context.Context, snapshot *models.Snapshot) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	lectures, err := l.store.List(ctx)
	if err != nil {
		return fmt.Errorf("load booked lectures: %w", err)
	}
	idx, err := BuildConflictIndex(snapshot, l.universe, lectures)
	if err != nil {
		return err
	}
	l.snapshot = snapshot
	l.index = idx
	l.invalidate()
	return nil
}

func (l *Ledger) invalidate() {
	if l.cache != nil {
		l.cache.Flush()
	}
}
