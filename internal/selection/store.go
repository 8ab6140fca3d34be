package selection

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"smartentrance/internal/events"
	"smartentrance/internal/models"
	"smartentrance/internal/utils/logger"
)

var log = logger.New("selection")

// Change is the payload of selection events.
type Change struct {
	Key   string
	Scope Envelope
}

// Store owns the scope of one tab. Its mutators are the only write path, and each one
// persists synchronously before updating memory, so storage mirrors memory whenever a
// mutator returns.
type Store struct {
	mu         sync.RWMutex
	key        string
	storage    Storage
	guard      *Guard
	scope      Scope
	generation uint64
	// scope generation of the guard when scope was last read or written
	observed   uint64
}

// NewStore creates a store for key. guard may be nil.
func NewStore(storage Storage, key string, guard *Guard) *Store {
	return &Store{
		key:      key,
		storage:  storage,
		guard:    guard,
		scope:    NoScope{},
		observed: guard.ScopeGeneration(key),
	}
}

func (s *Store) Key() string {
	return s.key
}

// Load rehydrates the scope from storage. A missing entry yields NoScope; an unreadable
// or corrupted one is logged and also yields NoScope.
func (s *Store) Load(ctx context.Context) Scope {
	// taken before the read, so a change racing the read leaves tickets stale
	observed := s.guard.ScopeGeneration(s.key)
	scope := s.read(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.scope = scope
	s.observed = observed
	return scope
}

func (s *Store) read(ctx context.Context) Scope {
	data, err := s.storage.Read(ctx, s.key)
	if errors.Is(err, ErrNotFound) {
		return NoScope{}
	}
	if err != nil {
		log.Warn("failed to read selection for %s: %v", s.key, err)
		return NoScope{}
	}

	scope, err := Decode(data)
	if err != nil {
		log.Warn("discarding selection for %s: %v", s.key, err)
		return NoScope{}
	}
	return scope
}

// SelectBuilding switches to the manager perspective for building.
func (s *Store) SelectBuilding(ctx context.Context, building models.Building) error {
	return s.set(ctx, BuildingScope{Building: building})
}

// SelectUnit switches to the resident perspective for unit.
func (s *Store) SelectUnit(ctx context.Context, unit models.Unit) error {
	return s.set(ctx, UnitScope{Unit: unit})
}

// Clear resets to NoScope and removes the persisted entry.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.Remove(ctx, s.key); err != nil {
		return fmt.Errorf("clear selection: %w", err)
	}
	s.scope = NoScope{}
	s.generation++
	s.observed = s.guard.Invalidate(s.key)

	events.Emit(events.SelectionCleared, Change{Key: s.key, Scope: ToEnvelope(NoScope{})})
	return nil
}

func (s *Store) set(ctx context.Context, scope Scope) error {
	data, err := Encode(scope)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.Write(ctx, s.key, data); err != nil {
		return fmt.Errorf("persist selection: %w", err)
	}
	s.scope = scope
	s.generation++
	s.observed = s.guard.Invalidate(s.key)

	events.Emit(events.SelectionChanged, Change{Key: s.key, Scope: ToEnvelope(scope)})
	return nil
}

func (s *Store) Scope() Scope {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scope
}

func (s *Store) Building() *models.Building {
	return BuildingOf(s.Scope())
}

func (s *Store) Unit() *models.Unit {
	return UnitOf(s.Scope())
}

// Begin starts a request generation for topic on this tab. The ticket is bound to the
// scope this store last read or wrote; it goes stale when a newer request for the same
// topic starts or the scope changes after that point.
func (s *Store) Begin(topic string) Ticket {
	s.mu.RLock()
	observed := s.observed
	s.mu.RUnlock()
	return s.guard.BeginAt(s.key, topic, observed)
}

// Generation counts successful mutations on this store.
func (s *Store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}
