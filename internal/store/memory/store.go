package memory

import (
	"bytes"
	"context"
	"errors"
	"maps"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/wolfeidau/notifyroute/internal/models"
	"github.com/wolfeidau/notifyroute/internal/store"
)

var errReadOnly = errors.New("write attempted in read-only transaction")

var _ store.Store = (*Store)(nil)

// Store implements store.Store using in-memory storage.
// This implementation is for testing only - data is lost on restart.
//
// Writers are serialized by a mutex and work on a clone of the current state;
// the clone replaces the state only when the transaction function succeeds,
// so a failed Update leaves no partial writes behind.
type Store struct {
	mu    sync.RWMutex
	state *state
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{state: newState()}
}

// Update runs fn against a private copy of the state and commits it on success.
func (s *Store) Update(ctx context.Context, fn func(tx store.Tx) error) error {
	return s.update(func(st *state) error {
		return fn(&tx{st: st})
	})
}

func (s *Store) update(fn func(st *state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.clone()
	if err := fn(next); err != nil {
		return err
	}

	s.state = next
	return nil
}

// View runs fn against the current state under a shared lock.
func (s *Store) View(ctx context.Context, fn func(tx store.Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return fn(&tx{st: s.state, readOnly: true})
}

// Catalog returns the collaborator catalog backed by the same state.
func (s *Store) Catalog() store.Catalog {
	return &Catalog{s: s}
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() {}

type groupRow struct {
	group      models.BehaviorGroup
	nameUnique bool
}

type behaviorKey struct {
	eventTypeID     uuid.UUID
	behaviorGroupID uuid.UUID
}

type actionKey struct {
	behaviorGroupID uuid.UUID
	endpointID      uuid.UUID
}

type state struct {
	bundles      map[uuid.UUID]models.Bundle
	applications map[uuid.UUID]models.Application
	eventTypes   map[uuid.UUID]models.EventType
	endpoints    map[uuid.UUID]models.Endpoint
	groups       map[uuid.UUID]groupRow
	behaviors    map[behaviorKey]models.EventTypeBehavior
	actions      map[actionKey]models.BehaviorGroupAction
}

func newState() *state {
	return &state{
		bundles:      make(map[uuid.UUID]models.Bundle),
		applications: make(map[uuid.UUID]models.Application),
		eventTypes:   make(map[uuid.UUID]models.EventType),
		endpoints:    make(map[uuid.UUID]models.Endpoint),
		groups:       make(map[uuid.UUID]groupRow),
		behaviors:    make(map[behaviorKey]models.EventTypeBehavior),
		actions:      make(map[actionKey]models.BehaviorGroupAction),
	}
}

// clone copies every table. Rows are values and account ids are never
// mutated in place, so a shallow copy of each map is enough.
func (st *state) clone() *state {
	return &state{
		bundles:      maps.Clone(st.bundles),
		applications: maps.Clone(st.applications),
		eventTypes:   maps.Clone(st.eventTypes),
		endpoints:    maps.Clone(st.endpoints),
		groups:       maps.Clone(st.groups),
		behaviors:    maps.Clone(st.behaviors),
		actions:      maps.Clone(st.actions),
	}
}

func cloneAccountID(accountID *string) *string {
	if accountID == nil {
		return nil
	}
	id := *accountID
	return &id
}

// sortGroups orders by creation time descending, then id descending.
func sortGroups(groups []*models.BehaviorGroup) {
	sort.Slice(groups, func(i, j int) bool {
		a, b := groups[i], groups[j]
		if !a.Created.Equal(b.Created) {
			return a.Created.After(b.Created)
		}
		return bytes.Compare(a.ID[:], b.ID[:]) > 0
	})
}
