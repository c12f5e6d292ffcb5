package actor

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/raidstone/wgevents/guard/region"
)

var (
	ErrActorNotFound      = errors.New("actor not found")
	ErrActorAlreadyOnline = errors.New("actor already online")
	ErrNameTaken          = errors.New("actor name already in use")
	ErrInvalidName        = errors.New("invalid actor name")
	ErrMoveCancelled      = errors.New("move cancelled by session handler")
)

// Actor is an online actor and its last known position
type Actor struct {
	ID         region.ActorRef   `json:"id"`
	Name       string            `json:"name"`
	Position   region.Coordinate `json:"position"`
	JoinedAt   time.Time         `json:"joined_at"`
	LastSeenAt time.Time         `json:"last_seen_at"`
}

// SessionHandler is told about actor sessions. OnMove may veto a move by
// returning false. Handlers are called without the manager's lock held, so
// they may query the manager, but OnMove must not move the same actor.
type SessionHandler interface {
	OnJoin(actor region.ActorRef, at region.Coordinate)
	OnMove(actor region.ActorRef, from, to region.Coordinate) bool
	OnQuit(actor region.ActorRef, last region.Coordinate)
}

// Manager tracks online actors. It implements region.ActorDirectory.
type Manager struct {
	actors   map[region.ActorRef]*Actor
	names    map[string]region.ActorRef
	moving   map[region.ActorRef]*sync.Mutex
	handlers []SessionHandler
	mu       sync.RWMutex
}

// NewManager creates an empty actor manager
func NewManager() *Manager {
	return &Manager{
		actors: make(map[region.ActorRef]*Actor),
		names:  make(map[string]region.ActorRef),
		moving: make(map[region.ActorRef]*sync.Mutex),
	}
}

// RegisterHandler adds a session handler. It returns false if h is nil or
// already registered.
func (m *Manager) RegisterHandler(h SessionHandler) bool {
	if h == nil {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.handlers {
		if existing == h {
			return false
		}
	}
	m.handlers = append(m.handlers, h)
	return true
}

// UnregisterHandler removes a session handler. It returns false if h was not
// registered.
func (m *Manager) UnregisterHandler(h SessionHandler) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, existing := range m.handlers {
		if existing == h {
			m.handlers = append(m.handlers[:i:i], m.handlers[i+1:]...)
			return true
		}
	}
	return false
}

// Join brings an actor online at the given coordinate. A nil id is replaced
// by a fresh random one.
func (m *Manager) Join(id region.ActorRef, name string, at region.Coordinate) (Actor, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Actor{}, fmt.Errorf("%w: name is required", ErrInvalidName)
	}
	if id == uuid.Nil {
		id = uuid.New()
	}

	m.mu.Lock()
	if _, exists := m.actors[id]; exists {
		m.mu.Unlock()
		return Actor{}, ErrActorAlreadyOnline
	}
	if _, taken := m.names[strings.ToLower(name)]; taken {
		m.mu.Unlock()
		return Actor{}, ErrNameTaken
	}

	now := time.Now()
	a := &Actor{
		ID:         id,
		Name:       name,
		Position:   at,
		JoinedAt:   now,
		LastSeenAt: now,
	}
	m.actors[id] = a
	m.names[strings.ToLower(name)] = id
	m.moving[id] = &sync.Mutex{}
	snapshot := *a
	handlers := m.handlersLocked()
	m.mu.Unlock()

	for _, h := range handlers {
		h.OnJoin(id, at)
	}

	return snapshot, nil
}

// Move relocates an online actor. Every registered handler sees the move
// first; if any of them vetoes it the actor stays put and ErrMoveCancelled
// is returned. Moves of the same actor are serialized, so each one is
// checked against the position the previous one left behind.
func (m *Manager) Move(id region.ActorRef, to region.Coordinate) (Actor, error) {
	m.mu.RLock()
	lock, exists := m.moving[id]
	m.mu.RUnlock()
	if !exists {
		return Actor{}, ErrActorNotFound
	}

	lock.Lock()
	defer lock.Unlock()

	m.mu.RLock()
	a, exists := m.actors[id]
	if !exists || m.moving[id] != lock {
		m.mu.RUnlock()
		return Actor{}, ErrActorNotFound
	}
	from := a.Position
	handlers := m.handlersLocked()
	m.mu.RUnlock()

	for _, h := range handlers {
		if !h.OnMove(id, from, to) {
			return m.snapshot(id, ErrMoveCancelled)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// The actor may have left, or left and rejoined, while handlers ran
	a, exists = m.actors[id]
	if !exists || m.moving[id] != lock {
		return Actor{}, ErrActorNotFound
	}
	a.Position = to
	a.LastSeenAt = time.Now()
	return *a, nil
}

// Leave takes an actor offline
func (m *Manager) Leave(id region.ActorRef) error {
	m.mu.Lock()
	a, exists := m.actors[id]
	if !exists {
		m.mu.Unlock()
		return ErrActorNotFound
	}
	m.removeLocked(a)
	last := a.Position
	handlers := m.handlersLocked()
	m.mu.Unlock()

	for _, h := range handlers {
		h.OnQuit(id, last)
	}
	return nil
}

// Get returns an online actor by id
func (m *Manager) Get(id region.ActorRef) (Actor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, exists := m.actors[id]
	if !exists {
		return Actor{}, ErrActorNotFound
	}
	return *a, nil
}

// FindByName returns an online actor by name (case-insensitive)
func (m *Manager) FindByName(name string) (Actor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, exists := m.names[strings.ToLower(strings.TrimSpace(name))]
	if !exists {
		return Actor{}, ErrActorNotFound
	}
	return *m.actors[id], nil
}

// Resolve returns the actor's current coordinate, or false if it is offline
func (m *Manager) Resolve(id region.ActorRef) (region.Coordinate, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, exists := m.actors[id]
	if !exists {
		return region.Coordinate{}, false
	}
	return a.Position, true
}

// List returns all online actors sorted by name
func (m *Manager) List() []Actor {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]Actor, 0, len(m.actors))
	for _, a := range m.actors {
		result = append(result, *a)
	}
	sort.Slice(result, func(i, j int) bool {
		return strings.ToLower(result[i].Name) < strings.ToLower(result[j].Name)
	})
	return result
}

// Count returns the number of online actors
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.actors)
}

// CleanupIdle takes offline every actor not seen within maxIdle and returns
// how many were removed
func (m *Manager) CleanupIdle(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	m.mu.Lock()
	var expired []Actor
	for _, a := range m.actors {
		if a.LastSeenAt.Before(cutoff) {
			expired = append(expired, *a)
			m.removeLocked(a)
		}
	}
	handlers := m.handlersLocked()
	m.mu.Unlock()

	for _, a := range expired {
		for _, h := range handlers {
			h.OnQuit(a.ID, a.Position)
		}
	}
	return len(expired)
}

func (m *Manager) snapshot(id region.ActorRef, err error) (Actor, error) {
	a, getErr := m.Get(id)
	if getErr != nil {
		return Actor{}, getErr
	}
	return a, err
}

func (m *Manager) removeLocked(a *Actor) {
	delete(m.actors, a.ID)
	delete(m.names, strings.ToLower(a.Name))
	delete(m.moving, a.ID)
}

func (m *Manager) handlersLocked() []SessionHandler {
	return append([]SessionHandler(nil), m.handlers...)
}
