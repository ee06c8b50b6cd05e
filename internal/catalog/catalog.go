package catalog

import (
	"errors"
	"fmt"
	"sync"

	"arlingtonfleet/fleetmaint/internal/logging"
	"arlingtonfleet/fleetmaint/internal/models"
)

var (
	// ErrSystemExists is returned when adding a local system whose id is taken.
	ErrSystemExists = errors.New("system already defined for this consistency")
	// ErrSystemNotFound is returned for lookups of unknown systems.
	ErrSystemNotFound = errors.New("system not found")
)

// LocalStore persists user-defined system lists. The mirror implements it;
// persistence is best-effort and failures are logged, not surfaced.
type LocalStore interface {
	LoadLocalSystems() (map[string][]models.System, error)
	SaveLocalSystems(map[string][]models.System) error
}

// Catalog resolves the system list visible for a consistency: the default
// consistency uses the built-in catalog, every other one a user-defined
// ("local") list.
type Catalog struct {
	mu    sync.RWMutex
	local map[string][]models.System
	store LocalStore
}

// New builds a catalog, pre-seeding local systems from the store when one
// is provided.
func New(store LocalStore) *Catalog {
	c := &Catalog{
		local: make(map[string][]models.System),
		store: store,
	}
	if store != nil {
		if saved, err := store.LoadLocalSystems(); err != nil {
			logging.Warn("failed to load local systems from mirror", "error", err.Error())
		} else if saved != nil {
			c.local = saved
		}
	}
	return c
}

// SystemsFor returns the systems visible for a consistency. The returned
// slice is a copy; mutate through the Add/Remove methods.
func (c *Catalog) SystemsFor(consistency string) []models.System {
	if consistency == models.DefaultConsistency {
		return append([]models.System(nil), BuiltinSystems...)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.System(nil), c.local[consistency]...)
}

// System looks a system up by id within a consistency's visible list.
func (c *Catalog) System(consistency, systemID string) (models.System, bool) {
	for _, s := range c.SystemsFor(consistency) {
		if s.ID == systemID {
			return s, true
		}
	}
	return models.System{}, false
}

// SystemForOperation finds the system owning the given operation code.
func (c *Catalog) SystemForOperation(consistency, operationID string) (models.System, bool) {
	for _, s := range c.SystemsFor(consistency) {
		if _, ok := s.Operation(operationID); ok {
			return s, true
		}
	}
	return models.System{}, false
}

// AddLocalSystem appends a user-defined system to a non-default
// consistency's list.
func (c *Catalog) AddLocalSystem(consistency string, system models.System) error {
	if consistency == models.DefaultConsistency {
		return fmt.Errorf("the default consistency uses the built-in catalog")
	}
	if system.Name == "" || len(system.Operations) == 0 {
		return fmt.Errorf("a system needs a name and at least one operation")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, s := range c.local[consistency] {
		if s.ID == system.ID {
			return ErrSystemExists
		}
	}
	c.local[consistency] = append(c.local[consistency], system)
	c.persistLocked()
	return nil
}

// RemoveLocalSystem deletes a user-defined system. Records referencing it
// keep their raw ids; projections fall back to displaying those.
func (c *Catalog) RemoveLocalSystem(consistency, systemID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	systems := c.local[consistency]
	for i, s := range systems {
		if s.ID == systemID {
			c.local[consistency] = append(systems[:i], systems[i+1:]...)
			c.persistLocked()
			return nil
		}
	}
	return ErrSystemNotFound
}

// RemoveLocalOperation deletes one operation from a user-defined system.
func (c *Catalog) RemoveLocalOperation(consistency, systemID, operationID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	systems := c.local[consistency]
	for i, s := range systems {
		if s.ID != systemID {
			continue
		}
		for j, op := range s.Operations {
			if op.ID == operationID {
				s.Operations = append(s.Operations[:j], s.Operations[j+1:]...)
				systems[i] = s
				c.persistLocked()
				return nil
			}
		}
	}
	return ErrSystemNotFound
}

// DropConsistency removes a consistency's local system list entirely.
func (c *Catalog) DropConsistency(consistency string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.local[consistency]; !ok {
		return
	}
	delete(c.local, consistency)
	c.persistLocked()
}

// LocalSystems returns a snapshot of every consistency's local list.
func (c *Catalog) LocalSystems() map[string][]models.System {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string][]models.System, len(c.local))
	for cons, systems := range c.local {
		out[cons] = append([]models.System(nil), systems...)
	}
	return out
}

func (c *Catalog) persistLocked() {
	if c.store == nil {
		return
	}
	if err := c.store.SaveLocalSystems(c.local); err != nil {
		logging.Warn("failed to persist local systems to mirror", "error", err.Error())
	}
}
