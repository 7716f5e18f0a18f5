package profile

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/lockedin/go-focus-monitor/internal/core/model"
	"github.com/lockedin/go-focus-monitor/internal/util"
)

var (
	// ErrNotFound is returned when a profile name is unknown.
	ErrNotFound = errors.New("profile not found")
	// ErrInUse is returned when deleting the active profile.
	ErrInUse = errors.New("profile is active")
	// ErrProtected is returned when deleting a built-in profile.
	ErrProtected = errors.New("built-in profiles cannot be deleted")
)

// Registry holds the named productivity profiles and tracks which one is
// active. Mutations only affect classification requests issued after the
// mutation returns; in-flight requests keep the snapshot they captured.
type Registry struct {
	mu       sync.RWMutex
	profiles map[string]Profile
	active   string
}

// NewRegistry creates a registry seeded with the built-in archetypes.
func NewRegistry() *Registry {
	r := &Registry{
		profiles: make(map[string]Profile),
		active:   DefaultProfileName,
	}
	for _, p := range builtinProfiles() {
		r.profiles[p.Name] = p
	}
	return r
}

// Active returns a copy of the active profile.
func (r *Registry) Active() Profile {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.profiles[r.active].clone()
}

// ActiveSnapshot captures the active profile's criteria for a
// classification request.
func (r *Registry) ActiveSnapshot() model.ProfileSnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.profiles[r.active].Snapshot()
}

// SetActive switches the active profile.
func (r *Registry) SetActive(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.profiles[name]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	r.active = name
	util.LogInfof("Active profile set to %s", name)
	return nil
}

// Get returns a copy of the named profile.
func (r *Registry) Get(name string) (Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return p.clone(), nil
}

// Upsert replaces or inserts a profile by name. A built-in entry keeps
// its protected flag even when replaced with edited criteria.
func (r *Registry) Upsert(p Profile) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.profiles[p.Name]; ok && existing.BuiltIn {
		p.BuiltIn = true
	}
	p.UpdatedAt = time.Now()
	r.profiles[p.Name] = p.clone()
}

// Delete removes a user-defined, non-active profile.
func (r *Registry) Delete(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.profiles[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if p.BuiltIn {
		return fmt.Errorf("%w: %s", ErrProtected, name)
	}
	if name == r.active {
		return fmt.Errorf("%w: %s", ErrInUse, name)
	}
	delete(r.profiles, name)
	return nil
}

// List returns all profiles sorted by name.
func (r *Registry) List() []Profile {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Profile, 0, len(r.profiles))
	for _, p := range r.profiles {
		out = append(out, p.clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ActiveName returns the name of the active profile.
func (r *Registry) ActiveName() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active
}

// Export returns a serializable snapshot of the registry for the
// persistence collaborator.
func (r *Registry) Export() RegistrySnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap := RegistrySnapshot{Active: r.active}
	for _, p := range r.profiles {
		snap.Profiles = append(snap.Profiles, p.clone())
	}
	sort.Slice(snap.Profiles, func(i, j int) bool { return snap.Profiles[i].Name < snap.Profiles[j].Name })
	return snap
}

// RegistrySnapshot is the serializable state of the registry.
type RegistrySnapshot struct {
	Active   string    `json:"active"`
	Profiles []Profile `json:"profiles"`
}
