package dataset

import (
	"fmt"
	"slices"
	"sync"
)

// ID identifies one loaded dataset. IDs are never reused within a Registry,
// so a replaced or reloaded dataset always gets a fresh identity and cached
// views keyed by the old ID can never be served for it.
type ID uint64

func (id ID) String() string {
	return fmt.Sprintf("ds-%d", id)
}

// Registry holds the datasets currently loaded in the viewer.
type Registry struct {
	mu       sync.Mutex
	datasets map[ID]*Dataset
	nextID   ID
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		datasets: make(map[ID]*Dataset),
		nextID:   1,
	}
}

// Add registers ds and returns its identity.
func (r *Registry) Add(ds *Dataset) (ID, error) {
	if ds == nil {
		return 0, fmt.Errorf("add dataset: nil dataset")
	}
	if err := ds.Validate(); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.addLocked(ds), nil
}

// addLocked assigns the next ID (mutex must be held)
func (r *Registry) addLocked(ds *Dataset) ID {
	id := r.nextID
	r.nextID++
	r.datasets[id] = ds
	return id
}

// Get returns the dataset registered under id.
func (r *Registry) Get(id ID) (*Dataset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ds, ok := r.datasets[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return ds, nil
}

// Replace swaps the dataset under id for ds. The old ID is retired and the
// new dataset is returned under a fresh ID.
func (r *Registry) Replace(id ID, ds *Dataset) (ID, error) {
	if ds == nil {
		return 0, fmt.Errorf("replace dataset: nil dataset")
	}
	if err := ds.Validate(); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.datasets[id]; !ok {
		return 0, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(r.datasets, id)
	return r.addLocked(ds), nil
}

// Remove unregisters id. Removing an unknown ID is not an error.
func (r *Registry) Remove(id ID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.datasets, id)
}

// Contains reports whether id is currently registered.
func (r *Registry) Contains(id ID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.datasets[id]
	return ok
}

// IDs returns the registered IDs in ascending (load) order.
func (r *Registry) IDs() []ID {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]ID, 0, len(r.datasets))
	for id := range r.datasets {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
