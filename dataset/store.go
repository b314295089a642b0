package dataset

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Acquisition describes a saved dataset.
type Acquisition struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Scans     int       `json:"scans"`
	Peaks     int       `json:"peaks"`
	CreatedAt time.Time `json:"created_at"`
}

// Store defines the interface for persisting acquisitions.
type Store interface {
	// Save stores ds under a new acquisition ID and returns that ID.
	Save(name string, ds *Dataset) (string, error)

	// Load reads and validates the dataset of an acquisition.
	Load(id string) (*Dataset, error)

	// Get returns the metadata of an acquisition.
	Get(id string) (Acquisition, error)

	// List returns all acquisitions, oldest first.
	List() ([]Acquisition, error)

	// Delete removes an acquisition and its scans.
	Delete(id string) error

	// Close closes the store and releases resources.
	Close() error
}

// NewAcquisitionID returns a fresh acquisition ID.
func NewAcquisitionID() string {
	return uuid.NewString()
}

type savedAcquisition struct {
	meta Acquisition
	ds   *Dataset
}

// MemoryStore provides an in-memory implementation of Store.
type MemoryStore struct {
	mu           sync.Mutex
	acquisitions map[string]*savedAcquisition
	now          func() time.Time
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		acquisitions: make(map[string]*savedAcquisition),
		now:          time.Now,
	}
}

// Save validates ds and keeps a reference to it.
func (m *MemoryStore) Save(name string, ds *Dataset) (string, error) {
	if ds == nil {
		return "", fmt.Errorf("save acquisition: nil dataset")
	}
	if err := ds.Validate(); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	id := NewAcquisitionID()
	m.acquisitions[id] = &savedAcquisition{
		meta: Acquisition{
			ID:        id,
			Name:      name,
			Scans:     ds.Len(),
			Peaks:     ds.Peaks(),
			CreatedAt: m.now(),
		},
		ds: ds,
	}
	return id, nil
}

// Load returns the saved dataset.
func (m *MemoryStore) Load(id string) (*Dataset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	acq, ok := m.acquisitions[id]
	if !ok {
		return nil, fmt.Errorf("%w: acquisition %s", ErrNotFound, id)
	}
	return acq.ds, nil
}

// Get returns acquisition metadata.
func (m *MemoryStore) Get(id string) (Acquisition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	acq, ok := m.acquisitions[id]
	if !ok {
		return Acquisition{}, fmt.Errorf("%w: acquisition %s", ErrNotFound, id)
	}
	return acq.meta, nil
}

// List returns all acquisitions ordered by creation time, then ID.
func (m *MemoryStore) List() ([]Acquisition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]Acquisition, 0, len(m.acquisitions))
	for _, acq := range m.acquisitions {
		result = append(result, acq.meta)
	}
	slices.SortFunc(result, func(a, b Acquisition) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return result, nil
}

// Delete removes an acquisition. Deleting an unknown ID is not an error.
func (m *MemoryStore) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.acquisitions, id)
	return nil
}

// Close is a no-op for the in-memory store as there are no resources to release.
func (m *MemoryStore) Close() error {
	return nil
}
