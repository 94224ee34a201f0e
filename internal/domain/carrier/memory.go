package carrier

import (
	"context"
	"sort"
	"sync"

	"transdoc/internal/core/apperror"
	"transdoc/internal/core/id"
)

// MemoryStore is an in-process Repository, LicenseRepository and Writer.
// Use in unit tests to avoid database dependencies.
type MemoryStore struct {
	mu       sync.RWMutex
	carriers map[id.ID]*Carrier
	licenses map[id.ID][]DestinationLicense
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		carriers: make(map[id.ID]*Carrier),
		licenses: make(map[id.ID][]DestinationLicense),
	}
}

// PutCarrier inserts or replaces a carrier, assigning an id when missing.
func (m *MemoryStore) PutCarrier(c *Carrier) *Carrier {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id.IsNil(c.ID) {
		c.ID = id.New()
	}
	cp := *c
	m.carriers[c.ID] = &cp
	return c
}

// PutLicense inserts or replaces the license for (carrier, destination).
func (m *MemoryStore) PutLicense(l DestinationLicense) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id.IsNil(l.ID) {
		l.ID = id.New()
	}
	list := m.licenses[l.CarrierID]
	for i := range list {
		if list[i].DestinationCountry == l.DestinationCountry {
			list[i] = l
			return
		}
	}
	m.licenses[l.CarrierID] = append(list, l)
}

// GetByID implements Repository.
func (m *MemoryStore) GetByID(_ context.Context, carrierID id.ID) (*Carrier, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.carriers[carrierID]
	if !ok {
		return nil, apperror.NewNotFound("carrier", carrierID)
	}
	cp := *c
	return &cp, nil
}

// List implements Repository. Carriers are ordered by name.
func (m *MemoryStore) List(_ context.Context) ([]*Carrier, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Carrier, 0, len(m.carriers))
	for _, c := range m.carriers {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ListForCarrier implements LicenseRepository.
func (m *MemoryStore) ListForCarrier(_ context.Context, carrierID id.ID) ([]DestinationLicense, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]DestinationLicense, len(m.licenses[carrierID]))
	copy(out, m.licenses[carrierID])
	return out, nil
}

// SaveCarrier implements Writer, matching on registration number.
func (m *MemoryStore) SaveCarrier(_ context.Context, c *Carrier) error {
	if err := c.Validate(); err != nil {
		return err
	}
	m.mu.RLock()
	for _, existing := range m.carriers {
		if existing.RegistrationNumber == c.RegistrationNumber {
			c.ID = existing.ID
			break
		}
	}
	m.mu.RUnlock()
	m.PutCarrier(c)
	return nil
}

// SaveLicense implements Writer.
func (m *MemoryStore) SaveLicense(_ context.Context, l *DestinationLicense) error {
	m.mu.RLock()
	for _, existing := range m.licenses[l.CarrierID] {
		if existing.DestinationCountry == l.DestinationCountry {
			l.ID = existing.ID
			break
		}
	}
	m.mu.RUnlock()
	if id.IsNil(l.ID) {
		l.ID = id.New()
	}
	m.PutLicense(*l)
	return nil
}

var (
	_ Repository        = (*MemoryStore)(nil)
	_ LicenseRepository = (*MemoryStore)(nil)
	_ Writer            = (*MemoryStore)(nil)
)
