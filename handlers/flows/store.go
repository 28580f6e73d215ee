package flows

import (
	"errors"
	"sync"
)

// Store keeps the live flow instances, one per customer. Only one wizard
// can be open at a time (single modal in the dashboard), so starting a
// second flow while one is active is refused.
type Store struct {
	mu        sync.Mutex
	instances map[string]*Instance
}

func NewStore() *Store {
	return &Store{instances: make(map[string]*Instance)}
}

// ErrFlowActive signals that the customer already has an open wizard.
var ErrFlowActive = errors.New("another flow is already in progress")

// Put registers a new instance for the customer. A finished instance is
// silently replaced.
func (s *Store) Put(in *Instance) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.instances[in.CustomerID]; ok && existing.Status == StatusActive {
		return ErrFlowActive
	}
	s.instances[in.CustomerID] = in
	return nil
}

// Get returns the customer's current instance, if any.
func (s *Store) Get(customerID string) (*Instance, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	in, ok := s.instances[customerID]
	return in, ok
}

// Drop discards the customer's instance.
func (s *Store) Drop(customerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.instances, customerID)
}
