package credentials

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore implements Store in memory for tests and local development.
type MemoryStore struct {
	mu      sync.RWMutex
	configs []*GatewayConfig
}

// NewMemoryStore creates an empty in-memory configuration store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Put adds or replaces a configuration row by id.
func (s *MemoryStore) Put(cfg *GatewayConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.configs {
		if existing.ID == cfg.ID {
			s.configs[i] = cfg
			return
		}
	}
	s.configs = append(s.configs, cfg)
}

// Remove deletes a configuration row by id.
func (s *MemoryStore) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.configs {
		if existing.ID == id {
			s.configs = append(s.configs[:i], s.configs[i+1:]...)
			return
		}
	}
}

func (s *MemoryStore) GetActiveConfig(_ context.Context, orgID, provider string) (*GatewayConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pick(func(c *GatewayConfig) bool {
		return c.OrganizationID == orgID && c.Provider == provider && c.IsActive
	})
}

func (s *MemoryStore) GetDefaultConfig(_ context.Context, orgID string) (*GatewayConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pick(func(c *GatewayConfig) bool {
		return c.OrganizationID == orgID && c.IsDefault && c.IsActive
	})
}

// pick mirrors the SQL tie-break: most recently created matching row.
func (s *MemoryStore) pick(match func(*GatewayConfig) bool) (*GatewayConfig, error) {
	var matches []*GatewayConfig
	for _, c := range s.configs {
		if match(c) {
			matches = append(matches, c)
		}
	}
	if len(matches) == 0 {
		return nil, ErrConfigNotFound
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	out := *matches[0]
	return &out, nil
}
