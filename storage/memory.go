package storage

import "sync"

// MemorySlot keeps values in process memory.
type MemorySlot struct {
	mu     sync.RWMutex
	values map[string][]byte
}

var _ Slot = (*MemorySlot)(nil)

func NewMemorySlot() *MemorySlot {
	return &MemorySlot{values: make(map[string][]byte)}
}

func (m *MemorySlot) Get(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.values[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *MemorySlot) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemorySlot) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// MemoryFactory keeps every client's values in one map. A client only gets
// an entry once it stores a value, and loses it when its last key is removed.
type MemoryFactory struct {
	mu      sync.RWMutex
	clients map[string]map[string][]byte
}

func NewMemoryFactory() *MemoryFactory {
	return &MemoryFactory{clients: make(map[string]map[string][]byte)}
}

func (f *MemoryFactory) Slot(clientID string) Slot {
	return &memoryClientSlot{factory: f, clientID: clientID}
}

// Len returns the number of clients currently holding values.
func (f *MemoryFactory) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.clients)
}

type memoryClientSlot struct {
	factory  *MemoryFactory
	clientID string
}

func (s *memoryClientSlot) Get(key string) ([]byte, error) {
	s.factory.mu.RLock()
	defer s.factory.mu.RUnlock()

	v, ok := s.factory.clients[s.clientID][key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return append([]byte(nil), v...), nil
}

func (s *memoryClientSlot) Set(key string, value []byte) error {
	s.factory.mu.Lock()
	defer s.factory.mu.Unlock()

	values, ok := s.factory.clients[s.clientID]
	if !ok {
		values = make(map[string][]byte)
		s.factory.clients[s.clientID] = values
	}
	values[key] = append([]byte(nil), value...)
	return nil
}

func (s *memoryClientSlot) Remove(key string) error {
	s.factory.mu.Lock()
	defer s.factory.mu.Unlock()

	values, ok := s.factory.clients[s.clientID]
	if !ok {
		return nil
	}
	delete(values, key)
	if len(values) == 0 {
		delete(s.factory.clients, s.clientID)
	}
	return nil
}
