// Package storage provides the durable key-value slots that keep a client's
// session across reloads.
package storage

import "errors"

// ErrKeyNotFound is returned by Get when the key holds no value.
var ErrKeyNotFound = errors.New("key not found")

// Slot is a small durable key-value area owned by one client.
type Slot interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Remove(key string) error
}

// Factory returns the slot belonging to a client id.
type Factory interface {
	Slot(clientID string) Slot
}

// FactoryFunc adapts a function to Factory.
type FactoryFunc func(clientID string) Slot

func (f FactoryFunc) Slot(clientID string) Slot {
	return f(clientID)
}
