// Package keylock provides per-key mutual exclusion. Every mutating
// operation against a table acquires that table's lock, so two concurrent
// requests cannot both pass a status check and commit conflicting writes.
package keylock

import "sync"

// KeyedMutex hands out one mutex per integer key. Mutexes are created on
// first use and retained for the life of the process; the key space here
// is the fixed set of table numbers, so this never grows unbounded.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[int]*sync.Mutex
}

// New creates an empty KeyedMutex.
func New() *KeyedMutex {
	return &KeyedMutex{locks: make(map[int]*sync.Mutex)}
}

// Lock acquires the mutex for key, creating it if needed.
func (k *KeyedMutex) Lock(key int) {
	k.get(key).Lock()
}

// Unlock releases the mutex for key.
func (k *KeyedMutex) Unlock(key int) {
	k.get(key).Unlock()
}

func (k *KeyedMutex) get(key int) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()

	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	return m
}
