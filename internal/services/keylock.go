package services

import (
	"hash/fnv"
	"sync"
)

// keyLocks is a fixed set of mutexes striped by key hash. Two callers with the
// same key always contend on the same mutex.
type keyLocks struct {
	stripes []sync.Mutex
}

func newKeyLocks(n int) *keyLocks {
	if n < 1 {
		n = 1
	}
	return &keyLocks{stripes: make([]sync.Mutex, n)}
}

// Lock acquires the stripe for key and returns its unlock function.
func (l *keyLocks) Lock(key string) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	m := &l.stripes[h.Sum32()%uint32(len(l.stripes))]
	m.Lock()
	return m.Unlock
}
