package store

import "sync"

var (
	initOnce sync.Once
	instance *Store
)

// Init constructs the process-wide store exactly once. Subsequent calls
// return the existing instance and ignore their options: the store lives for
// the whole process, torn down only at exit. Callers should inject the
// returned store into their handlers rather than reach for Instance.
func Init(opts Options) *Store {
	initOnce.Do(func() {
		instance = New(opts)
	})
	return instance
}

// Instance returns the store constructed by Init, or nil before Init ran.
func Instance() *Store {
	return instance
}
