// Package kv is the namespaced key-value port behind the local backend.
// Values are JSON-encoded strings; keys carry the "ALH_" namespace prefix.
package kv

// Store is the minimal surface the local adapter and the migration flag
// need. Implementations must be safe for use from a single goroutine; the
// service serializes access the way the original single-threaded client did.
type Store interface {
	// Get returns the stored value and whether the key exists.
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(key string) error
	// Keys lists all stored keys with the given prefix.
	Keys(prefix string) ([]string, error)
}
