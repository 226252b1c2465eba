// Package persist holds the persistent key-value caches the storefront
// keeps between sessions. Values are opaque JSON documents.
package persist

import "errors"

// ErrNotFound is returned by Get when the key has no entry.
var ErrNotFound = errors.New("cache entry not found")
