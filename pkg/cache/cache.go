// Package cache stores rendered diagram artifacts.
//
// Rendering a diagram through Graphviz is the only expensive step in the
// pipeline, and its output depends only on the DOT source, the output format
// and the layout engine. Artifacts are therefore cached under a key derived
// from a hash of those inputs; see [Keyer].
//
// Backends:
//   - [FileCache]: one file per entry under a directory (the CLI default,
//     ~/.cache/archviz)
//   - [RedisCache]: a shared Redis instance, useful for the preview server
//   - [NullCache]: caching disabled
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the stored value and true, or false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// ArtifactKeyOpts are the render settings that change artifact bytes.
type ArtifactKeyOpts struct {
	Format string `json:"format"`
	Engine string `json:"engine"`
}

// Keyer derives cache keys.
type Keyer interface {
	// ArtifactKey returns the key for the artifact rendered from the DOT
	// source whose hash is dotHash.
	ArtifactKey(dotHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer produces unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates a DefaultKeyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(dotHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", dotHash, opts)
}

// ScopedKeyer wraps a Keyer with a prefix so several tools can share one
// backend without key collisions.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(dotHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(dotHash, opts)
}
