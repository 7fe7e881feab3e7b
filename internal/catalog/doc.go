// Package catalog loads the exercise database and alias index from their
// JSON sources and serves read-only lookups against them. Both structures
// are loaded once at startup and never mutated, so lookups are safe for
// concurrent use without locking.
package catalog
