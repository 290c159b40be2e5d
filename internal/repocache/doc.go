// Package repocache persists the enumerated repository directory as a
// line-delimited JSON file.
//
// The cache is append-only while being populated and is invalidated as a
// whole, never edited in place. Its existence on disk is the signal that
// enumeration already happened for the current cache lifetime.
package repocache
