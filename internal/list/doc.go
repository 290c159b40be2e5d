// Package list renders the organization's in-scope repositories as a text
// table, serving repeated invocations from the local directory cache.
package list
