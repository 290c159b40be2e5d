// Package utils hosts shared infrastructure for the overseer CLI: the zap
// logger factory, the Viper-backed configuration loader, and accessors for
// values carried through command contexts.
package utils
