// Package ui renders command lifecycle events for human consumption, adapting
// execshell notifications into console-friendly log lines.
package ui
