// Package gitmirror maintains local working-tree mirrors of remote
// repositories. A mirror that does not exist yet is created with a shallow
// clone of the default branch; a mirror that already exists is forced back
// onto the remote tip with a fetch, hard reset, and clean sequence.
package gitmirror
