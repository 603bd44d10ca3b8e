package watcher

import "errors"

var (
	// ErrAlreadyWatching is returned by Start when the watcher is running.
	ErrAlreadyWatching = errors.New("watcher already started")
	// ErrNotWatching is returned by Stop when the watcher never started.
	ErrNotWatching = errors.New("watcher not started")
	// ErrDirectoryNotFound is returned by Start when the journal
	// directory does not exist.
	ErrDirectoryNotFound = errors.New("journal directory not found")
)
