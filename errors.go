package main

import "errors"

// Run-level failure classes. Every fatal error returned by the generator wraps
// exactly one of these, so callers can branch with errors.Is.
var (
	// ErrSourceUnavailable means a Hydrus database could not be opened or attached.
	ErrSourceUnavailable = errors.New("source catalog unavailable")

	// ErrConfig means a configuration value is unparseable or out of range.
	ErrConfig = errors.New("invalid configuration")

	// ErrWrite means the results table rejected a row or the export failed.
	ErrWrite = errors.New("result write failed")
)

// ErrTagNotFound is returned by tag resolution when the dictionary has no such tag id.
var ErrTagNotFound = errors.New("tag not found")
