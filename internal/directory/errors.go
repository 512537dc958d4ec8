package directory

import "github.com/rotisserie/eris"

// Sentinel errors for the directory client's failure taxonomy. None of them
// escape the exported listing methods; they exist so internal paths and
// tests can distinguish failure modes.
var (
	// ErrNotConfigured means credentials or the base identifier are missing.
	// The client stays constructed and every listing degrades to empty.
	ErrNotConfigured = eris.New("directory: not configured")

	// ErrRateLimited means the upstream kept answering 429 past the retry
	// bound.
	ErrRateLimited = eris.New("directory: rate limited")

	// ErrNoUsableTable means every candidate table name was probed and none
	// answered successfully.
	ErrNoUsableTable = eris.New("directory: no usable table")
)
