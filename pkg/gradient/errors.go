package gradient

import "errors"

var (
	// ErrEmptyAssignment is returned when an assignment vector of length 0
	// is passed to an entry point; the distilled contract requires n >= 1.
	ErrEmptyAssignment = errors.New("gradient: assignment vector must have at least one coordinate")

	// ErrEngineClosed is returned by Minimize, Maximize, DescendOnce and
	// AscendOnce when called after Close.
	ErrEngineClosed = errors.New("gradient: engine is closed")
)
