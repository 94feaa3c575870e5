package defacement

import "errors"

var (
	// ErrFetch covers transport failures, timeouts and non-success responses.
	ErrFetch = errors.New("failed to fetch URL")
	// ErrRender is returned when the home template cannot be rendered in-process.
	ErrRender = errors.New("failed to render template")
	// ErrParse is returned when fetched markup cannot be parsed.
	ErrParse = errors.New("failed to parse page")
)
