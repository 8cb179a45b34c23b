package services

import "errors"

// Every failure surfaced by the scan chain wraps exactly one of these.
var (
	// ErrUpstreamUnavailable covers network errors, timeouts and non-2xx
	// responses from the vision service or the catalog
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")
	// ErrUnparsableResponse means the vision output held no JSON object
	ErrUnparsableResponse = errors.New("vision response could not be parsed")
	// ErrNotFound means no catalog card survived the matching heuristics
	ErrNotFound = errors.New("card not found")
	// ErrValidation means required input was missing
	ErrValidation = errors.New("invalid input")

	// ErrNotConfigured accompanies ErrUpstreamUnavailable when a required
	// credential is missing
	ErrNotConfigured = errors.New("not configured")
)
