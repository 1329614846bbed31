package reservation

import "errors"

var (
	// ErrNoResults means the composed availability produced no candidate
	// to book at all. Terminal, never retried.
	ErrNoResults = errors.New("no available dates within searched parameters")

	// ErrRetryable means the site rejected the slot claim and the claim
	// retry deadline was exhausted. The whole attempt may be retried with
	// a fresh browser session, up to the engine's attempt bound.
	ErrRetryable = errors.New("could not add reservation")

	// ErrNoMatch means an inbound notification subject could not be
	// resolved to a known resource location. Terminal.
	ErrNoMatch = errors.New("no location matched notification subject")
)
