package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: entity does not exist in store
// - ErrConflict: mutation would violate a store invariant (purchase capacity,
//   removal below the purchased count)
// - ErrAlreadyUsed: name or slot already taken (duplicate brand, second active
//   gift list for the same owner)
// - ErrExpired: session has expired
//
// For validation errors (bad input, missing fields), use pkg/domain-errors.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrAlreadyUsed = errors.New("already used")
	ErrExpired     = errors.New("expired")
)
