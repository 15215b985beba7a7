package service

import "errors"

// Per-entity evaluation failures. The orchestrator converts these into
// counters and continues; they never abort a run.
var (
	// ErrEmbedFailed indicates the entity's canonical photo could not
	// be turned into a valid embedding (service failure or integrity
	// rejection).
	ErrEmbedFailed = errors.New("embedding failed for entity")

	// ErrNoMatches indicates the similarity search returned nothing
	// above the configured threshold.
	ErrNoMatches = errors.New("no matches above threshold")
)
