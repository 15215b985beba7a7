package matching

import "github.com/google/uuid"

// SelfMatchResult is one persisted row of a self-match evaluation: how
// a single candidate ranked when an entity's own photo was used as the
// query. One row exists per (query, rank) up to the configured K;
// re-running an evaluation supersedes the rows, never duplicates them.
type SelfMatchResult struct {
	queryOwner      uuid.UUID
	queryEntityID   int64
	matchedEntityID int64
	rank            int
	score           float64
	correctTopMatch bool
	sourcePath      string
}

// NewSelfMatchResult creates a SelfMatchResult. correctTopMatch must be
// true only when rank == 1 and matchedEntityID equals queryEntityID;
// IsCorrectTopMatch recomputes the predicate rather than trusting the
// caller.
func NewSelfMatchResult(queryOwner uuid.UUID, queryEntityID, matchedEntityID int64, rank int, score float64, sourcePath string) SelfMatchResult {
	return SelfMatchResult{
		queryOwner:      queryOwner,
		queryEntityID:   queryEntityID,
		matchedEntityID: matchedEntityID,
		rank:            rank,
		score:           score,
		correctTopMatch: rank == 1 && matchedEntityID == queryEntityID,
		sourcePath:      sourcePath,
	}
}

// QueryOwner returns the query entity's embedding owner UUID.
func (r SelfMatchResult) QueryOwner() uuid.UUID { return r.queryOwner }

// QueryEntityID returns the catalog id of the queried entity.
func (r SelfMatchResult) QueryEntityID() int64 { return r.queryEntityID }

// MatchedEntityID returns the catalog id of the matched candidate.
func (r SelfMatchResult) MatchedEntityID() int64 { return r.matchedEntityID }

// Rank returns the 1-based rank of the candidate.
func (r SelfMatchResult) Rank() int { return r.rank }

// Score returns the cosine similarity score.
func (r SelfMatchResult) Score() float64 { return r.score }

// IsCorrectTopMatch reports whether this row is the rank-1 entry and
// matched the query entity itself.
func (r SelfMatchResult) IsCorrectTopMatch() bool { return r.correctTopMatch }

// SourcePath returns the photo path the query vector was embedded from.
func (r SelfMatchResult) SourcePath() string { return r.sourcePath }
