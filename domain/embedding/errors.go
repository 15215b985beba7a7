package embedding

import "errors"

// Integrity rejections. These are data-quality failures, not transient
// ones: a vector that trips any of them must never reach the store.
var (
	// ErrWrongDimension indicates the raw vector length differs from
	// the configured dimension.
	ErrWrongDimension = errors.New("embedding has wrong dimension")

	// ErrDegenerateUnitNorm indicates the vector's L2 norm is
	// indistinguishable from exactly 1.0, the placeholder signature
	// the embedding service emits on failure.
	ErrDegenerateUnitNorm = errors.New("embedding norm is degenerate unit length")

	// ErrAllZero indicates every component of the vector is zero.
	ErrAllZero = errors.New("embedding is all zeros")

	// ErrNotFinite indicates the vector contains a NaN or infinite
	// component.
	ErrNotFinite = errors.New("embedding contains a non-finite value")
)

// Embedding service failures, distinguished so callers can tell a
// transient network problem from a broken service contract.
var (
	// ErrUnreachable indicates the embedding service could not be
	// reached (timeout, connection refused, DNS).
	ErrUnreachable = errors.New("embedding service unreachable")

	// ErrBadResponse indicates the service answered with a non-success
	// status, a non-JSON body, or a body without an embedding array.
	ErrBadResponse = errors.New("embedding service returned a bad response")
)
