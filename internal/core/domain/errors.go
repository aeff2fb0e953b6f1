package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNotConnected indicates no API token is configured.
	ErrNotConnected = errors.New("not connected: API token not configured")

	// ErrAuthFailed indicates the API token is invalid or revoked.
	// Fatal to a pass: surfaced, never retried, no history mutation.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrTransient indicates a network or service failure that is safe to
	// retry with backoff.
	ErrTransient = errors.New("transient service error")

	// ErrSyncInProgress indicates a sync pass is already running.
	// Passes are never queued or interleaved.
	ErrSyncInProgress = errors.New("sync already in progress")

	// ErrPendingDeletion indicates the document's file was removed locally
	// and awaits a reconciliation decision.
	ErrPendingDeletion = errors.New("document pending deletion decision")

	// ErrInvalidTemplate indicates the highlights template failed validation.
	ErrInvalidTemplate = errors.New("invalid template")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")
)
