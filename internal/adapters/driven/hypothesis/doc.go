// Package hypothesis implements the AnnotationClient port against the
// Hypothes.is REST API.
//
// The client authenticates with a bearer API token, pages through
// /api/search ordered by update time (search_after is an exclusive lower
// bound, matching the engine's cursor semantics), and classifies failures
// into the domain error taxonomy: 401-class responses are ErrAuthFailed,
// network errors and 5xx responses are ErrTransient. Retrying transient
// failures is the orchestrator's job.
package hypothesis
