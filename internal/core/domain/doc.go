// Package domain defines the core entities of the highlights sync engine.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Annotation: One highlight fetched from the remote service
//   - SourceDocument: A per-pass grouping of annotations by source
//   - SyncHistory: The cross-run cursor, document map and totals
//   - Settings: The injected, read-only engine configuration
//   - LocalFile: A vault file with its embedded source identifier
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
