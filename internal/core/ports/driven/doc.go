// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - AnnotationClient: Fetches annotations from the remote service
//   - VaultStore: The local document store (file system)
//   - HistoryStore: Sync history persistence (cursor, document map, totals)
//   - SettingsStore: Settings persistence, read by core at pass start
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
