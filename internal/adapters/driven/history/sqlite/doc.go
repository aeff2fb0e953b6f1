// Package sqlite implements the HistoryStore port on SQLite.
//
// The whole sync history is replaced inside a single transaction on Commit,
// which gives the engine its atomic, crash-safe checkpoint: a reader either
// sees the previous fully committed pass or the new one, never a mix.
package sqlite
