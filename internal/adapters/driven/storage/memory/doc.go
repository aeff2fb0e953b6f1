// Package memory provides in-memory implementations of the driven storage
// ports. They back service tests and any wiring that does not need
// durability.
package memory
