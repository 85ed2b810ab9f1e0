// Package storage provides persistence backends for throttle node state.
//
// Two backends are available:
//
//   - MemoryBackend: fast, process-local, no persistence (the default)
//   - SQLiteBackend: durable single-instance persistence so node flow history
//     survives restarts
//
// Both are safe for concurrent use. The throttle saves node records after
// observations and restores all records at startup.
package storage
