// Package errors provides rich error types for SPL rule parsing and compilation.
//
// Errors carry a category, a source location, and an optional suggestion so a
// rule author can find and fix the offending definition without reading engine
// internals. ErrorList accumulates every problem found in a rule file instead
// of stopping at the first, so one compile attempt reports the full damage.
package errors
