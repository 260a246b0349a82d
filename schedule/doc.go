// Package schedule defines the data model for recurrence schedules: the
// seven expression kinds, the trailing modifiers (except, until, starting,
// during, in), the canonical text renderer, and the shared error type.
//
// The model is a closed set of variants expressed as sealed interfaces, so
// consumers can type-switch exhaustively. Values are immutable once built;
// use Builder to assemble a Data and Canonical to render it back to text.
package schedule
