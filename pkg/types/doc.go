// Package types defines the shared data model for rulescan: rules and
// their file triggers, evaluation results, scan results, and the
// filesystem interface the engine reads through.
//
// Rules are supplied by an external rule-source layer and are treated as
// immutable for the duration of an evaluation call. Everything else in
// this package is a transient, call-scoped value.
package types
