// Package content is the static data source behind the assistant: the
// registry of flow definitions plus the lookup tables for dentists, canned
// answers, contextual questions, unlock rules, and member stubs
package content
