// Package api defines the core data types shared by the flow engine
//
// This package contains flow and step definitions, the transition variants,
// runtime flow state, conversation entries, and the event payloads delivered
// to the presentation layer
package api
