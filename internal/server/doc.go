// Package server implements the HTTP API over the flow engine
//
// This package provides REST endpoints for every engine operation, the
// explore-mode question endpoint, member lookups, health and metrics, and
// a WebSocket that streams engine events and accepts engine commands
package server
