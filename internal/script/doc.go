// Package script evaluates Lua transition scripts. A script sees the
// selected choice and the flow's accumulated data and returns the ID of
// the step to move to
package script
