// Package builder provides fluent, immutable builders for flow definitions
//
// Every With-style method returns a modified copy, so partially built
// steps and flows can be shared and extended without affecting each other
package builder
