// Package scheduler runs delayed, keyed tasks on a single goroutine. Tasks
// are addressed by hierarchical paths so a whole group, such as every
// timer belonging to one flow run, can be cancelled at once
package scheduler
