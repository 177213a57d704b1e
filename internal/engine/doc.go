// Package engine implements the flow engine: the state machine that runs
// one guided task at a time, keeps the conversation log, and drives
// simulated processing through a cancellable scheduler.
//
// Every public operation runs to completion under a single lock. Events
// and scheduler requests produced while the lock is held are queued and
// delivered after it is released, in the order they were produced, so
// subscribers may call back into the engine
package engine
