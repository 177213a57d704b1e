// Package events provides the in-process channel the flow engine uses to
// notify observers. Handlers are registered per event kind and receive
// events synchronously, in subscription order
package events
