// Package flows defines the built-in guided tasks: booking an appointment,
// filing a claim, adding a family member, and the follow-up tasks those
// unlock
package flows
