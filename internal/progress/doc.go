// Package progress simulates a multi-step conversion narrative while a real backend call is in flight.
//
// A [Simulator] walks the scripted [Step] table for a [ContentType] at roughly the configured durations,
// parks on the final step until [Simulator.Complete] is called, and then finishes. If completion arrives
// mid-sequence the remaining steps are fast-forwarded at a fixed interval.
//
// One goroutine owns all three timer sources (the progress ticker, the step timer and the playlist match
// timer), so at most one step timer is ever pending. The completion signal is a shared flag read when a
// timer fires, never a value captured when it was scheduled.
//
// The simulator is cosmetic. Completion says nothing about whether the backend call succeeded.
package progress
