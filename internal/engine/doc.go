// Package engine holds the hidden-state contamination model of one playthrough.
//
// ARCHITECTURAL RULE: GameState is only mutated through the operations in this
// package or through story choice effects. Text and choice producers read it
// but never write it, with one documented exception: rendering a blood-test
// screen computes and memoises that test's pending outcome.
//
// All randomness is drawn through the Random capability so scripted sources
// can pin outcomes in tests.
package engine
