// Package terminal is the interactive text front end of the memory puzzle.
//
// A Game reads commands line by line and redraws the board after each one.
// The goroutine running Run owns the engine. Input lines, the delayed
// mismatch resolution and the clock ticker are all delivered to it over
// channels, so the engine itself never needs a lock. Starting a new game
// stops any pending resolve timer, and a timer that still fires for an
// earlier game is ignored.
package terminal
