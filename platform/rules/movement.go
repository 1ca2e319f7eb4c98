package rules

import "github.com/DedS3t/monopoly-engine/platform/board"

// Advance moves spaces steps from position. passedStart is true whenever the move reaches or
// crosses the start space going forward; backward moves never pass start.
func Advance(position, spaces int) (newPosition int, passedStart bool) {
	n := position + spaces
	return ((n % board.Size) + board.Size) % board.Size, n >= board.Size
}

// stepsTo is the forward distance from position to target, a full lap when they coincide.
func stepsTo(position, target int) int {
	d := (target - position + board.Size) % board.Size
	if d == 0 {
		d = board.Size
	}
	return d
}
