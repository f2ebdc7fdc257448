package orchestrator

import "strings"

// TerminationReason says why a session ended. The checks are ordered:
// a quit command wins over an execution failure, which wins over the
// exit flag raised by an agent.
type TerminationReason int

const (
	TerminateNone TerminationReason = iota
	TerminateQuit
	TerminateError
	TerminateExitFlag
)

var quitCommands = map[string]struct{}{
	"quit": {},
	"exit": {},
}

// IsQuitCommand reports whether the raw input is a quit command. The
// match is case-insensitive and ignores surrounding whitespace, and is
// evaluated before the input ever reaches an agent.
func IsQuitCommand(input string) bool {
	_, ok := quitCommands[strings.ToLower(strings.TrimSpace(input))]
	return ok
}

// DecideTermination applies the priority order to one turn's signals.
func DecideTermination(quit bool, execErr error, exitFlag bool) TerminationReason {
	switch {
	case quit:
		return TerminateQuit
	case execErr != nil:
		return TerminateError
	case exitFlag:
		return TerminateExitFlag
	default:
		return TerminateNone
	}
}
