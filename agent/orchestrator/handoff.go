package orchestrator

import (
	"fmt"

	catalogx "github.com/ace139/healthmate/agent/catalog"
	contractx "github.com/ace139/healthmate/agent/contract"
	statex "github.com/ace139/healthmate/agent/state"
)

// DetectHandoff compares the agent active at turn start with the agent
// reported as having produced the output. Equal names mean no transition.
// A differing name is only a valid handoff when the catalog declares it;
// anything else is a protocol violation, never a silent fallback.
func DetectHandoff(cat *catalogx.Catalog, start, produced contractx.AgentName) (bool, error) {
	if produced == "" {
		return false, fmt.Errorf("%w: producing agent is empty", contractx.ErrProtocolViolation)
	}
	if start == produced {
		return false, nil
	}
	if !cat.CanHandoff(start, produced) {
		return false, fmt.Errorf("%w: handoff from %s to undeclared target %s", contractx.ErrProtocolViolation, start, produced)
	}
	return true, nil
}

// guardContext checks the execution layer did not break the context
// invariants: the identifier is write-once and the exit flag is monotonic.
func guardContext(prev, next *statex.Context) error {
	if next == nil {
		return fmt.Errorf("%w: execution returned no context", contractx.ErrProtocolViolation)
	}
	if prev.UserID != 0 && next.UserID != prev.UserID {
		return fmt.Errorf("%w: user identifier changed from %d to %d", contractx.ErrProtocolViolation, prev.UserID, next.UserID)
	}
	if prev.ExitRequested && !next.ExitRequested {
		return fmt.Errorf("%w: exit flag reverted to false", contractx.ErrProtocolViolation)
	}
	return nil
}
