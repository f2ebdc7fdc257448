package state

import "maps"

// Context is the session-scoped record threaded through every turn.
// Two fields carry hard invariants: UserID is write-once (zero means not yet
// verified) and ExitRequested is monotonic (never flips back to false).
// Facts is an open bag of strings written by tools for later agents to read.
type Context struct {
	UserID        int64             `json:"user_id,omitempty"`
	ExitRequested bool              `json:"exit_requested"`
	Facts         map[string]string `json:"facts,omitempty"`
}

// Delta is the only sanctioned way for a tool invocation to request a
// context mutation. The orchestrator never hand-edits a Context.
type Delta struct {
	UserID      int64             `json:"user_id,omitempty"`
	RequestExit bool              `json:"request_exit,omitempty"`
	Facts       map[string]string `json:"facts,omitempty"`
}

func New() *Context {
	return &Context{
		Facts: make(map[string]string, 4),
	}
}

func (c *Context) Verified() bool {
	return c != nil && c.UserID > 0
}

// Clone returns a deep copy, so a turn's working context can be mutated and
// then either adopted wholesale or discarded (all-or-nothing merge).
func (c *Context) Clone() *Context {
	if c == nil {
		return New()
	}
	out := &Context{
		UserID:        c.UserID,
		ExitRequested: c.ExitRequested,
		Facts:         make(map[string]string, len(c.Facts)),
	}
	maps.Copy(out.Facts, c.Facts)
	return out
}

// Merge applies a tool delta to base and returns the result as a new
// Context. The user identifier is write-once: a delta against an already
// verified context is dropped as a no-op, never an overwrite. RequestExit
// can only raise the exit flag.
func Merge(base *Context, delta Delta) *Context {
	out := base.Clone()

	if delta.UserID > 0 && out.UserID == 0 {
		out.UserID = delta.UserID
	}
	if delta.RequestExit {
		out.ExitRequested = true
	}
	for k, v := range delta.Facts {
		out.Facts[k] = v
	}

	return out
}
