package contract

import (
	"time"

	statex "github.com/ace139/healthmate/agent/state"
)

// AgentName identifies one of the fixed agent variants.
type AgentName string

const (
	AgentIdentityVerifier AgentName = "identity_verifier"
	AgentMoodRecorder     AgentName = "mood_recorder"
	AgentGlucoseCollector AgentName = "glucose_collector"
	AgentMealPlanner      AgentName = "meal_planner"
	AgentHealthQnA        AgentName = "health_qna"
)

// Turn is one completed input/output exchange.
type Turn struct {
	Input          string         `json:"input"`
	StartAgent     AgentName      `json:"start_agent"`
	Output         string         `json:"output"`
	ProducingAgent AgentName      `json:"producing_agent"`
	Context        statex.Context `json:"context"`
	At             time.Time      `json:"at"`
}

// History is the append-only conversation record replayed to the execution
// layer on every turn. Turns cannot be mutated or removed once appended.
type History struct {
	turns []Turn
}

func (h *History) Append(t Turn) {
	h.turns = append(h.turns, t)
}

func (h *History) Len() int {
	return len(h.turns)
}

// Turns returns a copy so callers cannot reorder or edit the record.
func (h *History) Turns() []Turn {
	out := make([]Turn, len(h.turns))
	copy(out, h.turns)
	return out
}

// ExecutionRequest is one call into the execution layer.
type ExecutionRequest struct {
	Agent   AgentName
	Input   string
	Context *statex.Context
	History []Turn
}

// ExecutionResult reports what the execution layer produced. ProducingAgent
// may differ from the requested agent when a transfer happened mid-turn; the
// orchestrator decides whether that transition was legal.
type ExecutionResult struct {
	Output         string
	ProducingAgent AgentName
	Context        *statex.Context
}

// ToolRequest is one named side-effecting action requested by an agent.
type ToolRequest struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args,omitempty"`
}

// ToolResult is the typed outcome of a tool invocation. Error carries a
// named failure reason surfaced conversationally; Context carries the delta
// the tool is authorized to write.
type ToolResult struct {
	Tool    string        `json:"tool"`
	Result  any           `json:"result,omitempty"`
	Error   string        `json:"error,omitempty"`
	Context *statex.Delta `json:"context,omitempty"`
}
