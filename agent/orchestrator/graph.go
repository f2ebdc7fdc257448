package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog/log"

	contractx "github.com/ace139/healthmate/agent/contract"
	statex "github.com/ace139/healthmate/agent/state"
)

// GraphInput is the single user utterance a turn starts from.
type GraphInput struct {
	Input string
}

// GraphOutput carries everything the session loop needs to commit a
// turn: the reply, who produced it, the updated context and whether a
// handoff moved the session to a new agent. Nothing in here has been
// applied to the session yet.
type GraphOutput struct {
	Reply          string
	StartAgent     contractx.AgentName
	ProducingAgent contractx.AgentName
	Context        *statex.Context
	HandoffFired   bool
	At             time.Time
}

type turnState struct {
	Input      string
	StartAgent contractx.AgentName
	Result     contractx.ExecutionResult
	At         time.Time
}

// compileTurnGraph builds the per-turn pipeline:
//
//	validate_input -> execute_agent -> detect_handoff -> finalize
//
// Every node returns an error on the paths the session must treat as
// fatal; only validation failures are recoverable by the caller.
func (o *Orchestrator) compileTurnGraph(ctx context.Context) (compose.Runnable[GraphInput, GraphOutput], error) {
	g := compose.NewGraph[GraphInput, GraphOutput]()

	if err := g.AddLambdaNode("validate_input", compose.InvokableLambda(o.validateInput)); err != nil {
		return nil, fmt.Errorf("add validate_input node: %w", err)
	}
	if err := g.AddLambdaNode("execute_agent", compose.InvokableLambda(o.executeAgent)); err != nil {
		return nil, fmt.Errorf("add execute_agent node: %w", err)
	}
	if err := g.AddLambdaNode("detect_handoff", compose.InvokableLambda(o.detectHandoff)); err != nil {
		return nil, fmt.Errorf("add detect_handoff node: %w", err)
	}

	if err := g.AddEdge(compose.START, "validate_input"); err != nil {
		return nil, fmt.Errorf("edge start->validate_input: %w", err)
	}
	if err := g.AddEdge("validate_input", "execute_agent"); err != nil {
		return nil, fmt.Errorf("edge validate_input->execute_agent: %w", err)
	}
	if err := g.AddEdge("execute_agent", "detect_handoff"); err != nil {
		return nil, fmt.Errorf("edge execute_agent->detect_handoff: %w", err)
	}
	if err := g.AddEdge("detect_handoff", compose.END); err != nil {
		return nil, fmt.Errorf("edge detect_handoff->end: %w", err)
	}

	runner, err := g.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("compile turn graph: %w", err)
	}
	return runner, nil
}

func (o *Orchestrator) validateInput(_ context.Context, in GraphInput) (turnState, error) {
	input := strings.TrimSpace(in.Input)
	if input == "" {
		return turnState{}, fmt.Errorf("%w: empty input", contractx.ErrValidation)
	}
	return turnState{
		Input:      input,
		StartAgent: o.current,
		At:         o.now(),
	}, nil
}

func (o *Orchestrator) executeAgent(ctx context.Context, st turnState) (turnState, error) {
	res, err := o.executor.Invoke(ctx, contractx.ExecutionRequest{
		Agent:   st.StartAgent,
		Input:   st.Input,
		Context: o.sctx,
		History: o.history.Turns(),
	})
	if err != nil {
		return turnState{}, fmt.Errorf("execute %s: %w", st.StartAgent, err)
	}
	st.Result = res
	return st, nil
}

func (o *Orchestrator) detectHandoff(_ context.Context, st turnState) (GraphOutput, error) {
	fired, err := DetectHandoff(o.catalog, st.StartAgent, st.Result.ProducingAgent)
	if err != nil {
		return GraphOutput{}, err
	}
	if err := guardContext(o.sctx, st.Result.Context); err != nil {
		return GraphOutput{}, err
	}
	if fired {
		log.Debug().
			Str("from", string(st.StartAgent)).
			Str("to", string(st.Result.ProducingAgent)).
			Msg("handoff detected")
	}
	return GraphOutput{
		Reply:          st.Result.Output,
		StartAgent:     st.StartAgent,
		ProducingAgent: st.Result.ProducingAgent,
		Context:        st.Result.Context,
		HandoffFired:   fired,
		At:             st.At,
	}, nil
}
