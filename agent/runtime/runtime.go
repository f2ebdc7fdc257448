// Package runtime is the execution layer behind the orchestrator: it turns
// one (agent, input, context, history) call into model rounds, executes the
// tool invocations the model requests, follows mid-turn transfers between
// agents, and reports which agent ultimately produced the reply.
package runtime

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	catalogx "github.com/ace139/healthmate/agent/catalog"
	contractx "github.com/ace139/healthmate/agent/contract"
	llmx "github.com/ace139/healthmate/agent/llm"
	statex "github.com/ace139/healthmate/agent/state"
	toolx "github.com/ace139/healthmate/agent/tool"
)

const (
	transferToolName = "transfer_to_agent"

	// One turn may take a handful of tool rounds (verify, record, plan) but
	// a runaway model must not spin forever.
	maxToolRounds = 8
	maxTransfers  = 3
)

type Runtime struct {
	catalog  *catalogx.Catalog
	models   map[contractx.AgentName]model.ToolCallingChatModel
	executor toolx.Executor
}

var _ contractx.Executor = (*Runtime)(nil)

// New builds one tool-bound chat model per cataloged agent.
func New(ctx context.Context, cat *catalogx.Catalog, cfg llmx.Config, store contractx.HealthStore) (*Runtime, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := &Runtime{
		catalog: cat,
		models:  make(map[contractx.AgentName]model.ToolCallingChatModel, 5),
	}
	r.executor = toolx.NewExecutor(store, toolx.WithSubAgent(r.answerHealthQuestion))

	for _, name := range cat.Names() {
		desc, err := cat.Get(name)
		if err != nil {
			return nil, err
		}

		modelCfg := cfg.ModelFor(name)
		chatModel, err := modelCfg.New(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: create model for agent=%s: %v", contractx.ErrModelInvoke, name, err)
		}

		infos := toolx.InfosFor(desc.Tools)
		if len(desc.Handoffs) > 0 {
			infos = append(infos, transferToolInfo(desc.Handoffs))
		}
		if len(infos) > 0 {
			chatModel, err = chatModel.WithTools(infos)
			if err != nil {
				return nil, fmt.Errorf("%w: bind tools for agent=%s: %v", contractx.ErrModelInvoke, name, err)
			}
		}

		r.models[name] = chatModel
	}

	return r, nil
}

// Invoke runs one turn. The returned context is a fresh copy carrying every
// delta the turn's tools produced; the caller's context is never touched.
func (r *Runtime) Invoke(ctx context.Context, req contractx.ExecutionRequest) (contractx.ExecutionResult, error) {
	if strings.TrimSpace(req.Input) == "" {
		return contractx.ExecutionResult{}, fmt.Errorf("%w: input is empty", contractx.ErrValidation)
	}

	desc, err := r.catalog.Get(req.Agent)
	if err != nil {
		return contractx.ExecutionResult{}, err
	}

	messages := buildMessages(desc.Instructions, req.History, req.Input)
	return r.converse(ctx, desc, messages, req.Context.Clone())
}

// converse drives the model/tool rounds until the current agent produces a
// plain text reply.
func (r *Runtime) converse(
	ctx context.Context,
	desc catalogx.Descriptor,
	messages []*schema.Message,
	working *statex.Context,
) (contractx.ExecutionResult, error) {
	transfers := 0

	for round := 0; round < maxToolRounds; round++ {
		chatModel, ok := r.models[desc.Name]
		if !ok {
			return contractx.ExecutionResult{}, fmt.Errorf("%w: no model for agent=%s", contractx.ErrModelInvoke, desc.Name)
		}

		msg, err := chatModel.Generate(ctx, messages)
		if err != nil {
			return contractx.ExecutionResult{}, fmt.Errorf("%w: agent=%s: %v", contractx.ErrModelInvoke, desc.Name, err)
		}

		if len(msg.ToolCalls) == 0 {
			output := strings.TrimSpace(msg.Content)
			if output == "" {
				return contractx.ExecutionResult{}, fmt.Errorf("%w: agent=%s returned an empty reply", contractx.ErrSchemaViolation, desc.Name)
			}
			return contractx.ExecutionResult{
				Output:         output,
				ProducingAgent: desc.Name,
				Context:        working,
			}, nil
		}

		messages = append(messages, msg)

		for _, call := range msg.ToolCalls {
			name := strings.TrimSpace(call.Function.Name)

			if name == transferToolName {
				next, err := r.applyTransfer(desc, call, &transfers)
				if err != nil {
					return contractx.ExecutionResult{}, err
				}
				messages = append(messages, schema.ToolMessage(
					fmt.Sprintf(`{"transferred":true,"agent":%q}`, next.Name),
					call.ID,
				))
				// The incoming agent continues the same turn under its own
				// instructions.
				messages[0] = schema.SystemMessage(next.Instructions)
				desc = next
				continue
			}

			if !desc.CanUseTool(name) {
				return contractx.ExecutionResult{}, fmt.Errorf("%w: tool=%s is not allowed for agent=%s", contractx.ErrSchemaViolation, name, desc.Name)
			}

			result, err := r.runTool(ctx, working, name, call)
			if err != nil {
				return contractx.ExecutionResult{}, err
			}
			if result.Context != nil {
				working = statex.Merge(working, *result.Context)
			}

			messages = append(messages, schema.ToolMessage(encodeToolResult(result), call.ID))
		}
	}

	return contractx.ExecutionResult{}, fmt.Errorf("%w: agent=%s exceeded %d tool rounds", contractx.ErrModelInvoke, desc.Name, maxToolRounds)
}

func (r *Runtime) applyTransfer(desc catalogx.Descriptor, call schema.ToolCall, transfers *int) (catalogx.Descriptor, error) {
	*transfers++
	if *transfers > maxTransfers {
		return catalogx.Descriptor{}, fmt.Errorf("%w: agent=%s exceeded %d transfers in one turn", contractx.ErrSchemaViolation, desc.Name, maxTransfers)
	}

	var args struct {
		Agent string `json:"agent"`
	}
	if raw := strings.TrimSpace(call.Function.Arguments); raw != "" {
		if err := json.Unmarshal([]byte(raw), &args); err != nil {
			return catalogx.Descriptor{}, fmt.Errorf("%w: invalid transfer args: %v", contractx.ErrSchemaViolation, err)
		}
	}

	target := contractx.AgentName(strings.TrimSpace(args.Agent))
	if target == "" {
		return catalogx.Descriptor{}, fmt.Errorf("%w: transfer target is empty", contractx.ErrSchemaViolation)
	}
	if !desc.CanHandoffTo(target) {
		return catalogx.Descriptor{}, fmt.Errorf("%w: agent=%s requested transfer to undeclared target=%s", contractx.ErrSchemaViolation, desc.Name, target)
	}

	next, err := r.catalog.Get(target)
	if err != nil {
		return catalogx.Descriptor{}, err
	}

	log.Debug().
		Str("from", string(desc.Name)).
		Str("to", string(target)).
		Msg("agent transfer")

	return next, nil
}

func (r *Runtime) runTool(ctx context.Context, working *statex.Context, name string, call schema.ToolCall) (contractx.ToolResult, error) {
	args := map[string]any{}
	if raw := strings.TrimSpace(call.Function.Arguments); raw != "" {
		if err := json.Unmarshal([]byte(raw), &args); err != nil {
			return contractx.ToolResult{}, fmt.Errorf("%w: invalid args for tool=%s: %v", contractx.ErrSchemaViolation, name, err)
		}
	}

	result, err := r.executor(ctx, working, contractx.ToolRequest{Tool: name, Args: args})
	if err != nil {
		return contractx.ToolResult{}, err
	}

	log.Debug().
		Str("tool", name).
		Bool("failed", result.Error != "").
		Msg("tool invoked")

	return result, nil
}

// answerHealthQuestion exposes the Q&A agent as a callable capability of
// other agents: a one-shot conversation with no history and no transfers.
func (r *Runtime) answerHealthQuestion(ctx context.Context, sctx *statex.Context, question string) (string, error) {
	desc, err := r.catalog.Get(contractx.AgentHealthQnA)
	if err != nil {
		return "", err
	}

	messages := buildMessages(desc.Instructions, nil, question)
	result, err := r.converse(ctx, desc, messages, sctx.Clone())
	if err != nil {
		return "", err
	}
	return result.Output, nil
}

func buildMessages(instructions string, history []contractx.Turn, input string) []*schema.Message {
	messages := make([]*schema.Message, 0, 2*len(history)+2)
	messages = append(messages, schema.SystemMessage(instructions))
	for _, turn := range history {
		if turn.Input != "" {
			messages = append(messages, schema.UserMessage(turn.Input))
		}
		if turn.Output != "" {
			messages = append(messages, schema.AssistantMessage(turn.Output, nil))
		}
	}
	messages = append(messages, schema.UserMessage(input))
	return messages
}

func transferToolInfo(targets []contractx.AgentName) *schema.ToolInfo {
	names := make([]string, len(targets))
	for i, t := range targets {
		names[i] = string(t)
	}
	return &schema.ToolInfo{
		Name: transferToolName,
		Desc: fmt.Sprintf("Hand off the conversation to another agent. Allowed targets: %s.", strings.Join(names, ", ")),
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"agent": {Type: schema.String, Desc: "Target agent name", Required: true},
		}),
	}
}

// encodeToolResult renders what the model gets to see: the payload or the
// failure reason, never the context delta.
func encodeToolResult(result contractx.ToolResult) string {
	visible := struct {
		Tool   string `json:"tool"`
		Result any    `json:"result,omitempty"`
		Error  string `json:"error,omitempty"`
	}{Tool: result.Tool, Result: result.Result, Error: result.Error}

	payload, err := json.Marshal(visible)
	if err != nil {
		return fmt.Sprintf(`{"tool":%q,"error":"result not serializable"}`, result.Tool)
	}
	return string(payload)
}
