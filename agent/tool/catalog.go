package tool

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/schema"

	contractx "github.com/ace139/healthmate/agent/contract"
	statex "github.com/ace139/healthmate/agent/state"
)

const (
	ToolVerifyIdentity       = "verify_identity"
	ToolRecordMood           = "record_mood"
	ToolRecordGlucoseReading = "record_glucose_reading"
	ToolGetHealthProfile     = "get_health_profile"
	ToolGetGlucoseHistory    = "get_glucose_history"
	ToolGenerateMealPlan     = "generate_meal_plan"
	ToolAnswerHealthQuestion = "answer_health_question"
	ToolGetHealthInformation = "get_health_information"
)

// Executor runs one tool invocation against the backing store on behalf of
// an agent. The shared context is read-only here; mutations travel back as
// the result's Delta.
type Executor func(ctx context.Context, sctx *statex.Context, req contractx.ToolRequest) (contractx.ToolResult, error)

// SubAgentFunc answers a free-text question by delegating to another agent.
// It is how the Q&A agent is exposed as a callable capability.
type SubAgentFunc func(ctx context.Context, sctx *statex.Context, question string) (string, error)

// Option customizes an Executor.
type Option func(*executorDeps)

type executorDeps struct {
	store    contractx.HealthStore
	subAgent SubAgentFunc
}

// WithSubAgent wires the delegate behind answer_health_question.
func WithSubAgent(fn SubAgentFunc) Option {
	return func(d *executorDeps) {
		d.subAgent = fn
	}
}

// NewExecutor builds the dispatcher over all known tools. Which of them an
// agent may actually reach is the catalog's decision, enforced by the
// runtime before this executor is ever called.
func NewExecutor(store contractx.HealthStore, opts ...Option) Executor {
	deps := &executorDeps{store: store}
	for _, opt := range opts {
		if opt != nil {
			opt(deps)
		}
	}

	return func(ctx context.Context, sctx *statex.Context, req contractx.ToolRequest) (contractx.ToolResult, error) {
		switch req.Tool {
		case ToolVerifyIdentity:
			return executeVerifyIdentity(ctx, deps.store, req)
		case ToolRecordMood:
			return executeRecordMood(ctx, deps.store, sctx, req)
		case ToolRecordGlucoseReading:
			return executeRecordGlucose(ctx, deps.store, sctx, req)
		case ToolGetHealthProfile:
			return executeGetHealthProfile(ctx, deps.store, sctx, req)
		case ToolGetGlucoseHistory:
			return executeGetGlucoseHistory(ctx, deps.store, sctx, req)
		case ToolGenerateMealPlan:
			return executeGenerateMealPlan(ctx, deps.store, sctx, req)
		case ToolGetHealthInformation:
			return executeGetHealthInformation(ctx, deps.store, sctx, req)
		case ToolAnswerHealthQuestion:
			return executeAnswerHealthQuestion(ctx, deps.subAgent, sctx, req)
		default:
			return contractx.ToolResult{
				Tool:  req.Tool,
				Error: fmt.Sprintf("tool=%s is not available", req.Tool),
			}, nil
		}
	}
}

// InfoFor returns the schema declaration for a named tool, nil if unknown.
func InfoFor(name string) *schema.ToolInfo {
	switch name {
	case ToolVerifyIdentity:
		return &schema.ToolInfo{
			Name: ToolVerifyIdentity,
			Desc: "Verify a user's identity by looking up their numeric user ID. Read-only.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"user_id": {Type: schema.Integer, Desc: "Numeric user ID to verify", Required: true},
			}),
		}
	case ToolRecordMood:
		return &schema.ToolInfo{
			Name: ToolRecordMood,
			Desc: "Record the user's stated mood as a timestamped wellbeing entry.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"mood": {Type: schema.String, Desc: "Mood keyword or short phrase, e.g. 'tired', 'bit lazy'", Required: true},
			}),
		}
	case ToolRecordGlucoseReading:
		return &schema.ToolInfo{
			Name: ToolRecordGlucoseReading,
			Desc: "Record a glucose reading in mg/dL and classify it as low, normal, or high.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"value": {Type: schema.Number, Desc: "Glucose reading in mg/dL, e.g. 95.5", Required: true},
			}),
		}
	case ToolGetHealthProfile:
		return &schema.ToolInfo{
			Name:        ToolGetHealthProfile,
			Desc:        "Fetch the verified user's dietary preference, medical conditions, and physical limitations.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{}),
		}
	case ToolGetGlucoseHistory:
		return &schema.ToolInfo{
			Name:        ToolGetGlucoseHistory,
			Desc:        "Fetch the most recent glucose reading plus 3-day and 7-day rolling averages.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{}),
		}
	case ToolGenerateMealPlan:
		return &schema.ToolInfo{
			Name: ToolGenerateMealPlan,
			Desc: "Generate the meal plan skeleton for the user's glucose status and profile, and mark the session complete.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"glucose_status": {Type: schema.String, Desc: "One of 'low', 'normal', 'high'", Required: true},
			}),
		}
	case ToolAnswerHealthQuestion:
		return &schema.ToolInfo{
			Name: ToolAnswerHealthQuestion,
			Desc: "Answer a health-related question from the user.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"question": {Type: schema.String, Desc: "The user's health question", Required: true},
			}),
		}
	case ToolGetHealthInformation:
		return &schema.ToolInfo{
			Name: ToolGetHealthInformation,
			Desc: "Look up a health topic in the fixed knowledge base.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"query": {Type: schema.String, Desc: "The health topic or question", Required: true},
			}),
		}
	default:
		return nil
	}
}

// InfosFor resolves declared tool names to schema infos, skipping unknowns.
func InfosFor(names []string) []*schema.ToolInfo {
	infos := make([]*schema.ToolInfo, 0, len(names))
	for _, name := range names {
		if info := InfoFor(name); info != nil {
			infos = append(infos, info)
		}
	}
	return infos
}
