package runtime

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	catalogx "github.com/ace139/healthmate/agent/catalog"
	contractx "github.com/ace139/healthmate/agent/contract"
	llmx "github.com/ace139/healthmate/agent/llm"
	statex "github.com/ace139/healthmate/agent/state"
	toolx "github.com/ace139/healthmate/agent/tool"
	"github.com/ace139/healthmate/pkg/healthdb"
)

type fakeToolCallingModel struct {
	responses []*schema.Message
	err       error
	idx       int
}

func (f *fakeToolCallingModel) Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.idx >= len(f.responses) {
		return nil, errors.New("no fake response left")
	}
	msg := f.responses[f.idx]
	f.idx++
	return msg, nil
}

func (f *fakeToolCallingModel) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("stream not implemented in fake model")
}

func (f *fakeToolCallingModel) WithTools(tools []*schema.ToolInfo) (einomodel.ToolCallingChatModel, error) {
	return f, nil
}

type fakeStore struct {
	profile *healthdb.UserProfile
	moods   []string
}

func (f *fakeStore) GetUser(ctx context.Context, userID int64) (*healthdb.UserProfile, error) {
	if f.profile == nil || f.profile.ID != userID {
		return nil, healthdb.ErrUserNotFound
	}
	return f.profile, nil
}

func (f *fakeStore) RecordMood(ctx context.Context, userID int64, mood string) error {
	f.moods = append(f.moods, mood)
	return nil
}

func (f *fakeStore) RecordGlucose(ctx context.Context, userID int64, reading float64) error {
	return nil
}

func (f *fakeStore) GlucoseStats(ctx context.Context, userID int64) (healthdb.GlucoseStats, error) {
	return healthdb.GlucoseStats{}, nil
}

func (f *fakeStore) LogConversation(ctx context.Context, entry healthdb.ConversationEntry) error {
	return nil
}

func toolCallMessage(name, args string) *schema.Message {
	return &schema.Message{
		Role: schema.Assistant,
		ToolCalls: []schema.ToolCall{
			{
				ID: "call-1",
				Function: schema.FunctionCall{
					Name:      name,
					Arguments: args,
				},
			},
		},
	}
}

// newTestRuntime wires a Runtime with scripted models, bypassing real model
// construction.
func newTestRuntime(store contractx.HealthStore, models map[contractx.AgentName]einomodel.ToolCallingChatModel) *Runtime {
	r := &Runtime{
		catalog: catalogx.New(),
		models:  models,
	}
	r.executor = toolx.NewExecutor(store, toolx.WithSubAgent(r.answerHealthQuestion))
	return r
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	t.Parallel()

	cfg := llmx.Config{Model: "gpt-4.1-mini"}
	_, err := New(context.Background(), catalogx.New(), cfg, &fakeStore{})
	if !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestNewBuildsModelPerAgent(t *testing.T) {
	t.Parallel()

	cat := catalogx.New()
	cfg := llmx.Config{
		BaseURL:            "https://api.openai.com/v1",
		APIKey:             "sk-test",
		Model:              "gpt-4.1-mini",
		MaxCompletionToken: 2000,
		Temperature:        0.5,
		Timeout:            30 * time.Second,
		MealPlannerTemp:    -1,
		QnATemp:            -1,
		CollectorTemp:      -1,
	}

	r, err := New(context.Background(), cat, cfg, &fakeStore{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	for _, name := range cat.Names() {
		if _, ok := r.models[name]; !ok {
			t.Errorf("no model built for agent %s", name)
		}
	}
	if r.executor == nil {
		t.Fatal("tool executor not wired")
	}
}

func TestInvokePlainReply(t *testing.T) {
	t.Parallel()

	r := newTestRuntime(&fakeStore{}, map[contractx.AgentName]einomodel.ToolCallingChatModel{
		contractx.AgentIdentityVerifier: &fakeToolCallingModel{
			responses: []*schema.Message{schema.AssistantMessage("Please share your user ID.", nil)},
		},
	})

	res, err := r.Invoke(context.Background(), contractx.ExecutionRequest{
		Agent:   contractx.AgentIdentityVerifier,
		Input:   "hello",
		Context: statex.New(),
	})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if res.ProducingAgent != contractx.AgentIdentityVerifier {
		t.Fatalf("producing agent = %s", res.ProducingAgent)
	}
	if res.Output != "Please share your user ID." {
		t.Fatalf("output = %q", res.Output)
	}
}

func TestInvokeEmptyInput(t *testing.T) {
	t.Parallel()

	r := newTestRuntime(&fakeStore{}, nil)
	_, err := r.Invoke(context.Background(), contractx.ExecutionRequest{
		Agent:   contractx.AgentIdentityVerifier,
		Input:   "   ",
		Context: statex.New(),
	})
	if !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestInvokeToolRoundWritesContext(t *testing.T) {
	t.Parallel()

	store := &fakeStore{profile: &healthdb.UserProfile{ID: 7, FirstName: "Ada", LastName: "Lovelace"}}
	r := newTestRuntime(store, map[contractx.AgentName]einomodel.ToolCallingChatModel{
		contractx.AgentIdentityVerifier: &fakeToolCallingModel{
			responses: []*schema.Message{
				toolCallMessage("verify_identity", `{"user_id":7}`),
				schema.AssistantMessage("Welcome, Ada Lovelace!", nil),
			},
		},
	})

	caller := statex.New()
	res, err := r.Invoke(context.Background(), contractx.ExecutionRequest{
		Agent:   contractx.AgentIdentityVerifier,
		Input:   "7",
		Context: caller,
	})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if res.Context.UserID != 7 {
		t.Fatalf("returned context user id = %d", res.Context.UserID)
	}
	if caller.UserID != 0 {
		t.Fatalf("caller context mutated: %d", caller.UserID)
	}
	if got := res.Context.Facts["user_name"]; got != "Ada Lovelace" {
		t.Fatalf("user name fact = %q", got)
	}
}

func TestInvokeTransferSwitchesProducer(t *testing.T) {
	t.Parallel()

	r := newTestRuntime(&fakeStore{}, map[contractx.AgentName]einomodel.ToolCallingChatModel{
		contractx.AgentIdentityVerifier: &fakeToolCallingModel{
			responses: []*schema.Message{
				toolCallMessage("transfer_to_agent", `{"agent":"mood_recorder"}`),
			},
		},
		contractx.AgentMoodRecorder: &fakeToolCallingModel{
			responses: []*schema.Message{
				schema.AssistantMessage("How are you feeling today?", nil),
			},
		},
	})

	res, err := r.Invoke(context.Background(), contractx.ExecutionRequest{
		Agent:   contractx.AgentIdentityVerifier,
		Input:   "7",
		Context: statex.New(),
	})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if res.ProducingAgent != contractx.AgentMoodRecorder {
		t.Fatalf("producing agent = %s", res.ProducingAgent)
	}
	if !strings.Contains(res.Output, "feeling") {
		t.Fatalf("output = %q", res.Output)
	}
}

func TestInvokeTransferToUndeclaredTarget(t *testing.T) {
	t.Parallel()

	r := newTestRuntime(&fakeStore{}, map[contractx.AgentName]einomodel.ToolCallingChatModel{
		contractx.AgentIdentityVerifier: &fakeToolCallingModel{
			responses: []*schema.Message{
				toolCallMessage("transfer_to_agent", `{"agent":"meal_planner"}`),
			},
		},
	})

	_, err := r.Invoke(context.Background(), contractx.ExecutionRequest{
		Agent:   contractx.AgentIdentityVerifier,
		Input:   "plan my meals",
		Context: statex.New(),
	})
	if !errors.Is(err, contractx.ErrSchemaViolation) {
		t.Fatalf("expected ErrSchemaViolation, got %v", err)
	}
}

func TestInvokeDisallowedTool(t *testing.T) {
	t.Parallel()

	r := newTestRuntime(&fakeStore{}, map[contractx.AgentName]einomodel.ToolCallingChatModel{
		contractx.AgentIdentityVerifier: &fakeToolCallingModel{
			responses: []*schema.Message{
				toolCallMessage("generate_meal_plan", `{"glucose_status":"high"}`),
			},
		},
	})

	_, err := r.Invoke(context.Background(), contractx.ExecutionRequest{
		Agent:   contractx.AgentIdentityVerifier,
		Input:   "plan",
		Context: statex.New(),
	})
	if !errors.Is(err, contractx.ErrSchemaViolation) {
		t.Fatalf("expected ErrSchemaViolation, got %v", err)
	}
}

func TestInvokeEmptyReplyIsSchemaViolation(t *testing.T) {
	t.Parallel()

	r := newTestRuntime(&fakeStore{}, map[contractx.AgentName]einomodel.ToolCallingChatModel{
		contractx.AgentIdentityVerifier: &fakeToolCallingModel{
			responses: []*schema.Message{schema.AssistantMessage("   ", nil)},
		},
	})

	_, err := r.Invoke(context.Background(), contractx.ExecutionRequest{
		Agent:   contractx.AgentIdentityVerifier,
		Input:   "hi",
		Context: statex.New(),
	})
	if !errors.Is(err, contractx.ErrSchemaViolation) {
		t.Fatalf("expected ErrSchemaViolation, got %v", err)
	}
}

func TestInvokeModelFailure(t *testing.T) {
	t.Parallel()

	r := newTestRuntime(&fakeStore{}, map[contractx.AgentName]einomodel.ToolCallingChatModel{
		contractx.AgentIdentityVerifier: &fakeToolCallingModel{err: errors.New("upstream 500")},
	})

	_, err := r.Invoke(context.Background(), contractx.ExecutionRequest{
		Agent:   contractx.AgentIdentityVerifier,
		Input:   "hi",
		Context: statex.New(),
	})
	if !errors.Is(err, contractx.ErrModelInvoke) {
		t.Fatalf("expected ErrModelInvoke, got %v", err)
	}
}

func TestAnswerHealthQuestionOneShot(t *testing.T) {
	t.Parallel()

	r := newTestRuntime(&fakeStore{}, map[contractx.AgentName]einomodel.ToolCallingChatModel{
		contractx.AgentMoodRecorder: &fakeToolCallingModel{
			responses: []*schema.Message{
				toolCallMessage("answer_health_question", `{"question":"is walking good?"}`),
				schema.AssistantMessage("Walking is great. Now, how do you feel?", nil),
			},
		},
		contractx.AgentHealthQnA: &fakeToolCallingModel{
			responses: []*schema.Message{
				schema.AssistantMessage("Yes, walking is excellent exercise.", nil),
			},
		},
	})

	res, err := r.Invoke(context.Background(), contractx.ExecutionRequest{
		Agent:   contractx.AgentMoodRecorder,
		Input:   "is walking good?",
		Context: &statex.Context{UserID: 7, Facts: map[string]string{}},
	})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if res.ProducingAgent != contractx.AgentMoodRecorder {
		t.Fatalf("producing agent = %s", res.ProducingAgent)
	}
	if !strings.Contains(res.Output, "how do you feel") {
		t.Fatalf("output = %q", res.Output)
	}
}

func TestBuildMessagesReplaysHistory(t *testing.T) {
	t.Parallel()

	history := []contractx.Turn{
		{Input: "7", Output: "Welcome, Ada!"},
		{Input: "tired", Output: "Noted."},
	}
	messages := buildMessages("be helpful", history, "180")

	if len(messages) != 6 {
		t.Fatalf("message count = %d", len(messages))
	}
	if messages[0].Role != schema.System {
		t.Fatalf("first message role = %s", messages[0].Role)
	}
	if messages[5].Role != schema.User || messages[5].Content != "180" {
		t.Fatalf("last message = %+v", messages[5])
	}
}
