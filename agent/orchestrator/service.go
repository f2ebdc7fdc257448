package orchestrator

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	catalogx "github.com/ace139/healthmate/agent/catalog"
	contractx "github.com/ace139/healthmate/agent/contract"
	statex "github.com/ace139/healthmate/agent/state"
	"github.com/ace139/healthmate/pkg/healthdb"
)

type sessionState int

const (
	stateAwaitingInput sessionState = iota
	stateExecuting
	stateApplyingResult
	stateTerminated
)

const greeting = "Hello! I'm your health assistant. Before we begin, please share your user ID so I can verify your identity."

// Orchestrator owns one interactive session: which agent is active, the
// shared context, and the conversation history. It never interprets
// agent replies itself; routing decisions come from the catalog and the
// context returned by the execution layer.
type Orchestrator struct {
	catalog  *catalogx.Catalog
	executor contractx.Executor
	store    contractx.HealthStore

	runner    compose.Runnable[GraphInput, GraphOutput]
	history   *contractx.History
	sctx      *statex.Context
	current   contractx.AgentName
	sessionID string
	now       func() time.Time
}

// Option mutates orchestrator construction.
type Option func(*Orchestrator)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// New builds a session starting at the catalog's entry agent with a
// fresh context and empty history. The store may be nil; conversation
// persistence is then skipped.
func New(ctx context.Context, cat *catalogx.Catalog, exec contractx.Executor, store contractx.HealthStore, opts ...Option) (*Orchestrator, error) {
	if cat == nil {
		return nil, fmt.Errorf("%w: catalog is required", contractx.ErrValidation)
	}
	if exec == nil {
		return nil, fmt.Errorf("%w: executor is required", contractx.ErrValidation)
	}
	o := &Orchestrator{
		catalog:   cat,
		executor:  exec,
		store:     store,
		history:   &contractx.History{},
		sctx:      statex.New(),
		current:   cat.Entry(),
		sessionID: uuid.NewString(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	runner, err := o.compileTurnGraph(ctx)
	if err != nil {
		return nil, err
	}
	o.runner = runner
	return o, nil
}

// Current returns the agent that will handle the next input.
func (o *Orchestrator) Current() contractx.AgentName { return o.current }

// Context returns a snapshot of the session context.
func (o *Orchestrator) Context() statex.Context { return *o.sctx.Clone() }

// History returns the turns committed so far.
func (o *Orchestrator) History() []contractx.Turn { return o.history.Turns() }

// SessionID returns the identifier used for conversation persistence.
func (o *Orchestrator) SessionID() string { return o.sessionID }

// ExecuteTurn runs one input through the turn pipeline without
// committing anything to the session. Callers commit the result with
// Apply, or drop it on error.
func (o *Orchestrator) ExecuteTurn(ctx context.Context, input string) (GraphOutput, error) {
	return o.runner.Invoke(ctx, GraphInput{Input: input})
}

// Apply commits a turn produced by ExecuteTurn: the history gains one
// turn, the session adopts the returned context wholesale, and a fired
// handoff moves the active agent. Returns whether the exit flag is set.
func (o *Orchestrator) Apply(ctx context.Context, input string, out GraphOutput) bool {
	o.history.Append(contractx.Turn{
		Input:          input,
		StartAgent:     out.StartAgent,
		Output:         out.Reply,
		ProducingAgent: out.ProducingAgent,
		Context:        *out.Context.Clone(),
		At:             out.At,
	})
	o.sctx = out.Context
	if out.HandoffFired {
		o.current = out.ProducingAgent
	}
	o.persistTurn(ctx, input, out)
	return o.sctx.ExitRequested
}

// HandleTurn executes and commits one turn. It exists for callers that
// do not drive the interactive state machine themselves.
func (o *Orchestrator) HandleTurn(ctx context.Context, input string) (string, bool, error) {
	out, err := o.ExecuteTurn(ctx, input)
	if err != nil {
		return "", false, err
	}
	exit := o.Apply(ctx, input, out)
	return out.Reply, exit, nil
}

// persistTurn writes the user and assistant rows for a committed turn.
// Rows are only written once the user is verified, and failures are
// logged, not surfaced; losing an audit row must not kill the session.
func (o *Orchestrator) persistTurn(ctx context.Context, input string, out GraphOutput) {
	if o.store == nil || !o.sctx.Verified() {
		return
	}
	rows := []healthdb.ConversationEntry{
		{UserID: o.sctx.UserID, SessionID: o.sessionID, Role: "user", Message: input, At: out.At},
		{UserID: o.sctx.UserID, SessionID: o.sessionID, Role: "assistant", Message: out.Reply, Metadata: string(out.ProducingAgent), At: out.At},
	}
	for _, row := range rows {
		if err := o.store.LogConversation(ctx, row); err != nil {
			log.Warn().Err(err).Str("session_id", o.sessionID).Msg("conversation row not persisted")
		}
	}
}

// Run drives the interactive session over the given reader and writer
// until a quit command, an agent-requested exit, end of input, context
// cancellation or a fatal error. A nil return means the session ended
// cleanly; a non-nil return reports the fatal condition.
func (o *Orchestrator) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)
	go func() {
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			case <-done:
				return
			}
		}
		scanErr <- sc.Err()
		close(lines)
	}()

	fmt.Fprintln(out, greeting)

	var (
		input  string
		turn   GraphOutput
		reason TerminationReason
	)
	state := stateAwaitingInput
	for state != stateTerminated {
		switch state {
		case stateAwaitingInput:
			fmt.Fprint(out, "\nYou: ")
			select {
			case <-ctx.Done():
				fmt.Fprintln(out, "\nSession interrupted. Goodbye!")
				return nil
			case line, ok := <-lines:
				if !ok {
					if err := <-scanErr; err != nil {
						return fmt.Errorf("read input: %w", err)
					}
					fmt.Fprintln(out, "\nGoodbye!")
					return nil
				}
				if IsQuitCommand(line) {
					reason = DecideTermination(true, nil, false)
					fmt.Fprintln(out, "Goodbye! Take care of your health.")
					state = stateTerminated
					continue
				}
				if strings.TrimSpace(line) == "" {
					fmt.Fprintln(out, "Please type a message, or 'quit' to leave.")
					continue
				}
				input = line
				state = stateExecuting
			}

		case stateExecuting:
			res, err := o.ExecuteTurn(ctx, input)
			if err != nil {
				if errors.Is(err, contractx.ErrValidation) {
					fmt.Fprintln(out, "Please type a message, or 'quit' to leave.")
					state = stateAwaitingInput
					continue
				}
				reason = DecideTermination(false, err, false)
				log.Error().Err(err).Str("agent", string(o.current)).Msg("turn failed")
				fmt.Fprintln(out, "Something went wrong and the session cannot continue. Goodbye.")
				return err
			}
			turn = res
			state = stateApplyingResult

		case stateApplyingResult:
			exit := o.Apply(ctx, input, turn)
			fmt.Fprintf(out, "Assistant: %s\n", turn.Reply)
			if exit {
				reason = DecideTermination(false, nil, true)
				fmt.Fprintln(out, "\nYour meal plan is ready. Goodbye! Take care of your health.")
				state = stateTerminated
				continue
			}
			state = stateAwaitingInput
		}
	}

	log.Info().Int("reason", int(reason)).Str("session_id", o.sessionID).Msg("session ended")
	return nil
}
