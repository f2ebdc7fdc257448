package contract

import (
	"context"

	"github.com/ace139/healthmate/pkg/healthdb"
)

// Executor is the execution service the orchestrator delegates each turn to.
// The orchestrator only inspects ProducingAgent and the returned context;
// everything else (model calls, tool rounds, sub-agent delegation) is the
// executor's business.
type Executor interface {
	Invoke(ctx context.Context, req ExecutionRequest) (ExecutionResult, error)
}

// HealthStore is the narrow slice of the backing store reachable from tool
// invocations. The orchestrator loop never touches it directly.
type HealthStore interface {
	GetUser(ctx context.Context, userID int64) (*healthdb.UserProfile, error)
	RecordMood(ctx context.Context, userID int64, mood string) error
	RecordGlucose(ctx context.Context, userID int64, reading float64) error
	GlucoseStats(ctx context.Context, userID int64) (healthdb.GlucoseStats, error)
	LogConversation(ctx context.Context, entry healthdb.ConversationEntry) error
}
