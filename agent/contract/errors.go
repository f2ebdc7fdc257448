package contract

import "errors"

var (
	// ErrValidation marks malformed input. Recoverable: the same agent stays
	// current and re-prompts.
	ErrValidation = errors.New("validation failed")

	// ErrModelInvoke marks a failure of the execution layer itself. Fatal to
	// the session; no retry at this layer.
	ErrModelInvoke = errors.New("model invoke failed")

	// ErrSchemaViolation marks a model response that violates the expected
	// shape (unknown tool, malformed arguments).
	ErrSchemaViolation = errors.New("model response violates schema")

	// ErrProtocolViolation marks a state transition the catalog never
	// declared, or an attempt to rewrite write-once context. Fatal: the
	// session must not continue under unvalidated assumptions.
	ErrProtocolViolation = errors.New("protocol violation")
)
