package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/plebbitlabs/mintgate/challenge"
	"github.com/plebbitlabs/mintgate/types"
)

// TypeVerifyPublication is the asynchronous verification task type.
const TypeVerifyPublication = "verify:publication"

// TypeHealthCheck is the queue liveness probe task type. The task carries no
// payload; completing it proves the worker loop is draining tasks.
const TypeHealthCheck = "health:check"

// VerifyPayload is the task payload for one verification.
type VerifyPayload struct {
	Options     map[string]string `json:"options"`
	Publication types.Publication `json:"publication"`
	Community   string            `json:"community,omitempty"`
}

// NewVerifyTask builds an asynq task for payload.
func NewVerifyTask(payload VerifyPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal verify payload: %w", err)
	}
	return asynq.NewTask(TypeVerifyPublication, data), nil
}

// Processor handles queued verification tasks.
type Processor struct {
	challenge *challenge.Challenge
	log       *slog.Logger
}

// NewProcessor creates a task processor around ch.
func NewProcessor(ch *challenge.Challenge, log *slog.Logger) *Processor {
	return &Processor{challenge: ch, log: log}
}

// ProcessTask implements asynq.Handler. Misconfigured tasks are dropped
// instead of retried; transient failures are left to the queue's retry
// policy.
func (p *Processor) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload VerifyPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal verify payload: %v: %w", err, asynq.SkipRetry)
	}

	result, err := p.challenge.Verify(ctx, payload.Options, &payload.Publication, payload.Community)
	if err != nil {
		p.log.Error("verification misconfigured", "author", payload.Publication.Author, "error", err)
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	p.log.Info("verification processed",
		"author", payload.Publication.Author,
		"community", payload.Community,
		"success", result.Success,
		"message", result.Error,
	)
	return nil
}
