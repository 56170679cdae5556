package flow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"receptionist-platform/internal/instances"
	"receptionist-platform/internal/session"
	"receptionist-platform/internal/telephony"
	"receptionist-platform/pkg/logger"
)

// Input is the caller's last captured input, if any.
type Input struct {
	Digits     string
	Transcript string
}

// Captured resolves the caller's input, preferring transcript over digits
// over the step-specific fallback. A collected field is never left empty.
func (in Input) Captured(fallback string) string {
	if v := strings.TrimSpace(in.Transcript); v != "" {
		return v
	}
	if v := strings.TrimSpace(in.Digits); v != "" {
		return v
	}
	return fallback
}

// Engine advances a call session one step through the receptionist flow.
//
// Rules:
// - Transitions are a table keyed by step, not a conditional chain; adding
//   a branch is a new table row.
// - An unknown or corrupt step resets to welcome instead of erroring, so a
//   call can always make forward progress.
// - The updated session is persisted before the action is returned; a
//   failed write is logged and the call continues (continuity over
//   durability).
type Engine struct {
	store     session.Store
	instances instances.Repository
	prompts   instances.PromptSet
}

func NewEngine(store session.Store, repo instances.Repository) *Engine {
	return &Engine{
		store:     store,
		instances: repo,
		prompts:   instances.DefaultPrompts,
	}
}

type transition func(s *session.CallSession, in Input, p instances.PromptSet) telephony.Action

var transitions = map[session.Step]transition{
	session.StepWelcome:       stepWelcome,
	session.StepCollectName:   stepCollectName,
	session.StepCollectReason: stepCollectReason,
}

// Advance runs one state transition for the session and returns the next
// outbound action. Total over all step values, including ones outside the
// known set.
func (e *Engine) Advance(ctx context.Context, s *session.CallSession, in Input) telephony.Action {
	log := logger.From(ctx)

	fn, ok := transitions[s.Step]
	if !ok {
		// Terminal or unrecognized step: restart the flow rather than fail
		// the call.
		log.Debug("unknown step, resetting to welcome", "call_id", s.CallID, "step", string(s.Step))
		s.Step = session.StepWelcome
		fn = stepWelcome
	}

	action := fn(s, in, e.promptsFor(ctx, s.InstanceID))

	if err := e.store.Save(ctx, s); err != nil {
		log.Error("session save failed, continuing call", "call_id", s.CallID, "step", string(s.Step), "err", err)
	}
	return action
}

func (e *Engine) promptsFor(ctx context.Context, instanceID string) instances.PromptSet {
	if instanceID == "" || e.instances == nil {
		return e.prompts
	}
	inst, err := e.instances.GetByID(ctx, instanceID)
	if err != nil {
		if !errors.Is(err, instances.ErrNotFound) {
			logger.From(ctx).Warn("instance lookup failed, using default prompts", "instance_id", instanceID, "err", err)
		}
		return e.prompts
	}
	return inst.Prompts.Merge(e.prompts)
}

func stepWelcome(s *session.CallSession, _ Input, p instances.PromptSet) telephony.Action {
	s.Step = session.StepCollectName
	return telephony.Say(p.Greeting, &telephony.Gather{Input: telephony.GatherBoth})
}

func stepCollectName(s *session.CallSession, in Input, p instances.PromptSet) telephony.Action {
	name := in.Captured("Caller")
	s.Set("name", name)
	s.Step = session.StepCollectReason

	prompt := p.ReasonPrompt
	if strings.Contains(prompt, "%s") {
		prompt = fmt.Sprintf(prompt, name)
	}
	return telephony.Say(prompt, &telephony.Gather{Input: telephony.GatherSpeech})
}

func stepCollectReason(s *session.CallSession, in Input, p instances.PromptSet) telephony.Action {
	s.Set("reason", in.Captured("General inquiry"))
	s.Step = session.StepConfirm
	return telephony.Hangup(p.Closing)
}
