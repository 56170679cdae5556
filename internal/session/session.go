package session

import "time"

// Step tags where a call currently is in the receptionist flow.
type Step string

const (
	StepWelcome       Step = "welcome"
	StepCollectName   Step = "collect_name"
	StepCollectReason Step = "collect_reason"
	StepConfirm       Step = "confirm"
)

// CallSession is the durable conversation state for one phone call, keyed by
// the provider-assigned call identifier.
//
// Invariants:
// - CallID never changes after creation.
// - Step outside the known set is not an error; the flow engine resets it
//   to welcome so the call can always make forward progress.
// - The record lives only for a bounded TTL window; an abandoned call is
//   forgotten by the store, not by application code.
type CallSession struct {
	CallID     string `json:"call_id"`
	InstanceID string `json:"instance_id,omitempty"`

	Step Step `json:"step"`

	// Data accumulates collected fields (name, reason, from, to) as the
	// call progresses.
	Data map[string]string `json:"data"`

	StartedAt time.Time `json:"started_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New returns a fresh session at the start of the flow.
func New(callID string) *CallSession {
	return &CallSession{
		CallID: callID,
		Step:   StepWelcome,
		Data:   map[string]string{},
	}
}

// Set records a collected field, allocating Data if the session was
// deserialized without one.
func (s *CallSession) Set(key, value string) {
	if s.Data == nil {
		s.Data = map[string]string{}
	}
	s.Data[key] = value
}
