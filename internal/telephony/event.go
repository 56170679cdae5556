package telephony

import "strings"

// InboundEvent is the provider-agnostic shape of one inbound call webhook.
// It is transient: normalized at the HTTP boundary, consumed by the flow
// engine, never persisted.
//
// Rules:
// - No provider SDK calls in this package.
// - Provider field-name differences are resolved here and nowhere else.
type InboundEvent struct {
	CallID     string `json:"call_id"`
	From       string `json:"from"`
	To         string `json:"to"`
	InstanceID string `json:"instance_id,omitempty"`

	// Digits is keypad (DTMF) input, Transcript is speech-to-text output.
	// Either or both may be empty.
	Digits     string `json:"digits,omitempty"`
	Transcript string `json:"transcript,omitempty"`

	// Event is a freeform provider tag; defaults to "incoming".
	Event string `json:"event"`
}

// Alias tables map canonical fields to known provider field names, in
// priority order: generic first, then Twilio, then Plivo, then snake_case.
// Adding a provider alias is a one-line change here.
var (
	callIDAliases     = []string{"callId", "CallSid", "CallUUID", "call_id", "call_uuid"}
	fromAliases       = []string{"from", "From"}
	toAliases         = []string{"to", "To"}
	instanceIDAliases = []string{"instanceId", "instance_id"}
	digitsAliases     = []string{"digits", "Digits"}
	transcriptAliases = []string{"transcript", "SpeechResult"}
	eventAliases      = []string{"event", "Event"}
)

// NormalizeEvent maps an untyped key/value bag (query params merged with
// body fields, providers vary in transport) to an InboundEvent. Pure and
// deterministic; an empty CallID is the caller's signal to reject with 400.
func NormalizeEvent(bag map[string]string) InboundEvent {
	ev := InboundEvent{
		CallID:     firstAlias(bag, callIDAliases),
		From:       firstAlias(bag, fromAliases),
		To:         firstAlias(bag, toAliases),
		InstanceID: firstAlias(bag, instanceIDAliases),
		Digits:     firstAlias(bag, digitsAliases),
		Transcript: firstAlias(bag, transcriptAliases),
		Event:      firstAlias(bag, eventAliases),
	}
	if ev.Event == "" {
		ev.Event = "incoming"
	}
	return ev
}

func firstAlias(bag map[string]string, keys []string) string {
	for _, k := range keys {
		if v, ok := bag[k]; ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
