package instances

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("instances: not found")

// Instance is a configured receptionist bot. The admin surface that writes
// these rows is a separate application; this service only reads them to
// resolve per-instance prompt wording.
type Instance struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	Prompts PromptSet `json:"prompts"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PromptSet holds the spoken wording for each step of the flow. Empty
// fields fall back to the defaults, so a row only overrides what it sets.
type PromptSet struct {
	Greeting     string `json:"greeting"`
	ReasonPrompt string `json:"reason_prompt"`
	Closing      string `json:"closing"`
}

// DefaultPrompts is the wording used when a call has no instance, the
// instance row is missing, or the lookup fails.
var DefaultPrompts = PromptSet{
	Greeting:     "Thanks for calling. Please say or enter your name after the beep.",
	ReasonPrompt: "Hi %s. Briefly tell me the reason for your call after the beep.",
	Closing:      "Thank you. We have your details and someone will get back to you shortly. Goodbye.",
}

// Merge overlays non-empty fields of p onto the defaults.
func (p PromptSet) Merge(defaults PromptSet) PromptSet {
	out := defaults
	if p.Greeting != "" {
		out.Greeting = p.Greeting
	}
	if p.ReasonPrompt != "" {
		out.ReasonPrompt = p.ReasonPrompt
	}
	if p.Closing != "" {
		out.Closing = p.Closing
	}
	return out
}
