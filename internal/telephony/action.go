package telephony

// Action is the provider-agnostic outbound instruction produced by the
// flow engine: speak, optionally gather further input, optionally end the
// call. Serialization to provider wire formats lives in markup.go.
type Action struct {
	// Action is "say" or "hangup".
	Action string `json:"action"`

	Text   string  `json:"text,omitempty"`
	Gather *Gather `json:"gather,omitempty"`

	// Hangup marks the call as ended after Text is spoken.
	Hangup bool `json:"hangup,omitempty"`
}

// Gather asks the provider to collect caller input before the next webhook.
type Gather struct {
	// Input is one of "dtmf", "speech", "both".
	Input     string `json:"input"`
	MaxDigits int    `json:"maxDigits,omitempty"`
}

const (
	ActionSay    = "say"
	ActionHangup = "hangup"

	GatherDTMF   = "dtmf"
	GatherSpeech = "speech"
	GatherBoth   = "both"
)

// Say builds a speak-and-gather action.
func Say(text string, gather *Gather) Action {
	return Action{Action: ActionSay, Text: text, Gather: gather}
}

// Hangup builds a terminal action with an optional parting message.
func Hangup(text string) Action {
	return Action{Action: ActionHangup, Text: text, Hangup: true}
}
