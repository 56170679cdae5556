package telephony

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
)

// Provider tags the target wire format for an outbound action. Selection is
// always an explicit tag (request parameter or configured default), never
// inferred from payload shape.
type Provider string

const (
	ProviderTwilio Provider = "twilio"
	ProviderPlivo  Provider = "plivo"
	ProviderSinch  Provider = "sinch"
	ProviderJSON   Provider = "json"
)

// Payload is a serialized outbound action ready to write to the HTTP
// response.
type Payload struct {
	ContentType string
	Body        string
}

// Serialize renders an Action for the given provider. Providers without a
// dedicated markup adapter (sinch, json, anything unknown) fall back to the
// canonical JSON form, which is always safe to emit.
//
// Text interpolated into XML goes through encoding/xml structs, so the five
// XML special characters are always entity-escaped. Raw string templating
// into markup is off-limits in this package.
func Serialize(provider Provider, a Action) (Payload, error) {
	switch provider {
	case ProviderTwilio:
		body, err := renderTwiML(a)
		if err != nil {
			return Payload{}, err
		}
		return Payload{ContentType: "text/xml", Body: body}, nil
	case ProviderPlivo:
		body, err := renderPlivoXML(a)
		if err != nil {
			return Payload{}, err
		}
		return Payload{ContentType: "application/xml", Body: body}, nil
	default:
		body, err := json.Marshal(a)
		if err != nil {
			return Payload{}, err
		}
		return Payload{ContentType: "application/json", Body: string(body)}, nil
	}
}

// TwiML primitives. Kept minimal: only the verbs this flow emits, no
// provider SDK dependency.

type twimlResponse struct {
	XMLName xml.Name `xml:"Response"`
	Verbs   []any    `xml:",any"`
}

type twimlSay struct {
	XMLName xml.Name `xml:"Say"`
	Text    string   `xml:",chardata"`
}

type twimlGather struct {
	XMLName xml.Name `xml:"Gather"`
	Input   string   `xml:"input,attr"`
	Timeout int      `xml:"timeout,attr"`
	Say     *twimlSay
}

type twimlHangup struct {
	XMLName xml.Name `xml:"Hangup"`
}

func renderTwiML(a Action) (string, error) {
	var r twimlResponse
	switch {
	case a.Hangup || a.Action == ActionHangup:
		if a.Text != "" {
			r.Verbs = append(r.Verbs, twimlSay{Text: a.Text})
		}
		r.Verbs = append(r.Verbs, twimlHangup{})
	case a.Gather != nil:
		r.Verbs = append(r.Verbs, twimlGather{
			Input:   a.Gather.Input,
			Timeout: 5,
			Say:     &twimlSay{Text: a.Text},
		})
	default:
		r.Verbs = append(r.Verbs, twimlSay{Text: a.Text})
	}
	return encodeXML(r)
}

// Plivo XML primitives; same shape as TwiML with Plivo's verb names.

type plivoResponse struct {
	XMLName xml.Name `xml:"Response"`
	Verbs   []any    `xml:",any"`
}

type plivoSpeak struct {
	XMLName xml.Name `xml:"Speak"`
	Text    string   `xml:",chardata"`
}

type plivoGetInput struct {
	XMLName   xml.Name `xml:"GetInput"`
	InputType string   `xml:"inputType,attr"`
	Speak     *plivoSpeak
}

type plivoHangup struct {
	XMLName xml.Name `xml:"Hangup"`
}

func renderPlivoXML(a Action) (string, error) {
	var r plivoResponse
	switch {
	case a.Hangup || a.Action == ActionHangup:
		if a.Text != "" {
			r.Verbs = append(r.Verbs, plivoSpeak{Text: a.Text})
		}
		r.Verbs = append(r.Verbs, plivoHangup{})
	case a.Gather != nil:
		// Plivo only distinguishes speech vs dtmf; "both" degrades to dtmf.
		inputType := GatherDTMF
		if a.Gather.Input == GatherSpeech {
			inputType = GatherSpeech
		}
		r.Verbs = append(r.Verbs, plivoGetInput{
			InputType: inputType,
			Speak:     &plivoSpeak{Text: a.Text},
		})
	default:
		r.Verbs = append(r.Verbs, plivoSpeak{Text: a.Text})
	}
	return encodeXML(r)
}

func encodeXML(v any) (string, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	if err := enc.Flush(); err != nil {
		return "", err
	}
	return buf.String(), nil
}
