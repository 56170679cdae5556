package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"receptionist-platform/internal/flow"
	"receptionist-platform/internal/session"
	"receptionist-platform/internal/telephony"
	"receptionist-platform/pkg/logger"

	"github.com/gin-gonic/gin"
)

// CallRouter is the HTTP-facing orchestration for the call flow: normalize
// the webhook, load or create the session, advance the flow, serialize the
// next action for the requested provider.
//
// All three handlers are safe under provider retry: /incoming and /gather
// re-run the same transition on a duplicate, /hangup is a best-effort
// delete. Keep these thin; flow decisions belong to internal/flow.
type CallRouter struct {
	Store  session.Store
	Engine *flow.Engine

	// DefaultProvider is used when the request carries no provider hint.
	// Empty falls through to neutral JSON.
	DefaultProvider telephony.Provider
}

// Incoming starts or resumes a call.
func (rt CallRouter) Incoming(c *gin.Context) {
	log := logger.FromGin(c)
	ctx := logger.With(c.Request.Context(), log)

	ev := telephony.NormalizeEvent(requestBag(c))
	if ev.CallID == "" {
		c.String(http.StatusBadRequest, "missing call identifier")
		return
	}

	s, err := rt.Store.Load(ctx, ev.CallID)
	if err != nil {
		// A failed load reads as a fresh call; availability beats state.
		log.Warn("session load failed, starting fresh", "call_id", ev.CallID, "err", err)
		s = nil
	}
	if s == nil {
		s = session.New(ev.CallID)
		s.InstanceID = ev.InstanceID
		if ev.From != "" {
			s.Set("from", ev.From)
		}
		if ev.To != "" {
			s.Set("to", ev.To)
		}
		if err := rt.Store.Save(ctx, s); err != nil {
			log.Warn("session create failed, continuing call", "call_id", ev.CallID, "err", err)
		}
	}

	action := rt.Engine.Advance(ctx, s, flow.Input{})
	rt.respond(c, action)
}

// Gather continues a call with captured input.
func (rt CallRouter) Gather(c *gin.Context) {
	log := logger.FromGin(c)
	ctx := logger.With(c.Request.Context(), log)

	ev := telephony.NormalizeEvent(requestBag(c))
	if ev.CallID == "" {
		c.String(http.StatusBadRequest, "missing call identifier")
		return
	}

	s, err := rt.Store.Load(ctx, ev.CallID)
	if err != nil {
		log.Warn("session load failed, starting fresh", "call_id", ev.CallID, "err", err)
		s = nil
	}
	if s == nil {
		// A call whose session was lost mid-flight restarts the flow
		// instead of hearing an error.
		log.Info("no session for gather, restarting flow", "call_id", ev.CallID)
		s = session.New(ev.CallID)
		s.InstanceID = ev.InstanceID
	}

	action := rt.Engine.Advance(ctx, s, flow.Input{Digits: ev.Digits, Transcript: ev.Transcript})
	rt.respond(c, action)
}

// Hangup signals call end; cleanup is best-effort and always succeeds.
func (rt CallRouter) Hangup(c *gin.Context) {
	log := logger.FromGin(c)
	ctx := logger.With(c.Request.Context(), log)

	ev := telephony.NormalizeEvent(requestBag(c))
	if ev.CallID != "" {
		if err := rt.Store.Clear(ctx, ev.CallID); err != nil {
			log.Warn("session clear failed", "call_id", ev.CallID, "err", err)
		}
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (rt CallRouter) provider(c *gin.Context) telephony.Provider {
	if v := strings.TrimSpace(c.Query("provider")); v != "" {
		return telephony.Provider(strings.ToLower(v))
	}
	if rt.DefaultProvider != "" {
		return rt.DefaultProvider
	}
	return telephony.ProviderJSON
}

func (rt CallRouter) respond(c *gin.Context, action telephony.Action) {
	payload, err := telephony.Serialize(rt.provider(c), action)
	if err != nil {
		logger.FromGin(c).Error("action serialize failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "serialization failed"})
		return
	}
	c.Data(http.StatusOK, payload.ContentType, []byte(payload.Body))
}

// requestBag merges query parameters with body fields into one key/value
// bag. Providers differ in transport: Twilio posts form-encoded, others
// post JSON, and some put call metadata on the query string.
func requestBag(c *gin.Context) map[string]string {
	bag := map[string]string{}

	for k, vs := range c.Request.URL.Query() {
		if len(vs) > 0 {
			bag[k] = vs[0]
		}
	}

	if strings.Contains(c.ContentType(), "json") {
		var body map[string]any
		if raw, err := c.GetRawData(); err == nil && len(raw) > 0 {
			if err := json.Unmarshal(raw, &body); err == nil {
				for k, v := range body {
					switch t := v.(type) {
					case string:
						bag[k] = t
					case bool, float64:
						bag[k] = fmt.Sprint(t)
					}
				}
			}
		}
		return bag
	}

	if err := c.Request.ParseForm(); err == nil {
		for k, vs := range c.Request.PostForm {
			if len(vs) > 0 {
				bag[k] = vs[0]
			}
		}
	}
	return bag
}
