package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"receptionist-platform/internal/flow"
	"receptionist-platform/internal/session"
	"receptionist-platform/internal/telephony"

	"github.com/gin-gonic/gin"
)

func newTestRouter(store session.Store, def telephony.Provider) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	rt := CallRouter{
		Store:           store,
		Engine:          flow.NewEngine(store, nil),
		DefaultProvider: def,
	}
	r.POST("/incoming", rt.Incoming)
	r.POST("/gather", rt.Gather)
	r.POST("/hangup", rt.Hangup)
	return r
}

func postForm(t *testing.T, r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func postJSON(t *testing.T, r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCallFlow_EndToEnd(t *testing.T) {
	store := session.NewMemoryStore(time.Minute)
	r := newTestRouter(store, "")
	ctx := context.Background()

	// New call, no provider hint: neutral JSON.
	w := postForm(t, r, "/incoming", "CallSid=CA123&From=%2B15551234567&To=%2B15559876543")
	if w.Code != http.StatusOK {
		t.Fatalf("incoming: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("expected json content type, got %q", ct)
	}
	want := `{"action":"say","text":"Thanks for calling. Please say or enter your name after the beep.","gather":{"input":"both"}}`
	if w.Body.String() != want {
		t.Fatalf("unexpected body:\n got %s\nwant %s", w.Body.String(), want)
	}

	s, err := store.Load(ctx, "CA123")
	if err != nil || s == nil {
		t.Fatalf("expected session after incoming, got %+v, %v", s, err)
	}
	if s.Step != session.StepCollectName {
		t.Fatalf("expected step collect_name, got %q", s.Step)
	}
	if s.Data["from"] != "+15551234567" || s.Data["to"] != "+15559876543" {
		t.Fatalf("expected from/to captured, got %+v", s.Data)
	}

	// Caller speaks their name; Twilio output requested.
	w = postForm(t, r, "/gather?provider=twilio", "CallSid=CA123&SpeechResult=Jordan")
	if w.Code != http.StatusOK {
		t.Fatalf("gather: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/xml") {
		t.Fatalf("expected text/xml, got %q", ct)
	}
	if !strings.Contains(w.Body.String(), "<Say>Hi Jordan. Briefly tell me the reason for your call after the beep.</Say>") {
		t.Fatalf("expected personalized Say: %s", w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `<Gather input="speech" timeout="5">`) {
		t.Fatalf("expected speech Gather: %s", w.Body.String())
	}

	s, _ = store.Load(ctx, "CA123")
	if s.Step != session.StepCollectReason || s.Data["name"] != "Jordan" {
		t.Fatalf("unexpected session after name gather: %+v", s)
	}

	// No input captured: reason defaults, call ends.
	w = postForm(t, r, "/gather", "CallSid=CA123&Digits=&SpeechResult=")
	if w.Code != http.StatusOK {
		t.Fatalf("gather: expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"hangup":true`) {
		t.Fatalf("expected hangup action: %s", w.Body.String())
	}
	s, _ = store.Load(ctx, "CA123")
	if s.Step != session.StepConfirm || s.Data["reason"] != "General inquiry" {
		t.Fatalf("unexpected session after reason gather: %+v", s)
	}

	// Provider signals hangup; cleanup always succeeds.
	w = postForm(t, r, "/hangup", "CallSid=CA123")
	if w.Code != http.StatusOK || w.Body.String() != `{"ok":true}` {
		t.Fatalf("hangup: expected ok, got %d %s", w.Code, w.Body.String())
	}
	s, err = store.Load(ctx, "CA123")
	if err != nil || s != nil {
		t.Fatalf("expected session cleared, got %+v, %v", s, err)
	}

	// A gather after hangup behaves as a brand-new call.
	w = postForm(t, r, "/gather", "CallSid=CA123")
	if w.Code != http.StatusOK {
		t.Fatalf("gather after hangup: expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Thanks for calling.") {
		t.Fatalf("expected flow restart: %s", w.Body.String())
	}
}

func TestIncoming_RequiresCallID(t *testing.T) {
	r := newTestRouter(session.NewMemoryStore(time.Minute), "")

	w := postForm(t, r, "/incoming", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}

	w = postForm(t, r, "/gather", "Digits=1")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestIncoming_JSONBodyAndPlivoAliases(t *testing.T) {
	store := session.NewMemoryStore(time.Minute)
	r := newTestRouter(store, "")

	w := postJSON(t, r, "/incoming?provider=plivo", `{"CallUUID":"ab-12","From":"+15550001111","To":"+15552223333"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/xml") {
		t.Fatalf("expected application/xml, got %q", ct)
	}
	if !strings.Contains(w.Body.String(), "<Speak>") || !strings.Contains(w.Body.String(), "<GetInput") {
		t.Fatalf("expected Plivo markup: %s", w.Body.String())
	}

	s, err := store.Load(context.Background(), "ab-12")
	if err != nil || s == nil {
		t.Fatalf("expected session keyed by CallUUID, got %+v, %v", s, err)
	}
}

func TestProviderSelection_DefaultAndOverride(t *testing.T) {
	store := session.NewMemoryStore(time.Minute)
	r := newTestRouter(store, telephony.ProviderTwilio)

	// Server-wide default applies without a hint.
	w := postForm(t, r, "/incoming", "CallSid=CA1")
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/xml") {
		t.Fatalf("expected configured twilio default, got %q", ct)
	}

	// The request parameter wins over the server default.
	w = postForm(t, r, "/incoming?provider=sinch", "CallSid=CA2")
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("expected sinch json fallback, got %q", ct)
	}
}

func TestHangup_WithoutCallIDStillSucceeds(t *testing.T) {
	r := newTestRouter(session.NewMemoryStore(time.Minute), "")
	w := postForm(t, r, "/hangup", "")
	if w.Code != http.StatusOK || w.Body.String() != `{"ok":true}` {
		t.Fatalf("expected best-effort ok, got %d %s", w.Code, w.Body.String())
	}
}

func TestGather_BackendFailureDegradesToFreshFlow(t *testing.T) {
	r := newTestRouter(failingStore{}, "")
	w := postForm(t, r, "/gather", "CallSid=CA1&SpeechResult=Jordan")
	if w.Code != http.StatusOK {
		t.Fatalf("expected the call to continue, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Thanks for calling.") {
		t.Fatalf("expected restarted flow: %s", w.Body.String())
	}
}

type failingStore struct{}

func (failingStore) Load(ctx context.Context, callID string) (*session.CallSession, error) {
	return nil, context.DeadlineExceeded
}
func (failingStore) Save(ctx context.Context, s *session.CallSession) error {
	return context.DeadlineExceeded
}
func (failingStore) Clear(ctx context.Context, callID string) error {
	return context.DeadlineExceeded
}
