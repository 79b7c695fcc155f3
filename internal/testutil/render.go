package testutil

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/twfhub/internal/app/system/auth"
	"go.uber.org/zap"
)

// Rendered is one captured Render call.
type Rendered struct {
	Name string
	Data any
}

// Contains reports whether s occurs in the printed view model.
func (r Rendered) Contains(s string) bool {
	return strings.Contains(fmt.Sprintf("%+v", r.Data), s)
}

// RenderRecorder stands in for the template engine in handler tests.
// Its Render method has the viewdata.Renderer signature.
type RenderRecorder struct {
	mu    sync.Mutex
	Calls []Rendered
}

func NewRenderRecorder() *RenderRecorder {
	return &RenderRecorder{}
}

// Render records the call and writes the template name as the body.
func (rr *RenderRecorder) Render(w http.ResponseWriter, _ *http.Request, name string, data any) {
	rr.mu.Lock()
	rr.Calls = append(rr.Calls, Rendered{Name: name, Data: data})
	rr.mu.Unlock()
	_, _ = w.Write([]byte(name))
}

// Last returns the most recent call, or a zero Rendered.
func (rr *RenderRecorder) Last() Rendered {
	rr.mu.Lock()
	defer rr.mu.Unlock()
	if len(rr.Calls) == 0 {
		return Rendered{}
	}
	return rr.Calls[len(rr.Calls)-1]
}

// TestSessionKey is a 32+ character key for test session managers.
const TestSessionKey = "test-session-key-must-be-32-chars-long"

// NewSessionManager returns an insecure-cookie session manager for tests.
func NewSessionManager(t *testing.T) *auth.SessionManager {
	t.Helper()
	sm, err := auth.NewSessionManager(TestSessionKey, "test-session", "", 24*time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	return sm
}

// CarryCookies copies the cookies set on a response onto the next request.
func CarryCookies(from http.Header, to *http.Request) *http.Request {
	resp := http.Response{Header: from}
	for _, c := range resp.Cookies() {
		to.AddCookie(c)
	}
	return to
}
