package errors_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	uierrors "github.com/dalemusser/twfhub/internal/app/features/errors"
	"github.com/dalemusser/twfhub/internal/domain/twferr"
	"github.com/dalemusser/twfhub/internal/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRenderPages_Status(t *testing.T) {
	rr := testutil.NewRenderRecorder()
	uierrors.UseRenderer(rr.Render)

	tests := []struct {
		name   string
		render func(w http.ResponseWriter, r *http.Request)
		status int
	}{
		{"unauthorized", func(w http.ResponseWriter, r *http.Request) { uierrors.RenderUnauthorized(w, r, "") }, http.StatusUnauthorized},
		{"forbidden", func(w http.ResponseWriter, r *http.Request) { uierrors.RenderForbidden(w, r, "no", "/") }, http.StatusForbidden},
		{"not found", func(w http.ResponseWriter, r *http.Request) { uierrors.RenderNotFound(w, r, "gone", "/") }, http.StatusNotFound},
		{"bad request", func(w http.ResponseWriter, r *http.Request) { uierrors.RenderBadRequest(w, r, "bad", "/") }, http.StatusBadRequest},
		{"action error", func(w http.ResponseWriter, r *http.Request) { uierrors.RenderError(w, r, "nope", "/") }, http.StatusUnprocessableEntity},
		{"server error", func(w http.ResponseWriter, r *http.Request) { uierrors.RenderServerError(w, r, "oops", "/") }, http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tc.render(rec, httptest.NewRequest("GET", "/x", nil))
			if rec.Code != tc.status {
				t.Errorf("status = %d, want %d", rec.Code, tc.status)
			}
			if rr.Last().Name != "error_page" {
				t.Errorf("template = %q", rr.Last().Name)
			}
		})
	}
}

func TestLogServerError_IncludesReference(t *testing.T) {
	rr := testutil.NewRenderRecorder()
	uierrors.UseRenderer(rr.Render)

	core, logs := observer.New(zapcore.InfoLevel)
	el := uierrors.NewErrorLogger(zap.New(core))

	rec := httptest.NewRecorder()
	el.LogServerError(rec, httptest.NewRequest("GET", "/twf/forum/1", nil),
		"load forum failed", errors.New("boom"), "A database error occurred.", "/")

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d", rec.Code)
	}
	entries := logs.FilterMessage("load forum failed").All()
	if len(entries) != 1 {
		t.Fatalf("expected one log entry, got %d", len(entries))
	}
	ref, _ := entries[0].ContextMap()["error_ref"].(string)
	if ref == "" {
		t.Fatal("expected error_ref field")
	}
	if !rr.Last().Contains(ref) {
		t.Errorf("reference %s not passed to the page", ref)
	}
}

func TestLogBadRequest(t *testing.T) {
	rr := testutil.NewRenderRecorder()
	uierrors.UseRenderer(rr.Render)

	core, logs := observer.New(zapcore.WarnLevel)
	el := uierrors.NewErrorLogger(zap.New(core))

	rec := httptest.NewRecorder()
	el.LogBadRequest(rec, httptest.NewRequest("POST", "/login", nil),
		"parse form failed", errors.New("bad"), "Invalid form data.", "/login")

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rec.Code)
	}
	if logs.Len() != 1 {
		t.Errorf("expected 1 warning, got %d", logs.Len())
	}
}

func TestRenderDomainError(t *testing.T) {
	rr := testutil.NewRenderRecorder()
	uierrors.UseRenderer(rr.Render)
	core, logs := observer.New(zapcore.WarnLevel)
	el := uierrors.NewErrorLogger(zap.New(core))

	tests := []struct {
		err    error
		status int
		msg    string
	}{
		{fmt.Errorf("forum x: %w", twferr.ErrNotFound), http.StatusNotFound, uierrors.MsgNotFound},
		{twferr.ErrUnauthorized, http.StatusForbidden, uierrors.MsgUnauthorized},
		{twferr.ErrInvalidAction, http.StatusBadRequest, uierrors.MsgInvalidAction},
		{twferr.ErrTrackingDisallowed, http.StatusUnprocessableEntity, uierrors.MsgTrackingDisallowed},
		{fmt.Errorf("%w: add: %w", twferr.ErrSubscription, errors.New("write conflict")), http.StatusUnprocessableEntity, uierrors.MsgSubscription},
		{errors.New("socket closed"), http.StatusInternalServerError, ""},
	}
	for _, tc := range tests {
		rec := httptest.NewRecorder()
		el.RenderDomainError(rec, httptest.NewRequest("GET", "/twf/markposts", nil), "mark posts failed", tc.err, "/")
		if rec.Code != tc.status {
			t.Errorf("%v: status = %d, want %d", tc.err, rec.Code, tc.status)
		}
		if tc.msg != "" && !rr.Last().Contains(tc.msg) {
			t.Errorf("%v: page does not carry %q", tc.err, tc.msg)
		}
	}
	// the subscription failure and the unexpected error are logged
	if n := logs.FilterMessage("mark posts failed").Len(); n != 2 {
		t.Errorf("logged %d entries, want 2", n)
	}
}
