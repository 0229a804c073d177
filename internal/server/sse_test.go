package server

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHubBroadcastReachesClients(t *testing.T) {
	h := newSSEHub()
	a := h.add()
	b := h.add()

	h.broadcast()

	select {
	case <-a:
	default:
		t.Error("client a did not receive the reload signal")
	}
	select {
	case <-b:
	default:
		t.Error("client b did not receive the reload signal")
	}
}

func TestHubSkipsClientsWithPendingSignal(t *testing.T) {
	h := newSSEHub()
	ch := h.add()

	h.broadcast()
	h.broadcast() // buffer already full, must not block

	<-ch
	select {
	case <-ch:
		t.Error("second broadcast should have been coalesced")
	default:
	}
}

func TestHubRemove(t *testing.T) {
	h := newSSEHub()
	ch := h.add()
	h.remove(ch)

	h.broadcast()

	select {
	case <-ch:
		t.Error("removed client should not receive signals")
	default:
	}
}

func TestHandleSendsConnectedEvent(t *testing.T) {
	h := newSSEHub()

	req := httptest.NewRequest("GET", "/events", nil)
	ctx, cancel := context.WithCancel(req.Context())
	cancel()
	req = req.WithContext(ctx)

	rec := httptest.NewRecorder()
	h.handle(rec, req)

	if got := rec.Header().Get("Content-Type"); got != "text/event-stream" {
		t.Errorf("Content-Type = %q, want text/event-stream", got)
	}
	if !strings.Contains(rec.Body.String(), "data: connected") {
		t.Errorf("body = %q, want a connected event", rec.Body.String())
	}
}
