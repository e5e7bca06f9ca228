package connectivity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pvictorino/supportchat/internal/bus"
	"github.com/pvictorino/supportchat/internal/transport"
	"go.uber.org/zap"
)

func TestTransitionsPublishedOnEdgesOnly(t *testing.T) {
	b := bus.New()
	var probeErr error
	m := NewMonitor(func(context.Context) error { return probeErr }, time.Minute, b, zap.NewNop())

	ch, unsub := b.Subscribe("net.", 16)
	defer unsub()

	// Initial state is offline; the first successful probe is a transition.
	m.probeOnce(context.Background())
	expectKind(t, ch, bus.KindNetOnline)
	if !m.Online() {
		t.Error("Online() = false after successful probe")
	}

	// Repeat probes with no change stay silent.
	m.probeOnce(context.Background())
	expectNone(t, ch)

	probeErr = transport.ErrUnavailable
	m.probeOnce(context.Background())
	expectKind(t, ch, bus.KindNetOffline)

	probeErr = nil
	m.probeOnce(context.Background())
	expectKind(t, ch, bus.KindNetOnline)
}

func TestRejectedRequestStillCountsAsOnline(t *testing.T) {
	b := bus.New()
	m := NewMonitor(func(context.Context) error {
		return errors.New("server returned 401 Unauthorized")
	}, time.Minute, b, zap.NewNop())

	m.probeOnce(context.Background())
	if !m.Online() {
		t.Error("a reachable-but-rejecting server must count as online")
	}
}

func expectKind(t *testing.T, ch <-chan bus.Event, kind string) {
	t.Helper()
	select {
	case evt := <-ch:
		if evt.Kind != kind {
			t.Fatalf("event = %q, want %q", evt.Kind, kind)
		}
	case <-time.After(time.Second):
		t.Fatalf("timeout waiting for %q", kind)
	}
}

func expectNone(t *testing.T, ch <-chan bus.Event) {
	t.Helper()
	select {
	case evt := <-ch:
		t.Fatalf("unexpected event %q", evt.Kind)
	default:
	}
}
