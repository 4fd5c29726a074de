package metrics

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestListenWithoutAddrIsInert(t *testing.T) {
	l := Listen(context.Background(), "", prometheus.NewRegistry(), nil)
	if l.srv != nil {
		t.Fatalf("expected no server without an address")
	}
	if err := l.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	var missing *Listener
	if err := missing.Shutdown(context.Background()); err != nil {
		t.Fatalf("nil listener shutdown: %v", err)
	}
}
