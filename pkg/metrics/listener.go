package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

// Listener serves /metrics for the background workers; the api mounts its
// own handler on the main router.
type Listener struct {
	srv *http.Server
}

// Listen starts serving g on addr. An empty addr returns an inert Listener.
func Listen(ctx context.Context, addr string, g prometheus.Gatherer, logg *logger.Logger) *Listener {
	if addr == "" {
		return &Listener{}
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))

	l := &Listener{srv: &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}}
	go func() {
		if err := l.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) && logg != nil {
			logg.Error(logg.WithField(ctx, "metrics_addr", addr), "metrics listener stopped", err)
		}
	}()
	return l
}

func (l *Listener) Shutdown(ctx context.Context) error {
	if l == nil || l.srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	return l.srv.Shutdown(ctx)
}
