package observability

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

//nolint:gochecknoglobals // Singleton pattern for metrics server
var (
	metricsServerInstance *http.Server
	metricsMu             sync.Mutex
)

// StartMetricsServer starts a Prometheus metrics server if it hasn't been started already.
func StartMetricsServer(addr string) {
	metricsMu.Lock()
	defer metricsMu.Unlock()

	if metricsServerInstance != nil || addr == "" {
		return
	}

	sm := http.NewServeMux()
	sm.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              addr,
		ReadHeaderTimeout: 15 * time.Second,
		Handler:           sm,
	}
	metricsServerInstance = server

	go func() {
		logrus.Infof("Starting metrics server on %s", addr)

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Error("Metrics server failed")
		}
	}()
}

// StopMetricsServer stops the metrics server if it is running
func StopMetricsServer(ctx context.Context) error {
	metricsMu.Lock()
	defer metricsMu.Unlock()

	if metricsServerInstance == nil {
		return nil
	}

	err := metricsServerInstance.Shutdown(ctx)
	metricsServerInstance = nil

	return err
}
