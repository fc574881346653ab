package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/daniacca/epidyn/internal/epidemic/notifiers"
)

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// newStreamMux serves the health check and the step event stream.
func newStreamMux(ws *notifiers.WebSocketNotifier) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", handleHealth)
	mux.Handle("/ws", ws.Handler())
	return mux
}

// startStream listens on addr in the background.
func startStream(addr string, ws *notifiers.WebSocketNotifier, logger *Logger) *http.Server {
	srv := &http.Server{
		Addr:              addr,
		Handler:           newStreamMux(ws),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Infof("streaming step events on ws://%s/ws", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("stream server failed: %v", err)
		}
	}()
	return srv
}

func stopStream(srv *http.Server, logger *Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warnf("stream server shutdown: %v", err)
	}
}
