package service

import (
	"errors"
	"net/http"
	"sync"
	"time"
)

var (
	ErrTimedOut = errors.New("http Write: already timed out")
)

// TimeoutHandler wraps the given handler. When the handler does not complete
// within the given duration, a 503 is written and the timeout is logged.
func TimeoutHandler(logFunc func(msg string, ctx ...interface{}), d time.Duration, h http.Handler) http.Handler {
	f := func() <-chan time.Time {
		return time.After(d)
	}
	return &timeoutHandler{log: logFunc, handler: h, timeout: f}
}

type timeoutHandler struct {
	log     func(msg string, ctx ...interface{})
	handler http.Handler
	timeout func() <-chan time.Time
}

func (h *timeoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	done := make(chan struct{})
	tw := &timeoutWriter{ResponseWriter: w}
	go func() {
		h.handler.ServeHTTP(tw, r)
		close(done)
	}()
	select {
	case <-done:
		return
	case <-h.timeout():
		tw.mu.Lock()
		wrote := tw.wroteHeader
		tw.timedOut = true
		tw.wroteHeader = true
		tw.mu.Unlock()
		if !wrote {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		h.log("request timeout",
			"requestURL", r.URL.String(),
		)
	}
}

type timeoutWriter struct {
	http.ResponseWriter

	mu          sync.Mutex
	timedOut    bool
	wroteHeader bool
}

func (w *timeoutWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	if w.timedOut {
		w.mu.Unlock()
		return 0, ErrTimedOut
	}
	// a first write flushes the headers
	w.wroteHeader = true
	w.mu.Unlock()
	return w.ResponseWriter.Write(p)
}

func (w *timeoutWriter) WriteHeader(status int) {
	w.mu.Lock()
	if w.timedOut || w.wroteHeader {
		w.mu.Unlock()
		return
	}
	w.wroteHeader = true
	w.mu.Unlock()
	w.ResponseWriter.WriteHeader(status)
}
