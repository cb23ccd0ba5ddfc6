package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// Event names on the generation stream, in emission order.
const (
	eventPrompt   = "prompt"
	eventContent  = "content"
	eventComplete = "complete"
	eventError    = "error"
)

// keepAliveInterval spaces comment frames while a slow generation call runs,
// so proxies do not drop the idle connection.
const keepAliveInterval = 15 * time.Second

var errStreamingUnsupported = errors.New("streaming not supported")

// eventStream writes Server-Sent Events with increasing ids. Writes are
// serialized so the keep-alive ticker can share the connection.
type eventStream struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	flusher http.Flusher
	nextID  int
}

// openEventStream commits the event-stream headers.
func openEventStream(w http.ResponseWriter) (*eventStream, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, errStreamingUnsupported
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &eventStream{w: w, flusher: flusher, nextID: 1}, nil
}

func (s *eventStream) send(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", event, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := fmt.Fprintf(s.w, "id: %d\nevent: %s\ndata: %s\n\n", s.nextID, event, payload); err != nil {
		return err
	}
	s.nextID++
	s.flusher.Flush()
	return nil
}

// fail ends the stream with the same body a JSON error response would carry.
func (s *eventStream) fail(err error) {
	status := HTTPStatus(err)
	s.send(eventError, ErrorResponse{Error: errorCode(status), Message: publicMessage(status, err)}) //nolint:errcheck
}

// keepAlive writes comment frames until the returned stop func is called or
// ctx ends. stop blocks until the ticker goroutine has exited.
func (s *eventStream) keepAlive(ctx context.Context, every time.Duration) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.mu.Lock()
				_, err := fmt.Fprint(s.w, ": keep-alive\n\n")
				if err == nil {
					s.flusher.Flush()
				}
				s.mu.Unlock()
				if err != nil {
					return
				}
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}
}
