package storefront

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"Storefront/internal/reactive"
)

const keepAliveEvery = 25 * time.Second

const (
	eventProducts        = "products"
	eventSelectedProduct = "selectedProduct"
	eventError           = "error"
	eventLoading         = "loading"
	eventAuthenticated   = "isAuthenticated"
)

// changeSet coalesces cell changes between writes to a slow client. Only
// names are queued; the value sent is whatever the cell holds when the
// event is written.
type changeSet struct {
	mu      sync.Mutex
	pending []string
	wake    chan struct{}
}

func newChangeSet() *changeSet {
	return &changeSet{wake: make(chan struct{}, 1)}
}

func (c *changeSet) mark(name string) {
	c.mu.Lock()
	found := false
	for _, n := range c.pending {
		if n == name {
			found = true
			break
		}
	}
	if !found {
		c.pending = append(c.pending, name)
	}
	c.mu.Unlock()

	select {
	case c.wake <- struct{}{}:
	default:
	}
}

func (c *changeSet) drain() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.pending
	c.pending = nil
	return out
}

func watch[T any](cs *changeSet, name string, cell reactive.Readable[T]) (cancel func()) {
	return cell.Subscribe(func(T) { cs.mark(name) })
}

// handleEvents streams a server-sent event per cell change. The first batch
// carries the current value of every cell.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	snapshot := map[string]func() any{
		eventProducts:        func() any { return s.Store.Products().Get() },
		eventSelectedProduct: func() any { return s.Store.SelectedProduct().Get() },
		eventError:           func() any { return s.Store.Error().Get() },
		eventLoading:         func() any { return s.Store.Loading().Get() },
		eventAuthenticated:   func() any { return s.Session.IsAuthenticated().Get() },
	}

	cs := newChangeSet()
	cancels := []func(){
		watch(cs, eventProducts, s.Store.Products()),
		watch(cs, eventSelectedProduct, s.Store.SelectedProduct()),
		watch(cs, eventError, s.Store.Error()),
		watch(cs, eventLoading, s.Store.Loading()),
		watch(cs, eventAuthenticated, s.Session.IsAuthenticated()),
	}
	defer func() {
		for _, cancel := range cancels {
			cancel()
		}
	}()

	for _, name := range []string{eventProducts, eventSelectedProduct, eventError, eventLoading, eventAuthenticated} {
		cs.mark(name)
	}

	ticker := time.NewTicker(keepAliveEvery)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
		case <-cs.wake:
			for _, name := range cs.drain() {
				if err := writeEvent(w, name, snapshot[name]()); err != nil {
					s.logger().Debug("event stream closed", zap.Error(err))
					return
				}
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}

func writeEvent(w http.ResponseWriter, name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data)
	return err
}
