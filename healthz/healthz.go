// Package healthz serves liveness and readiness probes.
package healthz

import (
	"net/http"
	"sync/atomic"
)

type Handler struct {
	ready int32
}

func New() *Handler {
	return &Handler{}
}

// SetReady flips the readiness answer.  The handler reports unready
// until the first call.
func (h *Handler) SetReady(ready bool) {
	v := int32(0)
	if ready {
		v = 1
	}
	atomic.StoreInt32(&h.ready, v)
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if atomic.LoadInt32(&h.ready) == 0 {
		http.Error(w, "503 not ready", http.StatusServiceUnavailable)
		return
	}
	w.Write([]byte("200 OK"))
}
