package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/mathrelay/client/internal/engine"
	"github.com/mathrelay/client/internal/session"
)

// StateResponse is the local status surface of the engine: the live
// snapshot plus connectivity, for headless inspection and the rendering
// layer's initial fetch.
type StateResponse struct {
	Version   int                `json:"version"`
	Connected bool               `json:"connected"`
	State     *engine.MatchState `json:"state"`
}

func State(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := sess.View(r.Context())
		if err != nil {
			http.Error(w, "session unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(StateResponse{
			Version:   v.Version,
			Connected: v.Connected,
			State:     v.State,
		})
	}
}

// Leave is the intentional return-to-menu action: it clears the durable
// terminal snapshot and shuts the session down.
func Leave(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reply := make(chan error, 1)
		select {
		case sess.Inbox() <- session.Leave{Reply: reply}:
		case <-r.Context().Done():
			http.Error(w, "session unavailable", http.StatusServiceUnavailable)
			return
		}

		cleared := true
		select {
		case err := <-reply:
			cleared = err == nil
		case <-r.Context().Done():
			http.Error(w, "session unavailable", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(struct {
			Left    bool `json:"left"`
			Cleared bool `json:"cleared"`
		}{Left: true, Cleared: cleared})
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
