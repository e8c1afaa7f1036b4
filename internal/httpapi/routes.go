package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mathrelay/client/internal/session"
)

func SetupRoutes(sess *session.Session) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", Healthz)
	r.Get("/state", State(sess))
	r.Post("/leave", Leave(sess))
	return r
}
