package http

import (
	"database/sql"
	"net/http"

	"roomgate-backend/internal/security"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterDeps bundles everything the HTTP surface needs.
type RouterDeps struct {
	Join          *JoinHandler
	Creator       *CreatorHandler
	Notifications *NotificationHandler
	TokenManager  security.TokenManager
	// DB is nil when running on the in-memory store; /healthz then skips
	// the ping.
	DB            *sql.DB
	EdgeBurst     int
	EdgePerSecond int
}

// NewRouter wires all routes with the middleware chain
// recovery, logging, metrics, per-IP edge limiting, then auth.
func NewRouter(deps RouterDeps) http.Handler {
	r := mux.NewRouter()
	// Metrics runs as mux middleware so it can label by the matched route
	// template instead of the raw path.
	r.Use(Metrics)

	r.HandleFunc("/healthz", healthz(deps.DB)).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	// The create endpoint authenticates optionally so the decision engine
	// owns the UNAUTHORIZED outcome as the first gate.
	optional := r.PathPrefix("/join-request").Subrouter()
	optional.Use(Auth(deps.TokenManager, false))
	optional.HandleFunc("", deps.Join.CreateJoinRequest).Methods(http.MethodPost)

	authed := r.NewRoute().Subrouter()
	authed.Use(Auth(deps.TokenManager, true))
	authed.HandleFunc("/join-approve", deps.Join.Approve).Methods(http.MethodPost)
	authed.HandleFunc("/join-deny", deps.Join.Deny).Methods(http.MethodPost)
	authed.HandleFunc("/join-status", deps.Join.Status).Methods(http.MethodGet)

	authed.HandleFunc("/creator/join-requests", deps.Creator.ListJoinRequests).Methods(http.MethodGet)
	authed.HandleFunc("/creator/bans", deps.Creator.ListBans).Methods(http.MethodGet)
	authed.HandleFunc("/creator/bans", deps.Creator.CreateBan).Methods(http.MethodPost)
	authed.HandleFunc("/creator/bans/{id}", deps.Creator.RemoveBan).Methods(http.MethodDelete)

	authed.HandleFunc("/notifications", deps.Notifications.List).Methods(http.MethodGet)
	authed.HandleFunc("/notifications/{id}/read", deps.Notifications.MarkRead).Methods(http.MethodPost)

	var h http.Handler = r
	h = EdgeRateLimit(h, deps.EdgeBurst, deps.EdgePerSecond)
	h = Logging(h)
	h = Recovery(h)
	return h
}

func healthz(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.PingContext(r.Context()); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
