package server

import (
	"net/http"

	"github.com/gorilla/mux"
)

// CongestionRoutes are the handler methods the router mounts for venue and
// congestion queries.
type CongestionRoutes interface {
	GetVenues(w http.ResponseWriter, r *http.Request)
	GetVenueCongestion(w http.ResponseWriter, r *http.Request)
	GetVenueCongestionChart(w http.ResponseWriter, r *http.Request)
	Ping(w http.ResponseWriter, r *http.Request)
}

// VisitRoutes are the handler methods the router mounts for visit events.
type VisitRoutes interface {
	RegisterIntention(w http.ResponseWriter, r *http.Request)
	RecordEntry(w http.ResponseWriter, r *http.Request)
	RecordExit(w http.ResponseWriter, r *http.Request)
}

type Router struct {
	congestionHandler CongestionRoutes
	visitHandler      VisitRoutes
	router            *mux.Router
}

// NewRouter creates a router with the app's routes.
func NewRouter(
	congestionHandler CongestionRoutes,
	visitHandler VisitRoutes,
	router *mux.Router) *Router {
	return &Router{
		congestionHandler: congestionHandler,
		visitHandler:      visitHandler,
		router:            router,
	}
}

func (r *Router) RegisterRoutes() {
	r.router.HandleFunc("/v1/venues", r.congestionHandler.GetVenues).Methods("GET")

	// expects optional ?timestamp={RFC3339}
	r.router.HandleFunc("/v1/venues/{id}/congestion", r.congestionHandler.GetVenueCongestion).Methods("GET")
	r.router.HandleFunc("/v1/venues/{id}/congestion/chart", r.congestionHandler.GetVenueCongestionChart).Methods("GET")

	r.router.HandleFunc("/v1/visits/intentions", r.visitHandler.RegisterIntention).Methods("POST")
	r.router.HandleFunc("/v1/visits/entry", r.visitHandler.RecordEntry).Methods("POST")
	r.router.HandleFunc("/v1/visits/exit", r.visitHandler.RecordExit).Methods("POST")

	r.router.HandleFunc("/ping", r.congestionHandler.Ping).Methods("GET")
}
