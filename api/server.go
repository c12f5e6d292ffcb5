package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/raidstone/wgevents/guard/actor"
	"github.com/raidstone/wgevents/guard/config"
	"github.com/raidstone/wgevents/guard/region"
	"github.com/raidstone/wgevents/guard/service"
	"github.com/raidstone/wgevents/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service service.RegionService
	hub     *websocket.Hub
	router  *mux.Router
}

// NewServer creates a new API server. hub may be nil, in which case /ws is
// not served.
func NewServer(regionService service.RegionService, hub *websocket.Hub) *Server {
	s := &Server{
		service: regionService,
		hub:     hub,
		router:  mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("", s.handleIndex).Methods("GET")
	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	// Worlds and region queries
	api.HandleFunc("/worlds", s.handleListWorlds).Methods("GET")
	api.HandleFunc("/worlds/{world}", s.handleGetWorld).Methods("GET")
	api.HandleFunc("/worlds/{world}", s.handleSaveWorld).Methods("PUT")
	api.HandleFunc("/worlds/{world}/regions", s.handleRegionsAt).Methods("GET")

	// Actors
	api.HandleFunc("/actors", s.handleListActors).Methods("GET")
	api.HandleFunc("/actors", s.handleJoinActor).Methods("POST")
	api.HandleFunc("/actors/{id}", s.handleGetActor).Methods("GET")
	api.HandleFunc("/actors/{id}", s.handleLeaveActor).Methods("DELETE")
	api.HandleFunc("/actors/{id}/position", s.handleMoveActor).Methods("POST", "PUT")
	api.HandleFunc("/actors/{id}/regions", s.handleActorRegions).Methods("GET")
	api.HandleFunc("/actors/{id}/check", s.handleCheckMembership).Methods("GET", "POST")

	if s.hub != nil {
		s.router.HandleFunc("/ws", s.handleWebSocket)
	}
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]interface{}{"error": message, "code": status})
}

// respondServiceError maps service errors to HTTP status codes
func respondServiceError(w http.ResponseWriter, err error) {
	respondError(w, statusFor(err), err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, region.ErrInvalidArgument),
		errors.Is(err, actor.ErrInvalidName),
		errors.Is(err, config.ErrInvalidWorld):
		return http.StatusBadRequest
	case errors.Is(err, actor.ErrActorNotFound),
		errors.Is(err, config.ErrWorldNotFound):
		return http.StatusNotFound
	case errors.Is(err, actor.ErrActorAlreadyOnline),
		errors.Is(err, actor.ErrNameTaken):
		return http.StatusConflict
	case errors.Is(err, region.ErrDirectoryUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func actorID(r *http.Request) (region.ActorRef, error) {
	raw := mux.Vars(r)["id"]
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid actor id %q", region.ErrInvalidArgument, raw)
	}
	return id, nil
}

func parseAxis(r *http.Request, name string) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, fmt.Errorf("%w: query parameter %s is required", region.ErrInvalidArgument, name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: query parameter %s must be a number", region.ErrInvalidArgument, name)
	}
	return v, nil
}

// positionRequest is the JSON body describing a coordinate
type positionRequest struct {
	World string  `json:"world"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
}

func (p positionRequest) coordinate() region.Coordinate {
	return region.Coordinate{World: p.World, X: p.X, Y: p.Y, Z: p.Z}
}

// General Handlers

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"service": "wgevents",
		"endpoints": []string{
			"GET /api/health",
			"GET /api/worlds",
			"GET|PUT /api/worlds/{world}",
			"GET /api/worlds/{world}/regions?x=&y=&z=",
			"GET|POST /api/actors",
			"GET|DELETE /api/actors/{id}",
			"POST /api/actors/{id}/position",
			"GET /api/actors/{id}/regions",
			"GET|POST /api/actors/{id}/check",
			"GET /ws?actor={id|*}",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// World Handlers

func (s *Server) handleListWorlds(w http.ResponseWriter, r *http.Request) {
	worlds, err := s.service.ListWorlds(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":  len(worlds),
		"worlds": worlds,
	})
}

func (s *Server) handleGetWorld(w http.ResponseWriter, r *http.Request) {
	world := mux.Vars(r)["world"]

	def, err := s.service.GetWorld(r.Context(), world)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, def)
}

func (s *Server) handleSaveWorld(w http.ResponseWriter, r *http.Request) {
	world := mux.Vars(r)["world"]

	var def config.WorldDef
	if err := json.NewDecoder(r.Body).Decode(&def); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if def.World == "" {
		def.World = world
	}
	if !strings.EqualFold(def.World, world) {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("world name %q does not match path %q", def.World, world))
		return
	}

	if err := s.service.SaveWorld(r.Context(), &def); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("World %s saved", def.World),
	})
}

func (s *Server) handleRegionsAt(w http.ResponseWriter, r *http.Request) {
	world := mux.Vars(r)["world"]

	at := region.Coordinate{World: world}
	var err error
	if at.X, err = parseAxis(r, "x"); err != nil {
		respondServiceError(w, err)
		return
	}
	if at.Y, err = parseAxis(r, "y"); err != nil {
		respondServiceError(w, err)
		return
	}
	if at.Z, err = parseAxis(r, "z"); err != nil {
		respondServiceError(w, err)
		return
	}

	result, err := s.service.RegionsAt(r.Context(), at)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Actor Handlers

func (s *Server) handleListActors(w http.ResponseWriter, r *http.Request) {
	actors, err := s.service.ListActors(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":  len(actors),
		"actors": actors,
	})
}

func (s *Server) handleJoinActor(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID       string          `json:"id,omitempty"`
		Name     string          `json:"name"`
		Position positionRequest `json:"position"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	id := uuid.Nil
	if req.ID != "" {
		parsed, err := uuid.Parse(req.ID)
		if err != nil {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid actor id %q", req.ID))
			return
		}
		id = parsed
	}

	info, err := s.service.JoinActor(r.Context(), id, req.Name, req.Position.coordinate())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, info)
}

func (s *Server) handleGetActor(w http.ResponseWriter, r *http.Request) {
	id, err := actorID(r)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	info, err := s.service.GetActor(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, info)
}

func (s *Server) handleLeaveActor(w http.ResponseWriter, r *http.Request) {
	id, err := actorID(r)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if err := s.service.LeaveActor(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Actor %s left", id),
	})
}

func (s *Server) handleMoveActor(w http.ResponseWriter, r *http.Request) {
	id, err := actorID(r)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	var req positionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	result, err := s.service.MoveActor(r.Context(), id, req.coordinate())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleActorRegions(w http.ResponseWriter, r *http.Request) {
	id, err := actorID(r)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	result, err := s.service.ActorRegions(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// handleCheckMembership accepts either ?regions=a,b&mode=any or a JSON body
// {"regions": ["a", "b"], "mode": "any"}
func (s *Server) handleCheckMembership(w http.ResponseWriter, r *http.Request) {
	id, err := actorID(r)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	var req struct {
		Regions []string `json:"regions"`
		Mode    string   `json:"mode"`
	}
	if r.Method == http.MethodPost {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
	} else {
		query := r.URL.Query()
		req.Mode = query.Get("mode")
		for _, name := range strings.Split(query.Get("regions"), ",") {
			if name = strings.TrimSpace(name); name != "" {
				req.Regions = append(req.Regions, name)
			}
		}
	}

	result, err := s.service.CheckMembership(r.Context(), id, req.Regions, req.Mode)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	actorParam := r.URL.Query().Get("actor")
	if actorParam == "" {
		http.Error(w, "actor parameter required", http.StatusBadRequest)
		return
	}

	if actorParam != websocket.AllActors {
		id, err := uuid.Parse(actorParam)
		if err != nil {
			http.Error(w, "Invalid actor", http.StatusBadRequest)
			return
		}
		actorParam = id.String()
	}

	s.hub.ServeWS(w, r, actorParam)
}
