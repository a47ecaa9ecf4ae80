package main

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/aggrecore/core/pkg/ctx"
	"github.com/aggrecore/core/pkg/effect"
	"github.com/aggrecore/core/pkg/player"
	"github.com/aggrecore/core/pkg/runtime"
	"github.com/aggrecore/core/pkg/stremio"
)

// newServer builds the HTTP surface a UI talks to: a REST view of Root
// plus action endpoints that funnel into Runtime.Dispatch, a /metrics
// endpoint, and a /ws stream of state snapshots pushed on every dispatch.
// Router construction, the CORS/Recovery middleware stack, and
// http.Handle wiring all follow the same gorilla/mux + gorilla/handlers
// shape as cmd/deflix-stremio's root-level addon.go/middleware.go.
func newServer(rt *runtime.Runtime, logger *zap.Logger) http.Handler {
	s := &server{rt: rt, logger: logger, upgrader: websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}}

	r := mux.NewRouter()
	r.HandleFunc("/api/state", s.handleState).Methods(http.MethodGet)
	r.HandleFunc("/api/auth", s.handleAuthenticate).Methods(http.MethodPost)
	r.HandleFunc("/api/logout", s.handleLogout).Methods(http.MethodPost)
	r.HandleFunc("/api/addons", s.handleInstallAddon).Methods(http.MethodPost)
	r.HandleFunc("/api/addons/{transportUrl}", s.handleUninstallAddon).Methods(http.MethodDelete)
	r.HandleFunc("/api/library/{id}/rewind", s.handleRewindLibraryItem).Methods(http.MethodPost)
	r.HandleFunc("/api/library/sync", s.handleSyncLibrary).Methods(http.MethodPost)
	r.HandleFunc("/api/player/progress", s.handlePlayerProgress).Methods(http.MethodPost)
	r.HandleFunc("/api/player/unload", s.handlePlayerUnload).Methods(http.MethodPost)
	r.Handle("/metrics", promhttp.HandlerFor(rt.Registry(), promhttp.HandlerOpts{}))
	r.HandleFunc("/ws", s.handleWebsocket)

	headersOk := handlers.AllowedHeaders([]string{"Accept", "Accept-Language", "Content-Type", "Origin", "X-Requested-With"})
	originsOk := handlers.AllowedOrigins([]string{"*"})
	methodsOk := handlers.AllowedMethods([]string{"GET", "POST", "DELETE"})

	return handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(
		handlers.CORS(originsOk, headersOk, methodsOk)(r),
	)
}

type server struct {
	rt       *runtime.Runtime
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

func (s *server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.rt.Root())
}

func (s *server) handleAuthenticate(w http.ResponseWriter, r *http.Request) {
	var req ctx.AuthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.dispatch(w, ctx.ActionAuthenticate{Request: req})
}

func (s *server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, ctx.ActionLogout{})
}

func (s *server) handleInstallAddon(w http.ResponseWriter, r *http.Request) {
	var desc stremio.Descriptor
	if err := json.NewDecoder(r.Body).Decode(&desc); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.dispatch(w, ctx.ActionInstallAddon{Descriptor: desc})
}

func (s *server) handleUninstallAddon(w http.ResponseWriter, r *http.Request) {
	transportURL := mux.Vars(r)["transportUrl"]
	s.dispatch(w, ctx.ActionUninstallAddon{TransportURL: transportURL})
}

func (s *server) handleRewindLibraryItem(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.dispatch(w, ctx.ActionRewindLibraryItem{ID: id})
}

func (s *server) handleSyncLibrary(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, ctx.ActionSyncLibraryWithAPI{})
}

func (s *server) handlePlayerProgress(w http.ResponseWriter, r *http.Request) {
	var msg ctx.ActionPlayerProgress
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.dispatch(w, msg)
}

func (s *server) handlePlayerUnload(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, player.ActionUnload{})
}

// dispatch hands msg to the Runtime and writes back its trace id, or a
// 503 if the dispatch queue was full.
func (s *server) dispatch(w http.ResponseWriter, msg effect.Msg) {
	traceID, accepted := s.rt.Dispatch(msg)
	if !accepted {
		http.Error(w, "dispatch queue full", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"traceId": traceID})
}

func (s *server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("aggrecored: websocket upgrade failed", zap.Error(err))
		return
	}

	var mu sync.Mutex
	send := func(root *runtime.Root) {
		mu.Lock()
		defer mu.Unlock()
		_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteJSON(root); err != nil {
			s.logger.Debug("aggrecored: websocket write failed, closing", zap.Error(err))
			_ = conn.Close()
		}
	}

	for _, field := range []runtime.FieldID{
		runtime.FieldCtx, runtime.FieldPlayer, runtime.FieldLink, runtime.FieldSearch,
		runtime.FieldStreamingServer, runtime.FieldCatalogsWithExtra, runtime.FieldCatalogWithFilters,
		runtime.FieldLibraryWithFilters, runtime.FieldLibraryByType, runtime.FieldMetaDetails, runtime.FieldAddonDetails,
	} {
		s.rt.Subscribe(field, send)
	}

	send(s.rt.Root())

	// Drain pings from the client so a dropped connection is detected
	// promptly; we never read application messages from it.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			_ = conn.Close()
			return
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
