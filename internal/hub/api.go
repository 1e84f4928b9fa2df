// Copyright 2025 Arion Yau
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"tvremote/internal/logger"
	"tvremote/internal/platform"
	"tvremote/internal/remote"
)

// ServiceRequest is the body of a service call over HTTP
type ServiceRequest struct {
	EntityID   string   `json:"entity_id"`
	Command    []string `json:"command,omitempty"`
	NumRepeats *int     `json:"num_repeats,omitempty"`
	Nonce      string   `json:"nonce,omitempty"`
}

// APIResponse wraps every API answer
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// APIServer exposes the remote services over HTTP
type APIServer struct {
	manager    *EntryManager
	config     *Config
	jwtService *JWTService
	router     *mux.Router
	server     *http.Server
	logger     zerolog.Logger
}

// NewAPIServer creates a new API server. Authentication is enabled when the
// configuration has a JWT secret.
func NewAPIServer(config *Config, manager *EntryManager) *APIServer {
	api := &APIServer{
		manager: manager,
		config:  config,
		logger:  logger.ForComponent("api"),
	}

	if config.API.JWTSecret != "" {
		api.jwtService = NewJWTService(config.API.JWTSecret, config.API.JWTIssuer, config.API.TokenExpiryHours)
	}

	api.router = api.routes()
	api.server = &http.Server{
		Addr:         config.API.Listen,
		Handler:      api.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return api
}

func (api *APIServer) routes() *mux.Router {
	router := mux.NewRouter()
	router.Use(api.loggingMiddleware)

	apiRouter := router.PathPrefix("/api/v1").Subrouter()
	apiRouter.HandleFunc("/health", api.handleHealth).Methods("GET")
	apiRouter.Handle("/entities", api.protect(api.handleEntities)).Methods("GET")
	apiRouter.Handle("/services/remote/{service}", api.protect(api.handleService)).Methods("POST")

	return router
}

// protect wraps a handler with authentication when it is enabled
func (api *APIServer) protect(h http.HandlerFunc) http.Handler {
	if api.jwtService == nil {
		return h
	}
	return api.jwtService.RequireAuth(h)
}

// Handler returns the HTTP handler, for tests and embedding
func (api *APIServer) Handler() http.Handler {
	return api.router
}

// Start starts the API server in the background
func (api *APIServer) Start() error {
	api.logger.Info().
		Str("address", api.server.Addr).
		Bool("auth", api.jwtService != nil).
		Msg("Starting API server")

	go func() {
		if err := api.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			api.logger.Error().Err(err).Msg("API server error")
		}
	}()

	return nil
}

// Stop stops the API server
func (api *APIServer) Stop(ctx context.Context) error {
	api.logger.Info().Msg("Stopping API server")
	return api.server.Shutdown(ctx)
}

func (api *APIServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		api.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("API request")
	})
}

func (api *APIServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	api.sendJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Message: "Hub is healthy",
		Data: map[string]interface{}{
			"status":       "healthy",
			"hub_id":       api.config.Hub.ID,
			"entity_count": api.manager.Registry().Len(),
		},
	})
}

func (api *APIServer) handleEntities(w http.ResponseWriter, r *http.Request) {
	api.sendJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    api.manager.Entities(),
	})
}

func (api *APIServer) handleService(w http.ResponseWriter, r *http.Request) {
	service, err := remote.ParseService(mux.Vars(r)["service"])
	if err != nil {
		api.sendJSON(w, http.StatusNotFound, APIResponse{Success: false, Error: err.Error()})
		return
	}

	var req ServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.sendJSON(w, http.StatusBadRequest, APIResponse{
			Success: false,
			Error:   fmt.Sprintf("invalid JSON format: %v", err),
		})
		return
	}

	userID := ""
	if claims, ok := ClaimsFromRequest(r); ok {
		userID = claims.Subject
	}

	response := api.manager.CallServiceWithNonce(r.Context(), req.Nonce, remote.ServiceCall{
		Service:    service,
		EntityID:   req.EntityID,
		Command:    req.Command,
		NumRepeats: req.NumRepeats,
		Context:    platform.NewContext(userID),
	})

	api.sendJSON(w, statusFor(response), APIResponse{
		Success: response.Success,
		Data:    response,
		Error:   response.Error,
	})
}

// statusFor maps a service response onto an HTTP status
func statusFor(response *ServiceResponse) int {
	if response.Success {
		return http.StatusOK
	}
	switch response.Code {
	case CodeInvalidRequest, CodeNotSupported:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

func (api *APIServer) sendJSON(w http.ResponseWriter, status int, body APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		api.logger.Error().Err(err).Msg("Failed to encode API response")
	}
}
