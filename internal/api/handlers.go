// Storekeep - Inventory and Stock Management Backend
// Copyright 2026 Storekeep Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/storekeep/storekeep

// Package api provides the HTTP surface: routing, request decoding and
// response shaping. Handlers stay thin; all business behavior lives in the
// inventory service.
package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/storekeep/storekeep/internal/ai"
	"github.com/storekeep/storekeep/internal/auth"
	"github.com/storekeep/storekeep/internal/config"
	"github.com/storekeep/storekeep/internal/database"
	"github.com/storekeep/storekeep/internal/inventory"
	"github.com/storekeep/storekeep/internal/logging"
	"github.com/storekeep/storekeep/internal/validation"
	ws "github.com/storekeep/storekeep/internal/websocket"
)

// maxRequestBody bounds JSON request bodies.
const maxRequestBody = 1 << 20

// Handler carries the dependencies shared by all endpoint methods.
type Handler struct {
	svc           *inventory.Service
	db            *database.DB
	cfg           *config.Config
	authenticator *auth.Authenticator
	aiClient      *ai.Client
	wsHub         *ws.Hub
	startTime     time.Time
}

// NewHandler creates the API handler.
func NewHandler(svc *inventory.Service, db *database.DB, cfg *config.Config, authenticator *auth.Authenticator, aiClient *ai.Client, wsHub *ws.Hub) *Handler {
	return &Handler{
		svc:           svc,
		db:            db,
		cfg:           cfg,
		authenticator: authenticator,
		aiClient:      aiClient,
		wsHub:         wsHub,
		startTime:     time.Now(),
	}
}

// errorResponse is the uniform error body.
type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logging.Debug().Err(err).Msg("response write failed")
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: message})
}

// respondStoreError maps data-layer sentinel errors onto HTTP statuses.
func respondStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		respondError(w, http.StatusNotFound, "not found")
	case errors.Is(err, database.ErrConflict):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, database.ErrInsufficientStock):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, database.ErrForeignKey):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		logging.Error().Err(err).Msg("request failed")
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeJSON decodes and validates a request body into dst. It writes the
// error response itself and reports whether decoding succeeded.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	body := http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			respondError(w, http.StatusBadRequest, "request body is required")
			return false
		}
		respondError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return false
	}
	if err := validation.ValidateStruct(dst); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// parsePagination reads page/page_size, applying the configured default and
// clamping to the configured maximum.
func (h *Handler) parsePagination(r *http.Request) (page, pageSize int) {
	page = 1
	pageSize = h.cfg.API.DefaultPageSize

	if raw := r.URL.Query().Get("page"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			page = v
		}
	}
	if raw := r.URL.Query().Get("page_size"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			pageSize = v
		}
	}
	if pageSize > h.cfg.API.MaxPageSize {
		pageSize = h.cfg.API.MaxPageSize
	}
	return page, pageSize
}

// termParam distinguishes an absent term parameter (nil) from a present but
// empty one (pointer to ""). The two address different cache keys and the
// empty form must not trigger the search tier.
func termParam(r *http.Request) *string {
	if !r.URL.Query().Has("term") {
		return nil
	}
	term := r.URL.Query().Get("term")
	return &term
}
