// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/onlyfringe/factcheck"
	"github.com/danielhkuo/onlyfringe/middleware"
	"github.com/danielhkuo/onlyfringe/models"
	"github.com/danielhkuo/onlyfringe/store"
)

type HealthHandler struct {
	store   *store.Store
	judge   factcheck.Judge
	started time.Time
}

func NewHealthHandler(st *store.Store, judge factcheck.Judge) *HealthHandler {
	return &HealthHandler{store: st, judge: judge, started: time.Now()}
}

type welcomeResponse struct {
	Message     string            `json:"message"`
	Description string            `json:"description"`
	Endpoints   map[string]string `json:"endpoints"`
}

// Welcome handles GET /api
func (h *HealthHandler) Welcome(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, welcomeResponse{
		Message:     "Welcome to OnlyFringe API - Fact-Based Debate Platform",
		Description: "A platform for public debate requiring fact-based arguments with sources and AI fact-checking",
		Endpoints: map[string]string{
			"GET /api/arguments":                 "List verified arguments (?status=, ?category=)",
			"POST /api/arguments":                "Submit a new argument",
			"GET /api/arguments/{id}":            "Get a specific argument with its rebuttals",
			"POST /api/arguments/{id}/rebuttals": "Submit a rebuttal to an approved argument",
			"POST /api/users":                    "Create a new user",
			"GET /api/users/{id}":                "Get user information",
			"GET /api/health":                    "Service health",
		},
	})
}

// Health handles GET /api/health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := models.HealthResponse{
		Status:    "healthy",
		Database:  "connected",
		AIEnabled: h.judge != nil && h.judge.Enabled(),
		Uptime:    strings.TrimSpace(humanize.RelTime(h.started, time.Now(), "", "")),
	}

	if err := h.store.Ping(ctx); err != nil {
		slog.Warn("health check: database unreachable", "error", err)
		resp.Status = "degraded"
		resp.Database = "unreachable"
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}
