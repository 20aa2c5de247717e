// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/onlyfringe/middleware"
	"github.com/danielhkuo/onlyfringe/models"
	"github.com/danielhkuo/onlyfringe/store"
	"github.com/danielhkuo/onlyfringe/submission"
)

type ArgumentHandler struct {
	store   *store.Store
	service *submission.Service
}

func NewArgumentHandler(st *store.Store, svc *submission.Service) *ArgumentHandler {
	return &ArgumentHandler{store: st, service: svc}
}

// ListArguments handles GET /api/arguments
// status defaults to approved; status=all (or empty) lists every status
func (h *ArgumentHandler) ListArguments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	status := models.StatusApproved
	if q.Has("status") {
		status = q.Get("status")
	}
	switch status {
	case "all":
		status = ""
	case "", models.StatusPending, models.StatusApproved, models.StatusRejected:
	default:
		middleware.ErrorResponse(w, http.StatusBadRequest, "status must be pending, approved, rejected, or all")
		return
	}

	arguments, err := h.store.ListArguments(r.Context(), store.ArgumentFilter{
		Status:   status,
		Category: q.Get("category"),
	})
	if err != nil {
		slog.Error("failed to list arguments", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, arguments)
}

// GetArgument handles GET /api/arguments/{id}
func (h *ArgumentHandler) GetArgument(w http.ResponseWriter, r *http.Request) {
	argument, err := h.store.GetArgument(r.Context(), r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Argument not found")
		return
	}
	if err != nil {
		slog.Error("failed to query argument", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, argument)
}

// SubmitArgument handles POST /api/arguments
func (h *ArgumentHandler) SubmitArgument(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitArgumentRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	resp, err := h.service.SubmitArgument(r.Context(), req)
	if err != nil {
		submissionError(w, err, "argument")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, resp)
}

// SubmitRebuttal handles POST /api/arguments/{id}/rebuttals
func (h *ArgumentHandler) SubmitRebuttal(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitRebuttalRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	resp, err := h.service.SubmitRebuttal(r.Context(), r.PathValue("id"), req)
	if err != nil {
		submissionError(w, err, "rebuttal")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, resp)
}

// submissionError maps workflow errors to responses. Lookup misses are
// 404, every other validation failure is 400.
func submissionError(w http.ResponseWriter, err error, kind string) {
	var verr *submission.ValidationError
	if !errors.As(err, &verr) {
		slog.Error("submission failed", "kind", kind, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to save "+kind)
		return
	}

	status := http.StatusBadRequest
	if errors.Is(verr, submission.ErrUserNotFound) || errors.Is(verr, submission.ErrArgumentNotFound) {
		status = http.StatusNotFound
	}

	slog.Debug("submission rejected", "kind", kind, "code", verr.Code(), "reason", verr.Message)
	middleware.CodedErrorResponse(w, status, verr.Code(), verr.Message, verr.InvalidSources)
}
