// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/danielhkuo/onlyfringe/middleware"
	"github.com/danielhkuo/onlyfringe/models"
	"github.com/danielhkuo/onlyfringe/store"
)

type UserHandler struct {
	store *store.Store
}

func NewUserHandler(st *store.Store) *UserHandler {
	return &UserHandler{store: st}
}

// CreateUser handles POST /api/users
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)
	if username == "" || email == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Username and email are required")
		return
	}
	if utf8.RuneCountInString(username) > models.MaxUsernameLength {
		middleware.ErrorResponse(w, http.StatusBadRequest, fmt.Sprintf("Username must not exceed %d characters", models.MaxUsernameLength))
		return
	}
	if utf8.RuneCountInString(email) > models.MaxEmailLength {
		middleware.ErrorResponse(w, http.StatusBadRequest, fmt.Sprintf("Email must not exceed %d characters", models.MaxEmailLength))
		return
	}

	user := models.User{
		ID:        uuid.NewString(),
		Username:  username,
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}

	// The unique constraints decide duplicates, including concurrent ones
	err := h.store.CreateUser(r.Context(), user)
	if errors.Is(err, store.ErrDuplicateUser) {
		middleware.ErrorResponse(w, http.StatusConflict, "User with this username or email already exists")
		return
	}
	if err != nil {
		slog.Error("failed to create user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	slog.Info("user created", "user_id", user.ID, "username", user.Username)

	middleware.JSONResponse(w, http.StatusCreated, user)
}

// GetUser handles GET /api/users/{id}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.store.GetUser(r.Context(), r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		slog.Error("failed to query user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, user)
}
