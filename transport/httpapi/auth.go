// Package httpapi exposes the plain HTTP surface: account endpoints and
// the runtime stats probe. The realtime traffic lives on the websocket
// side.
package httpapi

import (
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/Lynxchester/lynxchat/auth"
	"github.com/Lynxchester/lynxchat/errors"
	"github.com/Lynxchester/lynxchat/services"
)

type AuthHandler struct {
	log  *slog.Logger
	auth *services.AuthService
}

func NewAuthHandler(log *slog.Logger, auth *services.AuthService) *AuthHandler {
	return &AuthHandler{log: log, auth: auth}
}

type tokenResponse struct {
	Token string `json:"token"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req auth.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	token, err := h.auth.Register(req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tokenResponse{Token: token})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	token, err := h.auth.Login(req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}

// writeError maps service errors to HTTP statuses. Anything not
// explicitly mapped is a 500 with a generic body so internals never leak.
func (h *AuthHandler) writeError(w http.ResponseWriter, err error) {
	switch err {
	case errors.ErrUserAlreadyExists:
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.ErrInvalidCredentials:
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
	case errors.ErrInvalidPassword:
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		var invalid validator.ValidationErrors
		if stderrors.As(err, &invalid) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: invalid.Error()})
			return
		}
		h.log.Error("auth request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
