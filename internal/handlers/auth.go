// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/base64"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"campusdir/internal/middleware"
	"campusdir/internal/session"
	"campusdir/internal/store"
)

// totpIssuer appears in authenticator apps next to the account email.
const totpIssuer = "CampusDir"

// Auth handles login, logout, and the mandatory TOTP enrollment flow.
type Auth struct {
	users    *store.UserStore
	sessions *session.Store
}

// NewAuth creates the authentication handler group.
func NewAuth(users *store.UserStore, sessions *session.Store) *Auth {
	return &Auth{users: users, sessions: sessions}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login verifies credentials and opens a session with TwoFADone=false.
// The response tells the client whether to continue with 2FA setup or
// verification. Invalid credentials get the same message either way.
func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		badRequest(w, "email and password are required")
		return
	}

	user, err := h.users.FindByEmail(email)
	if err != nil {
		slog.Error("login lookup failed", "error", err)
		respondJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
		return
	}
	if user == nil || !h.users.CheckPassword(user, req.Password) {
		respondJSON(w, http.StatusUnauthorized, errorBody{Error: "invalid email or password"})
		return
	}

	data := &session.Data{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        string(user.Role),
		TwoFADone:   false,
	}
	if _, err := h.sessions.Create(r.Context(), w, data); err != nil {
		slog.Error("session create failed", "error", err)
		respondJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
		return
	}

	next := "verify"
	if user.Needs2FASetup() {
		next = "setup"
	}
	slog.Info("user logged in", "user_id", user.ID, "next", next)
	respondJSON(w, http.StatusOK, map[string]string{"next": next})
}

// Setup2FA generates a fresh TOTP secret for the logged-in user and returns
// it with a QR code for authenticator enrollment. Allowed any time before
// the first successful verification; each call replaces the pending secret.
func (h *Auth) Setup2FA(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	user, err := h.users.FindByID(sess.UserID)
	if err != nil || user == nil {
		slog.Error("2fa setup lookup failed", "user_id", sess.UserID, "error", err)
		respondJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
		return
	}
	if user.TOTPEnabled {
		respondJSON(w, http.StatusConflict, errorBody{Error: "two-factor authentication is already enabled"})
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: user.Email,
	})
	if err != nil {
		slog.Error("totp generation failed", "error", err)
		respondJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
		return
	}

	if err := h.users.SetTOTPSecret(user.ID, key.Secret()); err != nil {
		slog.Error("totp secret save failed", "user_id", user.ID, "error", err)
		respondJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
		return
	}

	qr, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		slog.Error("qr encoding failed", "error", err)
		respondJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"secret":        key.Secret(),
		"qr_png_base64": base64.StdEncoding.EncodeToString(qr),
	})
}

type verifyRequest struct {
	Code string `json:"code"`
}

// Verify2FA checks a TOTP code against the stored secret. The first
// successful verification finalizes enrollment; every successful one marks
// the session as fully authenticated.
func (h *Auth) Verify2FA(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	var req verifyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.users.FindByID(sess.UserID)
	if err != nil || user == nil {
		slog.Error("2fa verify lookup failed", "user_id", sess.UserID, "error", err)
		respondJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
		return
	}
	if user.TOTPSecret == nil {
		respondJSON(w, http.StatusConflict, errorBody{Error: "two-factor setup has not been started"})
		return
	}

	code := strings.TrimSpace(req.Code)
	if !totp.Validate(code, *user.TOTPSecret) {
		respondJSON(w, http.StatusUnauthorized, errorBody{Error: "invalid verification code"})
		return
	}

	if !user.TOTPEnabled {
		if err := h.users.EnableTOTP(user.ID); err != nil {
			slog.Error("totp enable failed", "user_id", user.ID, "error", err)
			respondJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
			return
		}
		slog.Info("2fa enrollment completed", "user_id", user.ID)
	}

	sess.TwoFADone = true
	if err := h.sessions.Update(r.Context(), r, sess); err != nil {
		slog.Error("session update failed", "user_id", user.ID, "error", err)
		respondJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"verified": true})
}

// Logout destroys the session and clears the cookie.
func (h *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Warn("session destroy failed", "error", err)
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Me reports the logged-in identity so clients can restore state after a
// page reload.
func (h *Auth) Me(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	respondJSON(w, http.StatusOK, map[string]any{
		"email":        sess.Email,
		"display_name": sess.DisplayName,
		"role":         sess.Role,
		"two_fa_done":  sess.TwoFADone,
	})
}
