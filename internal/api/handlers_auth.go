// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/tomtom215/jetlog/internal/database"
	"github.com/tomtom215/jetlog/internal/logging"
	"github.com/tomtom215/jetlog/internal/models"
	"github.com/tomtom215/jetlog/internal/validation"
)

// Login exchanges a username and password for a bearer token. Both a JSON
// body and an OAuth2 password form are accepted.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if h.auth == nil {
		rw.Error(http.StatusBadRequest, ErrCodeBadRequest, "Password login is not enabled")
		return
	}

	var req models.LoginRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := r.ParseForm(); err != nil {
			rw.BadRequest("Invalid form body")
			return
		}
		req.Username = r.PostForm.Get("username")
		req.Password = r.PostForm.Get("password")
	} else if err := decodeJSONBody(w, r, &req); err != nil {
		rw.FromError(err)
		return
	}

	if verr := validation.ValidateStruct(&req); verr != nil {
		rw.FromError(verr)
		return
	}

	token, err := h.auth.Login(r.Context(), req)
	if err != nil {
		rw.FromError(err)
		return
	}
	rw.Success(token)
}

// CurrentUser returns the authenticated user. Callers authenticated by a
// proxy header or with auth disabled may have no stored row.
func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	p := principal(r)

	user, err := h.db.GetUserByUsername(r.Context(), p.Username)
	switch {
	case errors.Is(err, database.ErrNotFound):
		rw.Success(&models.User{Username: p.Username, IsAdmin: p.IsAdmin})
	case err != nil:
		rw.FromError(err)
	default:
		rw.Success(user)
	}
}

// UpdateProfile changes the caller's public profile flag.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	p := principal(r)

	var req ProfileRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		rw.FromError(err)
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		rw.FromError(verr)
		return
	}

	if err := h.db.SetPublicProfile(r.Context(), p.Username, *req.PublicProfile); err != nil {
		rw.FromError(err)
		return
	}
	logging.Ctx(r.Context()).Info().Bool("public_profile", *req.PublicProfile).Msg("Profile updated")
	h.CurrentUser(w, r)
}
