// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

package models

import "time"

// User is a Jetlog account.
type User struct {
	ID            int64      `json:"id"`
	Username      string     `json:"username"`
	PasswordHash  string     `json:"-"`
	IsAdmin       bool       `json:"isAdmin"`
	PublicProfile bool       `json:"publicProfile"`
	CreatedOn     time.Time  `json:"createdOn"`
	LastLogin     *time.Time `json:"lastLogin,omitempty"`
}

// Principal is the authenticated caller of a request.
type Principal struct {
	Username string
	IsAdmin  bool
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required,min=1,max=64"`
	Password string `json:"password" validate:"required,min=1,max=256"`
}

// TokenResponse carries an issued JWT.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
