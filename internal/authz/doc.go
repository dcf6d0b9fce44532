// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

// Package authz decides who may read and write flights using Casbin.
//
// The model and policy are embedded. A request is
// (user, role, owner, public, resource, action); owners read and write
// their own rows, admins read and write everyone's, and a public profile is
// readable by any authenticated user. The Enforcer is installed on the store
// with database.DB.SetAuthorizer.
package authz
