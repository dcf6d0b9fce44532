// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

package authz

import (
	_ "embed"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"

	"github.com/tomtom215/jetlog/internal/cache"
	"github.com/tomtom215/jetlog/internal/database"
	"github.com/tomtom215/jetlog/internal/logging"
	"github.com/tomtom215/jetlog/internal/metrics"
	"github.com/tomtom215/jetlog/internal/models"
)

//go:embed model.conf
var embeddedModel string

//go:embed policy.csv
var embeddedPolicy string

// Roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Resources and actions.
const (
	ResourceFlights    = "flights"
	ResourceStatistics = "statistics"

	ActionRead  = "read"
	ActionWrite = "write"
)

// cacheType labels the decision cache in the cache metrics.
const cacheType = "authz"

// EnforcerConfig holds configuration for the Casbin enforcer.
type EnforcerConfig struct {
	// CacheTTL is how long decisions are cached. 0 disables caching.
	CacheTTL time.Duration
}

// DefaultEnforcerConfig returns default configuration.
func DefaultEnforcerConfig() EnforcerConfig {
	return EnforcerConfig{CacheTTL: 5 * time.Minute}
}

// Enforcer decides flight and statistics access with Casbin. It implements
// database.Authorizer.
type Enforcer struct {
	enforcer *casbin.SyncedEnforcer
	cache    *cache.Cache
}

var _ database.Authorizer = (*Enforcer)(nil)

// NewEnforcer loads the embedded model and policy.
func NewEnforcer(config EnforcerConfig) (*Enforcer, error) {
	m, err := model.NewModelFromString(embeddedModel)
	if err != nil {
		return nil, fmt.Errorf("failed to load casbin model: %w", err)
	}

	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}
	if err := loadEmbeddedPolicy(enforcer, embeddedPolicy); err != nil {
		return nil, err
	}

	e := &Enforcer{enforcer: enforcer}
	if config.CacheTTL > 0 {
		e.cache = cache.New(config.CacheTTL)
	}
	return e, nil
}

// loadEmbeddedPolicy parses and loads the embedded policy CSV.
func loadEmbeddedPolicy(enforcer *casbin.SyncedEnforcer, policy string) error {
	for _, line := range strings.Split(policy, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}

		switch parts[0] {
		case "p":
			if len(parts) != 4 {
				return fmt.Errorf("malformed policy line %q", line)
			}
			if _, err := enforcer.AddPolicy(parts[1], parts[2], parts[3]); err != nil {
				return fmt.Errorf("failed to add policy %v: %w", parts[1:], err)
			}
		case "g":
			if len(parts) != 3 {
				return fmt.Errorf("malformed grouping line %q", line)
			}
			if _, err := enforcer.AddGroupingPolicy(parts[1], parts[2]); err != nil {
				return fmt.Errorf("failed to add grouping policy %v: %w", parts[1:], err)
			}
		default:
			return fmt.Errorf("unknown policy type %q", parts[0])
		}
	}
	return nil
}

// RoleOf maps a principal to its role.
func RoleOf(p models.Principal) string {
	if p.IsAdmin {
		return RoleAdmin
	}
	return RoleUser
}

// Enforce checks whether actor may perform action on resource rows of
// owner. A failed evaluation denies.
func (e *Enforcer) Enforce(actor models.Principal, owner string, public bool, resource, action string) bool {
	role := RoleOf(actor)
	req := []interface{}{actor.Username, role, owner, strconv.FormatBool(public), resource, action}

	var key string
	if e.cache != nil {
		key = cache.GenerateKey(cacheType, req)
		v, ok := e.cache.Get(key)
		allowed, isBool := v.(bool)
		metrics.RecordCacheLookup(cacheType, ok && isBool)
		if ok && isBool {
			recordDecision(role, resource, action, allowed)
			return allowed
		}
	}

	allowed, err := e.enforcer.Enforce(req...)
	if err != nil {
		logging.Error().Err(err).Str("resource", resource).Str("action", action).Msg("Authorization evaluation failed")
		return false
	}
	if e.cache != nil {
		e.cache.Set(key, allowed)
	}
	recordDecision(role, resource, action, allowed)
	return allowed
}

// CanModify implements database.Authorizer.
func (e *Enforcer) CanModify(actor models.Principal, owner string) bool {
	return e.Enforce(actor, owner, false, ResourceFlights, ActionWrite)
}

// CanRead implements database.Authorizer.
func (e *Enforcer) CanRead(actor models.Principal, owner string, public bool) bool {
	return e.Enforce(actor, owner, public, ResourceFlights, ActionRead)
}

// Close stops the decision cache.
func (e *Enforcer) Close() {
	if e.cache != nil {
		e.cache.Close()
	}
}
