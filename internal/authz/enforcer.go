// Package authz checks capabilities (object + action) against roles with Casbin.
package authz

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

//go:embed model.conf
var embeddedModel string

//go:embed policy.csv
var embeddedPolicy string

// Objects and actions referenced by routes.
const (
	ObjectMovies  = "movies"
	ObjectRatings = "ratings"

	ActionRead   = "read"
	ActionWrite  = "write"
	ActionDelete = "delete"
)

// Enforcer wraps a synced Casbin enforcer loaded with the embedded RBAC model and policy.
type Enforcer struct {
	enforcer *casbin.SyncedEnforcer
}

func NewEnforcer() (*Enforcer, error) {
	m, err := model.NewModelFromString(embeddedModel)
	if err != nil {
		return nil, fmt.Errorf("failed to load casbin model: %w", err)
	}

	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}

	if err := loadPolicy(enforcer, embeddedPolicy); err != nil {
		return nil, err
	}

	return &Enforcer{enforcer: enforcer}, nil
}

// loadPolicy parses CSV lines of the form "p, sub, obj, act" / "g, child, parent".
func loadPolicy(enforcer *casbin.SyncedEnforcer, policy string) error {
	for _, line := range strings.Split(policy, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}

		switch {
		case parts[0] == "p" && len(parts) == 4:
			if _, err := enforcer.AddPolicy(parts[1], parts[2], parts[3]); err != nil {
				return fmt.Errorf("failed to add policy %v: %w", parts[1:], err)
			}
		case parts[0] == "g" && len(parts) == 3:
			if _, err := enforcer.AddGroupingPolicy(parts[1], parts[2]); err != nil {
				return fmt.Errorf("failed to add grouping policy %v: %w", parts[1:], err)
			}
		default:
			return fmt.Errorf("malformed policy line %q", line)
		}
	}
	return nil
}

// Enforce reports whether a single role may perform action on object.
func (e *Enforcer) Enforce(role, object, action string) (bool, error) {
	return e.enforcer.Enforce(role, object, action)
}

// AllowedAny reports whether any of roles may perform action on object.
func (e *Enforcer) AllowedAny(roles []string, object, action string) (bool, error) {
	for _, role := range roles {
		ok, err := e.Enforce(role, object, action)
		if err != nil {
			return false, fmt.Errorf("authorization check failed: %w", err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
