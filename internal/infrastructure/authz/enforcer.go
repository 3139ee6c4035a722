// Package authz gates the six editorial commands behind a casbin RBAC
// policy: admin may call every command, editor may call every command
// except the destructive merge and archive, viewer may only call the
// low-risk verify command. Grounded on the embedded-model-and-policy
// shape of a casbin-based enforcer elsewhere in the retrieved pack,
// scaled down to this catalog's three roles and one resource kind.
package authz

import (
	"context"
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

// Roles recognized by the editorial policy.
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
	RoleViewer = "viewer"
)

// eventResource is the single object kind every editorial policy rule
// gates access to.
const eventResource = "event"

// Enforcer wraps a casbin SyncedEnforcer loaded from the embedded model
// and policy.
type Enforcer struct {
	enforcer *casbin.SyncedEnforcer
}

// NewEnforcer builds an enforcer from the embedded RBAC model and policy.
func NewEnforcer() (*Enforcer, error) {
	m, err := model.NewModelFromString(embeddedModel)
	if err != nil {
		return nil, fmt.Errorf("load casbin model: %w", err)
	}

	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("create casbin enforcer: %w", err)
	}
	if err := loadEmbeddedPolicy(enforcer, embeddedPolicy); err != nil {
		return nil, fmt.Errorf("load embedded policy: %w", err)
	}

	return &Enforcer{enforcer: enforcer}, nil
}

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
			if len(parts) >= 4 {
				if _, err := enforcer.AddPolicy(parts[1], parts[2], parts[3]); err != nil {
					return err
				}
			}
		case "g":
			if len(parts) >= 3 {
				if _, err := enforcer.AddGroupingPolicy(parts[1], parts[2]); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// AssignRole grants a role to an actor, used at session/JWT issuance time
// to seed the enforcer with a user's role.
func (e *Enforcer) AssignRole(actor, role string) error {
	_, err := e.enforcer.AddGroupingPolicy(actor, role)
	return err
}

// CanPerform reports whether the actor (carrying their assigned roles)
// may invoke the named editorial command.
func (e *Enforcer) CanPerform(ctx context.Context, actor string, action string) (bool, error) {
	allowed, err := e.enforcer.Enforce(actor, eventResource, action)
	if err != nil {
		return false, fmt.Errorf("enforce %s/%s/%s: %w", actor, eventResource, action, err)
	}
	return allowed, nil
}
