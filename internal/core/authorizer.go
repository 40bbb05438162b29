package core

import (
	"fmt"
	"sync"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"go.uber.org/zap"

	"stackassist-backend/internal/models"
)

// Action is the verb checked by the authorizer.
type Action string

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Objects that are not dashboard modules.
const (
	ObjectTeam          = "team"
	ObjectNotifications = "notifications"
	ObjectMessages      = "messages"
)

const wildcard = "*"

// Subjects are user ids and domains are tenant ids, so a member's grants in one
// tenant never apply to another.
const authzModel = `
[request_definition]
r = sub, dom, obj, act

[policy_definition]
p = sub, dom, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.dom == p.dom && (p.obj == "*" || r.obj == p.obj) && (p.act == "*" || r.act == p.act)
`

// Authorizer decides whether a principal may perform an action. Policies are derived
// from the principal itself and refreshed whenever its permissions change.
type Authorizer struct {
	enforcer *casbin.Enforcer
	logger   *zap.Logger

	mu     sync.RWMutex
	loaded map[string]string // sub|dom -> fingerprint of the loaded grants
}

// NewAuthorizer builds an enforcer with an in-memory policy set.
func NewAuthorizer(logger *zap.Logger) (*Authorizer, error) {
	m, err := model.NewModelFromString(authzModel)
	if err != nil {
		return nil, fmt.Errorf("authz: failed to parse model: %w", err)
	}
	enf, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("authz: failed to initialize enforcer: %w", err)
	}
	return &Authorizer{enforcer: enf, logger: logger, loaded: make(map[string]string)}, nil
}

// Authorize returns an error matching ErrPermissionDenied when the principal may not
// perform action on object within its tenant.
func (a *Authorizer) Authorize(p models.Principal, object string, action Action) error {
	allowed, err := a.Check(p, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		a.logger.Debug("authz denied request",
			zap.String("subject", p.UserID),
			zap.String("domain", p.TenantID),
			zap.String("object", object),
			zap.String("action", string(action)))
		return fmt.Errorf("%w: cannot %s %s", ErrPermissionDenied, action, object)
	}
	return nil
}

// Check evaluates a request without turning a deny into an error.
func (a *Authorizer) Check(p models.Principal, object string, action Action) (bool, error) {
	if p.UserID == "" || p.TenantID == "" {
		return false, nil
	}
	if err := a.sync(p); err != nil {
		return false, err
	}

	a.mu.RLock()
	defer a.mu.RUnlock()
	allowed, err := a.enforcer.Enforce(p.UserID, p.TenantID, object, string(action))
	if err != nil {
		return false, fmt.Errorf("authz: enforce failed: %w", err)
	}
	return allowed, nil
}

// Forget drops the grants of userID within tenantID.
func (a *Authorizer) Forget(userID, tenantID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, err := a.enforcer.RemoveFilteredPolicy(0, userID, tenantID); err != nil {
		return fmt.Errorf("authz: remove policies: %w", err)
	}
	delete(a.loaded, userID+"|"+tenantID)
	return nil
}

func (a *Authorizer) sync(p models.Principal) error {
	key := p.UserID + "|" + p.TenantID
	fingerprint := fmt.Sprintf("%s:%+v", p.Role, p.Permissions)

	a.mu.RLock()
	current, ok := a.loaded[key]
	a.mu.RUnlock()
	if ok && current == fingerprint {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if current, ok := a.loaded[key]; ok && current == fingerprint {
		return nil
	}
	if _, err := a.enforcer.RemoveFilteredPolicy(0, p.UserID, p.TenantID); err != nil {
		return fmt.Errorf("authz: remove policies: %w", err)
	}
	if rules := policiesFor(p); len(rules) > 0 {
		if _, err := a.enforcer.AddPolicies(rules); err != nil {
			return fmt.Errorf("authz: add policies: %w", err)
		}
	}
	a.loaded[key] = fingerprint
	return nil
}

// policiesFor expands a principal into casbin rules. Owners get everything in their
// own tenant. Members get read on each enabled module, the write verbs their flags
// allow on those modules, and the team chat.
func policiesFor(p models.Principal) [][]string {
	if p.IsOwner() {
		return [][]string{{p.UserID, p.TenantID, wildcard, wildcard}}
	}
	if p.Role != models.RoleMember {
		return nil
	}

	rules := [][]string{
		{p.UserID, p.TenantID, ObjectMessages, string(ActionRead)},
		{p.UserID, p.TenantID, ObjectMessages, string(ActionCreate)},
	}
	perms := p.Permissions
	for _, module := range models.Modules {
		if !perms.Modules.Allows(module) {
			continue
		}
		obj := string(module)
		rules = append(rules, []string{p.UserID, p.TenantID, obj, string(ActionRead)})
		if perms.CanCreate {
			rules = append(rules, []string{p.UserID, p.TenantID, obj, string(ActionCreate)})
		}
		if perms.CanEdit {
			rules = append(rules, []string{p.UserID, p.TenantID, obj, string(ActionUpdate)})
		}
		if perms.CanDelete {
			rules = append(rules, []string{p.UserID, p.TenantID, obj, string(ActionDelete)})
		}
	}
	return rules
}
