package policy

import (
	"github.com/lenskyphoto/studio-backend/internal/models"
	"github.com/lenskyphoto/studio-backend/pkg/metrics"
)

// Action names an operation subject to authorization.
type Action string

const (
	ActionInviteUser     Action = "accounts.invite"
	ActionListUsers      Action = "accounts.list"
	ActionCreateCompany  Action = "company.create"
	ActionManageStages   Action = "stage.manage"
	ActionViewStages     Action = "stage.view"
	ActionCreateProject  Action = "project.create"
	ActionUpdateProject  Action = "project.update"
	ActionDeleteProject  Action = "project.delete"
	ActionViewProjects   Action = "project.view"
	ActionWriteTree      Action = "sharing.write"
	ActionReadCollection Action = "collection.read"
	ActionDeletePhoto    Action = "photo.delete"
)

// UnscopedVisibility controls who may touch collections that carry no
// project reference and therefore resolve to no company.
type UnscopedVisibility string

const (
	UnscopedOwnerOnly UnscopedVisibility = "owner"
	UnscopedCompany   UnscopedVisibility = "company"
	UnscopedOpen      UnscopedVisibility = "open"
)

// Resource carries the authorization-relevant attributes of the entity an
// action targets. CompanyID is the resource's resolved company, nil when the
// resource is company-unscoped; OwnerID is the creating/uploading user.
type Resource struct {
	CompanyID *string
	OwnerID   string
}

// Evaluator is the single decision point for role and tenant checks. Every
// mutating handler path asks it instead of re-implementing role lists.
type Evaluator struct {
	unscoped UnscopedVisibility
}

// New builds an Evaluator with the configured unscoped-collection policy.
func New(unscoped UnscopedVisibility) *Evaluator {
	switch unscoped {
	case UnscopedOwnerOnly, UnscopedCompany, UnscopedOpen:
	default:
		unscoped = UnscopedOwnerOnly
	}
	return &Evaluator{unscoped: unscoped}
}

// Allow reports whether the actor may perform the action on the resource.
func (e *Evaluator) Allow(actor *models.User, res Resource, action Action) bool {
	allowed := e.decide(actor, res, action)

	result := "deny"
	if allowed {
		result = "allow"
	}
	metrics.PolicyDecisions.WithLabelValues(string(action), result).Inc()

	return allowed
}

func (e *Evaluator) decide(actor *models.User, res Resource, action Action) bool {
	if actor == nil {
		return false
	}

	switch action {
	case ActionInviteUser, ActionCreateCompany:
		return actor.Role == models.RoleOwner

	case ActionManageStages, ActionDeleteProject:
		return e.roleIn(actor, models.RoleOwner, models.RoleAdmin) && e.sameCompany(actor, res)

	case ActionViewStages, ActionViewProjects, ActionListUsers:
		return actor.CompanyID != nil && e.sameCompany(actor, res)

	case ActionCreateProject:
		return e.roleIn(actor, models.RoleOwner, models.RolePhotographer) && e.sameCompany(actor, res)

	case ActionUpdateProject:
		return e.sameCompany(actor, res)

	case ActionWriteTree:
		return e.roleIn(actor, models.RolePhotographer, models.RoleRetoucher) && e.sameCompany(actor, res)

	case ActionReadCollection:
		return e.sameCompany(actor, res)

	case ActionDeletePhoto:
		if !e.roleIn(actor, models.RolePhotographer, models.RoleRetoucher) || !e.sameCompany(actor, res) {
			return false
		}
		// Uploaders may remove their own photos; retouchers may remove any.
		return res.OwnerID == actor.ID || actor.Role == models.RoleRetoucher
	}

	return false
}

func (e *Evaluator) roleIn(actor *models.User, roles ...models.Role) bool {
	for _, role := range roles {
		if actor.Role == role {
			return true
		}
	}
	return false
}

// sameCompany applies the tenant check. Unscoped resources fall back to the
// configured visibility policy instead of passing silently.
func (e *Evaluator) sameCompany(actor *models.User, res Resource) bool {
	if res.CompanyID == nil {
		switch e.unscoped {
		case UnscopedOpen:
			return true
		case UnscopedCompany:
			return actor.CompanyID != nil
		default:
			return res.OwnerID == "" || res.OwnerID == actor.ID
		}
	}

	return actor.CompanyID != nil && *actor.CompanyID == *res.CompanyID
}
