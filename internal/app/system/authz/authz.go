// Package authz resolves guild roles into staff Positions and evaluates the
// per-form review permissions. Both tables are loaded from configuration at
// startup so staff-team changes never require a redeploy.
package authz

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/poketwo/forms/internal/domain/models"
)

// positionOrder is the evaluation order for role classification: the most
// privileged table is checked first and the first match wins.
var positionOrder = []models.Position{
	models.PositionAdmin,
	models.PositionCommunityManager,
	models.PositionModerator,
	models.PositionHelper,
}

// Authorizer holds the resolved role tables.
type Authorizer struct {
	positionRoles map[models.Position][]int64
	formRoles     map[string][]int64
}

// New builds an Authorizer from the position-role tables and the per-form
// permitted-role map.
func New(positionRoles map[models.Position][]int64, formRoles map[string][]int64) *Authorizer {
	return &Authorizer{
		positionRoles: positionRoles,
		formRoles:     formRoles,
	}
}

// PositionFor classifies a member's role set. A nil member or a member with
// no matching role resolves to the lowest position.
func (a *Authorizer) PositionFor(m *models.Member) models.Position {
	if m == nil {
		return models.PositionMember
	}
	for _, pos := range positionOrder {
		for _, role := range a.positionRoles[pos] {
			if m.HasRole(role) {
				return pos
			}
		}
	}
	return models.PositionMember
}

// CanReviewForm reports whether the member's role set intersects the form's
// permitted role set. Unknown forms have an empty set, so nobody reviews
// them.
func (a *Authorizer) CanReviewForm(m *models.Member, formID string) bool {
	if m == nil {
		return false
	}
	for _, role := range a.formRoles[formID] {
		if m.HasRole(role) {
			return true
		}
	}
	return false
}

// ReviewableForms returns the form slugs the member may review, in no
// particular order.
func (a *Authorizer) ReviewableForms(m *models.Member) []string {
	var out []string
	for formID := range a.formRoles {
		if a.CanReviewForm(m, formID) {
			out = append(out, formID)
		}
	}
	return out
}

// ParseFormRoles decodes the forms_permissions config value: a JSON object
// mapping form slug to a list of permitted role ids (as strings, since
// snowflakes overflow JSON numbers in other tooling).
//
//	{"ban-appeal": ["718006431231508481", "1219500880534179892"]}
func ParseFormRoles(raw string) (map[string][]int64, error) {
	if raw == "" {
		return map[string][]int64{}, nil
	}
	var in map[string][]string
	if err := json.Unmarshal([]byte(raw), &in); err != nil {
		return nil, fmt.Errorf("forms_permissions: %w", err)
	}
	out := make(map[string][]int64, len(in))
	for form, roles := range in {
		ids, err := parseRoleIDs(roles)
		if err != nil {
			return nil, fmt.Errorf("forms_permissions[%s]: %w", form, err)
		}
		out[form] = ids
	}
	return out, nil
}

// ParsePositionRoles decodes the position_roles config value: a JSON object
// mapping position name to a list of role ids.
//
//	{"admin": ["718006431231508481"], "moderator": ["724879492622843944"]}
func ParsePositionRoles(raw string) (map[models.Position][]int64, error) {
	if raw == "" {
		return map[models.Position][]int64{}, nil
	}
	var in map[string][]string
	if err := json.Unmarshal([]byte(raw), &in); err != nil {
		return nil, fmt.Errorf("position_roles: %w", err)
	}
	out := make(map[models.Position][]int64, len(in))
	for name, roles := range in {
		pos, err := positionByName(name)
		if err != nil {
			return nil, err
		}
		ids, err := parseRoleIDs(roles)
		if err != nil {
			return nil, fmt.Errorf("position_roles[%s]: %w", name, err)
		}
		out[pos] = ids
	}
	return out, nil
}

func positionByName(name string) (models.Position, error) {
	switch name {
	case "helper":
		return models.PositionHelper, nil
	case "moderator":
		return models.PositionModerator, nil
	case "community_manager":
		return models.PositionCommunityManager, nil
	case "admin":
		return models.PositionAdmin, nil
	default:
		return 0, fmt.Errorf("position_roles: unknown position %q", name)
	}
}

func parseRoleIDs(roles []string) ([]int64, error) {
	ids := make([]int64, 0, len(roles))
	for _, r := range roles {
		id, err := strconv.ParseInt(r, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad role id %q: %w", r, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
