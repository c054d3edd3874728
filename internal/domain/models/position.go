package models

// Position is the ordered staff-privilege rank resolved from a member's
// guild roles. Comparisons are numeric: higher means more privileged.
type Position int

const (
	PositionMember Position = iota
	PositionHelper
	PositionModerator
	PositionCommunityManager
	PositionAdmin
)

// AtLeast reports whether p satisfies the required rank.
func (p Position) AtLeast(required Position) bool {
	return p >= required
}

func (p Position) String() string {
	switch p {
	case PositionHelper:
		return "helper"
	case PositionModerator:
		return "moderator"
	case PositionCommunityManager:
		return "community manager"
	case PositionAdmin:
		return "admin"
	default:
		return "member"
	}
}
