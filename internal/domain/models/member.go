package models

// Member is the read-only projection of a guild member from the community
// database. Discord snowflakes are stored as int64 (Mongo Long) in the
// source collections.
type Member struct {
	ID           int64   `bson:"_id" json:"id,string"`
	Roles        []int64 `bson:"roles,omitempty" json:"roles,omitempty"`
	Muted        bool    `bson:"muted,omitempty" json:"muted,omitempty"`
	TradingMuted bool    `bson:"trading_muted,omitempty" json:"trading_muted,omitempty"`
}

// HasRole reports whether the member carries the given role id.
func (m *Member) HasRole(role int64) bool {
	if m == nil {
		return false
	}
	for _, r := range m.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// PoketwoMember is the projection read from the bot's own member database.
// Only the suspension flag matters here: the suspension-appeal form is shown
// only to currently suspended members.
type PoketwoMember struct {
	ID               int64  `bson:"_id" json:"id,string"`
	Suspended        bool   `bson:"suspended,omitempty" json:"suspended,omitempty"`
	SuspensionReason string `bson:"suspension_reason,omitempty" json:"suspension_reason,omitempty"`
}
