package models

import "fmt"

// User is the Discord profile snapshot returned by the identity provider
// at login. It lives in the session cookie only and is never written to
// the database; submissions capture their own user_id/user_tag snapshot
// at submit time.
type User struct {
	ID            int64  `json:"id,string"`
	Username      string `json:"username"`
	Discriminator string `json:"discriminator"`
	Avatar        string `json:"avatar"`
	Email         string `json:"email"`
	Verified      bool   `json:"verified"`
	Locale        string `json:"locale"`
	MFAEnabled    bool   `json:"mfa_enabled"`
	Flags         int    `json:"flags"`
	PublicFlags   int    `json:"public_flags"`
}

// Tag returns the classic name#discriminator form shown to reviewers.
func (u User) Tag() string {
	return fmt.Sprintf("%s#%s", u.Username, u.Discriminator)
}
