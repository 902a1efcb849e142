package model

import "time"

// Account is a connected backend, or the reserved local account.
type Account struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	ServerLink   string    `json:"server_link"`
	DatabaseName string    `json:"database_name"`
	Username     string    `json:"username"`
	APIKey       string    `json:"-"`
	IsDefault    bool      `json:"is_default"`
	CreatedAt    time.Time `json:"created_at"`
}

// Local account defaults.
const (
	LocalAccountName = "Local Account"
	LocalAccountLink = "local://"
	LocalUserName    = "Local User"
)

// IsLocal reports whether this is the reserved offline account.
func (a *Account) IsLocal() bool {
	return a.ID == LocalAccountID
}

// User is a backend user known to an account.
type User struct {
	ID        int64  `json:"id"`
	RemoteID  Ref    `json:"remote_id"`
	AccountID int64  `json:"account_id"`
	Name      string `json:"name"`
	Login     string `json:"login,omitempty"`
	Email     string `json:"email,omitempty"`
}

// AssigneeRef names a user within an account, for cross-account assignee filters.
// AccountID is AllAccounts when the caller did not say which account the id came from.
type AssigneeRef struct {
	AccountID int64 `json:"account_id"`
	UserID    int64 `json:"user_id"`
}
