// Package model defines the row records shared by the timesheets packages.
//
// Every table row is an explicit struct. Conversion from raw SQLite rows
// happens in one scan function per entity inside the storage package.
package model

import "time"

// Model is the interface implemented by records kept in the runtime state store.
type Model interface {
	// SetKey sets the state store key for this record.
	SetKey(key string)
	// GetKey returns the state store key for this record.
	GetKey() string
}

// State store keys.
const (
	KeyTimerState = "timerstate"
)

// Account scope constants.
const (
	// LocalAccountID is the reserved account holding purely offline data.
	LocalAccountID int64 = 0
	// AllAccounts widens a query to every account.
	AllAccounts int64 = -1
)

// Date layouts used for stored date columns.
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05"
)

// SyncStatus marks what the sync engine has to push upstream.
type SyncStatus string

const (
	SyncClean   SyncStatus = ""
	SyncUpdated SyncStatus = "updated"
	SyncNew     SyncStatus = "new"
	SyncDeleted SyncStatus = "deleted"
)

// Modified returns the status a row takes after a local edit.
// Rows that were never pushed stay "new".
func (s SyncStatus) Modified() SyncStatus {
	if s == SyncNew {
		return SyncNew
	}
	return SyncUpdated
}

// IsDeleted reports whether the row is soft-deleted.
func (s SyncStatus) IsDeleted() bool {
	return s == SyncDeleted
}

// Syncable holds the columns every synced table carries.
type Syncable struct {
	ID           int64      `json:"id"`
	RemoteID     Ref        `json:"remote_id"`
	AccountID    int64      `json:"account_id"`
	SyncStatus   SyncStatus `json:"sync_status,omitempty"`
	LastModified time.Time  `json:"last_modified"`
}

// Key returns the composite key that disambiguates rows across accounts.
func (s Syncable) Key() RecordKey {
	return RecordKey{RemoteID: s.RemoteID, AccountID: s.AccountID}
}

// RecordKey identifies a row by remote id within an account.
type RecordKey struct {
	RemoteID  Ref
	AccountID int64
}
