package storage

import "time"

// Entry is one blocked account as stored in the snapshot.
type Entry struct {
	// Account owning the blacklist, as chosen by the caller
	Account string

	UID  string
	Name string
}

// Change captures a single change event for auditing or printing.
type Change struct {
	OccurredAt time.Time `json:"occurred_at"`
	Account    string    `json:"account"`
	UID        string    `json:"uid"`
	Name       string    `json:"name"`
	ChangeType string    `json:"change_type"` // added | renamed | removed
}

// AccountStats summarizes the snapshot of one account.
type AccountStats struct {
	Account      string `json:"account"`
	BlockedCount int    `json:"blocked_count"`
	AddedCount   int    `json:"added_count"`
	RemovedCount int    `json:"removed_count"`
}
