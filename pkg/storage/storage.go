// Package storage keeps a sqlite snapshot of fetched blacklists and a log of
// how they changed between fetches.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"github.com/sw33tLie/biliguard/pkg/enrich"
	_ "modernc.org/sqlite"
)

type DB struct {
	sql *sql.DB
}

func Open(path string) (*DB, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS blacklist_entries (
  id            INTEGER PRIMARY KEY,
  account       TEXT NOT NULL,
  uid           TEXT NOT NULL,
  name          TEXT,
  first_seen_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  last_seen_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(account, uid)
);
CREATE INDEX IF NOT EXISTS idx_blacklist_account ON blacklist_entries(account);
CREATE TABLE IF NOT EXISTS blacklist_changes (
  id          INTEGER PRIMARY KEY,
  occurred_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  account     TEXT NOT NULL,
  uid         TEXT NOT NULL,
  name        TEXT,
  change_type TEXT NOT NULL CHECK (change_type IN ('added','renamed','removed'))
);
CREATE INDEX IF NOT EXISTS idx_changes_time ON blacklist_changes(occurred_at);
CREATE INDEX IF NOT EXISTS idx_changes_account ON blacklist_changes(account, occurred_at);
    `); err != nil {
		return nil, err
	}
	return &DB{sql: db}, nil
}

func (d *DB) Close() error {
	if d == nil || d.sql == nil {
		return nil
	}
	return d.sql.Close()
}

// EntriesFromBlacklist converts a fetched blacklist into snapshot entries.
func EntriesFromBlacklist(account string, bl enrich.Blacklist) []Entry {
	out := make([]Entry, 0, len(bl.Entries))
	for _, e := range bl.Entries {
		out = append(out, Entry{Account: account, UID: e.ID, Name: e.Name})
	}
	return out
}

// SyncBlacklist replaces the stored snapshot of account with entries and
// returns (and logs) what was added, renamed or removed.
func (d *DB) SyncBlacklist(ctx context.Context, account string, entries []Entry) (changes []Change, err error) {
	if account == "" {
		return nil, errors.New("empty account")
	}
	now := time.Now().UTC()

	tx, err := d.sql.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	rows, err := tx.QueryContext(ctx, "SELECT uid, name FROM blacklist_entries WHERE account = ?", account)
	if err != nil {
		return nil, err
	}
	existing := make(map[string]string)
	for rows.Next() {
		var (
			uid  string
			name sql.NullString
		)
		if err = rows.Scan(&uid, &name); err != nil {
			rows.Close()
			return nil, err
		}
		existing[identityKey(account, uid)] = name.String
	}
	if err = rows.Close(); err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		key := identityKey(account, e.UID)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true

		oldName, existed := existing[key]
		switch {
		case !existed:
			_, err = tx.ExecContext(ctx, `INSERT INTO blacklist_entries(account, uid, name, first_seen_at, last_seen_at) VALUES(?,?,?,CURRENT_TIMESTAMP,CURRENT_TIMESTAMP)`, account, e.UID, nullIfEmpty(e.Name))
			if err != nil {
				return nil, err
			}
			if err = logChange(ctx, tx, account, e.UID, e.Name, "added"); err != nil {
				return nil, err
			}
			changes = append(changes, Change{OccurredAt: now, Account: account, UID: e.UID, Name: e.Name, ChangeType: "added"})
		case oldName != e.Name:
			_, err = tx.ExecContext(ctx, `UPDATE blacklist_entries SET name = ?, last_seen_at = CURRENT_TIMESTAMP WHERE account = ? AND uid = ?`, nullIfEmpty(e.Name), account, e.UID)
			if err != nil {
				return nil, err
			}
			if err = logChange(ctx, tx, account, e.UID, e.Name, "renamed"); err != nil {
				return nil, err
			}
			changes = append(changes, Change{OccurredAt: now, Account: account, UID: e.UID, Name: e.Name, ChangeType: "renamed"})
		default:
			_, err = tx.ExecContext(ctx, `UPDATE blacklist_entries SET last_seen_at = CURRENT_TIMESTAMP WHERE account = ? AND uid = ?`, account, e.UID)
			if err != nil {
				return nil, err
			}
		}
	}

	// Sweep: whatever was stored but not fetched this time was unblocked
	var stale []string
	for key := range existing {
		if !seen[key] {
			stale = append(stale, key)
		}
	}
	sort.Strings(stale)
	for _, key := range stale {
		name := existing[key]
		uid := key[len(account)+1:]
		if _, err = tx.ExecContext(ctx, `DELETE FROM blacklist_entries WHERE account = ? AND uid = ?`, account, uid); err != nil {
			return nil, err
		}
		if err = logChange(ctx, tx, account, uid, name, "removed"); err != nil {
			return nil, err
		}
		changes = append(changes, Change{OccurredAt: now, Account: account, UID: uid, Name: name, ChangeType: "removed"})
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return changes, nil
}

func logChange(ctx context.Context, tx *sql.Tx, account, uid, name, changeType string) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO blacklist_changes(occurred_at, account, uid, name, change_type) VALUES(CURRENT_TIMESTAMP, ?, ?, ?, ?)`, account, uid, nullIfEmpty(name), changeType)
	return err
}

// ListEntries returns the stored snapshot of account ordered by uid.
func (d *DB) ListEntries(ctx context.Context, account string) ([]Entry, error) {
	rows, err := d.sql.QueryContext(ctx, "SELECT account, uid, name FROM blacklist_entries WHERE account = ? ORDER BY CAST(uid AS INTEGER), uid", account)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var name sql.NullString
		if err := rows.Scan(&e.Account, &e.UID, &name); err != nil {
			return nil, err
		}
		e.Name = name.String
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListRecentChanges returns the most recent N changes across all accounts.
func (d *DB) ListRecentChanges(ctx context.Context, limit int) ([]Change, error) {
	if limit <= 0 {
		limit = 50
	}
	q := "SELECT occurred_at, account, uid, name, change_type FROM blacklist_changes ORDER BY occurred_at DESC, id DESC LIMIT ?"
	rows, err := d.sql.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	changes := []Change{}
	for rows.Next() {
		var c Change
		var occurredAtStr string
		var name sql.NullString
		if err := rows.Scan(&occurredAtStr, &c.Account, &c.UID, &name, &c.ChangeType); err != nil {
			return nil, err
		}
		c.Name = name.String
		c.OccurredAt = parseTimestamp(occurredAtStr)
		changes = append(changes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return changes, nil
}

// parseTimestamp reads CURRENT_TIMESTAMP text or the RFC3339 form the driver
// produces for DATETIME columns.
func parseTimestamp(s string) time.Time {
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	return time.Time{}
}

func (d *DB) GetStats(ctx context.Context) ([]AccountStats, error) {
	query := `
		SELECT
			a.account,
			(SELECT COUNT(*) FROM blacklist_entries e WHERE e.account = a.account),
			(SELECT COUNT(*) FROM blacklist_changes c WHERE c.account = a.account AND c.change_type = 'added'),
			(SELECT COUNT(*) FROM blacklist_changes c WHERE c.account = a.account AND c.change_type = 'removed')
		FROM
			(SELECT account FROM blacklist_entries UNION SELECT account FROM blacklist_changes) a
		ORDER BY
			a.account;
	`
	rows, err := d.sql.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []AccountStats
	for rows.Next() {
		var s AccountStats
		if err := rows.Scan(&s.Account, &s.BlockedCount, &s.AddedCount, &s.RemovedCount); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
