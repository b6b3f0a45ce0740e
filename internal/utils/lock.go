package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/gofrs/flock"
)

var unsafeAccountChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// SyncLock keeps two processes from syncing the same account's blacklist
// into one history file at once. Different accounts do not contend; sqlite
// serializes their writes itself.
type SyncLock struct {
	lock    *flock.Flock
	account string
}

// NewSyncLock returns the lock for account in the history file at dbPath.
// The lock file sits next to it as <db>.<account>.lock.
func NewSyncLock(dbPath, account string) (*SyncLock, error) {
	absPath, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, fmt.Errorf("could not get absolute db path: %w", err)
	}
	return &SyncLock{
		lock:    flock.New(SyncLockPath(absPath, account)),
		account: account,
	}, nil
}

// SyncLockPath names the lock file of account for the history file dbPath.
func SyncLockPath(dbPath, account string) string {
	name := unsafeAccountChars.ReplaceAllString(account, "_")
	if name == "" {
		name = "_"
	}
	return dbPath + "." + name + ".lock"
}

// Lock waits for the lock, telling the user when another sync holds it.
func (l *SyncLock) Lock() error {
	locked, err := l.lock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire sync lock %s: %w", l.lock.Path(), err)
	}
	if locked {
		return nil
	}
	Log.Warnf("Another biliguard process is syncing the blacklist of %q, waiting for it to finish...", l.account)
	if err := l.lock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire sync lock %s after waiting: %w", l.lock.Path(), err)
	}
	return nil
}

func (l *SyncLock) Unlock() error {
	if err := l.lock.Unlock(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to release sync lock %s: %w", l.lock.Path(), err)
	}
	return nil
}
