package storage

import "fmt"

func identityKey(account, uid string) string {
	if uid == "" {
		return ""
	}
	return fmt.Sprintf("%s|%s", account, uid)
}
