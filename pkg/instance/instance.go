package instance

import (
	"os"
	"strings"
)

// GetID identifies this process in logs. Falls back to the hostname.
func GetID() string {
	if id := strings.TrimSpace(os.Getenv("ACCOUNTS_INSTANCE_ID")); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
