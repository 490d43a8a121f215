package instance

import "os"

// GetID identifies the running replica in logs: GOCART_INSTANCE_ID, then the hostname.
func GetID() string {
	if id := os.Getenv("GOCART_INSTANCE_ID"); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
