package integration

import (
	"fmt"
	"time"
)

// TestAccountCredentials generates unique test credentials using a timestamp
func TestAccountCredentials(suffix string) (email, password string) {
	ts := time.Now().UnixNano()
	email = fmt.Sprintf("test-%d-%s@example.com", ts, suffix)
	password = "TestPassword123"
	return
}
