package collector

import "time"

// Config holds collector configuration
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	Extra   map[string]any
}
