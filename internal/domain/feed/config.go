package feed

import "time"

// Config holds feed domain configuration.
type Config struct {
	DefaultPageSize int
	MaxPageSize     int
	// FirstPageTTL is how long the unfiltered first page of posts is
	// cached. Zero disables that cache.
	FirstPageTTL  time.Duration
	MaxBodyLength int
	MaxTags       int
}

// DefaultConfig returns default feed configuration.
func DefaultConfig() *Config {
	return &Config{
		DefaultPageSize: 20,
		MaxPageSize:     100,
		FirstPageTTL:    30 * time.Second,
		MaxBodyLength:   5000,
		MaxTags:         10,
	}
}
