package services

import (
	"time"
)

type RequestSettings struct {
	Endpoint        string
	EmulateEndpoint string
	ApiKey          string
	Timeout         time.Duration
	DefaultLimit    int
	MaxLimit        int
}

func (s RequestSettings) emulateEndpoint() string {
	if len(s.EmulateEndpoint) > 0 {
		return s.EmulateEndpoint
	}
	return s.Endpoint
}

// Limit clamps a requested page size.
func (s RequestSettings) Limit(limit int) int {
	if limit <= 0 {
		limit = s.DefaultLimit
	}
	if s.MaxLimit > 0 && limit > s.MaxLimit {
		limit = s.MaxLimit
	}
	return max(1, limit)
}
