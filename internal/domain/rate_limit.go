package domain

import "time"

// RateLimitCounter is a fixed-window counter keyed by (endpoint, actor).
// Counters live in durable storage, not process memory, so limits survive
// restarts and horizontal scaling.
type RateLimitCounter struct {
	Key         string    `json:"key"`
	WindowStart time.Time `json:"window_start"`
	Count       int32     `json:"count"`
}
