package core

import "time"

const (
	// HeartbeatInterval is how often workers report their status.
	HeartbeatInterval = 10 * time.Second

	// HeartbeatTTL is how long a reported status stays visible.
	HeartbeatTTL = 10 * time.Minute

	// StaleThreshold is how long before a silent worker is considered offline.
	StaleThreshold = time.Minute
)
