package db

import "time"

// Database connection constants
const (
	// ConnectionRetrySleep is the sleep duration between connection retries
	ConnectionRetrySleep = 2 * time.Second
	// maxConnectionRetries is the number of retries for initial connection
	maxConnectionRetries = 10
)

// Pool defaults used when no options are configured
const (
	defaultMaxConns          int32 = 10
	defaultMinConns          int32 = 1
	defaultMaxConnIdleTime         = 5 * time.Minute
	defaultMaxConnLifetime         = time.Hour
	defaultHealthCheckPeriod       = time.Minute
)
