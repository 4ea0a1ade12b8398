package config

const (
	// DefaultPort is the default HTTP server port.
	DefaultPort = "8080"

	// DefaultDatabaseURL is empty; must be provided via flag or environment.
	DefaultDatabaseURL = ""

	// DefaultMaxConns and DefaultMinConns size the pgx connection pool.
	DefaultMaxConns = 10
	DefaultMinConns = 2

	// DefaultPenaltyReason is recorded in the admin penalty log when the admin gives no reason.
	DefaultPenaltyReason = "dispatcher error"

	// DefaultQueueLimit and MaxQueueLimit bound review queue pages.
	DefaultQueueLimit = 50
	MaxQueueLimit     = 200
)
