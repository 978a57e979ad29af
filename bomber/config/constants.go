package config

import "time"

// Application-wide constants organized by domain

// Database and Performance Constants
const (
	// Timeouts
	DefaultQueryTimeout = 30 * time.Second
	NetworkDialTimeout  = 5 * time.Second

	// Startup
	DBConnectAttempts = 5
	DBConnectBackoff  = 2 * time.Second

	// Cache settings
	CacheExpiration = 5 * time.Minute
	CacheSize       = 10000

	// Transactions
	DefaultTxTimeout = 30 * time.Second
	MaxTxRetries     = 5 // serialization failures
	TxRetryBackoff   = 50 * time.Millisecond

	// Batch processing
	DefaultBatchSize = 50
	MaxBatchSize     = 500
)

// Ledger outbox
const (
	LedgerPollInterval   = 5 * time.Second
	LedgerMaxConcurrency = 8
	LedgerMaxAttempts    = 10
	LedgerLease          = 2 * time.Minute
	LedgerRetryBase      = 10 * time.Second
	LedgerRetryMax       = 30 * time.Minute
	LedgerRequestTimeout = 15 * time.Second
)

// Player operations
const (
	OperationTimeout      = 10 * time.Second
	ProfileLockIdle       = 5 * time.Minute
	ProfileLockSweep      = time.Minute
	ClaimHistoryDefault   = 20
	ClaimHistoryMax       = 100
	MonitorInterval       = 15 * time.Minute
	SnapshotUploadTimeout = 30 * time.Second
)

// HTTP
const (
	IdentityHeader   = "X-Bomber-Identity"
	RateLimitWindow  = time.Minute
	RateLimitPerUser = 120
	ShutdownTimeout  = 10 * time.Second
)
