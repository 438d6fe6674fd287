package utils

import (
	"time"
)

// Token and session time constants
const (
	// AccessTokenTTL is the time-to-live for access tokens (24 hours)
	AccessTokenTTL = 24 * time.Hour

	// AccessTokenTTLSeconds is the time-to-live for access tokens in seconds (86400 seconds = 24 hours)
	AccessTokenTTLSeconds = 86400
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)

// Pipeline batch limits
const (
	// MaxContactsPerScrape caps how many new contacts a single scrape run stores
	MaxContactsPerScrape = 100

	// MaxContactsPerGeneration caps how many contacts a single generation run processes
	MaxContactsPerGeneration = 50

	// MaxEmailsPerDispatch caps how many outbox emails a single dispatch run sends
	MaxEmailsPerDispatch = 50

	// MaxJobsPerRun caps how many queued jobs a single runner pass executes
	MaxJobsPerRun = 10
)

// Pipeline pacing delays
const (
	// ScrapePageDelay is the pause between agent search result pages
	ScrapePageDelay = 2 * time.Second

	// ScrapeDetailDelay is the pause between agent detail fetches
	ScrapeDetailDelay = 1 * time.Second

	// DispatchEmailDelay is the pause between consecutive email sends
	DispatchEmailDelay = 1 * time.Second

	// JobExecutionDelay is the pause between consecutive job executions
	JobExecutionDelay = 500 * time.Millisecond

	// ScrapeRequestTimeout bounds scrape and generation requests, which page
	// through a rate-limited external API
	ScrapeRequestTimeout = 10 * time.Minute

	// DispatchRequestTimeout bounds a single outbox drain request
	DispatchRequestTimeout = 5 * time.Minute
)

// Redis key prefixes and lock TTLs
const (
	// DispatchLockKeyPrefix namespaces the per-user outbox dispatch locks
	DispatchLockKeyPrefix = "realtyreach:lock:dispatch:"

	// ScrapeLockKeyPrefix namespaces the per-campaign scrape locks
	ScrapeLockKeyPrefix = "realtyreach:lock:scrape:"

	// SettingsCacheKeyPrefix namespaces the cached scraper credentials
	SettingsCacheKeyPrefix = "realtyreach:cache:rapidapi:"

	// DispatchLockTTL bounds how long a crashed dispatcher blocks a user's queue
	DispatchLockTTL = 5 * time.Minute

	// ScrapeLockTTL bounds how long a crashed scraper blocks a campaign
	ScrapeLockTTL = 15 * time.Minute

	// SettingsCacheTTL bounds staleness of cached scraper credentials
	SettingsCacheTTL = 10 * time.Minute
)

// Stale row reconciliation
const (
	// StaleSendingAge is how old a sending outbox row must be before requeue
	StaleSendingAge = 10 * time.Minute

	// StaleProcessingAge is how old a processing job must be before requeue
	StaleProcessingAge = 15 * time.Minute
)

// Email constants
const (
	// DefaultSubject is used when a campaign has no subject lines
	DefaultSubject = "No Subject"
)
