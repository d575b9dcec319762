package utils

import (
	"time"
)

// Token and session time constants
const (
	// AccessTokenTTL is the time-to-live for API access tokens (24 hours)
	AccessTokenTTL = 24 * time.Hour
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400

	// SerialLookupRateLimit is the per-IP budget per minute for the prefix and serial lookup endpoints
	SerialLookupRateLimit = 30
)

// Sequence store transaction budgets
const (
	// SequenceMaxWait bounds how long an allocation waits on a locked counter row
	SequenceMaxWait = 5 * time.Second

	// SequenceTimeout bounds the total duration of one allocation transaction
	SequenceTimeout = 10 * time.Second
)

// Request context keys
type contextKey string

const (
	RequestIDKey  contextKey = "request_id"
	UserAgentKey  contextKey = "user_agent"
	IPAddressKey  contextKey = "ip_address"
	EndpointKey   contextKey = "endpoint"
	TimeoutKey    contextKey = "timeout"
	CancelFuncKey contextKey = "cancel_func"
)
