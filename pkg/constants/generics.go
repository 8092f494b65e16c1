package constants

import "time"

// RFC 3339 date-time format string.
// Use this format for all date-time serialization and communication with external systems.
const RFC3339DateTimeFormat = "2006-01-02T15:04:05Z07:00"

// ISODateFormat is the calendar-date layout used for birth dates (no time component).
const ISODateFormat = "2006-01-02"

// Default rate limiting configuration
const (
	// DefaultRateLimitRequests is the default number of requests allowed per time window
	DefaultRateLimitRequests = 100
	// DefaultRateLimitWindowMinutes is the default time window for rate limiting
	DefaultRateLimitWindowMinutes = 1
)

// Registration defaults
const (
	// RegistrationRecordKey is the fixed store key holding the current registration record.
	RegistrationRecordKey = "userRegistration"
	// DefaultMinimumAge is the minimum age in whole years required to register.
	DefaultMinimumAge = 18
	// DefaultFormSessionTTLMinutes bounds how long an untouched form session is kept.
	DefaultFormSessionTTLMinutes = 30
)

// DefaultRateLimitWindow returns the default rate limit window duration
func DefaultRateLimitWindow() time.Duration {
	return time.Duration(DefaultRateLimitWindowMinutes) * time.Minute
}

func DefaultFormSessionTTL() time.Duration {
	return time.Duration(DefaultFormSessionTTLMinutes) * time.Minute
}
