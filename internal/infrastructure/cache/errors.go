package cache

import "errors"

var (
	// ErrLeaseNotHeld is returned when releasing a lease whose token no longer matches
	ErrLeaseNotHeld = errors.New("cache: lease not held")

	// ErrRedisUnavailable is returned when Redis is required but cannot be reached
	ErrRedisUnavailable = errors.New("cache: redis unavailable")
)
