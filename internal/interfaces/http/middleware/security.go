package middleware

import (
	"github.com/gin-gonic/gin"
)

// SecurityConfig holds configuration for security headers
type SecurityConfig struct {
	// FrameOptions is sent as X-Frame-Options; empty disables it
	FrameOptions string

	// CacheControl is sent on every response; empty disables it
	CacheControl string

	// ContentSecurityPolicy is sent as Content-Security-Policy; empty disables it
	ContentSecurityPolicy string
}

// DefaultSecurityConfig returns defaults for a JSON-only API
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		FrameOptions:          "DENY",
		CacheControl:          "no-store",
		ContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none'",
	}
}

// Secure adds security headers to responses using default configuration
func Secure() gin.HandlerFunc {
	return SecureWithConfig(DefaultSecurityConfig())
}

// SecureWithConfig adds security headers to responses with custom configuration
func SecureWithConfig(cfg SecurityConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "no-referrer")
		if cfg.FrameOptions != "" {
			h.Set("X-Frame-Options", cfg.FrameOptions)
		}
		if cfg.CacheControl != "" {
			h.Set("Cache-Control", cfg.CacheControl)
		}
		if cfg.ContentSecurityPolicy != "" {
			h.Set("Content-Security-Policy", cfg.ContentSecurityPolicy)
		}
		c.Next()
	}
}
