package utility

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/labstack/echo/v4"
)

const (
	rateLimitWindow      = 15 * time.Minute
	rateLimitMaxAttempts = 10
)

var (
	// ipAttempts tracks login attempts per IP. Entries expire with the
	// window so idle addresses age out instead of accumulating forever.
	ipAttempts   = expirable.NewLRU[string, []time.Time](4096, nil, rateLimitWindow)
	ipAttemptsMu sync.Mutex
)

// GetRealIP is a helper function to get the user's real IP address.
// It checks proxy headers first.
func GetRealIP(c echo.Context) string {
	// X-Forwarded-For can be a list: "client, proxy1, proxy2"
	xForwardedFor := c.Request().Header.Get("X-Forwarded-For")
	if xForwardedFor != "" {
		ips := strings.Split(xForwardedFor, ",")
		return strings.TrimSpace(ips[0])
	}

	xRealIP := c.Request().Header.Get("X-Real-IP")
	if xRealIP != "" {
		return xRealIP
	}

	return c.RealIP()
}

// CheckIPRateLimit rejects an IP that exceeded the attempt budget inside the
// rolling window.
func CheckIPRateLimit(ip string) error {
	ipAttemptsMu.Lock()
	defer ipAttemptsMu.Unlock()

	now := time.Now()
	attempts, _ := ipAttempts.Get(ip)

	var recent []time.Time
	for _, t := range attempts {
		if now.Sub(t) < rateLimitWindow {
			recent = append(recent, t)
		}
	}

	if len(recent) >= rateLimitMaxAttempts {
		return fmt.Errorf("too many attempts, please try again later")
	}

	recent = append(recent, now)
	ipAttempts.Add(ip, recent)
	return nil
}

// ParseIntParam parses a query parameter with a fallback default. Negative
// values fall back too.
func ParseIntParam(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		return fallback
	}
	return parsed
}

// GetUsernameFromContext safely retrieves the authenticated username set by
// the JWT middleware.
func GetUsernameFromContext(c echo.Context) (string, error) {
	username, ok := c.Get("username").(string)
	if !ok || username == "" {
		return "", fmt.Errorf("username not found in context")
	}
	return username, nil
}
