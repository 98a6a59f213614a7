// Package auth provides HMAC-based API key authentication for the HTTP API.
package auth

import (
	"database/sql"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// apiKeyIDKey is the gin context key for the authenticated key id.
const apiKeyIDKey = "api_key_id"

// Queries interface defines database operations needed for authentication.
// Implemented by *db.Queries to allow query loading via LoadQueries().
type Queries interface {
	Get(name string, dest interface{}, args ...interface{}) error
	Exec(name string, args ...interface{}) (sql.Result, error)
}

// Authenticator validates API keys using HMAC-SHA256 signatures.
// Holds in-memory secret map for O(1) lookup and queries for key verification.
type Authenticator struct {
	secrets map[string][]byte
	queries Queries
}

// NewAuthenticator creates an authenticator with HMAC secrets and query interface.
func NewAuthenticator(secrets map[string][]byte, queries Queries) *Authenticator {
	return &Authenticator{
		secrets: secrets,
		queries: queries,
	}
}

// nullTime is a nullable timestamp tolerant of both drivers: postgres
// returns time.Time, sqlite returns RFC3339 TEXT.
type nullTime struct {
	Time  time.Time
	Valid bool
}

func (n *nullTime) Scan(value interface{}) error {
	if value == nil {
		n.Time, n.Valid = time.Time{}, false
		return nil
	}
	switch v := value.(type) {
	case time.Time:
		n.Time, n.Valid = v, true
		return nil
	case string:
		return n.parse(v)
	case []byte:
		return n.parse(string(v))
	default:
		return fmt.Errorf("cannot scan %T into nullTime", value)
	}
}

func (n *nullTime) parse(s string) error {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	n.Time, n.Valid = t, true
	return nil
}

// Authenticate validates an API key and returns the key id on success.
// Returns a specific error for each failure mode.
func (a *Authenticator) Authenticate(apiKey string) (string, error) {
	secretID, _, err := ParseAPIKey(apiKey)
	if err != nil {
		return "", err
	}

	// O(1) lookup of HMAC secret using secret_id from key format
	secret, ok := a.secrets[secretID]
	if !ok {
		return "", ErrUnknownKey
	}

	computedHash := ComputeHMAC(secret, apiKey)

	// Unique constraint on key_hash ensures a single result
	var result struct {
		APIKeyID   string   `db:"api_key_id"`
		RevokedAt  nullTime `db:"revoked_at"`
		LastUsedAt nullTime `db:"last_used_at"`
	}

	err = a.queries.Get("get-api-key-by-hash", &result, computedHash)
	if err == sql.ErrNoRows {
		return "", ErrInvalidKey
	}
	if err != nil {
		return "", fmt.Errorf("database error: %w", err)
	}

	if result.RevokedAt.Valid {
		return "", ErrKeyRevoked
	}

	// Update last_used_at if >1 minute since last update. The throttle
	// reduces write amplification for chatty clients.
	if shouldUpdateLastUsed(result.LastUsedAt) {
		_, _ = a.queries.Exec("update-key-last-used",
			time.Now().UTC().Format(time.RFC3339), result.APIKeyID)
	}

	return result.APIKeyID, nil
}

// shouldUpdateLastUsed implements the 1-minute last_used_at throttle.
func shouldUpdateLastUsed(lastUsed nullTime) bool {
	if !lastUsed.Valid {
		return true
	}
	return time.Since(lastUsed.Time) > time.Minute
}

// Middleware returns a gin handler that authenticates requests via the
// X-Api-Key header and aborts with the matching status on failure.
func (a *Authenticator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := c.GetHeader("X-Api-Key")
		if apiKey == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": ErrMissingKey.Error()})
			return
		}

		keyID, err := a.Authenticate(apiKey)
		if err != nil {
			if err == ErrKeyRevoked {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": err.Error()})
				return
			}
			// Database errors are 503, not 401: the key may well be valid.
			if strings.Contains(err.Error(), "database error") {
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		c.Set(apiKeyIDKey, keyID)
		c.Next()
	}
}

// APIKeyIDFromContext extracts the authenticated key id from a gin
// context. Returns empty string if the request was not authenticated.
func APIKeyIDFromContext(c *gin.Context) string {
	if keyID, ok := c.Get(apiKeyIDKey); ok {
		if s, ok := keyID.(string); ok {
			return s
		}
	}
	return ""
}
