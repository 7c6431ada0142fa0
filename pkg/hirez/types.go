package hirez

import (
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Base URLs for the supported platforms. These are plain configuration
// values; pick the one matching the game and platform you query.
const (
	SmitePCURL      = "https://api.smitegame.com/smiteapi.svc"
	SmiteXboxURL    = "https://api.xbox.smitegame.com/smiteapi.svc"
	SmitePS4URL     = "https://api.ps4.smitegame.com/smiteapi.svc"
	PaladinsPCURL   = "https://api.paladins.com/paladinsapi.svc"
	PaladinsXboxURL = "https://api.xbox.paladins.com/paladinsapi.svc"
	PaladinsPS4URL  = "https://api.ps4.paladins.com/paladinsapi.svc"
)

// methodCreateSession is the remote method that issues session ids. It is
// signed exactly like any other method.
const methodCreateSession = "createsession"

var (
	ErrMissingCredentials = errors.New("hirez: dev id and auth key are required")
	ErrMissingMethod      = errors.New("hirez: method name is required")
	ErrSessionCreation    = errors.New("hirez: session creation failed")
	ErrAwaitTimeout       = errors.New("hirez: await timed out")
)

// StatusError is returned when the API responds with a non-2xx status.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("hirez: unexpected status %s", e.Status)
}

// Session is a server-granted authorization token. It is immutable once
// issued; renewal replaces it with a new value.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Valid reports whether the session can still be used at the given instant.
func (s *Session) Valid(now time.Time) bool {
	return s != nil && s.ID != "" && now.Before(s.ExpiresAt)
}

// createSessionResponse mirrors the createsession response payload.
type createSessionResponse struct {
	RetMsg    string `json:"ret_msg"`
	SessionID string `json:"session_id"`
	Timestamp string `json:"timestamp"`
}

// ClientConfig holds the configuration for the Hi-Rez client.
type ClientConfig struct {
	// BaseURL selects the game and platform. Defaults to SmitePCURL.
	BaseURL string

	// DevID and AuthKey are the long-lived credentials issued by Hi-Rez.
	// Both are required.
	DevID   string
	AuthKey string

	// SessionTTL is how long a created session is treated as valid before
	// it is renewed. Hi-Rez documents sessions as lasting around fifteen
	// minutes; confirm against current vendor documentation if sessions
	// expire early. Defaults to 15 minutes.
	SessionTTL time.Duration

	// Delay is the minimum interval between outgoing requests. Zero
	// disables pacing.
	Delay time.Duration

	// Timeout applies to each HTTP request made with the client-owned
	// transport. Ignored when a custom http.Client is supplied.
	Timeout time.Duration

	// RetryCount bounds transport retries on network errors. Responses,
	// including session creation failures, are never retried here.
	RetryCount int

	// Store caches the current session. Defaults to an in-process
	// MemoryStore; use redisstore to share one session across processes.
	Store SessionStore

	// Logger receives session lifecycle events. Nil disables logging.
	Logger *slog.Logger
}

// DefaultConfig returns a default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:    SmitePCURL,
		SessionTTL: 15 * time.Minute,
		Delay:      100 * time.Millisecond,
		Timeout:    30 * time.Second,
		RetryCount: 3,
	}
}
