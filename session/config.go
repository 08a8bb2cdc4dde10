package session

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

const (
	DefaultCookieName = "whisperdesk_session"
	DefaultTTL        = time.Hour
	minSecretLength   = 16
)

// Config configures the session cookie.
type Config struct {
	// Secret signs the cookie. When empty a random secret is generated per
	// process, so sessions do not survive restarts.
	Secret     string        `yaml:"secret" mapstructure:"secret"`
	CookieName string        `yaml:"cookie_name" mapstructure:"cookie_name"`
	TTL        time.Duration `yaml:"ttl" mapstructure:"ttl" validate:"gte=0"`
	// Secure sets the cookie's Secure attribute; enable behind TLS.
	Secure bool `yaml:"secure" mapstructure:"secure"`
}

// ApplyDefaults fills zero-valued fields. A missing secret is replaced by
// 32 random bytes.
func (c *Config) ApplyDefaults() {
	if c.CookieName == "" {
		c.CookieName = DefaultCookieName
	}
	if c.TTL == 0 {
		c.TTL = DefaultTTL
	}
	if c.Secret == "" {
		c.Secret = randomSecret()
	}
}

// Validate rejects secrets too short to sign with.
func (c *Config) Validate() error {
	if len(c.Secret) < minSecretLength {
		return fmt.Errorf("session.secret must be at least %d characters", minSecretLength)
	}
	return nil
}

func randomSecret() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
