// Package session keeps per-browser state in a signed cookie: the UI
// locale and the labeling token and task id handed over by the labeling
// platform. The cookie is an HS256 JWT; anything that fails to verify is
// treated as an empty session.
package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	gojwt "github.com/golang-jwt/jwt/v5"
)

// Claims is the session content.
type Claims struct {
	gojwt.RegisteredClaims
	Lang           string `json:"lang,omitempty"`
	LabelingToken  string `json:"labeling_token,omitempty"`
	LabelingTaskID string `json:"labeling_task_id,omitempty"`
}

// HasLabeling reports whether a labeling task was handed over.
func (c *Claims) HasLabeling() bool {
	return c.LabelingToken != "" && c.LabelingTaskID != ""
}

// Manager issues and reads session cookies.
type Manager struct {
	cfg Config
	now func() time.Time
}

// NewManager creates a manager.
func NewManager(cfg Config) (*Manager, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Manager{cfg: cfg, now: time.Now}, nil
}

// Load returns the session of the request. A missing, expired or tampered
// cookie yields empty claims.
func (m *Manager) Load(c *gin.Context) *Claims {
	raw, err := c.Cookie(m.cfg.CookieName)
	if err != nil || raw == "" {
		return &Claims{}
	}
	claims, err := m.parse(raw)
	if err != nil {
		return &Claims{}
	}
	return claims
}

// Save re-issues the cookie with claims and a fresh expiry.
func (m *Manager) Save(c *gin.Context, claims *Claims) error {
	token, err := m.sign(claims)
	if err != nil {
		return err
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.cfg.TTL.Seconds()),
		HttpOnly: true,
		Secure:   m.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (m *Manager) sign(claims *Claims) (string, error) {
	now := m.now()
	claims.IssuedAt = gojwt.NewNumericDate(now)
	claims.ExpiresAt = gojwt.NewNumericDate(now.Add(m.cfg.TTL))
	signed, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString([]byte(m.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("session: sign: %w", err)
	}
	return signed, nil
}

func (m *Manager) parse(raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := gojwt.ParseWithClaims(raw, claims, func(*gojwt.Token) (any, error) {
		return []byte(m.cfg.Secret), nil
	},
		gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()}),
		gojwt.WithExpirationRequired(),
		gojwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("session: parse: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("session: invalid token")
	}
	return claims, nil
}
