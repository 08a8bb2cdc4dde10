package session

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func init() { gin.SetMode(gin.TestMode) }

func newManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(Config{Secret: "0123456789abcdef0123456789abcdef"})
	if err != nil {
		t.Fatal(err)
	}
	return m
}

// issue saves claims and returns the Set-Cookie header.
func issue(t *testing.T, m *Manager, claims *Claims) *http.Cookie {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	if err := m.Save(c, claims); err != nil {
		t.Fatal(err)
	}
	cookies := w.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("cookies = %v", cookies)
	}
	return cookies[0]
}

func load(m *Manager, cookie *http.Cookie) *Claims {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	if cookie != nil {
		c.Request.AddCookie(cookie)
	}
	return m.Load(c)
}

func TestSaveAndLoad(t *testing.T) {
	m := newManager(t)
	cookie := issue(t, m, &Claims{Lang: "zh", LabelingToken: "mock_t", LabelingTaskID: "task-1"})

	if !cookie.HttpOnly || cookie.SameSite != http.SameSiteLaxMode || cookie.MaxAge != 3600 || cookie.Path != "/" {
		t.Errorf("cookie attributes = %+v", cookie)
	}

	got := load(m, cookie)
	if got.Lang != "zh" || !got.HasLabeling() || got.LabelingTaskID != "task-1" {
		t.Errorf("loaded = %+v", got)
	}
}

func TestLoadMissingCookie(t *testing.T) {
	got := load(newManager(t), nil)
	if got == nil || got.Lang != "" || got.HasLabeling() {
		t.Errorf("missing cookie should give empty claims, got %+v", got)
	}
}

func TestLoadRejectsTampering(t *testing.T) {
	m := newManager(t)
	cookie := issue(t, m, &Claims{Lang: "en", LabelingToken: "mock_t", LabelingTaskID: "1"})

	parts := strings.Split(cookie.Value, ".")
	// Swap in a payload signed by nobody.
	forged := issue(t, newManagerWithSecret(t, "another-secret-another-secret!!"), &Claims{LabelingToken: "stolen", LabelingTaskID: "9"})
	fparts := strings.Split(forged.Value, ".")

	tests := map[string]string{
		"payload swapped": parts[0] + "." + fparts[1] + "." + parts[2],
		"other secret":    forged.Value,
		"garbage":         "not-a-jwt",
		"alg none":        "eyJhbGciOiJub25lIiwidHlwIjoiSldUIn0." + parts[1] + ".",
	}
	for name, value := range tests {
		t.Run(name, func(t *testing.T) {
			got := load(m, &http.Cookie{Name: DefaultCookieName, Value: value})
			if got.HasLabeling() || got.Lang != "" {
				t.Errorf("tampered cookie accepted: %+v", got)
			}
		})
	}
}

func newManagerWithSecret(t *testing.T, secret string) *Manager {
	t.Helper()
	m, err := NewManager(Config{Secret: secret})
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestLoadRejectsExpired(t *testing.T) {
	m := newManager(t)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	cookie := issue(t, m, &Claims{Lang: "zh"})

	m.now = time.Now
	if got := load(m, cookie); got.Lang != "" {
		t.Errorf("expired session accepted: %+v", got)
	}
}

func TestConfig(t *testing.T) {
	var a, b Config
	a.ApplyDefaults()
	b.ApplyDefaults()
	if len(a.Secret) != 64 || a.Secret == b.Secret {
		t.Error("random secrets should be 32 hex-encoded bytes and differ")
	}
	if a.TTL != time.Hour || a.CookieName != DefaultCookieName {
		t.Errorf("defaults = %+v", a)
	}
	if err := (&Config{Secret: "short"}).Validate(); err == nil {
		t.Error("short secret accepted")
	}
}
