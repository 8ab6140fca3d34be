package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sort"
	"time"

	"github.com/google/uuid"

	"smartentrance/internal/models"
)

var ErrNotFound = errors.New("session not found")

// Cookie is a backend cookie replayed on the user's behalf.
type Cookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Session is the gateway's record of one signed-in browser.
type Session struct {
	ID             string          `json:"id"`
	UserID         int64           `json:"userId"`
	Email          string          `json:"email"`
	Role           models.UserRole `json:"role"`
	BackendCookies []Cookie        `json:"backendCookies"`
	CreatedAt      time.Time       `json:"createdAt"`
	ExpiresAt      time.Time       `json:"expiresAt"`
}

// Store persists sessions.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}

// New starts a session for user that lives for ttl.
func New(user models.User, ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

func (s *Session) IsManager() bool {
	return models.User{Role: s.Role}.IsManager()
}

// NewJar returns a cookie jar preloaded with cookies for the backend at base.
func NewJar(base *url.URL, cookies []Cookie) http.CookieJar {
	// cookiejar.New only fails for a broken PublicSuffixList, and none is passed.
	jar, _ := cookiejar.New(nil)
	if len(cookies) == 0 {
		return jar
	}

	hc := make([]*http.Cookie, 0, len(cookies))
	for _, c := range cookies {
		hc = append(hc, &http.Cookie{Name: c.Name, Value: c.Value, Path: "/"})
	}
	jar.SetCookies(base, hc)
	return jar
}

// Capture reads the jar's current backend cookies into the session and reports whether
// they changed.
func (s *Session) Capture(jar http.CookieJar, base *url.URL) bool {
	current := FromJar(jar, base)
	if equal(current, s.BackendCookies) {
		return false
	}
	s.BackendCookies = current
	return true
}

// FromJar lists the cookies jar would send to base, sorted by name.
func FromJar(jar http.CookieJar, base *url.URL) []Cookie {
	var out []Cookie
	for _, c := range jar.Cookies(base) {
		out = append(out, Cookie{Name: c.Name, Value: c.Value})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func equal(a, b []Cookie) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
