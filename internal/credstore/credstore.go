// Package credstore persists the login credential between runs.
// The record lives in ~/.config/cadence/credential.toml with 0600 permissions.
package credstore

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// ErrNotFound is returned by Load when no credential has been saved.
var ErrNotFound = errors.New("credstore: no saved credential")

const (
	defaultPath = "~/.config/cadence/credential.toml"
	// DefaultTTL applies when the cookie carries no usable expiry.
	DefaultTTL = 30 * 24 * time.Hour

	sessionCookie = "MUSIC_U"
)

// Record is a saved login.
type Record struct {
	Cookie    string    `toml:"cookie"`
	ExpiresAt time.Time `toml:"expires_at"`
	UserID    int64     `toml:"user_id"`
	Nickname  string    `toml:"nickname"`
	SavedAt   time.Time `toml:"saved_at"`
}

// NewRecord builds a record for cookie with its expiry derived from the
// cookie attributes.
func NewRecord(cookie string, now time.Time, fallback time.Duration) Record {
	return Record{
		Cookie:    strings.TrimSpace(cookie),
		ExpiresAt: ExpiryFromCookie(cookie, now, fallback),
		SavedAt:   now,
	}
}

// Valid reports whether the record holds a cookie that has not expired.
func (r Record) Valid(now time.Time) bool {
	return strings.TrimSpace(r.Cookie) != "" && now.Before(r.ExpiresAt)
}

// CookieHeader renders the cookie list as a request Cookie header value.
func (r Record) CookieHeader() string {
	cookies := parseCookies(r.Cookie)
	if len(cookies) == 0 {
		return strings.TrimSpace(r.Cookie)
	}
	pairs := make([]string, 0, len(cookies))
	for _, c := range cookies {
		if c.Value == "" {
			continue
		}
		pairs = append(pairs, c.Name+"="+c.Value)
	}
	return strings.Join(pairs, "; ")
}

// ExpiryFromCookie returns when the MUSIC_U session cookie expires. The API
// joins several Set-Cookie values with ";;". Without a usable Max-Age or
// Expires attribute the expiry is now+fallback.
func ExpiryFromCookie(cookie string, now time.Time, fallback time.Duration) time.Time {
	if fallback <= 0 {
		fallback = DefaultTTL
	}
	for _, c := range parseCookies(cookie) {
		if c.Name != sessionCookie {
			continue
		}
		switch {
		case c.MaxAge > 0:
			return now.Add(time.Duration(c.MaxAge) * time.Second)
		case c.MaxAge < 0:
			return now
		case !c.Expires.IsZero():
			return c.Expires
		}
	}
	return now.Add(fallback)
}

func parseCookies(raw string) []*http.Cookie {
	var cookies []*http.Cookie
	for _, part := range strings.Split(raw, ";;") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		c, err := http.ParseSetCookie(part)
		if err != nil {
			continue
		}
		cookies = append(cookies, c)
	}
	return cookies
}

// Store reads and writes the credential file.
type Store struct {
	path string
}

// DefaultPath returns the default credential file path.
func DefaultPath() string {
	return defaultPath
}

// New returns a Store at path, or the default path when empty.
func New(path string) (*Store, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return nil, fmt.Errorf("resolve credential path: %w", err)
	}
	return &Store{path: resolved}, nil
}

// Path returns the resolved file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the saved record.
func (s *Store) Load() (Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("read credential: %w", err)
	}

	var rec Record
	if err := toml.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("parse credential: %w", err)
	}
	if strings.TrimSpace(rec.Cookie) == "" {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

// Save writes rec, creating directories as needed.
func (s *Store) Save(rec Record) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create credential dir: %w", err)
	}

	data, err := toml.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal credential: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write credential: %w", err)
	}
	return nil
}

// Clear removes the saved record. A missing file is not an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove credential: %w", err)
	}
	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
