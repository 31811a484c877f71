// Package session holds the two pieces of process-wide client state: the
// auth token and the theme preference. Both are populated at startup or
// login and cleared at logout; the token is additionally cleared whenever
// the API answers 401 so the next call fails fast to the login flow.
package session

import "sync"

// TokenStore is a concurrency-safe holder for the bearer token.
type TokenStore struct {
	mu  sync.RWMutex
	tok string
}

// Init seeds the store, typically from persisted credentials at startup.
func (s *TokenStore) Init(tok string) { s.Set(tok) }

// Get returns the current token, or "" when logged out.
func (s *TokenStore) Get() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tok
}

// Set stores a fresh token after login or refresh.
func (s *TokenStore) Set(tok string) {
	s.mu.Lock()
	s.tok = tok
	s.mu.Unlock()
}

// Clear drops the token at logout or on an unauthorized response.
func (s *TokenStore) Clear() { s.Set("") }

// Theme values understood by the client.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// ThemeStore is a concurrency-safe holder for the theme preference.
type ThemeStore struct {
	mu    sync.RWMutex
	theme string
}

// Init seeds the preference; empty means ThemeLight.
func (s *ThemeStore) Init(theme string) {
	if theme == "" {
		theme = ThemeLight
	}
	s.Set(theme)
}

// Get returns the current theme, defaulting to ThemeLight.
func (s *ThemeStore) Get() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.theme == "" {
		return ThemeLight
	}
	return s.theme
}

// Set stores the preference.
func (s *ThemeStore) Set(theme string) {
	s.mu.Lock()
	s.theme = theme
	s.mu.Unlock()
}

// Clear resets the preference to the default.
func (s *ThemeStore) Clear() { s.Set("") }

// Process-wide instances. There is exactly one of each per process; neither
// needs explicit teardown.
var (
	Tokens TokenStore
	Theme  ThemeStore
)
