package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/qurvii/stylesync/pkg/models"
)

const DefaultSessionFile = "session.json"

// Session is the persisted authentication state: the token pair handed
// out by the API plus the signed-in user. It survives process restarts
// the way the browser client kept tokens in local storage.
type Session struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	User         *models.User `json:"user,omitempty"`
	SavedAt      time.Time    `json:"saved_at"`
}

// Store manages session persistence. The token pair is the single
// shared resource of the program: it is read before every request and
// written only by the login/refresh/logout paths.
type Store struct {
	mu       sync.RWMutex
	filePath string
	session  *Session
}

// DefaultPath returns the session file under the user's config dir.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".stylesync", DefaultSessionFile), nil
}

// NewStore creates a new session store. An empty filePath uses the
// default location.
func NewStore(filePath string) (*Store, error) {
	if filePath == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		filePath = p
	}

	return &Store{
		filePath: filePath,
		session:  &Session{},
	}, nil
}

// Load reads the session from disk. A missing file leaves the store
// anonymous.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			s.session = &Session{}
			return nil
		}
		return err
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return fmt.Errorf("failed to parse session file: %w", err)
	}
	s.session = &sess

	return nil
}

// Save writes the session to disk.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveInternal()
}

func (s *Store) saveInternal() error {
	s.session.SavedAt = time.Now()

	dir := filepath.Dir(s.filePath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s.session, "", "  ")
	if err != nil {
		return err
	}

	// Tokens only; 0600 keeps them out of other users' reach.
	return os.WriteFile(s.filePath, data, 0600)
}

// Clear removes the stored session, returning the store to anonymous.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = &Session{}
	if err := os.Remove(s.filePath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Authenticated reports whether a token pair is present.
func (s *Store) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.AccessToken != ""
}

// Tokens returns the current access/refresh token pair.
func (s *Store) Tokens() (access, refresh string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.AccessToken, s.session.RefreshToken
}

// User returns the signed-in user, or nil when anonymous.
func (s *Store) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.User
}

// SetTokens stores a new token pair and persists it. An empty refresh
// token keeps the previous one (the API may rotate only the access
// token).
func (s *Store) SetTokens(access, refresh string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session.AccessToken = access
	if refresh != "" {
		s.session.RefreshToken = refresh
	}
	return s.saveInternal()
}

// SetUser stores the signed-in user and persists it.
func (s *Store) SetUser(user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session.User = user
	return s.saveInternal()
}

// AccessTokenExpiry reads the exp claim of the stored access token
// without verifying the signature; the server remains the authority on
// validity, this is for display only.
func (s *Store) AccessTokenExpiry() (time.Time, error) {
	s.mu.RLock()
	token := s.session.AccessToken
	s.mu.RUnlock()

	if token == "" {
		return time.Time{}, fmt.Errorf("no access token stored")
	}

	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, fmt.Errorf("failed to parse access token: %w", err)
	}

	if claims.ExpiresAt == nil {
		return time.Time{}, fmt.Errorf("access token has no expiry claim")
	}
	return claims.ExpiresAt.Time, nil
}
