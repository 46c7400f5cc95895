package auth

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/toolhubapp/toolhub-backend/internal/db"
	"github.com/toolhubapp/toolhub-backend/internal/utils"
)

// CreateSession mints a durable session for the account and returns its id.
func CreateSession(accountID uint) (string, error) {
	session := Session{
		ID:        uuid.NewString(),
		AccountID: accountID,
		CreatedAt: time.Now(),
		LastSeen:  time.Now(),
	}
	if err := db.DB.Create(&session).Error; err != nil {
		return "", err
	}
	return session.ID, nil
}

// ResolveSession looks a session id up. The second return is false when the
// id does not map to any session.
func ResolveSession(sessionID string) (uint, bool) {
	var session Session
	if err := db.DB.First(&session, "id = ?", sessionID).Error; err != nil {
		return 0, false
	}
	return session.AccountID, true
}

// Touch bumps last_seen. Best-effort: failures are swallowed on purpose, a
// stale last_seen must never fail a request.
func Touch(sessionID string) {
	db.DB.Model(&Session{}).Where("id = ?", sessionID).
		Update("last_seen", time.Now())
}

// DestroySession deletes the session row. Missing rows are not an error.
func DestroySession(sessionID string) {
	db.DB.Delete(&Session{}, "id = ?", sessionID)
}

// LegacyTokenStore maps deprecated bearer tokens to accounts during the
// cookie migration window. Implementations must be safe for concurrent use.
//
// The store is process-local by design: restarting the server invalidates
// all remaining legacy tokens, which is the retirement path for the bridge.
type LegacyTokenStore interface {
	// Lookup returns the account for a legacy token, if known.
	Lookup(token string) (accountID uint, ok bool)
	// MarkUpgraded records the session minted for a token so repeated
	// presentations of the same token reuse it instead of minting again.
	MarkUpgraded(token, sessionID string)
	// Upgraded returns the session previously minted for the token, if any.
	Upgraded(token string) (sessionID string, ok bool)
	// Add registers a token. Returns an error once the store is full.
	Add(token string, accountID uint) error
}

// ErrLegacyStoreFull is returned when the bounded legacy store refuses a new
// token. Refusing beats silent eviction: an evicted token would strand its
// holder with no way to upgrade.
var ErrLegacyStoreFull = errors.New("legacy token store at capacity")

type legacyEntry struct {
	accountID uint
	sessionID string
}

// MemoryLegacyStore is the in-process implementation. Entries are never
// pruned; the bridge is expected to be retired after the migration window.
type MemoryLegacyStore struct {
	mu       sync.Mutex
	capacity int
	tokens   map[string]*legacyEntry
}

func NewMemoryLegacyStore(capacity int) *MemoryLegacyStore {
	return &MemoryLegacyStore{
		capacity: capacity,
		tokens:   make(map[string]*legacyEntry),
	}
}

func (s *MemoryLegacyStore) Lookup(token string) (uint, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.tokens[token]
	if !ok {
		return 0, false
	}
	return e.accountID, true
}

func (s *MemoryLegacyStore) MarkUpgraded(token, sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.tokens[token]; ok {
		e.sessionID = sessionID
	}
}

func (s *MemoryLegacyStore) Upgraded(token string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.tokens[token]
	if !ok || e.sessionID == "" {
		return "", false
	}
	return e.sessionID, true
}

func (s *MemoryLegacyStore) Add(token string, accountID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tokens[token]; ok {
		return nil
	}
	if len(s.tokens) >= s.capacity {
		return ErrLegacyStoreFull
	}
	s.tokens[token] = &legacyEntry{accountID: accountID}
	return nil
}

// Legacy is the injected store instance. Tests swap it out.
var Legacy LegacyTokenStore = NewMemoryLegacyStore(10000)

// ResolveCredential dispatches over the two credential carriers.
//
// Resolution order: a cookie session id wins when it resolves (and is
// touched); otherwise a known legacy token is upgraded by minting a modern
// session, at most once per token per process lifetime. The minted session
// id is returned so the caller can set the cookie; it is empty when the
// cookie path succeeded.
func ResolveCredential(sessionID, legacyToken string) (accountID uint, minted string, err error) {
	if sessionID != "" {
		if id, ok := ResolveSession(sessionID); ok {
			Touch(sessionID)
			return id, "", nil
		}
	}

	if legacyToken != "" {
		if id, ok := Legacy.Lookup(legacyToken); ok {
			// Idempotent upgrade: reuse the session minted on a prior visit,
			// unless it has since been destroyed (logout), in which case a
			// fresh one is minted so the handed-back cookie always resolves.
			if sid, ok := Legacy.Upgraded(legacyToken); ok {
				if _, live := ResolveSession(sid); live {
					return id, sid, nil
				}
			}
			sid, err := CreateSession(id)
			if err != nil {
				return 0, "", err
			}
			Legacy.MarkUpgraded(legacyToken, sid)
			return id, sid, nil
		}
	}

	return 0, "", ErrUnauthenticated
}

// SessionInfo adapts the session manager to the middleware's resolver
// interface without the middleware importing this package's internals.
type SessionInfo struct{}

func (SessionInfo) Resolve(sessionID, legacyToken string) (utils.SessionData, string, error) {
	id, minted, err := ResolveCredential(sessionID, legacyToken)
	if err != nil {
		return utils.SessionData{}, "", err
	}
	return utils.SessionData{AccountID: id, LastSeen: time.Now()}, minted, nil
}
