// Package auth handles login, session tokens and user creation. Sessions are
// held in memory; a restart logs everyone out, which is acceptable for an
// internal tool.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mgtools/nexo/internal/store"
)

// ErrInvalidCredentials is returned for unknown emails and wrong passwords
// alike, so login failures do not reveal which accounts exist.
var ErrInvalidCredentials = errors.New("credenciais inválidas")

// SessionUser is the identity attached to an authenticated request.
type SessionUser struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	Nome       string `json:"nome"`
	Role       string `json:"role"`
	VendedorID *int64 `json:"vendedor_id,omitempty"`
}

// IsAdmin reports whether the user can manage users and sellers.
func (u SessionUser) IsAdmin() bool {
	return u.Role == "admin"
}

type session struct {
	user    SessionUser
	expires time.Time
}

// Manager validates credentials against the user store and tracks sessions.
type Manager struct {
	store *store.Store
	ttl   time.Duration

	mu       sync.RWMutex
	sessions map[string]session
}

// NewManager creates a session manager. A non-positive ttl defaults to 8h.
func NewManager(st *store.Store, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	return &Manager{
		store:    st,
		ttl:      ttl,
		sessions: make(map[string]session),
	}
}

// Login checks the password against the stored bcrypt hash and issues a
// session token.
func (m *Manager) Login(ctx context.Context, email, password string) (string, SessionUser, error) {
	u, err := m.store.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", SessionUser{}, ErrInvalidCredentials
		}
		return "", SessionUser{}, fmt.Errorf("lookup user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", SessionUser{}, ErrInvalidCredentials
	}

	su := SessionUser{
		ID:         u.ID,
		Email:      u.Email,
		Nome:       u.Nome,
		Role:       u.Role,
		VendedorID: u.VendedorID,
	}

	token := uuid.NewString()
	m.mu.Lock()
	m.sessions[token] = session{user: su, expires: time.Now().Add(m.ttl)}
	m.mu.Unlock()

	return token, su, nil
}

// Logout invalidates a token. Unknown tokens are ignored.
func (m *Manager) Logout(token string) {
	m.mu.Lock()
	delete(m.sessions, token)
	m.mu.Unlock()
}

// UserForToken resolves a session token, expiring it lazily.
func (m *Manager) UserForToken(token string) (SessionUser, bool) {
	m.mu.RLock()
	s, ok := m.sessions[token]
	m.mu.RUnlock()
	if !ok {
		return SessionUser{}, false
	}

	if time.Now().After(s.expires) {
		m.mu.Lock()
		delete(m.sessions, token)
		m.mu.Unlock()
		return SessionUser{}, false
	}
	return s.user, true
}

// CreateUser hashes the password and stores a new user with a fresh UUID.
func (m *Manager) CreateUser(ctx context.Context, email, nome, password, role string, vendedorID *int64) (store.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return store.User{}, fmt.Errorf("hash password: %w", err)
	}

	return m.store.CreateUser(ctx, store.User{
		ID:           uuid.NewString(),
		Email:        email,
		Nome:         nome,
		Role:         role,
		VendedorID:   vendedorID,
		PasswordHash: string(hash),
	})
}
