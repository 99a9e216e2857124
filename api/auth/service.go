package auth

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"GestAsd/internal/logger"
	"GestAsd/internal/serviceiface"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type UserSession struct {
	SessionID     string `json:"session_id"`
	UserID        string `json:"user_id"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	IsAdmin       bool   `json:"is_admin"`
	LastLoginTime string `json:"last_login_time"`
	ClientIP      string `json:"client_ip"`
}

type AuthService struct {
	db       *sql.DB
	maxUsers int
	sessions map[string]*UserSession // session_id -> session
	byUser   map[string]*UserSession // user_id -> session
	mu       sync.Mutex
	stopCh   chan struct{}
}

func NewAuthService(db *sql.DB, maxUsers int) serviceiface.Service {
	return &AuthService{
		db:       db,
		maxUsers: maxUsers,
		sessions: make(map[string]*UserSession),
		byUser:   make(map[string]*UserSession),
		stopCh:   make(chan struct{}),
	}
}

func (a *AuthService) Name() string { return "auth" }

func (a *AuthService) Start() error {
	go a.sessionCleaner()
	return nil
}

func (a *AuthService) Stop() error {
	close(a.stopCh)
	return nil
}

var (
	ErrBadCredentials = errors.New("invalid credentials")
	ErrUserDisabled   = errors.New("user disabled, contact the administrator")
)

func (a *AuthService) Login(email, password, clientIP string) (*UserSession, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrBadCredentials
	}

	var (
		userID, passwordHash string
		role                 sql.NullString
		isActive             sql.NullBool
	)
	err := a.db.QueryRow(
		`SELECT id, password_hash, role, is_active FROM users WHERE email = $1`,
		email,
	).Scan(&userID, &passwordHash, &role, &isActive)
	if err != nil {
		return nil, ErrBadCredentials
	}
	if isActive.Valid && !isActive.Bool {
		return nil, ErrUserDisabled
	}
	if bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password)) != nil {
		return nil, ErrBadCredentials
	}

	roleName := role.String
	if roleName == "" {
		roleName = "user"
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	// Re-login replaces any previous session for the same user.
	if old, ok := a.byUser[userID]; ok {
		delete(a.sessions, old.SessionID)
		delete(a.byUser, userID)
	}
	if a.maxUsers > 0 && len(a.sessions) >= a.maxUsers {
		return nil, errors.New("maximum concurrent users reached")
	}

	session := &UserSession{
		SessionID:     uuid.NewString(),
		UserID:        userID,
		Email:         email,
		Role:          roleName,
		IsAdmin:       strings.EqualFold(roleName, "admin"),
		LastLoginTime: time.Now().Format(time.RFC3339),
		ClientIP:      clientIP,
	}
	a.sessions[session.SessionID] = session
	a.byUser[userID] = session

	logger.Audit(fmt.Sprintf("User logged in: %s", email))
	return session, nil
}

func (a *AuthService) Logout(sessionID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	session, exists := a.sessions[sessionID]
	if !exists {
		return errors.New("session not found")
	}
	delete(a.sessions, sessionID)
	delete(a.byUser, session.UserID)

	logger.Audit("User logged out: " + session.Email)
	return nil
}

var globalAuthService *AuthService

// SetGlobalAuthService sets the global AuthService instance
func SetGlobalAuthService(svc *AuthService) {
	globalAuthService = svc
}

// GetActiveSessions returns active sessions from the global AuthService
func GetActiveSessions() []*UserSession {
	if globalAuthService == nil {
		return nil
	}
	return globalAuthService.GetActiveSessions()
}

func (a *AuthService) GetActiveSessions() []*UserSession {
	a.mu.Lock()
	defer a.mu.Unlock()
	sessions := make([]*UserSession, 0, len(a.sessions))
	for _, s := range a.sessions {
		sessions = append(sessions, s)
	}
	return sessions
}

func (a *AuthService) sessionCleaner() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-a.stopCh:
			return
		case <-ticker.C:
			a.expireStale(7 * 24 * time.Hour)
		}
	}
}

// expireStale drops sessions whose login is older than maxAge, matching the
// seven day token lifetime the frontend expects.
func (a *AuthService) expireStale(maxAge time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	cutoff := time.Now().Add(-maxAge)
	for id, s := range a.sessions {
		t, err := time.Parse(time.RFC3339, s.LastLoginTime)
		if err != nil || t.Before(cutoff) {
			delete(a.sessions, id)
			delete(a.byUser, s.UserID)
		}
	}
}
