// Package auth provides a self-hosted auth provider for deployments that run
// against Postgres directly instead of the hosted backend. Credentials live in
// an auth_users table; a profiles row is created from the signup metadata the
// way the hosted backend does it server-side.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"campuseventhub/internal/domain"
)

const (
	minPasswordLen = 8
	// Postgres error code for unique_violation.
	pqUniqueViolation = "23505"
)

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// LocalProvider implements domain.AuthProvider with local credential storage
// and HS256 session tokens.
type LocalProvider struct {
	db     *sql.DB
	secret []byte
	expiry time.Duration

	mu      sync.Mutex
	session *domain.Session
	subs    map[int]func(*domain.Session)
	nextSub int
}

// NewLocalProvider returns a LocalProvider signing sessions with secret.
func NewLocalProvider(db *sql.DB, secret string, expiry time.Duration) *LocalProvider {
	return &LocalProvider{
		db:     db,
		secret: []byte(secret),
		expiry: expiry,
		subs:   make(map[int]func(*domain.Session)),
	}
}

func (p *LocalProvider) SignUp(ctx context.Context, email, password string, meta domain.SignUpMetadata) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if !emailRegexp.MatchString(email) {
		return fmt.Errorf("invalid email format: %w", domain.ErrInvalidCredentials)
	}
	if len(password) < minPasswordLen {
		return fmt.Errorf("password must be at least %d characters: %w", minPasswordLen, domain.ErrWeakPassword)
	}

	salt, err := generateSalt()
	if err != nil {
		return err
	}
	hash, err := hashPassword(salt, password)
	if err != nil {
		return err
	}

	role := meta.Role
	if role != domain.RoleAdmin {
		role = domain.RoleUser
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin signup: %w", err)
	}
	defer tx.Rollback()

	userID := uuid.NewString()
	now := time.Now()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO auth_users (id, email, password_hash, salt, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, userID, email, hash, salt, now)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
			return fmt.Errorf("%s is already registered: %w", email, domain.ErrDuplicateEmail)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO profiles (id, first_name, last_name, role)
		VALUES ($1, $2, $3, $4)
	`, userID, meta.FirstName, meta.LastName, string(role))
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit signup: %w", err)
	}
	return nil
}

func (p *LocalProvider) SignIn(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	var userID, hash, salt string
	err := p.db.QueryRowContext(ctx, `
		SELECT id, password_hash, salt FROM auth_users WHERE email = $1
	`, email).Scan(&userID, &hash, &salt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrInvalidCredentials
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}
	if err := comparePassword(hash, salt, password); err != nil {
		return domain.ErrInvalidCredentials
	}

	token, err := issueToken(p.secret, userID, email, p.expiry)
	if err != nil {
		return err
	}
	p.setSession(&domain.Session{
		AccessToken: token,
		UserID:      userID,
		Email:       email,
		ExpiresAt:   time.Now().Add(p.expiry),
	})
	return nil
}

func (p *LocalProvider) SignOut(ctx context.Context) error {
	p.setSession(nil)
	return nil
}

func (p *LocalProvider) CurrentSession() *domain.Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session == nil {
		return nil
	}
	s := *p.session
	return &s
}

// Restore re-establishes a session from a previously issued token, verifying
// signature and expiry. Used at startup when a token was persisted.
func (p *LocalProvider) Restore(tokenString string) error {
	claims, err := parseToken(p.secret, tokenString)
	if err != nil {
		return err
	}
	p.setSession(&domain.Session{
		AccessToken: tokenString,
		UserID:      claims.Subject,
		Email:       claims.Email,
		ExpiresAt:   claims.ExpiresAt.Time,
	})
	return nil
}

func (p *LocalProvider) OnSessionChange(cb func(*domain.Session)) func() {
	p.mu.Lock()
	id := p.nextSub
	p.nextSub++
	p.subs[id] = cb
	var current *domain.Session
	if p.session != nil {
		s := *p.session
		current = &s
	}
	p.mu.Unlock()

	cb(current)

	return func() {
		p.mu.Lock()
		delete(p.subs, id)
		p.mu.Unlock()
	}
}

func (p *LocalProvider) setSession(s *domain.Session) {
	p.mu.Lock()
	p.session = s
	cbs := make([]func(*domain.Session), 0, len(p.subs))
	for _, cb := range p.subs {
		cbs = append(cbs, cb)
	}
	p.mu.Unlock()
	for _, cb := range cbs {
		var copied *domain.Session
		if s != nil {
			cp := *s
			copied = &cp
		}
		cb(copied)
	}
}
