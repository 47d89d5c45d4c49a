package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"git.agora.community/agora/agora/src/config"
	"git.agora.community/agora/agora/src/db"
	"git.agora.community/agora/agora/src/jobs"
	"git.agora.community/agora/agora/src/models"
	"git.agora.community/agora/agora/src/oops"
	"git.agora.community/agora/agora/src/utils"
	"github.com/jackc/pgx/v5/pgxpool"
)

const SessionCookieName = "session_id"

// Mutating requests present the session's CSRF token in this header, or in
// this form field for plain HTML forms.
const CSRFHeaderName = "X-CSRF-Token"
const CSRFFieldName = "csrf_token"

const sessionDuration = time.Hour * 24

// NewSessionID generates a session id: 32 random bytes, url-safe.
func NewSessionID() string {
	idBytes := make([]byte, 32)
	_, err := io.ReadFull(rand.Reader, idBytes)
	if err != nil {
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(idBytes)
}

// NewCSRFToken generates a CSRF token: 16 random bytes, hex-encoded.
func NewCSRFToken() string {
	tokenBytes := make([]byte, 16)
	_, err := io.ReadFull(rand.Reader, tokenBytes)
	if err != nil {
		panic(err)
	}
	return hex.EncodeToString(tokenBytes)
}

// SessionStore tracks browser sessions and the CSRF token bound to each one.
// Verification is fail-closed: any doubt about the session or the token means
// the request is rejected.
type SessionStore interface {
	// GetOrCreate returns the live session with this id, minting a fresh
	// CSRF token (and session row) if there is none. Asking again for the
	// same live session returns the same token.
	GetOrCreate(ctx context.Context, sessionID string) (*models.Session, error)

	// Verify reports whether the token exactly matches the one stored for
	// this session. A missing or expired session is a mismatch, not an error.
	Verify(ctx context.Context, sessionID string, csrfToken string) (bool, error)

	// Delete forgets the session. Deleting a session that does not exist is
	// not an error.
	Delete(ctx context.Context, sessionID string) error
}

// NewSessionStore picks the store implementation from config. Anything other
// than "postgres" gets the in-memory store.
func NewSessionStore(conn *pgxpool.Pool) SessionStore {
	if config.Config.Auth.CSRFStore == "postgres" {
		return NewPostgresSessionStore(conn)
	}
	return NewMemorySessionStore()
}

type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
}

var _ SessionStore = &MemorySessionStore{}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]*models.Session),
	}
}

func (s *MemorySessionStore) GetOrCreate(ctx context.Context, sessionID string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session, ok := s.sessions[sessionID]; ok && session.ExpiresAt.After(time.Now()) {
		session.ExpiresAt = time.Now().Add(sessionDuration)
		return session, nil
	}

	session := &models.Session{
		ID:        sessionID,
		CSRFToken: NewCSRFToken(),
		ExpiresAt: time.Now().Add(sessionDuration),
	}
	s.sessions[sessionID] = session
	return session, nil
}

func (s *MemorySessionStore) Verify(ctx context.Context, sessionID string, csrfToken string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[sessionID]
	if !ok || session.ExpiresAt.Before(time.Now()) {
		return false, nil
	}
	return session.CSRFToken == csrfToken, nil
}

func (s *MemorySessionStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionID)
	return nil
}

type PostgresSessionStore struct {
	conn *pgxpool.Pool
}

var _ SessionStore = &PostgresSessionStore{}

func NewPostgresSessionStore(conn *pgxpool.Pool) *PostgresSessionStore {
	return &PostgresSessionStore{conn: conn}
}

func (s *PostgresSessionStore) GetOrCreate(ctx context.Context, sessionID string) (*models.Session, error) {
	session, err := db.QueryOne[models.Session](ctx, s.conn,
		`
		---- GetSession
		SELECT $columns
		FROM sessions
		WHERE id = $1 AND expires_at > CURRENT_TIMESTAMP
		`,
		sessionID,
	)
	if err == nil {
		session.ExpiresAt = time.Now().Add(sessionDuration)
		_, err = s.conn.Exec(ctx,
			`UPDATE sessions SET expires_at = $2 WHERE id = $1`,
			sessionID, session.ExpiresAt,
		)
		if err != nil {
			return nil, oops.New(err, "failed to refresh session expiry")
		}
		return session, nil
	} else if !errors.Is(err, db.NotFound) {
		return nil, oops.New(err, "failed to get session")
	}

	newSession := models.Session{
		ID:        sessionID,
		CSRFToken: NewCSRFToken(),
		ExpiresAt: time.Now().Add(sessionDuration),
	}
	_, err = s.conn.Exec(ctx,
		`
		INSERT INTO sessions (id, csrf_token, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE
			SET csrf_token = EXCLUDED.csrf_token, expires_at = EXCLUDED.expires_at
		`,
		newSession.ID, newSession.CSRFToken, newSession.ExpiresAt,
	)
	if err != nil {
		return nil, oops.New(err, "failed to persist session")
	}

	return &newSession, nil
}

func (s *PostgresSessionStore) Verify(ctx context.Context, sessionID string, csrfToken string) (bool, error) {
	storedToken, err := db.QueryOneScalar[string](ctx, s.conn,
		`
		---- GetSessionCSRFToken
		SELECT csrf_token
		FROM sessions
		WHERE id = $1 AND expires_at > CURRENT_TIMESTAMP
		`,
		sessionID,
	)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return false, nil
		}
		return false, oops.New(err, "failed to look up session")
	}
	return storedToken == csrfToken, nil
}

func (s *PostgresSessionStore) Delete(ctx context.Context, sessionID string) error {
	_, err := s.conn.Exec(ctx, "DELETE FROM sessions WHERE id = $1", sessionID)
	if err != nil {
		return oops.New(err, "failed to delete session")
	}
	return nil
}

func NewSessionCookie(session *models.Session) *http.Cookie {
	return &http.Cookie{
		Name:  SessionCookieName,
		Value: session.ID,

		Domain:  config.Config.Auth.CookieDomain,
		Path:    "/",
		Expires: session.ExpiresAt,

		Secure:   config.Config.Auth.CookieSecure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

var DeleteSessionCookie = &http.Cookie{
	Name:   SessionCookieName,
	Path:   "/",
	MaxAge: -1,
}

func DeleteExpiredSessions(ctx context.Context, conn *pgxpool.Pool) (int64, error) {
	tag, err := conn.Exec(ctx, "DELETE FROM sessions WHERE expires_at <= CURRENT_TIMESTAMP")
	if err != nil {
		return 0, oops.New(err, "failed to delete expired sessions")
	}

	return tag.RowsAffected(), nil
}

func PeriodicallyDeleteExpiredSessions(conn *pgxpool.Pool) *jobs.Job {
	job := jobs.New("periodically delete expired sessions")
	go func() {
		defer job.Finish()

		// Sweep immediately on startup, then hourly.
		t := utils.NewInstaTicker(1 * time.Hour)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				err := func() (err error) {
					defer utils.RecoverPanicAsError(&err)

					n, err := DeleteExpiredSessions(job.Ctx, conn)
					if err == nil {
						if n > 0 {
							job.Logger.Info().Int64("num deleted sessions", n).Msg("Deleted expired sessions")
						}
					} else {
						job.Logger.Error().Err(err).Msg("Failed to delete expired sessions")
					}
					return nil
				}()
				if err != nil {
					job.Logger.Error().Err(err).Msg("Panicked in PeriodicallyDeleteExpiredSessions")
				}
			case <-job.Canceled():
				return
			}
		}
	}()
	return job
}
