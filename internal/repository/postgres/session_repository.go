package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"storefront-gateway/internal/domain"
	"storefront-gateway/internal/observability"
	"storefront-gateway/internal/security"
)

// SessionRepository is the durable half of the session state: the upstream
// API token and user record survive gateway restarts here. Tokens are
// sealed with the token cipher before they touch the table.
type SessionRepository struct {
	db     *sql.DB
	cipher *security.TokenCipher

	createStmt        *sql.Stmt
	getByIDStmt       *sql.Stmt
	updateUserStmt    *sql.Stmt
	deleteStmt        *sql.Stmt
	deleteExpiredStmt *sql.Stmt
}

// NewSessionRepository creates a SessionRepository with prepared statements.
// Returns an error if statement preparation fails.
func NewSessionRepository(db *sql.DB, cipher *security.TokenCipher) (*SessionRepository, error) {
	repo := &SessionRepository{db: db, cipher: cipher}

	var err error
	repo.createStmt, err = db.Prepare(`
		INSERT INTO sessions (id, user_id, display_name, email, role, api_token, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare create statement: %w", err)
	}

	repo.getByIDStmt, err = db.Prepare(`
		SELECT id, user_id, display_name, email, role, api_token, expires_at, created_at
		FROM sessions
		WHERE id = $1 AND expires_at > $2
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare getByID statement: %w", err)
	}

	repo.updateUserStmt, err = db.Prepare(`
		UPDATE sessions SET display_name = $2, email = $3, role = $4 WHERE id = $1
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare updateUser statement: %w", err)
	}

	repo.deleteStmt, err = db.Prepare(`DELETE FROM sessions WHERE id = $1`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare delete statement: %w", err)
	}

	repo.deleteExpiredStmt, err = db.Prepare(`DELETE FROM sessions WHERE expires_at <= $1`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare deleteExpired statement: %w", err)
	}

	return repo, nil
}

func (r *SessionRepository) Create(ctx context.Context, session *domain.Session) error {
	sealed, err := r.cipher.Seal(session.APIToken)
	if err != nil {
		return fmt.Errorf("failed to seal api token: %w", err)
	}

	start := time.Now()
	err = r.createStmt.QueryRowContext(ctx,
		session.ID,
		session.UserID,
		session.DisplayName,
		session.Email,
		session.Role,
		sealed,
		session.ExpiresAt,
	).Scan(&session.CreatedAt)
	observability.DBQueryDuration.WithLabelValues("insert", "sessions").Observe(time.Since(start).Seconds())

	if IsUniqueViolation(err, "sessions_pkey") {
		return fmt.Errorf("session id collision for %s: %w", session.ID, err)
	}
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (r *SessionRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	session := &domain.Session{}
	var sealed string

	start := time.Now()
	err := r.getByIDStmt.QueryRowContext(ctx, id, time.Now()).Scan(
		&session.ID,
		&session.UserID,
		&session.DisplayName,
		&session.Email,
		&session.Role,
		&sealed,
		&session.ExpiresAt,
		&session.CreatedAt,
	)
	observability.DBQueryDuration.WithLabelValues("select", "sessions").Observe(time.Since(start).Seconds())

	if err == sql.ErrNoRows {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session by id: %w", err)
	}

	session.APIToken, err = r.cipher.Open(sealed)
	if err != nil {
		// A row we cannot decrypt is useless; treat it as absent.
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// UpdateUser writes back the user record the upstream returned from a
// profile update, keeping the durable copy in sync.
func (r *SessionRepository) UpdateUser(ctx context.Context, id, displayName, email, role string) error {
	start := time.Now()
	_, err := r.updateUserStmt.ExecContext(ctx, id, displayName, email, role)
	observability.DBQueryDuration.WithLabelValues("update", "sessions").Observe(time.Since(start).Seconds())

	if err != nil {
		return fmt.Errorf("failed to update session user: %w", err)
	}
	return nil
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	start := time.Now()
	_, err := r.deleteStmt.ExecContext(ctx, id)
	observability.DBQueryDuration.WithLabelValues("delete", "sessions").Observe(time.Since(start).Seconds())

	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (r *SessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.deleteExpiredStmt.ExecContext(ctx, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return count, nil
}
