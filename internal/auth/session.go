package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Session binds an issued refresh token to a user and the request it was
// created from. A row exists exactly as long as the token is considered a
// live login.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Token     string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	IPAddress *string   `json:"ip_address"`
	UserAgent *string   `json:"user_agent"`
	CreatedAt time.Time `json:"created_at"`
}

const sessionColumns = `id, user_id, token, expires_at, ip_address, user_agent, created_at`

type SessionRepository struct {
	DB *pgxpool.Pool
}

func NewSessionRepository(db *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{DB: db}
}

func (r *SessionRepository) Create(ctx context.Context, userID, token string, expiresAt time.Time, ip, userAgent string) (*Session, error) {
	id := uuid.NewString()
	row := r.DB.QueryRow(ctx, `
		INSERT INTO sessions (id, user_id, token, expires_at, ip_address, user_agent)
		VALUES ($1,$2,$3,$4,NULLIF($5,''),NULLIF($6,''))
		RETURNING `+sessionColumns,
		id, userID, token, expiresAt, ip, userAgent)
	return scanSession(row)
}

func (r *SessionRepository) FindByToken(ctx context.Context, token string) (*Session, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE token=$1`, token)
	sess, err := scanSession(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return sess, err
}

func (r *SessionRepository) FindByID(ctx context.Context, id string) (*Session, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id=$1`, id)
	sess, err := scanSession(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return sess, err
}

func (r *SessionRepository) ListForUser(ctx context.Context, userID string) ([]Session, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT `+sessionColumns+`
		FROM sessions
		WHERE user_id=$1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *sess)
	}
	return sessions, rows.Err()
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM sessions WHERE id=$1`, id)
	return err
}

func (r *SessionRepository) DeleteAllExceptOne(ctx context.Context, userID, token string) (int64, error) {
	tag, err := r.DB.Exec(ctx, `DELETE FROM sessions WHERE user_id=$1 AND token<>$2`, userID, token)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *SessionRepository) DeleteAll(ctx context.Context, userID string) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM sessions WHERE user_id=$1`, userID)
	return err
}

func scanSession(row pgx.Row) (*Session, error) {
	var (
		id        string
		userID    string
		token     string
		expiresAt time.Time
		ipAddress sql.NullString
		userAgent sql.NullString
		createdAt time.Time
	)

	if err := row.Scan(&id, &userID, &token, &expiresAt, &ipAddress, &userAgent, &createdAt); err != nil {
		return nil, err
	}

	return &Session{
		ID:        id,
		UserID:    userID,
		Token:     token,
		ExpiresAt: expiresAt,
		IPAddress: nullStringPtr(ipAddress),
		UserAgent: nullStringPtr(userAgent),
		CreatedAt: createdAt,
	}, nil
}
