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

const userColumns = `id, email, username, name, password_hash, profile_picture, roles, account_status,
	is_verified, verification_code, verification_code_expire_at, verification_hash,
	incorrect_attempt, retry_timestamp, created_at, updated_at`

type UserRepository struct {
	DB *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(ctx context.Context, u *User) (*User, error) {
	id := uuid.NewString()
	roles := u.Roles
	if len(roles) == 0 {
		roles = []string{RoleUser}
	}
	status := u.AccountStatus
	if status == "" {
		status = AccountActive
	}

	row := r.DB.QueryRow(ctx, `
		INSERT INTO users
		(id, email, username, name, password_hash, profile_picture, roles, account_status,
		 is_verified, verification_code, verification_code_expire_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING `+userColumns,
		id, u.Email, u.Username, u.Name, u.PasswordHash, u.ProfilePicture, roles, status,
		u.IsVerified, u.VerificationCode, u.VerificationCodeExpireAt)
	return scanUser(row)
}

// ReplaceUnverified overwrites an unverified user's registration fields in
// place, keeping the row's id. Used when a registration is resumed.
func (r *UserRepository) ReplaceUnverified(ctx context.Context, u *User) (*User, error) {
	row := r.DB.QueryRow(ctx, `
		UPDATE users
		SET name=$2, username=$3, password_hash=$4,
		    verification_code=$5, verification_code_expire_at=$6,
		    is_verified=FALSE, incorrect_attempt=0, retry_timestamp=NULL, updated_at=NOW()
		WHERE id=$1 AND is_verified=FALSE
		RETURNING `+userColumns,
		u.ID, u.Name, u.Username, u.PasswordHash, u.VerificationCode, u.VerificationCodeExpireAt)
	return scanUser(row)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email=$1`, email)
	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return user, err
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*User, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username=$1`, username)
	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return user, err
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*User, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return user, err
}

func (r *UserRepository) FindByVerificationHash(ctx context.Context, hash string) (*User, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE verification_hash=$1`, hash)
	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return user, err
}

// SaveVerificationCode stores a fresh one-time code and expiry; hash is only
// set for password-reset codes, where it backs the emailed reset link.
func (r *UserRepository) SaveVerificationCode(ctx context.Context, userID, code string, expires time.Time, hash *string) error {
	_, err := r.DB.Exec(ctx, `
		UPDATE users
		SET verification_code=$2, verification_code_expire_at=$3, verification_hash=$4, updated_at=NOW()
		WHERE id=$1
	`, userID, code, expires, hash)
	return err
}

func (r *UserRepository) MarkVerified(ctx context.Context, userID string) error {
	_, err := r.DB.Exec(ctx, `
		UPDATE users
		SET is_verified=TRUE, verification_code=NULL, verification_code_expire_at=NULL, updated_at=NOW()
		WHERE id=$1
	`, userID)
	return err
}

// SetLockout persists the failed-attempt counter and, when locking, the
// timestamp until which login attempts are rejected.
func (r *UserRepository) SetLockout(ctx context.Context, userID string, attempts int, retry *time.Time) error {
	_, err := r.DB.Exec(ctx, `
		UPDATE users
		SET incorrect_attempt=$2, retry_timestamp=$3, updated_at=NOW()
		WHERE id=$1
	`, userID, attempts, retry)
	return err
}

func (r *UserRepository) ResetLockout(ctx context.Context, userID string) error {
	_, err := r.DB.Exec(ctx, `
		UPDATE users
		SET incorrect_attempt=0, retry_timestamp=NULL, updated_at=NOW()
		WHERE id=$1
	`, userID)
	return err
}

// UpdatePassword stores a new hash and clears every verification and lockout
// field in the same statement.
func (r *UserRepository) UpdatePassword(ctx context.Context, userID, hashed string) error {
	_, err := r.DB.Exec(ctx, `
		UPDATE users
		SET password_hash=$2,
		    verification_code=NULL, verification_code_expire_at=NULL, verification_hash=NULL,
		    incorrect_attempt=0, retry_timestamp=NULL, updated_at=NOW()
		WHERE id=$1
	`, userID, hashed)
	return err
}

func (r *UserRepository) UpdateProfilePicture(ctx context.Context, userID string, url *string) (*User, error) {
	row := r.DB.QueryRow(ctx, `
		UPDATE users
		SET profile_picture=$2, updated_at=NOW()
		WHERE id=$1
		RETURNING `+userColumns, userID, url)
	return scanUser(row)
}

func scanUser(row pgx.Row) (*User, error) {
	var (
		id               string
		email            string
		username         sql.NullString
		name             string
		passwordHash     sql.NullString
		profilePicture   sql.NullString
		roles            []string
		accountStatus    string
		isVerified       bool
		verificationCode sql.NullString
		codeExpireAt     sql.NullTime
		verificationHash sql.NullString
		incorrectAttempt int
		retryTimestamp   sql.NullTime
		createdAt        time.Time
		updatedAt        time.Time
	)

	if err := row.Scan(
		&id,
		&email,
		&username,
		&name,
		&passwordHash,
		&profilePicture,
		&roles,
		&accountStatus,
		&isVerified,
		&verificationCode,
		&codeExpireAt,
		&verificationHash,
		&incorrectAttempt,
		&retryTimestamp,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}

	return &User{
		ID:                       id,
		Email:                    email,
		Username:                 nullStringPtr(username),
		Name:                     name,
		PasswordHash:             nullStringPtr(passwordHash),
		ProfilePicture:           nullStringPtr(profilePicture),
		Roles:                    roles,
		AccountStatus:            accountStatus,
		IsVerified:               isVerified,
		VerificationCode:         nullStringPtr(verificationCode),
		VerificationCodeExpireAt: nullTimePtr(codeExpireAt),
		VerificationHash:         nullStringPtr(verificationHash),
		IncorrectAttempt:         incorrectAttempt,
		RetryTimestamp:           nullTimePtr(retryTimestamp),
		CreatedAt:                createdAt,
		UpdatedAt:                updatedAt,
	}, nil
}

func nullStringPtr(ns sql.NullString) *string {
	if ns.Valid {
		return &ns.String
	}
	return nil
}

func nullTimePtr(nt sql.NullTime) *time.Time {
	if nt.Valid {
		return &nt.Time
	}
	return nil
}
