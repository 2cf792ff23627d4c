// Copyright (c) 2026 TaskForge. All rights reserved.

// PostgreSQL persistence for the auth domain.
//
// # Architecture
//
// Repositories in this file are strictly separated from domain logic. They
// implement the domain-defined [UserRepository] interface using the
// [pgxpool.Pool] connection manager.
//
// # Error Mapping
//
// Storage-specific errors (like pgx.ErrNoRows) are mapped to domain-friendly
// [apperr.AppError] types to avoid leaking storage implementation details.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskforge/taskforge/internal/platform/apperr"
	"github.com/taskforge/taskforge/internal/platform/dberr"
)

// # User Repository

// userColumns is the canonical SELECT list for hydrating a [User].
const userColumns = `
	id, email, passwordhash, firstname, lastname, displayname, avatarurl,
	timezone, locale, role, emailverified, refreshtokenhash,
	refreshtokenexpiresat, createdat, updatedat, lastloginat`

// PostgresUserRepository implements the UserRepository interface using pgx.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// scanUser hydrates a single [User] from a row produced by [userColumns].
func scanUser(row pgx.Row) (*User, error) {
	user := &User{}
	var refreshHash *string

	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.DisplayName,
		&user.AvatarURL,
		&user.Timezone,
		&user.Locale,
		&user.Role,
		&user.EmailVerified,
		&refreshHash,
		&user.RefreshTokenExpiresAt,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.LastLoginAt,
	)
	if err != nil {
		return nil, err
	}

	if refreshHash != nil {
		user.RefreshTokenHash = *refreshHash
	}

	return user, nil
}

/*
Create persists a new user record into the users.account table.

Description: Deep-persists account metadata, ensuring timestamps are initialized
if not provided.

Parameters:
  - context: context.Context
  - user: *User (Entity to persist)

Returns:
  - error: Conflict on the unique email index, or connectivity errors
*/
func (repository *PostgresUserRepository) Create(context context.Context, user *User) error {
	const query = `
		INSERT INTO users.account (
			id, email, passwordhash, firstname, lastname, displayname, avatarurl,
			timezone, locale, role, emailverified, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := repository.pool.Exec(context, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.DisplayName,
		user.AvatarURL,
		user.Timezone,
		user.Locale,
		user.Role,
		user.EmailVerified,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		// The unique index on email surfaces here as a client-safe Conflict.
		return dberr.Wrap(err, "User")
	}

	return nil
}

/*
FindByEmail retrieves a user record by their unique email address.

Description: Performs a lookup on the account table, filtering out soft-deleted users.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresUserRepository) FindByEmail(context context.Context, email string) (*User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users.account
		WHERE email = $1 AND deletedat IS NULL`

	user, err := scanUser(repository.pool.QueryRow(context, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_email_failed: %w", err)
	}

	return user, nil
}

/*
FindByID retrieves a user record by their unique ID.

Description: Primary key resolution for user accounts.

Parameters:
  - context: context.Context
  - id: string (UUIDv7)

Returns:
  - *User: Hydrated account entity
  - error: Not found or execution errors
*/
func (repository *PostgresUserRepository) FindByID(context context.Context, id string) (*User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users.account
		WHERE id = $1 AND deletedat IS NULL`

	user, err := scanUser(repository.pool.QueryRow(context, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_id_failed: %w", err)
	}

	return user, nil
}

/*
FindByRefreshTokenHash retrieves the user holding the given refresh token hash.

Description: Session resolution during token rotation. The stored expiry is
returned as-is; the service layer decides whether it is still usable.

Parameters:
  - context: context.Context
  - tokenHash: string (hex SHA-256)

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresUserRepository) FindByRefreshTokenHash(context context.Context, tokenHash string) (*User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users.account
		WHERE refreshtokenhash = $1 AND deletedat IS NULL`

	user, err := scanUser(repository.pool.QueryRow(context, query, tokenHash))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Session")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_token_failed: %w", err)
	}

	return user, nil
}

/*
FindIDByEmail resolves an email address to a user ID.

Description: Lightweight projection used by team invitations, where the full
account entity is not needed.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - string: User UUID
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresUserRepository) FindIDByEmail(context context.Context, email string) (string, error) {
	const query = `
		SELECT id FROM users.account
		WHERE email = $1 AND deletedat IS NULL`

	var id string
	if err := repository.pool.QueryRow(context, query, email).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperr.NotFound("User")
		}
		return "", fmt.Errorf("postgres_user_repo_find_id_by_email_failed: %w", err)
	}

	return id, nil
}

/*
Update persists changes to the mutable profile fields of a user record.

Parameters:
  - context: context.Context
  - user: *User

Returns:
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresUserRepository) Update(context context.Context, user *User) error {
	const query = `
		UPDATE users.account
		SET firstname = $2, lastname = $3, displayname = $4, avatarurl = $5,
		    timezone = $6, locale = $7, updatedat = $8
		WHERE id = $1 AND deletedat IS NULL`

	user.UpdatedAt = time.Now()

	tag, err := repository.pool.Exec(context, query,
		user.ID,
		user.FirstName,
		user.LastName,
		user.DisplayName,
		user.AvatarURL,
		user.Timezone,
		user.Locale,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres_user_repo_update_failed: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}

	return nil
}

/*
UpdatePassword replaces only the user's password hash.

Parameters:
  - context: context.Context
  - userID: string
  - newHash: string

Returns:
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresUserRepository) UpdatePassword(context context.Context, userID, newHash string) error {
	const query = `
		UPDATE users.account
		SET passwordhash = $2, updatedat = NOW()
		WHERE id = $1 AND deletedat IS NULL`

	tag, err := repository.pool.Exec(context, query, userID, newHash)
	if err != nil {
		return fmt.Errorf("postgres_user_repo_update_password_failed: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}

	return nil
}

/*
UpdateRefreshToken atomically replaces the stored refresh token pair.

Description: The hash and expiry change in one UPDATE, so at no point do two
valid refresh tokens exist for the same account.

Parameters:
  - context: context.Context
  - userID: string
  - tokenHash: string
  - expiresAt: time.Time

Returns:
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresUserRepository) UpdateRefreshToken(context context.Context, userID, tokenHash string, expiresAt time.Time) error {
	const query = `
		UPDATE users.account
		SET refreshtokenhash = $2, refreshtokenexpiresat = $3, updatedat = NOW()
		WHERE id = $1 AND deletedat IS NULL`

	tag, err := repository.pool.Exec(context, query, userID, tokenHash, expiresAt)
	if err != nil {
		return fmt.Errorf("postgres_user_repo_update_refresh_token_failed: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}

	return nil
}

/*
ClearRefreshToken nulls out the stored refresh token pair.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresUserRepository) ClearRefreshToken(context context.Context, userID string) error {
	const query = `
		UPDATE users.account
		SET refreshtokenhash = NULL, refreshtokenexpiresat = NULL, updatedat = NOW()
		WHERE id = $1 AND deletedat IS NULL`

	tag, err := repository.pool.Exec(context, query, userID)
	if err != nil {
		return fmt.Errorf("postgres_user_repo_clear_refresh_token_failed: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}

	return nil
}

/*
RecordLogin bumps the user's last login timestamp.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: Execution errors
*/
func (repository *PostgresUserRepository) RecordLogin(context context.Context, userID string) error {
	const query = `
		UPDATE users.account
		SET lastloginat = NOW()
		WHERE id = $1 AND deletedat IS NULL`

	if _, err := repository.pool.Exec(context, query, userID); err != nil {
		return fmt.Errorf("postgres_user_repo_record_login_failed: %w", err)
	}

	return nil
}

/*
MarkVerified updates the user's status to emailverified = true.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresUserRepository) MarkVerified(context context.Context, userID string) error {
	const query = `
		UPDATE users.account
		SET emailverified = TRUE, updatedat = NOW()
		WHERE id = $1 AND deletedat IS NULL`

	tag, err := repository.pool.Exec(context, query, userID)
	if err != nil {
		return fmt.Errorf("postgres_user_repo_mark_verified_failed: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}

	return nil
}

/*
SoftDelete marks the account as deleted without removing the row.

Description: The stored refresh token pair is cleared in the same statement
so a deleted account can never refresh its session.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresUserRepository) SoftDelete(context context.Context, id string) error {
	const query = `
		UPDATE users.account
		SET deletedat = NOW(), refreshtokenhash = NULL, refreshtokenexpiresat = NULL, updatedat = NOW()
		WHERE id = $1 AND deletedat IS NULL`

	tag, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return fmt.Errorf("postgres_user_repo_soft_delete_failed: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}

	return nil
}
