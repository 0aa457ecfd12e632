package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/rinexis/authreview/pkg/auth"
)

// Postgres error code for unique constraint violations
const uniqueViolation = "23505"

// CreateUser stores a new user with a hashed password
func (d *PGDirectory) CreateUser(ctx context.Context, username, email, password, role string, perms auth.Permissions) (*auth.User, error) {
	if err := auth.ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := auth.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := auth.ValidatePassword(password); err != nil {
		return nil, err
	}
	if err := auth.ValidateRole(role); err != nil {
		return nil, err
	}

	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", auth.ErrPasswordHashFailed, err)
	}

	permsJSON, err := json.Marshal(perms)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal permissions: %w", err)
	}

	user := &auth.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
		Role:         role,
		Permissions:  perms,
		CreatedAt:    time.Now().Unix(),
	}

	query := `
		INSERT INTO users (id, username, email, password_hash, role, permissions, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = d.pool.Exec(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Role,
		permsJSON,
		user.CreatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, fmt.Errorf("%w: %s", auth.ErrUserExists, username)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// GetUserByID retrieves a user by ID
func (d *PGDirectory) GetUserByID(ctx context.Context, userID string) (*auth.User, error) {
	query := `
		SELECT id, username, email, password_hash, role, permissions, created_at
		FROM users
		WHERE id = $1
	`
	return d.scanUser(d.pool.QueryRow(ctx, query, userID), userID)
}

// GetUserByUsername retrieves a user by username
func (d *PGDirectory) GetUserByUsername(ctx context.Context, username string) (*auth.User, error) {
	query := `
		SELECT id, username, email, password_hash, role, permissions, created_at
		FROM users
		WHERE username = $1
	`
	return d.scanUser(d.pool.QueryRow(ctx, query, username), username)
}

func (d *PGDirectory) scanUser(row pgx.Row, key string) (*auth.User, error) {
	user := &auth.User{}
	var permsJSON []byte

	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&permsJSON,
		&user.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", auth.ErrUserNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if len(permsJSON) > 0 {
		if err := json.Unmarshal(permsJSON, &user.Permissions); err != nil {
			return nil, fmt.Errorf("failed to unmarshal permissions: %w", err)
		}
	}

	return user, nil
}

// ListUsers returns all users
func (d *PGDirectory) ListUsers(ctx context.Context) ([]*auth.User, error) {
	query := `
		SELECT id, username, email, password_hash, role, permissions, created_at
		FROM users
		ORDER BY created_at DESC
	`

	rows, err := d.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*auth.User
	for rows.Next() {
		user := &auth.User{}
		var permsJSON []byte

		err := rows.Scan(
			&user.ID,
			&user.Username,
			&user.Email,
			&user.PasswordHash,
			&user.Role,
			&permsJSON,
			&user.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}

		if len(permsJSON) > 0 {
			if err := json.Unmarshal(permsJSON, &user.Permissions); err != nil {
				return nil, fmt.Errorf("failed to unmarshal permissions: %w", err)
			}
		}

		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return users, nil
}

// UpdateUser applies an update to a user's mutable fields
func (d *PGDirectory) UpdateUser(ctx context.Context, userID string, update auth.UserUpdate) (*auth.User, error) {
	user, err := d.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if update.Email != nil {
		if err := auth.ValidateEmail(*update.Email); err != nil {
			return nil, err
		}
		user.Email = *update.Email
	}
	if update.Role != nil {
		if err := auth.ValidateRole(*update.Role); err != nil {
			return nil, err
		}
		user.Role = *update.Role
	}
	if update.Permissions != nil {
		user.Permissions = *update.Permissions
	}

	permsJSON, err := json.Marshal(user.Permissions)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal permissions: %w", err)
	}

	query := `
		UPDATE users
		SET email = $2, role = $3, permissions = $4
		WHERE id = $1
	`

	result, err := d.pool.Exec(ctx, query, user.ID, user.Email, user.Role, permsJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return nil, fmt.Errorf("%w: %s", auth.ErrUserNotFound, userID)
	}

	return user, nil
}

// DeleteUser deletes a user
func (d *PGDirectory) DeleteUser(ctx context.Context, userID string) error {
	result, err := d.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", auth.ErrUserNotFound, userID)
	}
	return nil
}

// ChangePassword changes a user's password
func (d *PGDirectory) ChangePassword(ctx context.Context, userID, newPassword string) error {
	if err := auth.ValidatePassword(newPassword); err != nil {
		return err
	}

	hashedPassword, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("%w: %v", auth.ErrPasswordHashFailed, err)
	}

	result, err := d.pool.Exec(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1`, userID, hashedPassword)
	if err != nil {
		return fmt.Errorf("failed to change password: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", auth.ErrUserNotFound, userID)
	}
	return nil
}
