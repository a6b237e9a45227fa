package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const userColumns = `id, email, nome, role, vendedor_id, password_hash, created_at`

func scanUser(row interface{ Scan(...any) error }) (User, error) {
	var u User
	var vendedorID sql.NullInt64

	err := row.Scan(&u.ID, &u.Email, &u.Nome, &u.Role, &vendedorID,
		&u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return User{}, err
	}

	if vendedorID.Valid {
		u.VendedorID = &vendedorID.Int64
	}
	return u, nil
}

// UserByEmail fetches a user by email for login.
func (s *Store) UserByEmail(ctx context.Context, email string) (User, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = ?", email)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, fmt.Errorf("user %s: %w", email, ErrNotFound)
	}
	return u, err
}

// UserByID fetches a user by id for session validation.
func (s *Store) UserByID(ctx context.Context, id string) (User, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ?", id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	return u, err
}

// Users lists all users ordered by creation time, newest first.
func (s *Store) Users(ctx context.Context) ([]User, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := make([]User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// CreateUser inserts a new user. The caller supplies the id (a UUID) and the
// bcrypt password hash.
func (s *Store) CreateUser(ctx context.Context, u User) (User, error) {
	var vendedorID any
	if u.VendedorID != nil {
		vendedorID = *u.VendedorID
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, nome, role, vendedor_id, password_hash)
		VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.Nome, u.Role, vendedorID, u.PasswordHash)
	if err != nil {
		return User{}, fmt.Errorf("insert user: %w", err)
	}

	return s.UserByID(ctx, u.ID)
}
