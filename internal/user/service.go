package user

import (
	"context"
	"strings"

	"backend-travelcompanion/internal/apperr"
	"backend-travelcompanion/internal/auth"
	"backend-travelcompanion/internal/db"
)

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

// CreateUser registers a user with a bcrypt-hashed password. Uniqueness is
// enforced by the users_username_key constraint; the EXISTS pre-check only
// reports the common case early.
func (s *Service) CreateUser(ctx context.Context, username, password string) (User, error) {
	username = strings.TrimSpace(username)
	exists, err := s.ExistsByUsername(ctx, username)
	if err != nil {
		return User{}, err
	}
	if exists {
		return User{}, apperr.Conflict("username %q already exists", username)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return User{}, err
	}

	u := User{Username: username, Password: hash}
	row := s.db.QueryRow(ctx, `
		INSERT INTO users (username, password)
		VALUES ($1,$2)
		RETURNING id
	`, u.Username, u.Password)
	if err := row.Scan(&u.ID); err != nil {
		if db.IsUniqueViolation(err) {
			return User{}, apperr.Conflict("username %q already exists", username)
		}
		return User{}, err
	}
	return u, nil
}

func (s *Service) GetUserByID(ctx context.Context, id int64) (User, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, username, password
		FROM users WHERE id=$1
	`, id)
	var u User
	if err := row.Scan(&u.ID, &u.Username, &u.Password); err != nil {
		if db.IsNoRows(err) {
			return User{}, apperr.NotFound("user %d not found", id)
		}
		return User{}, err
	}
	return u, nil
}

func (s *Service) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var ok bool
	err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username=$1)`, username).Scan(&ok)
	return ok, err
}

// Authenticate checks credentials. Unknown users and wrong passwords
// produce the same error.
func (s *Service) Authenticate(ctx context.Context, username, password string) (User, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, username, password
		FROM users WHERE username=$1
	`, strings.TrimSpace(username))
	var u User
	if err := row.Scan(&u.ID, &u.Username, &u.Password); err != nil {
		if db.IsNoRows(err) {
			return User{}, apperr.Unauthorized("invalid credentials")
		}
		return User{}, err
	}
	if !auth.CheckPassword(u.Password, password) {
		return User{}, apperr.Unauthorized("invalid credentials")
	}
	return u, nil
}
