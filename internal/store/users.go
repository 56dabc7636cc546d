package store

import (
	"context"
	"fmt"
	"log"

	"github.com/vesaa/kintree/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// CreateUser stores a new account with a bcrypt hash of password.
func (s *Store) CreateUser(ctx context.Context, username, password string, admin bool) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}
	u := &models.User{Username: username, PasswordHash: string(hash), IsAdmin: admin}
	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		return nil, fmt.Errorf("creating user %q: %w", username, err)
	}
	return u, nil
}

// EnsureAdmin creates the configured admin account if no user by that name exists.
func (s *Store) EnsureAdmin(ctx context.Context, username, password string) error {
	if _, err := s.userByName(ctx, username); err == nil {
		return nil
	}
	if _, err := s.CreateUser(ctx, username, password, true); err != nil {
		return err
	}
	log.Printf("[db] created admin account %q", username)
	return nil
}

// Authenticate returns the user when password matches, ErrNotFound otherwise.
func (s *Store) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	u, err := s.userByName(ctx, username)
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, fmt.Errorf("user %q: %w", username, ErrNotFound)
	}
	return u, nil
}

func (s *Store) userByName(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, notFound(err, "user "+username)
	}
	return &u, nil
}
