package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/ayush/projecthub/internal/models"
	"github.com/ayush/projecthub/internal/store"
)

var (
	// ErrInvalidCredentials is returned for an unknown login and for a wrong
	// password alike.
	ErrInvalidCredentials = errors.New("invalid login or password")
	ErrLoginTaken         = errors.New("login already taken")
	// ErrPasswordTooLong is bcrypt's 72 byte input limit.
	ErrPasswordTooLong = errors.New("password must be at most 72 bytes")
	// ErrFieldTooLong matches the VARCHAR(255) login and email columns.
	ErrFieldTooLong = fmt.Errorf("login and email must be at most %d characters", MaxFieldLength)
)

const MaxFieldLength = 255

// UserStore defines the interface for user persistence.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
}

// Authenticator registers users and checks their credentials. Passwords are
// stored as bcrypt hashes.
type Authenticator struct {
	users UserStore
	cost  int

	dummyOnce sync.Once
	dummy     []byte
}

func NewAuthenticator(users UserStore, cost int) *Authenticator {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Authenticator{users: users, cost: cost}
}

// Register creates a user after checking the login is free. The unique
// index still rejects a concurrent duplicate, which also maps to
// ErrLoginTaken.
func (a *Authenticator) Register(ctx context.Context, login, password, email string) (*models.User, error) {
	if len(password) > 72 {
		return nil, ErrPasswordTooLong
	}
	if utf8.RuneCountInString(login) > MaxFieldLength || utf8.RuneCountInString(email) > MaxFieldLength {
		return nil, ErrFieldTooLong
	}

	_, err := a.users.GetUserByLogin(ctx, login)
	switch {
	case err == nil:
		return nil, ErrLoginTaken
	case !errors.Is(err, store.ErrNotFound):
		return nil, fmt.Errorf("lookup login: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := a.users.CreateUser(ctx, &models.User{Login: login, Password: string(hashed), Email: email})
	if errors.Is(err, store.ErrConflict) {
		return nil, ErrLoginTaken
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate returns the user id for a matching login and password.
func (a *Authenticator) Authenticate(ctx context.Context, login, password string) (int64, error) {
	user, err := a.users.GetUserByLogin(ctx, login)
	if errors.Is(err, store.ErrNotFound) {
		// Burn the same bcrypt time as a real comparison.
		_ = bcrypt.CompareHashAndPassword(a.dummyHash(), []byte(password))
		return 0, ErrInvalidCredentials
	}
	if err != nil {
		return 0, fmt.Errorf("lookup login: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return 0, ErrInvalidCredentials
	}
	return user.ID, nil
}

func (a *Authenticator) dummyHash() []byte {
	a.dummyOnce.Do(func() {
		a.dummy, _ = bcrypt.GenerateFromPassword([]byte("projecthub-dummy"), a.cost)
	})
	return a.dummy
}
