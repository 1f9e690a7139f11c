package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"authcore/internal/models"
	"authcore/internal/repositories"
	"authcore/internal/sessions"
)

var (
	// ErrInvalidCredentials covers both unknown users and wrong
	// passwords; callers must not tell the two apart.
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
)

type AuthService interface {
	Login(username, password string) (*models.Session, error)
	Signup(email, username, name, password string) (*models.Session, error)
	ResetPassword(username, newPassword string) error
	GetUserByID(id string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByEmailOrUsername(identifier string) (*models.User, error)
}

type authService struct {
	db       *sql.DB
	users    repositories.UserRepository
	sessions repositories.SessionRepository
}

func NewAuthService(db *sql.DB, users repositories.UserRepository, sessionRepo repositories.SessionRepository) AuthService {
	return &authService{db: db, users: users, sessions: sessionRepo}
}

// compared against when the user or password row is missing, so both
// login failure paths cost one bcrypt comparison
var noUserHash, _ = bcrypt.GenerateFromPassword([]byte("no-such-user"), bcrypt.DefaultCost)

// Login verifies the password for a case-folded username and mints a
// session row on success.
func (s *authService) Login(username, password string) (*models.Session, error) {
	username = strings.ToLower(strings.TrimSpace(username))

	user, err := s.users.GetCredentialsByUsername(username)
	if err != nil {
		return nil, err
	}
	if user == nil || user.PasswordHash == "" {
		_ = bcrypt.CompareHashAndPassword(noUserHash, []byte(password))
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	session := sessions.New(user.ID)
	if err := s.sessions.Create(session); err != nil {
		return nil, fmt.Errorf("login create session: %w", err)
	}
	return session, nil
}

// Signup creates the user, its password hash and a first session as
// one transactional unit; a partially created account is never
// observable.
func (s *authService) Signup(email, username, name, password string) (*models.Session, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("signup hash password: %w", err)
	}

	user := &models.User{
		ID:       uuid.NewString(),
		Username: strings.ToLower(strings.TrimSpace(username)),
		Email:    strings.ToLower(strings.TrimSpace(email)),
		Name:     strings.TrimSpace(name),
	}
	session := sessions.New(user.ID)

	err = repositories.WithTx(s.db, func(tx *sql.Tx) error {
		users := repositories.NewUserRepository(tx)
		if err := users.Create(user); err != nil {
			return err
		}
		if err := users.CreatePassword(user.ID, string(hash)); err != nil {
			return err
		}
		return repositories.NewSessionRepository(tx).Create(session)
	})
	switch {
	case errors.Is(err, repositories.ErrDuplicateUsername):
		return nil, ErrUsernameTaken
	case errors.Is(err, repositories.ErrDuplicateEmail):
		return nil, ErrEmailTaken
	case err != nil:
		return nil, fmt.Errorf("signup: %w", err)
	}
	return session, nil
}

// ResetPassword replaces the stored hash wholesale. Other live
// sessions of the user are deliberately left alone.
func (s *authService) ResetPassword(username, newPassword string) error {
	user, err := s.users.GetByUsername(username)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("reset hash password: %w", err)
	}
	return s.users.UpdatePassword(user.ID, string(hash))
}

func (s *authService) GetUserByID(id string) (*models.User, error) {
	return s.users.GetByID(id)
}

func (s *authService) GetUserByEmail(email string) (*models.User, error) {
	return s.users.GetByEmail(email)
}

func (s *authService) GetUserByEmailOrUsername(identifier string) (*models.User, error) {
	return s.users.GetByEmailOrUsername(identifier)
}
