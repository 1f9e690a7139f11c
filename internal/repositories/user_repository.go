package repositories

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"authcore/internal/models"
)

type UserRepository interface {
	Create(user *models.User) error
	CreatePassword(userID, hash string) error
	GetByID(id string) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByEmailOrUsername(identifier string) (*models.User, error)
	GetCredentialsByUsername(username string) (*models.User, error)
	UpdatePassword(userID, hash string) error
}

type userRepository struct {
	DB DBTX
}

func NewUserRepository(db DBTX) UserRepository {
	return &userRepository{DB: db}
}

const userColumns = `id, username, email, name, created_at, updated_at`

func (r *userRepository) Create(user *models.User) error {
	const q = `
		INSERT INTO users (id, username, email, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := r.DB.QueryRow(q, user.ID, user.Username, user.Email, user.Name).
		Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("user create: %w", mapUniqueViolation(err))
	}
	return nil
}

func (r *userRepository) CreatePassword(userID, hash string) error {
	const q = `INSERT INTO passwords (user_id, hash) VALUES ($1, $2)`
	if _, err := r.DB.Exec(q, userID, hash); err != nil {
		return fmt.Errorf("password create: %w", err)
	}
	return nil
}

func (r *userRepository) GetByID(id string) (*models.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(r.DB.QueryRow(q, id), "user by id")
}

func (r *userRepository) GetByUsername(username string) (*models.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return r.scanUser(r.DB.QueryRow(q, strings.ToLower(username)), "user by username")
}

func (r *userRepository) GetByEmail(email string) (*models.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanUser(r.DB.QueryRow(q, strings.ToLower(email)), "user by email")
}

func (r *userRepository) GetByEmailOrUsername(identifier string) (*models.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE email = $1 OR username = $1`
	return r.scanUser(r.DB.QueryRow(q, strings.ToLower(identifier)), "user by email or username")
}

// GetCredentialsByUsername joins the password row; PasswordHash stays
// empty for users without one.
func (r *userRepository) GetCredentialsByUsername(username string) (*models.User, error) {
	const q = `
		SELECT u.id, u.username, u.email, u.name, u.created_at, u.updated_at,
		       COALESCE(p.hash, '')
		FROM users u
		LEFT JOIN passwords p ON p.user_id = u.id
		WHERE u.username = $1
	`
	u := &models.User{}
	err := r.DB.QueryRow(q, strings.ToLower(username)).Scan(
		&u.ID, &u.Username, &u.Email, &u.Name, &u.CreatedAt, &u.UpdatedAt,
		&u.PasswordHash,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("user credentials: %w", err)
	}
	return u, nil
}

// UpdatePassword replaces the stored hash wholesale, creating the row
// if the user never had a password.
func (r *userRepository) UpdatePassword(userID, hash string) error {
	const q = `
		INSERT INTO passwords (user_id, hash)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET hash = EXCLUDED.hash
	`
	if _, err := r.DB.Exec(q, userID, hash); err != nil {
		return fmt.Errorf("password update: %w", err)
	}
	return nil
}

func (r *userRepository) scanUser(row *sql.Row, op string) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Name, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

func mapUniqueViolation(err error) error {
	pqErr, ok := err.(*pq.Error)
	if !ok || pqErr.Code != "23505" {
		return err
	}
	switch {
	case strings.Contains(pqErr.Constraint, "username"):
		return ErrDuplicateUsername
	case strings.Contains(pqErr.Constraint, "email"):
		return ErrDuplicateEmail
	}
	return err
}
