package repositories

import (
	"database/sql"
	"fmt"

	"authcore/internal/models"
)

type SessionRepository interface {
	Create(s *models.Session) error
	// GetActive returns nil for unknown or expired sessions.
	GetActive(id string) (*models.Session, error)
	Delete(id string) error
	// DeleteByUser removes every session of a user except exceptID
	// (pass "" to remove all of them).
	DeleteByUser(userID, exceptID string) error
}

type sessionRepository struct {
	DB DBTX
}

func NewSessionRepository(db DBTX) SessionRepository {
	return &sessionRepository{DB: db}
}

func (r *sessionRepository) Create(s *models.Session) error {
	const q = `
		INSERT INTO sessions (id, user_id, expiration_date)
		VALUES ($1, $2, $3)
	`
	if _, err := r.DB.Exec(q, s.ID, s.UserID, s.ExpirationDate); err != nil {
		return fmt.Errorf("session create: %w", err)
	}
	return nil
}

func (r *sessionRepository) GetActive(id string) (*models.Session, error) {
	const q = `
		SELECT id, user_id, expiration_date
		FROM sessions
		WHERE id = $1 AND expiration_date > NOW()
	`
	s := &models.Session{}
	err := r.DB.QueryRow(q, id).Scan(&s.ID, &s.UserID, &s.ExpirationDate)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session get: %w", err)
	}
	return s, nil
}

func (r *sessionRepository) Delete(id string) error {
	const q = `DELETE FROM sessions WHERE id = $1`
	if _, err := r.DB.Exec(q, id); err != nil {
		return fmt.Errorf("session delete: %w", err)
	}
	return nil
}

func (r *sessionRepository) DeleteByUser(userID, exceptID string) error {
	const q = `DELETE FROM sessions WHERE user_id = $1 AND id <> $2`
	if _, err := r.DB.Exec(q, userID, exceptID); err != nil {
		return fmt.Errorf("session delete by user: %w", err)
	}
	return nil
}
