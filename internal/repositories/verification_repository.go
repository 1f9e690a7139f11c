package repositories

import (
	"database/sql"
	"fmt"

	"authcore/internal/models"
)

type VerificationRepository interface {
	// Upsert replaces any existing challenge for (target, type).
	Upsert(v *models.Verification) error
	// GetActive treats found-but-expired rows as absent.
	GetActive(target, vtype string) (*models.Verification, error)
	// Delete reports whether a row was actually removed, so concurrent
	// redeemers of the same code can be told apart.
	Delete(target, vtype string) (bool, error)
}

type verificationRepository struct {
	DB DBTX
}

func NewVerificationRepository(db DBTX) VerificationRepository {
	return &verificationRepository{DB: db}
}

func (r *verificationRepository) Upsert(v *models.Verification) error {
	const q = `
		INSERT INTO verifications (target, type, secret, algorithm, digits, period, char_set, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (target, type) DO UPDATE SET
			secret     = EXCLUDED.secret,
			algorithm  = EXCLUDED.algorithm,
			digits     = EXCLUDED.digits,
			period     = EXCLUDED.period,
			char_set   = EXCLUDED.char_set,
			expires_at = EXCLUDED.expires_at,
			created_at = NOW()
	`
	_, err := r.DB.Exec(q, v.Target, v.Type, v.Secret, v.Algorithm, v.Digits, v.Period, v.CharSet, v.ExpiresAt)
	if err != nil {
		return fmt.Errorf("verification upsert: %w", err)
	}
	return nil
}

func (r *verificationRepository) GetActive(target, vtype string) (*models.Verification, error) {
	const q = `
		SELECT target, type, secret, algorithm, digits, period, char_set, expires_at, created_at
		FROM verifications
		WHERE target = $1 AND type = $2
		  AND (expires_at IS NULL OR expires_at > NOW())
	`
	v := &models.Verification{}
	err := r.DB.QueryRow(q, target, vtype).Scan(
		&v.Target, &v.Type, &v.Secret, &v.Algorithm, &v.Digits, &v.Period,
		&v.CharSet, &v.ExpiresAt, &v.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("verification get: %w", err)
	}
	return v, nil
}

func (r *verificationRepository) Delete(target, vtype string) (bool, error) {
	const q = `DELETE FROM verifications WHERE target = $1 AND type = $2`
	res, err := r.DB.Exec(q, target, vtype)
	if err != nil {
		return false, fmt.Errorf("verification delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("verification delete: %w", err)
	}
	return n > 0, nil
}
