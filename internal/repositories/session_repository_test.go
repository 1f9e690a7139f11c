package repositories

import (
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"authcore/internal/models"
)

func TestSessionCreate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSessionRepository(db)

	s := &models.Session{ID: "s1", UserID: "u1", ExpirationDate: time.Now().Add(time.Hour)}
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO sessions")).
		WithArgs(s.ID, s.UserID, s.ExpirationDate).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(s))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionGetActive(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSessionRepository(db)

	exp := time.Now().Add(time.Hour)
	mock.ExpectQuery("(?s)SELECT .+ FROM sessions").
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "expiration_date"}).AddRow("s1", "u1", exp))

	s, err := repo.GetActive("s1")
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "u1", s.UserID)

	// the expiry predicate lives in SQL, so an expired session simply
	// returns no rows
	mock.ExpectQuery("(?s)SELECT .+ FROM sessions").
		WithArgs("s2").
		WillReturnError(sql.ErrNoRows)

	s, err = repo.GetActive("s2")
	require.NoError(t, err)
	assert.Nil(t, s)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionDelete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSessionRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM sessions WHERE id")).
		WithArgs("s1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete("s1"))

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM sessions WHERE user_id")).
		WithArgs("u1", "keep").
		WillReturnResult(sqlmock.NewResult(0, 3))
	require.NoError(t, repo.DeleteByUser("u1", "keep"))

	assert.NoError(t, mock.ExpectationsWereMet())
}
