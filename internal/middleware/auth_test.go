package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"authcore/internal/models"
	"authcore/internal/sessions"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubSessionRepo struct {
	rows map[string]*models.Session
}

func (r *stubSessionRepo) Create(s *models.Session) error {
	r.rows[s.ID] = s
	return nil
}

func (r *stubSessionRepo) GetActive(id string) (*models.Session, error) {
	s, ok := r.rows[id]
	if !ok || !s.ExpirationDate.After(time.Now()) {
		return nil, nil
	}
	return s, nil
}

func (r *stubSessionRepo) Delete(id string) error {
	delete(r.rows, id)
	return nil
}

func (r *stubSessionRepo) DeleteByUser(userID, exceptID string) error {
	for id, s := range r.rows {
		if s.UserID == userID && id != exceptID {
			delete(r.rows, id)
		}
	}
	return nil
}

func newRig(t *testing.T) (*sessions.Manager, *gin.Engine) {
	t.Helper()

	repo := &stubSessionRepo{rows: make(map[string]*models.Session)}
	codec := sessions.NewCookieCodec("middleware-test-key", false)
	mgr := sessions.NewManager(repo, codec)

	router := gin.New()
	router.GET("/private", RequireAuthenticated(mgr), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ContextUserID))
	})
	router.GET("/login", RequireAnonymous(mgr), func(c *gin.Context) {
		c.String(http.StatusOK, "login page")
	})
	return mgr, router
}

func loginCookie(t *testing.T, mgr *sessions.Manager, userID string) *http.Cookie {
	t.Helper()

	w := httptest.NewRecorder()
	_, err := mgr.Create(w, userID, false)
	require.NoError(t, err)
	for _, c := range w.Result().Cookies() {
		if c.Name == sessions.SessionCookieName {
			return c
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

func TestRequireAuthenticatedRedirectsAnonymous(t *testing.T) {
	_, router := newRig(t)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestRequireAuthenticatedExposesUserID(t *testing.T) {
	mgr, router := newRig(t)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.AddCookie(loginCookie(t, mgr, "u1"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", w.Body.String())
}

func TestRequireAuthenticatedRejectsForgedCookie(t *testing.T) {
	_, router := newRig(t)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.AddCookie(&http.Cookie{Name: sessions.SessionCookieName, Value: "not-a-token"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestRequireAnonymousPassesLoggedOut(t *testing.T) {
	_, router := newRig(t)

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "login page", w.Body.String())
}

func TestRequireAnonymousRedirectsLoggedIn(t *testing.T) {
	mgr, router := newRig(t)

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.AddCookie(loginCookie(t, mgr, "u1"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}
