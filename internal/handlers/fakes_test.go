package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"authcore/internal/models"
	"authcore/internal/repositories"
	"authcore/internal/services"
	"authcore/internal/sessions"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testSigningKey = "handler-test-key"

// memSessionRepo backs the session manager in handler tests.
type memSessionRepo struct {
	rows map[string]*models.Session
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{rows: make(map[string]*models.Session)}
}

func (r *memSessionRepo) Create(s *models.Session) error {
	cp := *s
	r.rows[s.ID] = &cp
	return nil
}

func (r *memSessionRepo) GetActive(id string) (*models.Session, error) {
	s, ok := r.rows[id]
	if !ok || !s.ExpirationDate.After(time.Now()) {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *memSessionRepo) Delete(id string) error {
	delete(r.rows, id)
	return nil
}

func (r *memSessionRepo) DeleteByUser(userID, exceptID string) error {
	for id, s := range r.rows {
		if s.UserID == userID && id != exceptID {
			delete(r.rows, id)
		}
	}
	return nil
}

var _ repositories.SessionRepository = (*memSessionRepo)(nil)

// fakeAuthService is an in-memory stand-in for the auth gateway.
type fakeAuthService struct {
	usersByName map[string]*models.User
	password    string // the one accepted password
	signupErr   error
	signedUp    []string // emails passed to Signup
	resetCalls  map[string]string
}

func newFakeAuthService() *fakeAuthService {
	return &fakeAuthService{
		usersByName: make(map[string]*models.User),
		password:    "secret1",
		resetCalls:  make(map[string]string),
	}
}

func (f *fakeAuthService) add(u *models.User) { f.usersByName[u.Username] = u }

func (f *fakeAuthService) Login(username, password string) (*models.Session, error) {
	u := f.usersByName[username]
	if u == nil || password != f.password {
		return nil, services.ErrInvalidCredentials
	}
	return sessions.New(u.ID), nil
}

func (f *fakeAuthService) Signup(email, username, name, password string) (*models.Session, error) {
	if f.signupErr != nil {
		return nil, f.signupErr
	}
	f.signedUp = append(f.signedUp, email)
	return sessions.New(uuid.NewString()), nil
}

func (f *fakeAuthService) ResetPassword(username, newPassword string) error {
	if _, ok := f.usersByName[username]; !ok {
		return services.ErrUserNotFound
	}
	f.resetCalls[username] = newPassword
	return nil
}

func (f *fakeAuthService) GetUserByID(id string) (*models.User, error) {
	for _, u := range f.usersByName {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeAuthService) GetUserByEmail(email string) (*models.User, error) {
	for _, u := range f.usersByName {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeAuthService) GetUserByEmailOrUsername(identifier string) (*models.User, error) {
	if u := f.usersByName[identifier]; u != nil {
		return u, nil
	}
	return f.GetUserByEmail(identifier)
}

var _ services.AuthService = (*fakeAuthService)(nil)

// fakeVerificationService records issues and accepts a single code once.
type fakeVerificationService struct {
	issued     []string // targets passed to Issue
	acceptCode string
	consumed   []string
	issueErr   error
}

func (f *fakeVerificationService) Issue(target, vtype string, period time.Duration, redirectTo string) (*services.IssuedVerification, error) {
	if f.issueErr != nil {
		return nil, f.issueErr
	}
	f.issued = append(f.issued, target)
	return &services.IssuedVerification{
		OTP:        f.acceptCode,
		VerifyURL:  "http://localhost:8080/verify?type=" + vtype + "&target=" + target + "&code=" + f.acceptCode,
		RedirectTo: "http://localhost:8080/verify?type=" + vtype + "&target=" + target,
	}, nil
}

func (f *fakeVerificationService) Consume(target, vtype, code string) (bool, error) {
	if code != f.acceptCode {
		return false, nil
	}
	key := target + "|" + vtype
	for _, c := range f.consumed {
		if c == key {
			return false, nil
		}
	}
	f.consumed = append(f.consumed, key)
	return true, nil
}

var _ services.VerificationService = (*fakeVerificationService)(nil)

// fakeEmailService captures outbound mail.
type fakeEmailService struct {
	sent    []string // recipients
	sendErr error
}

func (f *fakeEmailService) SendVerificationEmail(to, code, verifyURL string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, to)
	return nil
}

func (f *fakeEmailService) SendPasswordResetEmail(to, code, verifyURL string) error {
	return f.SendVerificationEmail(to, code, verifyURL)
}

var _ services.EmailService = (*fakeEmailService)(nil)

var errSendFailed = errors.New("smtp unreachable")

func findRespCookie(t *testing.T, w *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// verifyCookieFor mints a verification cookie the way the verify step
// would, for requests that enter mid-flow.
func verifyCookieFor(t *testing.T, codec *sessions.CookieCodec, pending string) *http.Cookie {
	t.Helper()
	w := httptest.NewRecorder()
	if err := codec.SetVerifyCookie(w, pending); err != nil {
		t.Fatalf("set verify cookie: %v", err)
	}
	c := findRespCookie(t, w, sessions.VerifyCookieName)
	if c == nil {
		t.Fatal("verification cookie not set")
	}
	return c
}
