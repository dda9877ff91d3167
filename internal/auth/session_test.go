package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/admin/login", nil)
	return c, w
}

// carryCookies builds a follow-up request context carrying the cookies
// the previous response set.
func carryCookies(t *testing.T, w *httptest.ResponseRecorder) *gin.Context {
	t.Helper()
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/admin/add", nil)
	for _, cookie := range w.Result().Cookies() {
		c.Request.AddCookie(cookie)
	}
	return c
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	mgr, err := NewManager("admin", "supersecret")
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	testCases := []struct {
		name     string
		username string
		password string
	}{
		{name: "wrong password", username: "admin", password: "nope"},
		{name: "wrong username", username: "root", password: "supersecret"},
		{name: "both empty", username: "", password: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c, w := newTestContext(t)
			if err := mgr.Login(c, tc.username, tc.password); !errors.Is(err, ErrInvalidCredentials) {
				t.Fatalf("expected ErrInvalidCredentials, got %v", err)
			}
			if len(w.Result().Cookies()) != 0 {
				t.Error("failed login must not mutate the session")
			}
			if mgr.IsAdmin(carryCookies(t, w)) {
				t.Error("failed login must leave the caller anonymous")
			}
		})
	}
}

func TestLoginLogoutStateMachine(t *testing.T) {
	mgr, err := NewManager("admin", "supersecret")
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	c, w := newTestContext(t)
	if mgr.IsAdmin(c) {
		t.Fatal("fresh context must be anonymous")
	}

	if err := mgr.Login(c, "admin", "supersecret"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	authed := carryCookies(t, w)
	if !mgr.IsAdmin(authed) {
		t.Fatal("valid login must authenticate the session")
	}

	// Logout clears the cookie unconditionally.
	w2 := httptest.NewRecorder()
	c2, _ := gin.CreateTestContext(w2)
	c2.Request = authed.Request
	mgr.Logout(c2)

	cookies := w2.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Value != "" || cookies[0].MaxAge >= 0 {
		t.Errorf("logout should expire the session cookie, got %+v", cookies)
	}
}

func TestSessionNotValidAcrossManagers(t *testing.T) {
	first, err := NewManager("admin", "supersecret")
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	second, err := NewManager("admin", "supersecret")
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	c, w := newTestContext(t)
	if err := first.Login(c, "admin", "supersecret"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	// The signing secret is per process; a cookie from one manager is
	// garbage to another.
	if second.IsAdmin(carryCookies(t, w)) {
		t.Error("session must not validate under a different signing secret")
	}
}

func TestTamperedCookieRejected(t *testing.T) {
	mgr, err := NewManager("admin", "supersecret")
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/admin/add", nil)
	c.Request.AddCookie(&http.Cookie{Name: "reportdesk_session", Value: "not-a-token"})

	if mgr.IsAdmin(c) {
		t.Error("garbage cookie must not authenticate")
	}
}
