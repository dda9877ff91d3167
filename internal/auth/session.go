package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"golang.org/x/crypto/bcrypt"
)

const (
	sessionCookie = "reportdesk_session"
	sessionMaxAge = 24 * time.Hour
	loginPath     = "/admin/login"
)

// ErrInvalidCredentials is returned on any failed login attempt. The
// caller gets no hint about which of the two values was wrong.
var ErrInvalidCredentials = errors.New("invalid credentials")

type Claims struct {
	Admin bool `json:"admin"`
	jwt.StandardClaims
}

// Manager gates the admin surface. The session is a signed claim in an
// HTTP-only cookie: either the visitor carries a valid admin claim or
// they are anonymous, nothing in between.
type Manager struct {
	username     string
	passwordHash []byte
	secret       []byte
}

// NewManager hashes the configured admin password once up front. The
// signing secret is generated per process, so restarting the server
// logs every admin out.
func NewManager(username, password string) (*Manager, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash admin password: %w", err)
	}

	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("failed to generate session secret: %w", err)
	}

	return &Manager{
		username:     username,
		passwordHash: hash,
		secret:       secret,
	}, nil
}

// Login validates the credential pair and, on success, sets the admin
// session cookie. On failure nothing about the session changes.
func (m *Manager) Login(c *gin.Context, username, password string) error {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(m.username)) == 1
	passOK := bcrypt.CompareHashAndPassword(m.passwordHash, []byte(password)) == nil
	if !userOK || !passOK {
		return ErrInvalidCredentials
	}

	claims := Claims{
		Admin: true,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(sessionMaxAge).Unix(),
			IssuedAt:  time.Now().Unix(),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return fmt.Errorf("failed to sign session token: %w", err)
	}

	c.SetCookie(sessionCookie, token, int(sessionMaxAge.Seconds()), "/", "", false, true)
	return nil
}

// Logout clears the session cookie unconditionally.
func (m *Manager) Logout(c *gin.Context) {
	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
}

// IsAdmin reports whether the request carries a valid admin session.
func (m *Manager) IsAdmin(c *gin.Context) bool {
	cookie, err := c.Cookie(sessionCookie)
	if err != nil {
		return false
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(cookie, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return false
	}
	return claims.Admin
}

// RequireAdmin redirects anonymous visitors to the login form.
func (m *Manager) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.IsAdmin(c) {
			c.Redirect(http.StatusFound, loginPath)
			c.Abort()
			return
		}
		c.Next()
	}
}
