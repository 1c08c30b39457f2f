package transport

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/kripanshu-singh/congkong-livescore/logging"
)

const (
	RoleAdmin = "admin"
	RoleJudge = "judge"

	ContextRole    = "auth.role"
	ContextSubject = "auth.subject"

	adminTokenHeader = "x-admin-token"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAdminNotConfigured = errors.New("admin credentials are not configured")
	ErrInvalidToken       = errors.New("invalid token")
)

type AuthSettings struct {
	AdminID       string
	AdminPassword string
	AdminToken    string
	JudgeCode     string
	JWTSecret     string
	TokenTTL      time.Duration
}

// Claims are the session claims of an admin or a judge. Subject is the admin id
// or the judge id.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Authenticator issues and checks session tokens.
type Authenticator struct {
	secret     []byte
	adminID    string
	adminHash  []byte
	adminToken string
	judgeCode  string
	ttl        time.Duration
	now        func() time.Time
}

// NewAuthenticator hashes the admin password once. Without a JWT secret a random
// one is generated, so tokens do not survive a restart.
func NewAuthenticator(s AuthSettings) (*Authenticator, error) {
	a := &Authenticator{
		secret:     []byte(s.JWTSecret),
		adminID:    s.AdminID,
		adminToken: s.AdminToken,
		judgeCode:  s.JudgeCode,
		ttl:        s.TokenTTL,
		now:        time.Now,
	}
	if len(a.secret) == 0 {
		logging.Log.Warn("AUTH: no jwt secret configured, generating an ephemeral one")
		a.secret = []byte(uuid.NewString() + uuid.NewString())
	}
	if a.ttl <= 0 {
		a.ttl = 12 * time.Hour
	}
	if s.AdminID != "" && s.AdminPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(s.AdminPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		a.adminHash = hash
	} else {
		logging.Log.Warn("AUTH: admin credentials are not configured, admin login is disabled")
	}
	return a, nil
}

// LoginAdmin checks the admin credential pair and returns a session token.
func (a *Authenticator) LoginAdmin(id, password string) (string, time.Time, error) {
	if len(a.adminHash) == 0 {
		return "", time.Time{}, ErrAdminNotConfigured
	}
	if subtle.ConstantTimeCompare([]byte(id), []byte(a.adminID)) != 1 {
		return "", time.Time{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(a.adminHash, []byte(password)); err != nil {
		return "", time.Time{}, ErrInvalidCredentials
	}
	return a.Issue(RoleAdmin, id)
}

// LoginJudge checks the shared judge access code, when one is configured, and
// returns a token for judgeID. The caller verifies that the judge exists.
func (a *Authenticator) LoginJudge(judgeID, code string) (string, time.Time, error) {
	if judgeID == "" {
		return "", time.Time{}, ErrInvalidCredentials
	}
	if a.judgeCode != "" && subtle.ConstantTimeCompare([]byte(code), []byte(a.judgeCode)) != 1 {
		return "", time.Time{}, ErrInvalidCredentials
	}
	return a.Issue(RoleJudge, judgeID)
}

func (a *Authenticator) Issue(role, subject string) (string, time.Time, error) {
	now := a.now()
	exp := now.Add(a.ttl)
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, exp, nil
}

func (a *Authenticator) Parse(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	}, jwt.WithTimeFunc(a.now))
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Role != RoleAdmin && claims.Role != RoleJudge {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// staticAdmin reports whether token is the configured static admin token.
func (a *Authenticator) staticAdmin(token string) bool {
	return a.adminToken != "" && subtle.ConstantTimeCompare([]byte(token), []byte(a.adminToken)) == 1
}

// Identify resolves a raw token (static admin token or jwt) to a role and subject.
func (a *Authenticator) Identify(token string) (role, subject string, err error) {
	if token == "" {
		return "", "", ErrInvalidToken
	}
	if a.staticAdmin(token) {
		return RoleAdmin, a.adminID, nil
	}
	claims, err := a.Parse(token)
	if err != nil {
		return "", "", err
	}
	return claims.Role, claims.Subject, nil
}

func bearer(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// AdminAuthMiddleware accepts the static x-admin-token or an admin bearer token.
func AdminAuthMiddleware(a *Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if a.staticAdmin(c.GetHeader(adminTokenHeader)) {
			c.Set(ContextRole, RoleAdmin)
			c.Set(ContextSubject, a.adminID)
			c.Next()
			return
		}

		role, subject, err := a.Identify(bearer(c))
		if err != nil || role != RoleAdmin {
			logging.Log.Warnf("ADMIN: Unauthorized access attempt to %s", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Set(ContextRole, role)
		c.Set(ContextSubject, subject)
		c.Next()
	}
}

// JudgeAuthMiddleware requires a judge bearer token and exposes the judge id.
func JudgeAuthMiddleware(a *Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, subject, err := a.Identify(bearer(c))
		if err != nil {
			logging.Log.Warnf("JUDGE: Unauthorized access attempt to %s", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if role != RoleJudge {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "judge session required"})
			return
		}
		c.Set(ContextRole, role)
		c.Set(ContextSubject, subject)
		c.Next()
	}
}

// Subject returns the authenticated subject set by the auth middlewares.
func Subject(c *gin.Context) string {
	return c.GetString(ContextSubject)
}
