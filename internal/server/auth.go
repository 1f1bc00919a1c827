package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	jwtExpiry         = 7 * 24 * time.Hour // 7 days
	defaultBcryptCost = 12
	minPasswordLen    = 4
	minUsernameLen    = 2
	maxUsernameLen    = 16
	loginRateWindow   = 60 * time.Second
	maxLoginAttempts  = 10
)

// ErrInvalidToken is returned for tokens that fail signature, expiry or claim checks
var ErrInvalidToken = errors.New("invalid token")

// ErrBadCredentials is returned when a claimed username gets the wrong password
var ErrBadCredentials = errors.New("invalid username or password")

// AuthStore is the persistence Auth needs
type AuthStore interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	PassHash(ctx context.Context, username string) (string, error)
	SetPassHash(ctx context.Context, username, hash string) error
	RegisterUser(ctx context.Context, username string) error
}

// Auth binds connections to usernames with signed tokens
type Auth struct {
	db         AuthStore
	jwtSecret  []byte
	bcryptCost int

	// Rate limiting for login attempts (IP -> attempts)
	rateMu  sync.Mutex
	rateMap map[string]*rateEntry
}

type rateEntry struct {
	Count   int
	ResetAt time.Time
}

// NewAuth creates a new Auth handler
func NewAuth(ctx context.Context, db AuthStore) *Auth {
	return &Auth{
		db:         db,
		jwtSecret:  loadOrCreateSecret(ctx, db),
		bcryptCost: defaultBcryptCost,
		rateMap:    make(map[string]*rateEntry),
	}
}

// loadOrCreateSecret loads the JWT secret from the database, or generates
// and persists a new one if none exists.
func loadOrCreateSecret(ctx context.Context, db AuthStore) []byte {
	if db != nil {
		h, err := db.GetSetting(ctx, "jwt_secret")
		if err != nil {
			log.Printf("auth: load secret: %v", err)
		}
		if h != "" {
			if b, err := hex.DecodeString(h); err == nil && len(b) == 32 {
				return b
			}
		}
	}
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		panic("failed to generate JWT secret: " + err.Error())
	}
	if db != nil {
		if err := db.SetSetting(ctx, "jwt_secret", hex.EncodeToString(secret)); err != nil {
			log.Printf("auth: could not persist JWT secret: %v", err)
		}
	}
	return secret
}

// Login registers the username if needed and returns a token for it.
// The first password given for a username claims it; later logins must match.
func (a *Auth) Login(ctx context.Context, username, password, ip string) (string, string, error) {
	if !a.checkRate(ip) {
		return "", "", fmt.Errorf("too many login attempts, try again later")
	}

	username = strings.TrimSpace(username)
	if len(username) < minUsernameLen || len(username) > maxUsernameLen {
		return "", "", fmt.Errorf("username must be %d-%d characters", minUsernameLen, maxUsernameLen)
	}
	if password != "" && len(password) < minPasswordLen {
		return "", "", fmt.Errorf("password must be at least %d characters", minPasswordLen)
	}

	hash, err := a.db.PassHash(ctx, username)
	if err != nil {
		return "", "", fmt.Errorf("login %s: %w", username, err)
	}
	switch {
	case hash != "":
		if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
			return "", "", ErrBadCredentials
		}
	case password != "":
		h, err := bcrypt.GenerateFromPassword([]byte(password), a.bcryptCost)
		if err != nil {
			return "", "", fmt.Errorf("hash password: %w", err)
		}
		if err := a.db.SetPassHash(ctx, username, string(h)); err != nil {
			return "", "", fmt.Errorf("claim %s: %w", username, err)
		}
	default:
		if err := a.db.RegisterUser(ctx, username); err != nil {
			return "", "", fmt.Errorf("register %s: %w", username, err)
		}
	}

	token, err := a.generateToken(username)
	if err != nil {
		return "", "", fmt.Errorf("sign token: %w", err)
	}
	return username, token, nil
}

// ValidateToken validates a JWT and returns the username it was issued for
func (a *Auth) ValidateToken(tokenStr string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return a.jwtSecret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", ErrInvalidToken
	}
	username, ok := claims["usr"].(string)
	if !ok || username == "" {
		return "", fmt.Errorf("%w: missing username", ErrInvalidToken)
	}
	return username, nil
}

func (a *Auth) generateToken(username string) (string, error) {
	claims := jwt.MapClaims{
		"usr": username,
		"exp": time.Now().Add(jwtExpiry).Unix(),
		"iat": time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.jwtSecret)
}

func (a *Auth) checkRate(ip string) bool {
	a.rateMu.Lock()
	defer a.rateMu.Unlock()

	now := time.Now()
	entry, ok := a.rateMap[ip]
	if !ok || now.After(entry.ResetAt) {
		a.rateMap[ip] = &rateEntry{Count: 1, ResetAt: now.Add(loginRateWindow)}
		return true
	}
	entry.Count++
	return entry.Count <= maxLoginAttempts
}
