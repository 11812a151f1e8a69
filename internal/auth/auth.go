package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/mrimoveis/brokersite/internal/store"
)

var (
	ErrMissingField       = errors.New("username and password are required")
	ErrWrongInstallKey    = errors.New("installation key does not match")
	ErrAdminExists        = errors.New("an administrator is already configured")
	ErrNotConfigured      = errors.New("no administrator is configured")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid session token")
	ErrExpiredToken       = errors.New("session token expired")
)

// Credential is the single durable admin record. The password is stored as
// a bcrypt hash, never in the clear.
type Credential struct {
	Username     string `json:"username"`
	PasswordHash string `json:"password_hash"`
}

// credentialStore is the subset of store.SettingsStore the manager requires.
type credentialStore interface {
	GetJSON(ctx context.Context, key string, v any) (bool, error)
	SetJSON(ctx context.Context, key string, v any) error
}

// Manager owns the one-admin credential bootstrap and session tokens.
//
// The system is single tenant: there is exactly one credential, created once
// through Register and never rotated. The installation key only stops a
// stranger from self-registering before the site owner does. If the
// credential is lost the only recourse is clearing the durable store.
type Manager struct {
	settings   credentialStore
	installKey string
	secret     []byte
	sessionTTL time.Duration
}

const DefaultSessionTTL = 12 * time.Hour

func NewManager(settings credentialStore, installKey string, secret []byte, sessionTTL time.Duration) *Manager {
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}
	return &Manager{
		settings:   settings,
		installKey: installKey,
		secret:     secret,
		sessionTTL: sessionTTL,
	}
}

// Configured reports whether the admin credential exists.
func (m *Manager) Configured(ctx context.Context) (bool, error) {
	var cred Credential
	return m.settings.GetJSON(ctx, store.KeyAdminCredential, &cred)
}

// Register creates the one admin credential. Permitted only while no
// credential exists; the transition to configured is permanent.
func (m *Manager) Register(ctx context.Context, username, password, installKey string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return ErrMissingField
	}
	if installKey != m.installKey {
		return ErrWrongInstallKey
	}

	configured, err := m.Configured(ctx)
	if err != nil {
		return err
	}
	if configured {
		return ErrAdminExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return m.settings.SetJSON(ctx, store.KeyAdminCredential, &Credential{
		Username:     username,
		PasswordHash: string(hash),
	})
}

// Login verifies the pair against the stored credential and returns a signed
// session token.
func (m *Manager) Login(ctx context.Context, username, password string) (string, error) {
	var cred Credential
	ok, err := m.settings.GetJSON(ctx, store.KeyAdminCredential, &cred)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrNotConfigured
	}

	if strings.TrimSpace(username) != cred.Username {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return m.generate(cred.Username)
}

// Verify validates a session token and returns the admin principal.
func (m *Manager) Verify(tokenString string) (Principal, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Principal{}, ErrExpiredToken
		}
		return Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return Principal{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Principal{}, ErrInvalidToken
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return Principal{}, ErrInvalidToken
	}

	return Principal{Username: sub}, nil
}

func (m *Manager) generate(username string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": username,
		"iat": now.Unix(),
		"exp": now.Add(m.sessionTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}
