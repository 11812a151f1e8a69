package auth

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memSettings is an in-memory credentialStore for tests.
type memSettings struct {
	records map[string][]byte
}

func newMemSettings() *memSettings {
	return &memSettings{records: make(map[string][]byte)}
}

func (m *memSettings) GetJSON(_ context.Context, key string, v any) (bool, error) {
	raw, ok := m.records[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, v)
}

func (m *memSettings) SetJSON(_ context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.records[key] = raw
	return nil
}

func newTestManager() *Manager {
	return NewManager(newMemSettings(), "MR-ADMIN-2025", []byte("test-secret"), time.Hour)
}

func TestRegisterMissingFields(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()

	assert.ErrorIs(t, m.Register(ctx, "", "pass", "MR-ADMIN-2025"), ErrMissingField)
	assert.ErrorIs(t, m.Register(ctx, "maria", "", "MR-ADMIN-2025"), ErrMissingField)

	configured, err := m.Configured(ctx)
	require.NoError(t, err)
	assert.False(t, configured)
}

func TestRegisterWrongInstallKey(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()

	err := m.Register(ctx, "maria", "secret", "wrong-key")
	assert.ErrorIs(t, err, ErrWrongInstallKey)

	// The failed attempt must leave no credential behind.
	configured, err := m.Configured(ctx)
	require.NoError(t, err)
	assert.False(t, configured)
}

func TestRegisterThenLogin(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()

	require.NoError(t, m.Register(ctx, "maria", "secret", "MR-ADMIN-2025"))

	configured, err := m.Configured(ctx)
	require.NoError(t, err)
	assert.True(t, configured)

	token, err := m.Login(ctx, "maria", "secret")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	principal, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "maria", principal.Username)
}

func TestRegisterOnlyOnce(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()

	require.NoError(t, m.Register(ctx, "maria", "secret", "MR-ADMIN-2025"))

	err := m.Register(ctx, "intruder", "other", "MR-ADMIN-2025")
	assert.ErrorIs(t, err, ErrAdminExists)

	// The original credential still wins.
	_, err = m.Login(ctx, "maria", "secret")
	assert.NoError(t, err)
	_, err = m.Login(ctx, "intruder", "other")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginBeforeRegister(t *testing.T) {
	m := newTestManager()

	_, err := m.Login(context.Background(), "maria", "secret")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestLoginWrongPassword(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()

	require.NoError(t, m.Register(ctx, "maria", "secret", "MR-ADMIN-2025"))

	_, err := m.Login(ctx, "maria", "nope")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = m.Login(ctx, "mario", "secret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestPasswordStoredHashed(t *testing.T) {
	settings := newMemSettings()
	m := NewManager(settings, "MR-ADMIN-2025", []byte("test-secret"), time.Hour)
	ctx := context.Background()

	require.NoError(t, m.Register(ctx, "maria", "secret", "MR-ADMIN-2025"))

	var cred Credential
	ok, err := settings.GetJSON(ctx, "admin_credential", &cred)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "maria", cred.Username)
	assert.NotContains(t, cred.PasswordHash, "secret")
}

func TestVerifyTamperedToken(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()

	require.NoError(t, m.Register(ctx, "maria", "secret", "MR-ADMIN-2025"))
	token, err := m.Login(ctx, "maria", "secret")
	require.NoError(t, err)

	other := NewManager(newMemSettings(), "MR-ADMIN-2025", []byte("different-secret"), time.Hour)
	_, err = other.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyExpiredToken(t *testing.T) {
	settings := newMemSettings()
	m := NewManager(settings, "MR-ADMIN-2025", []byte("test-secret"), time.Nanosecond)
	ctx := context.Background()

	require.NoError(t, m.Register(ctx, "maria", "secret", "MR-ADMIN-2025"))
	token, err := m.Login(ctx, "maria", "secret")
	require.NoError(t, err)

	time.Sleep(2 * time.Second)

	_, err = m.Verify(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestVerifyGarbageToken(t *testing.T) {
	m := newTestManager()

	_, err := m.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPrincipalContextRoundTrip(t *testing.T) {
	ctx := context.Background()

	_, ok := FromContext(ctx)
	assert.False(t, ok)

	ctx = ContextWithPrincipal(ctx, Principal{Username: "maria"})
	p, ok := FromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "maria", p.Username)
}
