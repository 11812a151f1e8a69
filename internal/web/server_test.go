package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrimoveis/brokersite/internal/auth"
	"github.com/mrimoveis/brokersite/internal/chat"
	"github.com/mrimoveis/brokersite/internal/db"
	"github.com/mrimoveis/brokersite/internal/domain"
	"github.com/mrimoveis/brokersite/internal/photostore/local"
	"github.com/mrimoveis/brokersite/internal/service"
	"github.com/mrimoveis/brokersite/internal/store"
	"github.com/mrimoveis/brokersite/internal/web"
)

const testInstallKey = "MR-ADMIN-2025"

// fakeAssistant implements chat.Assistant without a provider.
type fakeAssistant struct {
	reply string
	err   error
}

func (f *fakeAssistant) Ask(_ context.Context, _ string, _ []domain.ChatMessage) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

type testEnv struct {
	server    *httptest.Server
	assistant *fakeAssistant
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	database, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	listings := store.NewListingStore(database)
	categories := store.NewCategoryStore(database)
	settings := store.NewSettingsStore(database)

	photos, err := local.NewLocalPhotoStore(t.TempDir())
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	authMgr := auth.NewManager(settings, testInstallKey, []byte("test-secret"), time.Hour)
	assistant := &fakeAssistant{reply: "Temos sim!"}

	catalog := service.NewCatalogService(listings, categories, settings)
	admin := service.NewAdminService(listings, categories, settings, photos, logger)

	srv := httptest.NewServer(web.NewServer(catalog, admin, authMgr, assistant, photos, logger))
	t.Cleanup(srv.Close)

	return &testEnv{server: srv, assistant: assistant}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()

	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		payload = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, e.server.URL+path, payload)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

// register bootstraps the admin and returns a session token.
func (e *testEnv) register(t *testing.T) string {
	t.Helper()

	resp := e.do(t, http.MethodPost, "/api/register", "", map[string]string{
		"username": "maria", "password": "secret", "install_key": testInstallKey,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = e.do(t, http.MethodPost, "/api/login", "", map[string]string{
		"username": "maria", "password": "secret",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	decodeBody(t, resp, &body)
	require.NotEmpty(t, body["token"])
	return body["token"]
}

func listingPayload(title string) map[string]any {
	return map[string]any{
		"title":    title,
		"location": "Centro, Mogi das Cruzes",
		"price":    "R$ 450.000",
		"beds":     3,
		"baths":    2,
		"sqft":     120,
		"images":   []string{"https://example.com/a.jpg"},
		"type":     "sale",
		"category": "Houses",
	}
}

func TestSessionBootstrapFlow(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/api/session", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var session map[string]bool
	decodeBody(t, resp, &session)
	assert.False(t, session["configured"])
	assert.False(t, session["authenticated"])

	// Login before setup is a distinct conflict, not a credential failure.
	resp = env.do(t, http.MethodPost, "/api/login", "", map[string]string{
		"username": "maria", "password": "secret",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/register", "", map[string]string{
		"username": "maria", "password": "secret", "install_key": "wrong",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	token := env.register(t)

	resp = env.do(t, http.MethodGet, "/api/session", token, nil)
	decodeBody(t, resp, &session)
	assert.True(t, session["configured"])
	assert.True(t, session["authenticated"])

	// A second registration is refused even with the right key.
	resp = env.do(t, http.MethodPost, "/api/register", "", map[string]string{
		"username": "other", "password": "pass", "install_key": testInstallKey,
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	var body map[string]string
	decodeBody(t, resp, &body)
	assert.Equal(t, "already_configured", body["code"])
}

func TestAdminRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t)
	env.register(t)

	resp := env.do(t, http.MethodPost, "/api/admin/listings", "", listingPayload("Invasor"))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/admin/listings", "garbage-token", listingPayload("Invasor"))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/listings", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var listings []json.RawMessage
	decodeBody(t, resp, &listings)
	assert.Empty(t, listings)
}

func TestListingLifecycle(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t)

	resp := env.do(t, http.MethodPost, "/api/admin/listings", token, listingPayload("Primeira"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/admin/listings", token, listingPayload("Segunda"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created domain.Listing
	decodeBody(t, resp, &created)
	assert.Equal(t, domain.StatusAvailable, created.Status)
	assert.True(t, created.Featured)

	// Newest first on the public view.
	resp = env.do(t, http.MethodGet, "/api/listings", "", nil)
	var listings []domain.Listing
	decodeBody(t, resp, &listings)
	require.Len(t, listings, 2)
	assert.Equal(t, "Segunda", listings[0].Title)

	// Selling hides it from the default and featured views but not from all.
	resp = env.do(t, http.MethodPut, "/api/admin/listings/"+created.ID+"/status", token,
		map[string]string{"status": "sold"})
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/listings", "", nil)
	decodeBody(t, resp, &listings)
	require.Len(t, listings, 1)
	assert.Equal(t, "Primeira", listings[0].Title)

	resp = env.do(t, http.MethodGet, "/api/listings?view=featured", "", nil)
	decodeBody(t, resp, &listings)
	require.Len(t, listings, 1)

	resp = env.do(t, http.MethodGet, "/api/listings?view=all", "", nil)
	decodeBody(t, resp, &listings)
	assert.Len(t, listings, 2)

	// Single fetch and removal.
	resp = env.do(t, http.MethodGet, "/api/listings/"+created.ID, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodDelete, "/api/admin/listings/"+created.ID, token, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/listings/"+created.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAddListingValidationError(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t)

	payload := listingPayload("Sem fotos")
	payload["images"] = []string{}

	resp := env.do(t, http.MethodPost, "/api/admin/listings", token, payload)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var body map[string]string
	decodeBody(t, resp, &body)
	assert.Equal(t, "validation_failed", body["code"])
}

func TestCategoriesWithCounts(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t)

	resp := env.do(t, http.MethodPost, "/api/admin/categories", token, map[string]string{
		"name": "Houses", "image": "https://example.com/h.jpg",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var category domain.Category
	decodeBody(t, resp, &category)

	resp = env.do(t, http.MethodPost, "/api/admin/listings", token, listingPayload("Casa"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/categories", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var summaries []struct {
		domain.Category
		Count int `json:"count"`
	}
	decodeBody(t, resp, &summaries)
	require.Len(t, summaries, 1)
	assert.Equal(t, "Houses", summaries[0].Name)
	assert.Equal(t, 1, summaries[0].Count)

	resp = env.do(t, http.MethodDelete, "/api/admin/categories/"+category.ID, token, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/categories", "", nil)
	decodeBody(t, resp, &summaries)
	assert.Empty(t, summaries)
}

func TestHeroImage(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t)

	resp := env.do(t, http.MethodGet, "/api/hero", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	decodeBody(t, resp, &body)
	assert.Equal(t, domain.DefaultHeroImage, body["image"])

	resp = env.do(t, http.MethodPut, "/api/admin/hero", token, map[string]string{
		"image": "/photos/hero_custom.jpg",
	})
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/hero", "", nil)
	decodeBody(t, resp, &body)
	assert.Equal(t, "/photos/hero_custom.jpg", body["image"])

	// Clearing falls back to the default.
	resp = env.do(t, http.MethodPut, "/api/admin/hero", token, map[string]string{"image": ""})
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/hero", "", nil)
	decodeBody(t, resp, &body)
	assert.Equal(t, domain.DefaultHeroImage, body["image"])
}

func TestChat(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/chat", "", map[string]any{
		"message": "Tem casas no centro?",
		"history": []domain.ChatMessage{{Role: domain.RoleAssistant, Content: "Olá!"}},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	decodeBody(t, resp, &body)
	assert.Equal(t, "Temos sim!", body["reply"])

	resp = env.do(t, http.MethodPost, "/api/chat", "", map[string]string{"message": "  "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestChatFailureTaxonomy(t *testing.T) {
	env := newTestEnv(t)

	cases := []struct {
		err    error
		status int
		code   string
	}{
		{chat.ErrNoCredential, http.StatusServiceUnavailable, "credential_missing"},
		{fmt.Errorf("%w: invalid x-api-key", chat.ErrProviderAuth), http.StatusBadGateway, "provider_auth"},
		{fmt.Errorf("%w: status 429", chat.ErrProviderUnavailable), http.StatusBadGateway, "provider_unavailable"},
	}
	for _, tc := range cases {
		env.assistant.err = tc.err

		resp := env.do(t, http.MethodPost, "/api/chat", "", map[string]string{"message": "Ola"})
		assert.Equal(t, tc.status, resp.StatusCode)
		var body map[string]string
		decodeBody(t, resp, &body)
		assert.Equal(t, tc.code, body["code"])
	}
}

func TestPhotoUploadAndFetch(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="photo"; filename="casa.jpg"`)
	header.Set("Content-Type", "image/jpeg")
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte("jpeg-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, env.server.URL+"/api/admin/photos?kind=listing", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body map[string]string
	decodeBody(t, resp, &body)
	require.NotEmpty(t, body["key"])
	assert.Equal(t, "/photos/"+body["key"], body["ref"])

	fetch := env.do(t, http.MethodGet, body["ref"], "", nil)
	require.Equal(t, http.StatusOK, fetch.StatusCode)
	assert.Equal(t, "image/jpeg", fetch.Header.Get("Content-Type"))
	data, err := io.ReadAll(fetch.Body)
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))

	// Unknown kinds are rejected up front.
	resp = env.do(t, http.MethodPost, "/api/admin/photos?kind=banner", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSecurityHeaders(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/api/hero", "", nil)
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
	assert.Equal(t, "strict-origin-when-cross-origin", resp.Header.Get("Referrer-Policy"))
}
