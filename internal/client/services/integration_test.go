package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/brokerdesk/internal/client/client"
	"github.com/dmitrijs2005/brokerdesk/internal/client/models"
	"github.com/dmitrijs2005/brokerdesk/internal/client/store"
	"github.com/dmitrijs2005/brokerdesk/internal/logging"
)

// fakeAPI is a minimal REST backend serving login, profile and properties.
type fakeAPI struct {
	mu    sync.Mutex
	props []models.Property
	down  atomic.Bool
	seq   int
}

func (a *fakeAPI) router() http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if a.down.Load() {
				writeTestJSON(w, http.StatusServiceUnavailable, map[string]any{"success": false, "message": "maintenance"})
				return
			}
			next.ServeHTTP(w, req)
		})
	})
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeTestJSON(w, http.StatusOK, map[string]any{"success": true})
	})
	r.Post("/auth/admin/login", func(w http.ResponseWriter, _ *http.Request) {
		writeTestJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{
			"token": "srv-token", "user": adminPrincipal,
		}})
	})
	r.Get("/auth/profile", func(w http.ResponseWriter, req *http.Request) {
		if req.Header.Get("Authorization") != "Bearer srv-token" {
			writeTestJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Invalid token"})
			return
		}
		writeTestJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{"user": adminPrincipal}})
	})
	r.Get("/properties", func(w http.ResponseWriter, req *http.Request) {
		a.mu.Lock()
		defer a.mu.Unlock()
		limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
		writeTestJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{
			"properties": a.props,
			"pagination": models.Pagination{CurrentPage: 1, TotalPages: models.TotalPagesFor(len(a.props), limit), Total: len(a.props)},
		}})
	})
	r.Post("/properties", func(w http.ResponseWriter, req *http.Request) {
		if req.Header.Get("Authorization") != "Bearer srv-token" {
			writeTestJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Not authorized"})
			return
		}
		var p models.Property
		if err := json.NewDecoder(req.Body).Decode(&p); err != nil {
			writeTestJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": err.Error()})
			return
		}
		a.mu.Lock()
		a.seq++
		p.ID = "64f0c0ffee" + strconv.Itoa(a.seq)
		a.props = append([]models.Property{p}, a.props...)
		a.mu.Unlock()
		writeTestJSON(w, http.StatusCreated, map[string]any{"success": true, "data": map[string]any{"property": p}})
	})
	return r
}

func writeTestJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestIntegration_OfflineCreateSurvivesRecovery(t *testing.T) {
	api := &fakeAPI{}
	srv := httptest.NewServer(api.router())
	t.Cleanup(srv.Close)

	log := logging.NewNop()
	c, err := client.New(srv.URL, 2*time.Second, log)
	require.NoError(t, err)
	st := store.NewMemoryStore()
	auth := NewAuthService(c, st, log)
	cat := NewCatalog(c, st, auth, log, placeholder, ResourceOptions{FallbackOnValidation: true})
	ctx := context.Background()

	_, err = auth.Login(ctx, models.Credentials{Email: "ada@example.com", Password: "pw"}, true)
	require.NoError(t, err)

	online, err := cat.Properties.Create(ctx, models.Property{Title: "Harbor Loft", Price: 350000})
	require.NoError(t, err)
	assert.False(t, store.IsLocalID(online.ID))

	api.down.Store(true)
	villa, err := cat.Properties.Create(ctx, models.Property{Title: "Lakeview Villa"})
	require.NoError(t, err)
	assert.True(t, store.IsLocalID(villa.ID))
	assert.Equal(t, "available", villa.Status)
	assert.NotEmpty(t, villa.Images)

	page, err := cat.Properties.List(ctx, models.ListParams{})
	require.NoError(t, err)
	assert.Equal(t, models.SourceLocal, page.Source)
	assert.Equal(t, []string{villa.ID}, ids(page.Items))

	api.down.Store(false)
	page, err = cat.Properties.List(ctx, models.ListParams{})
	require.NoError(t, err)
	assert.Equal(t, models.SourceMerged, page.Source)
	assert.Equal(t, []string{villa.ID, online.ID}, ids(page.Items))
	assert.Equal(t, 2, page.Pagination.Total)

	// A second process sharing the store restores the session.
	c2, err := client.New(srv.URL, 2*time.Second, log)
	require.NoError(t, err)
	auth2 := NewAuthService(c2, st, log)
	require.NoError(t, auth2.RestoreSession(ctx))
	assert.True(t, auth2.IsAuthenticated())
}

func TestIntegration_UnreachableBackend(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	log := logging.NewNop()
	c, err := client.New(url, time.Second, log)
	require.NoError(t, err)
	st := store.NewMemoryStore()
	auth := NewAuthService(c, st, log, WithFallbackAdmin(testFallbackAdmin(t)))
	cat := NewCatalog(c, st, auth, log, placeholder, ResourceOptions{})
	ctx := context.Background()

	_, err = auth.Login(ctx, models.Credentials{Email: fallbackEmail, Password: fallbackPassword}, true)
	require.NoError(t, err)
	require.True(t, auth.Token().IsFallback())

	blog, err := cat.Blogs.Create(ctx, models.Blog{Title: "Market update", Content: "Prices are up."})
	require.NoError(t, err)
	assert.Equal(t, DefaultBlogAuthor, blog.Author)

	page, err := cat.Blogs.List(ctx, models.ListParams{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)

	require.NoError(t, cat.Blogs.Remove(ctx, blog.ID))
	page, err = cat.Blogs.List(ctx, models.ListParams{})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.True(t, auth.IsAuthenticated())
}
