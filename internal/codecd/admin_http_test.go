package codecd

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/codecrun/internal/resourcemanager"
)

type fakeReclaimable struct {
	lastActivity time.Time
	closed       bool
}

func (f *fakeReclaimable) LastActivity() time.Time { return f.lastActivity }
func (f *fakeReclaimable) ReclaimedClose() error {
	f.closed = true
	return nil
}

func setupAdminRouter(registry *resourcemanager.Manager) *chi.Mux {
	router := chi.NewRouter()
	api := humachi.New(router, huma.DefaultConfig("Admin Test API", "1.0.0"))
	NewAdminHandler(registry).Register(api)
	return router
}

func TestListCodecsReturnsRegisteredInstances(t *testing.T) {
	registry := resourcemanager.New()
	registry.Register(resourcemanager.Kind{Operation: "encoder", Media: "video"}, &fakeReclaimable{lastActivity: time.Now()})
	router := setupAdminRouter(registry)

	req := httptest.NewRequest(http.MethodGet, "/codecs", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Codecs []CodecSummary `json:"codecs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Codecs, 1)
	require.Equal(t, "encoder", body.Codecs[0].Operation)
}

func TestGetCodecNotFound(t *testing.T) {
	registry := resourcemanager.New()
	router := setupAdminRouter(registry)

	req := httptest.NewRequest(http.MethodGet, "/codecs/missing", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReclaimCodecClosesInstance(t *testing.T) {
	registry := resourcemanager.New()
	f := &fakeReclaimable{lastActivity: time.Now()}
	registry.Register(resourcemanager.Kind{Operation: "decoder", Media: "audio"}, f)
	id := registry.List()[0].ID
	router := setupAdminRouter(registry)

	req := httptest.NewRequest(http.MethodPost, "/codecs/"+id+"/reclaim", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Reclaimed bool `json:"reclaimed"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.True(t, body.Reclaimed)
	require.True(t, f.closed)
}
