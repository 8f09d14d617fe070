package httpapi_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	httpapi "github.com/PNG-POM/field-dashboard/internal/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func adminToken(t *testing.T, app *testApp, password string) string {
	t.Helper()
	_, env := app.postJSON(t, "/admin/api/v1/login", map[string]string{"password": password})
	require.Equal(t, httpapi.ResultSuccess, env.Code, env.Message)

	var result struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Result, &result))
	require.NotEmpty(t, result.Token)
	return result.Token
}

func TestAdminLogin_WrongPasswordDenied(t *testing.T) {
	app := newTestApp(t)

	_, env := app.postJSON(t, "/admin/api/v1/login", map[string]string{"password": "wrong"})
	assert.Equal(t, httpapi.ResultError, env.Code)
	assert.Contains(t, env.Message, "denied")
}

func TestAdminVisits_RequiresToken(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/admin/api/v1/visits", nil)
	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, httpapi.ResultTokenExpired, env.Code)
}

func TestAdminVisits_ListAndFilter(t *testing.T) {
	app := newTestApp(t)
	app.svc.SetClock(func() time.Time { return time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC) })

	for _, p := range []struct{ site, name string }{
		{"SITE01", "Alice"},
		{"SITE02", "Bob"},
	} {
		_, env := app.postJSON(t, "/visit/api/v1/login", map[string]string{"site_id": p.site, "name": p.name})
		require.Equal(t, httpapi.ResultSuccess, env.Code)
	}

	token := adminToken(t, app, "noc123")

	get := func(path string) envelope {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("X-Admin-Token", token)
		w := httptest.NewRecorder()
		app.router.ServeHTTP(w, req)
		var env envelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		return env
	}

	env := get("/admin/api/v1/visits")
	require.Equal(t, httpapi.ResultSuccess, env.Code)
	var list struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Result, &list))
	assert.Equal(t, 2, list.Total)

	env = get("/admin/api/v1/visits?name=alice")
	require.Equal(t, httpapi.ResultSuccess, env.Code)
	require.NoError(t, json.Unmarshal(env.Result, &list))
	assert.Equal(t, 1, list.Total)

	env = get("/admin/api/v1/visits/summary")
	require.Equal(t, httpapi.ResultSuccess, env.Code)
	var summary struct {
		Total int `json:"total"`
		Open  int `json:"open"`
	}
	require.NoError(t, json.Unmarshal(env.Result, &summary))
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 2, summary.Open)
}

func TestAdminExportCSV(t *testing.T) {
	app := newTestApp(t)
	app.svc.SetClock(func() time.Time { return time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC) })

	_, env := app.postJSON(t, "/visit/api/v1/login", map[string]string{"site_id": "SITE01", "name": "Alice"})
	require.Equal(t, httpapi.ResultSuccess, env.Code)

	token := adminToken(t, app, "noc123")

	req := httptest.NewRequest(http.MethodGet, "/admin/api/v1/visits/export", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "Visit_Log.csv")

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "TT_SITE01_20250101_090000")
}

func TestAdminPhotos_EmptyListing(t *testing.T) {
	app := newTestApp(t)
	token := adminToken(t, app, "noc123")

	req := httptest.NewRequest(http.MethodGet, "/admin/api/v1/photos", nil)
	req.Header.Set("X-Admin-Token", token)
	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.Equal(t, httpapi.ResultSuccess, env.Code)

	var listing struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Result, &listing))
	assert.Equal(t, 0, listing.Total)
}
