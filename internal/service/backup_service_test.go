package service_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/PNG-POM/field-dashboard/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBackupService_UploadOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Visit_Log.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("workbook-bytes"), 0o644))

	var gotBody []byte
	var gotName, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		gotName = r.Header.Get("X-File-Name")
		gotAuth = r.Header.Get("Authorization")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	backup := service.NewBackupService(srv.URL, "secret-token", path, time.Hour, zap.NewNop())
	require.NoError(t, backup.UploadOnce(context.Background()))

	assert.Equal(t, "workbook-bytes", string(gotBody))
	assert.Equal(t, "Visit_Log.xlsx", gotName)
	assert.Equal(t, "Bearer secret-token", gotAuth)
}

func TestBackupService_MissingFileIsSkippedNotFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no upload expected when file is absent")
	}))
	defer srv.Close()

	backup := service.NewBackupService(srv.URL, "", filepath.Join(t.TempDir(), "nope.xlsx"), time.Hour, zap.NewNop())
	require.NoError(t, backup.UploadOnce(context.Background()))
}

func TestBackupService_RemoteErrorSurfaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Visit_Log.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	backup := service.NewBackupService(srv.URL, "", path, time.Hour, zap.NewNop())
	err := backup.UploadOnce(context.Background())
	require.Error(t, err)
}
