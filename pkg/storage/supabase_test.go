package storage

import (
	"CallWaitingAI/pkg/outbound"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestSupabaseUpsert_RequestShape(t *testing.T) {
	var gotPath, gotQuery, gotPrefer, gotAPIKey, gotAuth string
	var gotBody map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotPrefer = r.Header.Get("Prefer")
		gotAPIKey = r.Header.Get("apikey")
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`[{"session_id":"s1","status":"new"}]`))
	}))
	defer srv.Close()

	store := newSupabase(srv.URL, "service-role-key", testLogger())

	row, err := store.Upsert(context.Background(), TableLeads, "session_id", Record{
		"session_id": "s1",
		"status":     "new",
	})
	require.NoError(t, err)

	assert.Equal(t, "/rest/v1/leads", gotPath)
	assert.Equal(t, "on_conflict=session_id", gotQuery)
	assert.Equal(t, "resolution=merge-duplicates,return=representation", gotPrefer)
	assert.Equal(t, "service-role-key", gotAPIKey)
	assert.Equal(t, "Bearer service-role-key", gotAuth)
	assert.Equal(t, "s1", gotBody["session_id"])

	require.NotNil(t, row)
	assert.Equal(t, "s1", row["session_id"])
}

func TestSupabaseInsert_RequestShape(t *testing.T) {
	var gotPrefer string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPrefer = r.Header.Get("Prefer")
		assert.Equal(t, "/rest/v1/call_logs", r.URL.Path)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`[{"session_id":"s1"}]`))
	}))
	defer srv.Close()

	store := newSupabase(srv.URL, "k", testLogger())

	_, err := store.Insert(context.Background(), TableCallLogs, Record{"session_id": "s1"})
	require.NoError(t, err)
	assert.Equal(t, "return=representation", gotPrefer)
}

func TestSupabaseUpdateWhere_CountsRows(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "eq.s1", r.URL.Query().Get("session_id"))
		_, _ = w.Write([]byte(`[{"session_id":"s1"},{"session_id":"s1"}]`))
	}))
	defer srv.Close()

	store := newSupabase(srv.URL, "k", testLogger())

	affected, err := store.UpdateWhere(context.Background(), TableLeads,
		map[string]interface{}{"session_id": "s1"},
		Record{"status": "contacted"},
	)
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)
}

func TestSupabase_NonSuccessIsProtocolError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"JWT expired"}`))
	}))
	defer srv.Close()

	store := newSupabase(srv.URL, "k", testLogger())

	_, err := store.Insert(context.Background(), TableLeads, Record{})
	require.Error(t, err)

	kind, ok := outbound.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, outbound.KindProtocol, kind)
}

func TestSupabase_BadJSONIsMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	store := newSupabase(srv.URL, "k", testLogger())

	_, err := store.Insert(context.Background(), TableLeads, Record{})
	require.Error(t, err)

	kind, ok := outbound.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, outbound.KindMalformed, kind)
}

func TestSupabase_ConnectionRefusedIsConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // nothing listening anymore

	store := newSupabase(srv.URL, "k", testLogger())

	_, err := store.Insert(context.Background(), TableLeads, Record{})
	require.Error(t, err)

	kind, ok := outbound.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, outbound.KindConnection, kind)
}

func TestNew_SelectsBackendFromEnv(t *testing.T) {
	t.Setenv("SUPABASE_URL", "https://project.supabase.co")
	t.Setenv("SUPABASE_KEY", "k")
	t.Setenv("DB_HOST", "")

	store, err := New(testLogger())
	require.NoError(t, err)
	assert.IsType(t, &supabaseStorage{}, store)
}

func TestNew_UnconfiguredReturnsSentinel(t *testing.T) {
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("SUPABASE_KEY", "")
	t.Setenv("DB_HOST", "")

	_, err := New(testLogger())
	assert.ErrorIs(t, err, outbound.ErrNotConfigured)
}
