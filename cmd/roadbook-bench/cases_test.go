package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "init.sql")
	sql := "-- schema\nCREATE TABLE IF NOT EXISTS bookings (id text);\ncreate table if not exists booking_events (id text);\n"
	require.NoError(t, os.WriteFile(path, []byte(sql), 0o600))

	tables, err := extractTables(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"bookings", "booking_events"}, tables)
}

func TestSplitSQL_DropsComments(t *testing.T) {
	stmts := splitSQL("-- a\nCREATE TABLE x (id int);\n\n-- b\nCREATE INDEX y ON x (id);\n")
	assert.Equal(t, []string{"CREATE TABLE x (id int)", "CREATE INDEX y ON x (id)"}, stmts)
}

func TestHTTPCase(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.Header.Get("Authorization") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	r := NewRunner(Config{BaseURL: srv.URL})
	assert.Equal(t, statusPass, httpCase("anon", http.MethodGet, srv.URL, "", 401).Run(context.Background(), r).Status)
	assert.Equal(t, statusPass, httpCase("authed", http.MethodGet, srv.URL, "tok", 200).Run(context.Background(), r).Status)
	assert.Equal(t, statusFail, httpCase("wrong", http.MethodGet, srv.URL, "", 200).Run(context.Background(), r).Status)
	assert.Equal(t, statusSkip, skipUnless(false, "off", httpCase("x", http.MethodGet, srv.URL, "", 200)).Run(context.Background(), r).Status)
}

func TestConcurrentConfirm(t *testing.T) {
	var first atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if first.CompareAndSwap(false, true) {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusConflict)
	}))
	defer srv.Close()

	r := NewRunner(Config{Concurrency: 8, AdminToken: "tok"})
	res := concurrentConfirm(context.Background(), r, srv.URL)
	assert.Equal(t, statusPass, res.Status, res.Note)
}

func TestConcurrentConfirm_DoubleSuccessFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	r := NewRunner(Config{Concurrency: 4, AdminToken: "tok"})
	assert.Equal(t, statusFail, concurrentConfirm(context.Background(), r, srv.URL).Status)
}

func TestPerfLoad(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	r := NewRunner(Config{Concurrency: 2, Duration: 50 * time.Millisecond})
	res := perfLoad(context.Background(), r, srv.URL)
	assert.Equal(t, statusPass, res.Status, res.Note)
}
