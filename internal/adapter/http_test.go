// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MKhiriev/go-money-keeper/internal/config"
	"github.com/MKhiriev/go-money-keeper/internal/logger"
	"github.com/MKhiriev/go-money-keeper/internal/utils"
	"github.com/MKhiriev/go-money-keeper/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAdapter(t *testing.T, serverURL string, timeout time.Duration) *httpRemoteAdapter {
	t.Helper()
	adapterCfg := config.ClientAdapter{HTTPAddress: serverURL, RequestTimeout: timeout}
	appCfg := config.ClientApp{Token: " token-1 "}

	a, err := NewHTTPRemoteAdapter(adapterCfg, appCfg, logger.Nop())
	require.NoError(t, err)
	return a.(*httpRemoteAdapter)
}

// ── constructor ───────────────────────────────────────────────────────────────

func TestNormalizeBaseURL(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "localhost:8080", want: "http://localhost:8080"},
		{in: "https://sync.example.com/", want: "https://sync.example.com"},
		{in: "  ", wantErr: true},
		{in: "http://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := normalizeBaseURL(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewHTTPRemoteAdapter_TrimsToken(t *testing.T) {
	a := newTestAdapter(t, "localhost:1", time.Second)
	assert.Equal(t, "token-1", a.Token())

	a.SetToken("token-2")
	assert.Equal(t, "token-2", a.Token())
}

// ── Push ──────────────────────────────────────────────────────────────────────

func TestPush_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/sync/accounts/push", r.URL.Path)
		assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Equal(t, utils.BodyHash(body), r.Header.Get(utils.ContentHashHeader))

		var req models.PushRequest
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, models.TableAccounts, req.Table)
		require.Len(t, req.Records, 2)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"synced_ids":["a"],"conflict_ids":["b"],"error_map":{},"versions":{"a":4}}`))
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL, time.Second)
	result, err := a.Push(context.Background(), models.PushRequest{
		Table: models.TableAccounts,
		Records: []models.PushRecord{
			{ID: "a", Version: 3, Payload: json.RawMessage(`{}`)},
			{ID: "b", Version: 1, Payload: json.RawMessage(`{}`)},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, result.SyncedIDs)
	assert.Equal(t, []string{"b"}, result.ConflictIDs)
	assert.Equal(t, int64(4), result.Versions["a"])
	assert.NotNil(t, result.ErrorCodes)
}

// TestPush_MinimalResult verifies that a server answering only the three
// mandatory collections is accepted.
func TestPush_MinimalResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"synced_ids":[],"conflict_ids":[],"error_map":{"x":"boom"}}`))
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL, time.Second)
	result, err := a.Push(context.Background(), models.PushRequest{Table: models.TableCategories})

	require.NoError(t, err)
	assert.Equal(t, "boom", result.ErrorMap["x"])
	assert.Empty(t, result.Versions)
	assert.NotNil(t, result.Versions)
}

func TestPush_StatusErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr []error
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, wantErr: []error{ErrUnauthorized}},
		{name: "bad request", status: http.StatusBadRequest, wantErr: []error{ErrBadRequest}},
		{name: "internal", status: http.StatusInternalServerError, wantErr: []error{ErrNetwork, ErrInternalServerError}},
		{name: "bad gateway", status: http.StatusBadGateway, wantErr: []error{ErrNetwork, ErrBadGateway}},
		{name: "unavailable", status: http.StatusServiceUnavailable, wantErr: []error{ErrNetwork}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.name))
			}))
			defer srv.Close()

			a := newTestAdapter(t, srv.URL, time.Second)
			_, err := a.Push(context.Background(), models.PushRequest{Table: models.TableAccounts})

			require.Error(t, err)
			for _, want := range tt.wantErr {
				assert.ErrorIs(t, err, want)
			}
		})
	}
}

func TestPush_Unauthorized_NotNetwork(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL, time.Second)
	_, err := a.Push(context.Background(), models.PushRequest{Table: models.TableAccounts})
	assert.NotErrorIs(t, err, ErrNetwork)
}

func TestPush_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	a := newTestAdapter(t, srv.URL, 50*time.Millisecond)
	_, err := a.Push(context.Background(), models.PushRequest{Table: models.TableAccounts})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNetwork)
}

func TestPush_UnknownTable(t *testing.T) {
	a := newTestAdapter(t, "localhost:1", time.Second)
	_, err := a.Push(context.Background(), models.PushRequest{Table: "budgets"})
	assert.ErrorIs(t, err, models.ErrUnknownTable)
}

// ── Pull ──────────────────────────────────────────────────────────────────────

func TestPull_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/sync/transactions/pull", r.URL.Path)
		assert.Equal(t, "15", r.URL.Query().Get("cursor"))
		assert.Equal(t, "2", r.URL.Query().Get("limit"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"records":[{"id":"tx-1","version":3,"payload":{"amount":"1.5"},"cursor":"16"}],
			"next_cursor":"16",
			"has_more":true
		}`))
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL, time.Second)
	page, err := a.Pull(context.Background(), models.PullRequest{Table: models.TableTransactions, Cursor: "15", Limit: 2})

	require.NoError(t, err)
	require.Len(t, page.Records, 1)
	assert.Equal(t, "tx-1", page.Records[0].ID)
	assert.Equal(t, models.TableTransactions, page.Records[0].Table)
	assert.Equal(t, "16", page.Records[0].Cursor)
	assert.Equal(t, "16", page.NextCursor)
	assert.True(t, page.HasMore)
}

func TestPull_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	a := newTestAdapter(t, url, time.Second)
	_, err := a.Pull(context.Background(), models.PullRequest{Table: models.TableAccounts})
	assert.ErrorIs(t, err, ErrNetwork)
}

// ── Fetch ─────────────────────────────────────────────────────────────────────

func TestFetch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/sync/accounts/fetch", r.URL.Path)

		var req models.FetchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"a", "b"}, req.IDs)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"a","version":9,"payload":{"name":"Server"}}]`))
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL, time.Second)
	records, err := a.Fetch(context.Background(), models.FetchRequest{Table: models.TableAccounts, IDs: []string{"a", "b"}})

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(9), records[0].Version)
	assert.Equal(t, models.TableAccounts, records[0].Table)
}

func TestFetch_NoIDs(t *testing.T) {
	a := newTestAdapter(t, "localhost:1", time.Second)
	records, err := a.Fetch(context.Background(), models.FetchRequest{Table: models.TableAccounts})
	require.NoError(t, err)
	assert.Empty(t, records)
}
