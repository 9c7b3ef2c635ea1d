package http

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/MKhiriev/go-money-keeper/internal/utils"
	"github.com/stretchr/testify/assert"
)

func TestWithContentHash(t *testing.T) {
	const body = `{"records":[{"id":"a","version":1,"payload":{}}]}`

	tests := []struct {
		name       string
		hash       string
		wantStatus int
		wantCalled bool
	}{
		{name: "no header passes", hash: "", wantStatus: http.StatusOK, wantCalled: true},
		{name: "matching hash passes", hash: utils.BodyHash([]byte(body)), wantStatus: http.StatusOK, wantCalled: true},
		{name: "mismatching hash", hash: utils.BodyHash([]byte("tampered")), wantStatus: http.StatusBadRequest},
		{name: "garbage hash", hash: "not-hex", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th := newTestHandler(t)
			req := httptest.NewRequest(http.MethodPost, "/api/sync/accounts/push", strings.NewReader(body))
			if tt.hash != "" {
				req.Header.Set(utils.ContentHashHeader, tt.hash)
			}
			rr := httptest.NewRecorder()

			var called bool
			var seenBody string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				raw, _ := io.ReadAll(r.Body)
				seenBody = string(raw)
			})

			th.withContentHash(next).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantCalled, called)
			if tt.wantCalled {
				assert.Equal(t, body, seenBody, "body is restored for the next handler")
			}
		})
	}
}
