package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestRequestIDEchoesValidInbound(t *testing.T) {
	handler := RequestID(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "edge-abc.123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, "edge-abc.123", rec.Header().Get(requestIDHeader))
}

func TestRequestIDReplacesMissingOrUnsafe(t *testing.T) {
	handler := RequestID(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	for _, inbound := range []string{"", "has spaces", "<script>", strings.Repeat("a", 129)} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if inbound != "" {
			req.Header.Set(requestIDHeader, inbound)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		_, err := uuid.Parse(rec.Header().Get(requestIDHeader))
		require.NoError(t, err, "inbound %q", inbound)
	}
}
