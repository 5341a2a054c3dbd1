package setup

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Osmandiyaka/mindbloom-sub000/internal/api"
)

func testAPIClient(t *testing.T, handler http.Handler) *api.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return api.New(api.Config{
		BaseURL:     server.URL,
		Token:       "test-token",
		MaxGetTries: 1,
		Logger:      zerolog.Nop(),
	})
}

func writeData(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(map[string]any{"data": v})
	if err != nil {
		t.Errorf("failed to encode response: %v", err)
	}
}

func decodeBody(r *http.Request, v any) error {
	defer func() { _ = r.Body.Close() }()
	return json.NewDecoder(r.Body).Decode(v)
}

func writeError(t *testing.T, w http.ResponseWriter, status int, message string) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"message": message},
	})
	if err != nil {
		t.Errorf("failed to encode response: %v", err)
	}
}
