package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type countingHandler struct {
	mu    sync.Mutex
	calls int
	fn    func(n int, w http.ResponseWriter, r *http.Request)
}

func (h *countingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	h.calls++
	n := h.calls
	h.mu.Unlock()
	h.fn(n, w, r)
}

func (h *countingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.calls
}

func testClient(t *testing.T, handler http.Handler, tries int) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(Config{
		BaseURL:     server.URL,
		Token:       "test-token",
		MaxGetTries: tries,
		Logger:      zerolog.Nop(),
	})
}

func TestClientEnvelope(t *testing.T) {
	ctx := context.Background()

	t.Run("decodes enveloped data", func(t *testing.T) {
		c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"data":{"id":"x-1","name":"One"}}`))
		}), 1)

		var out struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		}
		require.NoError(t, c.get(ctx, "/things/x-1", &out))
		require.Equal(t, "x-1", out.ID)
		require.Equal(t, "One", out.Name)
	})

	t.Run("tolerates bare bodies without the envelope", func(t *testing.T) {
		c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"id":"x-2"}`))
		}), 1)

		var out struct {
			ID string `json:"id"`
		}
		require.NoError(t, c.get(ctx, "/things/x-2", &out))
		require.Equal(t, "x-2", out.ID)
	})

	t.Run("an error inside a 200 envelope still fails", func(t *testing.T) {
		c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"error":{"message":"soft failure"}}`))
		}), 1)

		var out struct{}
		err := c.get(ctx, "/things", &out)
		var remote *RemoteError
		require.ErrorAs(t, err, &remote)
		require.Equal(t, "soft failure", remote.Message)
	})

	t.Run("sends the bearer token and accept header", func(t *testing.T) {
		var gotAuth, gotAccept string
		c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			gotAccept = r.Header.Get("Accept")
			_, _ = w.Write([]byte(`{"data":{}}`))
		}), 1)

		var out struct{}
		require.NoError(t, c.get(ctx, "/things", &out))
		require.Equal(t, "Bearer test-token", gotAuth)
		require.Equal(t, "application/json", gotAccept)
	})
}

func TestClientErrors(t *testing.T) {
	ctx := context.Background()

	errorServer := func(status int, body string) *Client {
		return testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(body))
		}), 1)
	}

	t.Run("404 maps to ErrNotFound", func(t *testing.T) {
		c := errorServer(http.StatusNotFound, `{"error":{"message":"no such thing"}}`)
		err := c.get(ctx, "/things/missing", &struct{}{})
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("401 and 403 map to ErrUnauthorized", func(t *testing.T) {
		for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
			c := errorServer(status, `{}`)
			err := c.get(ctx, "/things", &struct{}{})
			require.ErrorIs(t, err, ErrUnauthorized)
		}
	})

	t.Run("5xx maps to ErrRemote", func(t *testing.T) {
		c := errorServer(http.StatusInternalServerError, `{}`)
		err := c.get(ctx, "/things", &struct{}{})
		require.ErrorIs(t, err, ErrRemote)
	})

	t.Run("the collaborator message survives into the error", func(t *testing.T) {
		c := errorServer(http.StatusConflict, `{"error":{"message":"Name already in use"}}`)
		err := c.post(ctx, "/things", map[string]string{"name": "x"}, nil)
		var remote *RemoteError
		require.ErrorAs(t, err, &remote)
		require.Equal(t, "Name already in use", remote.HumanMessage("fallback"))
	})

	t.Run("bare message bodies are decoded too", func(t *testing.T) {
		c := errorServer(http.StatusBadRequest, `{"message":"bad input"}`)
		err := c.post(ctx, "/things", map[string]string{}, nil)
		var remote *RemoteError
		require.ErrorAs(t, err, &remote)
		require.Equal(t, "bad input", remote.Message)
	})

	t.Run("an empty error body falls back to the caller's message", func(t *testing.T) {
		c := errorServer(http.StatusInternalServerError, ``)
		err := c.get(ctx, "/things", &struct{}{})
		var remote *RemoteError
		require.ErrorAs(t, err, &remote)
		require.Equal(t, "fallback", remote.HumanMessage("fallback"))
	})
}

func TestClientRetry(t *testing.T) {
	ctx := context.Background()

	t.Run("a GET retries past a transient 500", func(t *testing.T) {
		h := &countingHandler{fn: func(n int, w http.ResponseWriter, r *http.Request) {
			if n == 1 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			_, _ = w.Write([]byte(`{"data":{"id":"x-1"}}`))
		}}
		c := testClient(t, h, 3)

		var out struct {
			ID string `json:"id"`
		}
		require.NoError(t, c.get(ctx, "/things/x-1", &out))
		require.Equal(t, "x-1", out.ID)
		require.Equal(t, 2, h.count())
	})

	t.Run("a 4xx is permanent", func(t *testing.T) {
		h := &countingHandler{fn: func(n int, w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"message":"bad request"}}`))
		}}
		c := testClient(t, h, 3)

		require.Error(t, c.get(ctx, "/things", &struct{}{}))
		require.Equal(t, 1, h.count())
	})

	t.Run("mutating calls are never retried", func(t *testing.T) {
		h := &countingHandler{fn: func(n int, w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}}
		c := testClient(t, h, 3)

		require.Error(t, c.post(ctx, "/things", map[string]string{}, nil))
		require.Error(t, c.patch(ctx, "/things/x", map[string]string{}, nil))
		require.Error(t, c.delete(ctx, "/things/x"))
		require.Equal(t, 3, h.count())
	})
}
