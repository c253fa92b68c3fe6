package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qurvii/stylesync/internal/session"
	"github.com/qurvii/stylesync/pkg/models"
)

func newTestStore(t *testing.T) *session.Store {
	t.Helper()
	store, err := session.NewStore(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, err)
	require.NoError(t, store.Load())
	return store
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *session.Store) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	store := newTestStore(t)
	return NewClient(server.URL, 5*time.Second, store), store
}

func writeEnvelope(w http.ResponseWriter, status int, data any, message string) {
	body := map[string]any{"message": message}
	if data != nil {
		body["data"] = data
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func TestLoginStoresTokens(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.EqualValues(t, 1001, req["employee_id"])

		writeEnvelope(w, http.StatusOK, map[string]any{
			"accessToken":  "access-1",
			"refreshToken": "refresh-1",
			"user":         map[string]any{"username": "asha", "employee_id": 1001},
		}, "Login successful")
	})

	client, store := newTestClient(t, mux)

	user, err := client.Login(context.Background(), 1001, "secret")
	require.NoError(t, err)
	assert.Equal(t, "asha", user.Username)

	access, refresh := store.Tokens()
	assert.Equal(t, "access-1", access)
	assert.Equal(t, "refresh-1", refresh)
	assert.True(t, store.Authenticated())
}

func TestRefreshAndRetryOnce(t *testing.T) {
	var productCalls, refreshCalls int32

	mux := http.NewServeMux()
	mux.HandleFunc("/products", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&productCalls, 1)
		if r.Header.Get("Authorization") != "Bearer access-new" {
			writeEnvelope(w, http.StatusUnauthorized, nil, "Token expired")
			return
		}
		writeEnvelope(w, http.StatusOK, map[string]any{
			"products": []map[string]any{{"styleNumber": 12345}},
		}, "")
	})
	mux.HandleFunc("/auth/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&refreshCalls, 1)

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "refresh-old", req["refreshToken"])

		writeEnvelope(w, http.StatusOK, map[string]any{
			"accessToken":  "access-new",
			"refreshToken": "refresh-new",
		}, "")
	})

	client, store := newTestClient(t, mux)
	require.NoError(t, store.SetTokens("access-old", "refresh-old"))

	products, err := client.Products(context.Background(), ProductQuery{})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, 12345, products[0].StyleNumber)

	assert.EqualValues(t, 1, atomic.LoadInt32(&refreshCalls))
	assert.EqualValues(t, 2, atomic.LoadInt32(&productCalls))

	access, refresh := store.Tokens()
	assert.Equal(t, "access-new", access)
	assert.Equal(t, "refresh-new", refresh)
}

func TestSecondUnauthorizedClearsSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/products", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusUnauthorized, nil, "Token expired")
	})
	mux.HandleFunc("/auth/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, map[string]any{
			"accessToken":  "access-new",
			"refreshToken": "refresh-new",
		}, "")
	})

	client, store := newTestClient(t, mux)
	require.NoError(t, store.SetTokens("access-old", "refresh-old"))

	_, err := client.Products(context.Background(), ProductQuery{})
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.False(t, store.Authenticated())
}

func TestRefreshFailureClearsSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/products", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusUnauthorized, nil, "Token expired")
	})
	mux.HandleFunc("/auth/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusUnauthorized, nil, "Invalid refresh token")
	})

	client, store := newTestClient(t, mux)
	require.NoError(t, store.SetTokens("access-old", "refresh-old"))

	_, err := client.Products(context.Background(), ProductQuery{})
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.False(t, store.Authenticated())
}

func TestAuthedCallWithoutSession(t *testing.T) {
	var calls int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	})

	client, _ := newTestClient(t, handler)

	_, err := client.Products(context.Background(), ProductQuery{})
	assert.ErrorIs(t, err, ErrNoSession)
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestBulkUploadEmptyListSkipsNetwork(t *testing.T) {
	var calls int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	})

	client, store := newTestClient(t, handler)
	require.NoError(t, store.SetTokens("access", "refresh"))

	_, err := client.BulkUpload(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoRecords)
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestBulkUpload(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/products/bulk", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer access", r.Header.Get("Authorization"))

		var req struct {
			Records []models.UploadRecord `json:"records"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Records, 2)
		assert.Equal(t, 12345, req.Records[0].StyleNumber)

		writeEnvelope(w, http.StatusOK, map[string]int{"inserted": 1, "updated": 1}, "Upload completed")
	})

	client, store := newTestClient(t, mux)
	require.NoError(t, store.SetTokens("access", "refresh"))

	result, err := client.BulkUpload(context.Background(), []models.UploadRecord{
		{StyleNumber: 12345, Channel: models.ChannelAjio, ProductID: "000123456_top", Price: 1299, Status: "active"},
		{StyleNumber: 23456, Channel: models.ChannelMyntra, ProductID: "9876543", Price: 999, Status: "active"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Inserted)
	assert.Equal(t, 1, result.Updated)
}

func TestProductsQueryParams(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/products", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "12345", q.Get("styleNumber"))
		assert.Equal(t, "ajio", q.Get("channel"))
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "25", q.Get("limit"))

		writeEnvelope(w, http.StatusOK, map[string]any{"products": []any{}}, "")
	})

	client, store := newTestClient(t, mux)
	require.NoError(t, store.SetTokens("access", "refresh"))

	_, err := client.Products(context.Background(), ProductQuery{
		StyleNumber: 12345,
		Channel:     "ajio",
		Page:        2,
		Limit:       25,
	})
	require.NoError(t, err)
}

func TestAPIErrorCarriesServerMessage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusBadRequest, nil, "Invalid employee ID or password")
	})

	client, _ := newTestClient(t, mux)

	_, err := client.Login(context.Background(), 1001, "wrong")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Invalid employee ID or password", apiErr.Message)
	assert.Equal(t, "Invalid employee ID or password", ServerMessage(err, "fallback"))
}

func TestLogoutClearsLocalSessionEvenOnServerError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusInternalServerError, nil, "boom")
	})

	client, store := newTestClient(t, mux)
	require.NoError(t, store.SetTokens("access", "refresh"))

	require.NoError(t, client.Logout(context.Background()))
	assert.False(t, store.Authenticated())
}

func TestRegisterSignsIn(t *testing.T) {
	var registered int32

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/register", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&registered, 1)
		writeEnvelope(w, http.StatusCreated, nil, "User registered")
	})
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, map[string]any{
			"accessToken":  "access-1",
			"refreshToken": "refresh-1",
			"user":         map[string]any{"username": "asha", "employee_id": 1001},
		}, "")
	})

	client, store := newTestClient(t, mux)

	user, err := client.Register(context.Background(), "asha", 1001, "secret1")
	require.NoError(t, err)
	assert.Equal(t, "asha", user.Username)
	assert.EqualValues(t, 1, atomic.LoadInt32(&registered))
	assert.True(t, store.Authenticated())
}
