package rpc

import (
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signalbox/internal/models"
)

func tcpConfig(t *testing.T, srv *httptest.Server) *HTTPConfig {
	t.Helper()
	return &HTTPConfig{
		Address: srv.Listener.Addr().String(),
		Network: "tcp",
		Timeout: 5 * time.Second,
		BaseURL: "http://localhost",
	}
}

func TestClientRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/v1/services":
			assert.Equal(t, "1", r.URL.Query().Get("verbose"))
			w.Write([]byte(`[{"id":"rtl433","status":"running"}]`))
		case r.Method == http.MethodPost && r.URL.Path == "/api/v1/sdrs/assign":
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			body, _ := io.ReadAll(r.Body)
			var req models.AssignRequest
			assert.NoError(t, json.Unmarshal(body, &req))
			assert.Equal(t, "rtl433", req.Service)
			w.Write([]byte(`[]`))
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"code":"service.notexist","error":"service not found: x"}`))
		}
	}))
	defer srv.Close()

	client := NewHTTPClient(tcpConfig(t, srv))
	defer client.Close()

	resp, err := client.Get("/api/v1/services", map[string]interface{}{"verbose": 1})
	require.NoError(t, err)
	var details []models.ServiceDetail
	require.NoError(t, resp.Decode(&details))
	require.Len(t, details, 1)
	assert.Equal(t, models.StatusRunning, details[0].Status)

	resp, err = client.Post("/api/v1/sdrs/assign", models.AssignRequest{Service: "rtl433", Serial: "1"})
	require.NoError(t, err)
	assert.True(t, resp.OK())

	resp, err = client.Put("/api/v1/services/x/params", nil)
	require.NoError(t, err)
	assert.False(t, resp.OK())
	assert.Equal(t, "service.notexist", resp.Code)
	assert.ErrorContains(t, resp.Decode(nil), "service not found: x")
}

func TestClientOverUnixSocket(t *testing.T) {
	sock := filepath.Join(t.TempDir(), "k.sock")
	ln, err := net.Listen("unix", sock)
	require.NoError(t, err)
	srv := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"UP"}`))
	})}
	go srv.Serve(ln)
	defer srv.Close()

	cfg := DefaultHTTPConfig(sock, ":9")
	require.Equal(t, "unix", cfg.Network)

	client := NewHTTPClient(cfg)
	defer client.Close()
	resp, err := client.Get("/healthz", nil)
	require.NoError(t, err)
	var health models.HealthResponse
	require.NoError(t, resp.Decode(&health))
	assert.Equal(t, "UP", health.Status)
}

func TestDefaultConfigFallsBackToTCP(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "none.sock")
	_, err := os.Stat(missing)
	require.True(t, os.IsNotExist(err))

	cfg := DefaultHTTPConfig(missing, ":8081")
	assert.Equal(t, "tcp", cfg.Network)
	assert.Equal(t, "127.0.0.1:8081", cfg.Address)

	cfg = DefaultHTTPConfig(missing, "10.0.0.2:9000")
	assert.Equal(t, "10.0.0.2:9000", cfg.Address)
}

func TestErrorWithoutJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewHTTPClient(tcpConfig(t, srv))
	resp, err := client.Get("/x", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "502 Bad Gateway", resp.Error)
}

func TestUnreachableKeeper(t *testing.T) {
	client := NewHTTPClient(&HTTPConfig{
		Address: filepath.Join(t.TempDir(), "gone.sock"),
		Network: "unix",
		Timeout: time.Second,
		BaseURL: "http://localhost",
	})
	_, err := client.Get("/healthz", nil)
	assert.ErrorContains(t, err, "keeper not reachable")
}
