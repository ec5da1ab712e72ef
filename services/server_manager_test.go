package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signalbox/internal/backend"
	"signalbox/internal/config"
	"signalbox/internal/models"
	"signalbox/internal/proc"
)

func newTestServer(t *testing.T, f *fakeFactory) *Server {
	t.Helper()
	sm, err := newTestRegistry(f)
	require.NoError(t, err)
	cfg := testConfig()
	cfg.Links = []models.Link{{Name: "Grafana", URL: "http://localhost:3000"}}
	alloc := NewSdrManager(sm, &fakeLister{devices: testDevices()}, nil, nil)
	return NewServer(cfg, sm, alloc, NewActionService(nil))
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("x: %w", ErrServiceNotFound), 404},
		{ErrDeviceNotFound, 404},
		{backend.ErrEntityNotFound, 404},
		{proc.ErrAlreadyRunning, 409},
		{proc.ErrNotRunning, 409},
		{ErrSdrNotRequired, 400},
		{&config.ConfigError{Service: "a", Field: "type", Reason: "bad"}, 400},
		{backend.ErrBackendUnreachable, 503},
		{errBoom, 500},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.code, HTTPStatus(tc.err), tc.err.Error())
	}
	assert.Equal(t, "service.notexist", ErrorCode(ErrServiceNotFound))
	assert.Equal(t, "error.500", ErrorCode(errBoom))
}

func TestHealth(t *testing.T) {
	f := newFakeFactory()
	s := newTestServer(t, f)
	require.NoError(t, s.Services().StartService(context.Background(), "openwebrx"))
	_, err := s.Sdrs().Inventory(context.Background())
	require.NoError(t, err)

	h := s.Health()
	assert.Equal(t, "UP", h.Status)
	assert.Equal(t, 3, h.Metrics.TotalServices)
	assert.Equal(t, 1, h.Metrics.RunningServices)
	assert.Equal(t, 3, h.Metrics.SdrDevices)
}

func TestServerReload(t *testing.T) {
	s := newTestServer(t, newFakeFactory())
	assert.Len(t, s.Links(), 1)

	cfg := testConfig()
	cfg.Actions = map[string]config.ActionConfig{"reboot": {Text: "Reboot", Command: []string{"true"}}}
	require.NoError(t, s.Reload(context.Background(), cfg))
	assert.Empty(t, s.Links())
	assert.Len(t, s.Actions().List(), 1)
}

type tableLister struct {
	fakeLister
	known []config.KnownID
}

func (l *tableLister) SetKnown(known []config.KnownID) {
	l.known = known
}

func TestServerReloadAppliesSdrAndMonitorSettings(t *testing.T) {
	sm, err := newTestRegistry(newFakeFactory())
	require.NoError(t, err)
	lister := &tableLister{fakeLister: fakeLister{devices: testDevices()}}
	alloc := NewSdrManager(sm, lister, nil, nil)
	s := NewServer(testConfig(), sm, alloc, NewActionService(nil))

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "creds.yml"),
		[]byte("kismet:\n  username: admin\n  password: secret\n"), 0600))

	cfg := testConfig()
	cfg.Dir = dir
	cfg.Credentials = "creds.yml"
	cfg.Monitor = config.MonitorConfig{Service: "kismet", URL: "http://127.0.0.1:2501", Label: "Kismet"}
	cfg.Sdr.KnownIDs = []config.KnownID{{Vendor: 0x0bda, Product: 0x2838, Name: "Blog"}}
	require.NoError(t, s.Reload(context.Background(), cfg))

	assert.Equal(t, cfg.Sdr.KnownIDs, lister.known)
	enricher := alloc.currentEnricher()
	require.NotNil(t, enricher)
	assert.True(t, enricher.Enabled())
	assert.Equal(t, "Kismet", enricher.label)
}
