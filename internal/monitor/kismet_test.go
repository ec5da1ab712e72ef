package monitor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signalbox/internal/config"
)

const sourcesJSON = `[
  {"kismet.datasource.name": "rtl433-0", "kismet.datasource.interface": "rtl433-0", "kismet.datasource.running": 1, "kismet.datasource.uuid": "a"},
  {"kismet.datasource.name": "ADSB", "kismet.datasource.interface": "rtladsb-1", "kismet.datasource.running": 1, "kismet.datasource.uuid": "b"},
  {"kismet.datasource.name": "old", "kismet.datasource.interface": "rtl433-2", "kismet.datasource.running": 0, "kismet.datasource.uuid": "c"},
  {"kismet.datasource.name": "wlan", "kismet.datasource.interface": "wlan0", "kismet.datasource.running": 1, "kismet.datasource.uuid": "d"}
]`

func newKismetServer(t *testing.T) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "kismet" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Path != sourcesPath {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(sourcesJSON))
	}))
}

func TestLookupByIndex(t *testing.T) {
	srv := newKismetServer(t)
	defer srv.Close()

	k := NewKismetClient(srv.URL+"/", config.Credential{Username: "kismet", Password: "secret"}, time.Second)
	ctx := context.Background()

	usage, err := k.LookupByIndex(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, "rtl433-0", usage)

	usage, err = k.LookupByIndex(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "ADSB", usage)

	// stopped source and unknown index are not usage
	usage, err = k.LookupByIndex(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, usage)

	usage, err = k.LookupByIndex(ctx, -1)
	require.NoError(t, err)
	assert.Empty(t, usage)
}

func TestLookupBadCredentials(t *testing.T) {
	srv := newKismetServer(t)
	defer srv.Close()

	k := NewKismetClient(srv.URL, config.Credential{Username: "kismet", Password: "wrong"}, time.Second)
	_, err := k.LookupByIndex(context.Background(), 0)
	assert.Error(t, err)
}

func TestSourceIndex(t *testing.T) {
	cases := map[string]int{
		"rtl433-0":   0,
		"rtladsb-12": 12,
		"rtl-3":      3,
		"wlan0":      -1,
		"rtl433":     -1,
		"":           -1,
	}
	for iface, want := range cases {
		s := Source{Interface: iface}
		assert.Equal(t, want, s.Index(), iface)
	}
}
