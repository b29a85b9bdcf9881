package exporter

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_Handler(t *testing.T) {
	srv := New(&Config{Listen: "127.0.0.1:0", Endpoint: "http://192.168.1.20"}, &fakeSource{all: sampleAggregate()})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	get := func(path string) (int, string) {
		resp, err := http.Get(ts.URL + path)
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp.StatusCode, string(body)
	}

	code, body := get("/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "opensprinkler_up 1")
	assert.Contains(t, body, `opensprinkler_station_active{name="Roses",station="2"} 1`)
	assert.Contains(t, body, "go_goroutines")

	code, body = get("/healthz")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok\n", body)

	code, body = get("/")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "http://192.168.1.20")

	code, _ = get("/nope")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestServer_StartAndCancel(t *testing.T) {
	srv := New(&Config{Listen: "127.0.0.1:0"}, &fakeSource{all: sampleAggregate()})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Start(ctx) }()

	require.Eventually(t, func() bool {
		addr := srv.Addr()
		if strings.HasSuffix(addr, ":0") {
			return false
		}
		resp, err := http.Get("http://" + addr + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return after cancel")
	}
}
