package device

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const directoryJSON = `[
	{"deviceId":"043f817355878ce2","deviceName":"Google Pixel 7","isOnline":true},
	{"deviceId":"9b1c2d3e4f506172","deviceName":"samsung SM-G991B","isOnline":true}
]`

func TestRepository_UpdateNotifiesObservers(t *testing.T) {
	repo := NewRepository(nil)

	calls := 0
	repo.Observe(func() { calls++ })
	repo.Observe(func() { calls++ })

	require.NoError(t, repo.Update([]byte(directoryJSON)))
	assert.Equal(t, 2, calls)

	devices := repo.Devices()
	require.Len(t, devices, 2)
	assert.Equal(t, "Google Pixel 7", devices[0].DeviceName)
	assert.True(t, devices[1].IsOnline)

	devices[0].DeviceName = "changed"
	assert.Equal(t, "Google Pixel 7", repo.Devices()[0].DeviceName, "Devices returns a copy")
}

func TestRepository_UpdateRejectsInvalidJSON(t *testing.T) {
	repo := NewRepository(nil)
	require.NoError(t, repo.Update([]byte(directoryJSON)))

	called := false
	repo.Observe(func() { called = true })

	assert.Error(t, repo.Update([]byte(`{"not":"a list"}`)))
	assert.False(t, called)
	assert.Len(t, repo.Devices(), 2, "list unchanged on error")
}

func TestRepository_ObserverMayReadDevices(t *testing.T) {
	repo := NewRepository(nil)
	var seen int
	repo.Observe(func() { seen = len(repo.Devices()) })

	repo.Set([]Info{{DeviceID: "a"}})
	assert.Equal(t, 1, seen)
}

func TestRepository_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/online_devices" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(directoryJSON))
	}))
	defer srv.Close()

	repo := NewRepository(srv.Client())
	require.NoError(t, repo.Fetch(context.Background(), srv.URL+"/api/online_devices"))
	assert.Len(t, repo.Devices(), 2)

	err := repo.Fetch(context.Background(), srv.URL+"/missing")
	assert.ErrorContains(t, err, "unexpected status")
	assert.Len(t, repo.Devices(), 2)
}

func TestRepository_FetchCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("[]"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, NewRepository(srv.Client()).Fetch(ctx, srv.URL), context.Canceled)
}
