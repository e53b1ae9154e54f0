package api

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/darkkaiser/watch-relay/internal/config"
	"github.com/darkkaiser/watch-relay/internal/pkg/version"
	"github.com/darkkaiser/watch-relay/internal/service/relay"
	"github.com/darkkaiser/watch-relay/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, string) {
	t.Helper()

	addr, err := testutil.FreeListenAddress()
	require.NoError(t, err)

	s := NewService(
		config.StatusConfig{Enabled: true, ListenAddress: addr},
		false,
		stubProvider{state: relay.StateRunning, stats: relay.Snapshot{Received: 5, Delivered: 1}},
		version.Info{Version: "1.0.0"},
	)
	return s, addr
}

func TestService_Lifecycle(t *testing.T) {
	s, addr := newTestService(t)

	ctx, cancel := context.WithCancel(context.Background())
	wg := &sync.WaitGroup{}
	wg.Add(1)

	require.NoError(t, s.Start(ctx, wg))
	require.NoError(t, testutil.WaitForServer(addr, 2*time.Second))

	client := &http.Client{Timeout: time.Second}

	resp, err := client.Get("http://" + addr + "/health")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `"running"`, mustField(t, body, "state"))
	assert.Empty(t, resp.Header.Get("Server"), "Server 헤더는 노출하지 않아야 합니다")
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))

	resp, err = client.Get("http://" + addr + "/stats")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"received":5`)

	resp, err = client.Get("http://" + addr + "/ledger")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	client.CloseIdleConnections()
	cancel()
	wg.Wait()

	s.runningMu.Lock()
	assert.False(t, s.running)
	s.runningMu.Unlock()
}

func TestService_DuplicateStart(t *testing.T) {
	s, addr := newTestService(t)

	ctx, cancel := context.WithCancel(context.Background())
	wg := &sync.WaitGroup{}

	wg.Add(1)
	require.NoError(t, s.Start(ctx, wg))
	require.NoError(t, testutil.WaitForServer(addr, 2*time.Second))

	wg.Add(1)
	require.NoError(t, s.Start(ctx, wg), "중복 시작은 경고만 남겨야 합니다")

	cancel()
	wg.Wait()
}

func TestService_StartErrors(t *testing.T) {
	tests := []struct {
		name    string
		service *Service
		wantErr error
	}{
		{
			name:    "실패: StatusProvider 누락",
			service: NewService(config.StatusConfig{ListenAddress: "127.0.0.1:0"}, false, nil, version.Info{}),
			wantErr: ErrStatusProviderRequired,
		},
		{
			name:    "실패: 수신 주소 누락",
			service: NewService(config.StatusConfig{}, false, stubProvider{}, version.Info{}),
			wantErr: ErrListenAddressRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wg := &sync.WaitGroup{}
			wg.Add(1)

			err := tt.service.Start(context.Background(), wg)
			assert.ErrorIs(t, err, tt.wantErr)

			done := make(chan struct{})
			go func() {
				wg.Wait()
				close(done)
			}()
			select {
			case <-done:
			case <-time.After(time.Second):
				t.Fatal("실패 시에도 WaitGroup.Done이 호출되어야 합니다")
			}
		})
	}
}

func TestService_PortInUse(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	s := NewService(config.StatusConfig{Enabled: true, ListenAddress: l.Addr().String()}, false, stubProvider{}, version.Info{})

	wg := &sync.WaitGroup{}
	wg.Add(1)
	require.NoError(t, s.Start(context.Background(), wg))

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("바인딩에 실패한 서비스는 스스로 종료되어야 합니다")
	}
}

func mustField(t *testing.T, body []byte, key string) string {
	t.Helper()

	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body, &m))
	return string(m[key])
}
