package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	helperEnv     = "STOCKROOM_HELPER_PROCESS"
	helperModeEnv = "STOCKROOM_HELPER_MODE"
	helperAddrEnv = "STOCKROOM_HELPER_ADDR"
)

// TestHelperProcess is not a real test. The supervisor tests re-execute the
// test binary with it selected to get a controllable child process.
func TestHelperProcess(t *testing.T) {
	if os.Getenv(helperEnv) != "1" {
		return
	}

	switch os.Getenv(helperModeEnv) {
	case "serve":
		fmt.Println("helper listening on", os.Getenv(helperAddrEnv))
		srv := &http.Server{
			Addr: os.Getenv(helperAddrEnv),
			Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{"message":"Hello, World!"}`))
			}),
		}
		go func() {
			sig := make(chan os.Signal, 1)
			signal.Notify(sig, syscall.SIGTERM)
			<-sig
			srv.Close()
		}()
		srv.ListenAndServe()
		os.Exit(0)
	case "crash":
		fmt.Fprintln(os.Stderr, "fatal: storage unavailable")
		os.Exit(3)
	case "hang":
		fmt.Println("helper hanging")
		signal.Ignore(syscall.SIGTERM)
		time.Sleep(time.Minute)
		os.Exit(0)
	}
	os.Exit(2)
}

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func helperSupervisor(t *testing.T, mode, addr string) *Supervisor {
	t.Helper()
	return NewSupervisor(SupervisorConfig{
		BaseURL: "http://" + addr,
		Command: []string{os.Args[0], "-test.run=TestHelperProcess", "--"},
		Env: []string{
			helperEnv + "=1",
			helperModeEnv + "=" + mode,
			helperAddrEnv + "=" + addr,
		},
		LogPath:       filepath.Join(t.TempDir(), "server_debug.log"),
		ProbeInterval: 100 * time.Millisecond,
		ProbeAttempts: 30,
		ShutdownGrace: 200 * time.Millisecond,
	})
}

func TestSupervisor_AlreadyRunning(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":"Hello, World!"}`))
	}))
	defer srv.Close()

	s := NewSupervisor(SupervisorConfig{
		BaseURL: srv.URL,
		Command: []string{"/nonexistent/stockroom-server"},
	})

	require.NoError(t, s.Ensure(context.Background()))
	assert.Equal(t, StateRunning, s.State())
	assert.False(t, s.Owned())

	// A service we did not start is left running
	require.NoError(t, s.Shutdown())
	require.NoError(t, NewAPIClient(srv.URL, nil).Ping(context.Background()))
}

func TestSupervisor_StartsAndStopsServer(t *testing.T) {
	addr := freeAddr(t)
	s := helperSupervisor(t, "serve", addr)

	require.NoError(t, s.Ensure(context.Background()))
	assert.Equal(t, StateRunning, s.State())
	assert.True(t, s.Owned())

	api := NewAPIClient("http://"+addr, nil)
	require.NoError(t, api.Ping(context.Background()))

	require.NoError(t, s.Shutdown())
	assert.False(t, s.Owned())
	assert.Equal(t, StateUnchecked, s.State())
	assert.ErrorIs(t, api.Ping(context.Background()), ErrUnavailable)
}

func TestSupervisor_EarlyExit(t *testing.T) {
	s := helperSupervisor(t, "crash", freeAddr(t))

	err := s.Ensure(context.Background())

	var startErr *StartupError
	require.True(t, errors.As(err, &startErr))
	assert.Equal(t, "process exited early", startErr.Reason)
	assert.Contains(t, startErr.Output, "fatal: storage unavailable")
	assert.Equal(t, StateFailed, s.State())
	assert.False(t, s.Owned())
}

func TestSupervisor_NeverReachable(t *testing.T) {
	s := helperSupervisor(t, "hang", freeAddr(t))
	s.cfg.ProbeAttempts = 3

	start := time.Now()
	err := s.Ensure(context.Background())

	var startErr *StartupError
	require.True(t, errors.As(err, &startErr))
	assert.Equal(t, "not reachable after 3 attempts", startErr.Reason)
	assert.Contains(t, startErr.Output, "helper hanging")
	assert.Equal(t, StateFailed, s.State())
	assert.False(t, s.Owned(), "the stuck process is killed")
	assert.Less(t, time.Since(start), 10*time.Second)
}

func TestSupervisor_LaunchFailure(t *testing.T) {
	s := NewSupervisor(SupervisorConfig{
		BaseURL:       "http://" + freeAddr(t),
		Command:       []string{filepath.Join(t.TempDir(), "missing-binary")},
		ProbeInterval: 50 * time.Millisecond,
	})

	err := s.Ensure(context.Background())

	var startErr *StartupError
	require.True(t, errors.As(err, &startErr))
	assert.Equal(t, "could not launch process", startErr.Reason)
	assert.Equal(t, StateFailed, s.State())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "running", StateRunning.String())
	assert.Equal(t, "State(42)", State(42).String())
}
