package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/rl1809/stockroom/internal/logging"
)

// State is the supervisor's view of the service process.
type State int

const (
	StateUnchecked State = iota
	StateProbing
	StateStarting
	StateRunning
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUnchecked:
		return "unchecked"
	case StateProbing:
		return "probing"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// StartupError is returned when the service never became reachable. Output
// holds whatever the spawned process wrote to its log.
type StartupError struct {
	Reason string
	Output string
	Err    error
}

func (e *StartupError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("server failed to start: %s: %v", e.Reason, e.Err)
	}
	return "server failed to start: " + e.Reason
}

func (e *StartupError) Unwrap() error {
	return e.Err
}

type SupervisorConfig struct {
	BaseURL       string
	Command       []string // argv of the server process
	Env           []string // added to the current environment
	LogPath       string   // receives the server's stdout and stderr
	ProbeInterval time.Duration
	ProbeAttempts int
	ShutdownGrace time.Duration
	Logger        *logging.Logger
}

// Supervisor makes sure the service is reachable, starting it if needed,
// and stops it again on Shutdown when it was the one that started it.
type Supervisor struct {
	cfg    SupervisorConfig
	api    *APIClient
	logger *logging.Logger

	mu      sync.Mutex
	state   State
	cmd     *exec.Cmd
	logFile *os.File
	exited  chan struct{}
	waitErr error
}

func NewSupervisor(cfg SupervisorConfig) *Supervisor {
	if cfg.ProbeInterval <= 0 {
		cfg.ProbeInterval = time.Second
	}
	if cfg.ProbeAttempts < 1 {
		cfg.ProbeAttempts = 10
	}
	if cfg.ShutdownGrace <= 0 {
		cfg.ShutdownGrace = 5 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Nop()
	}

	return &Supervisor{
		cfg:    cfg,
		api:    NewAPIClient(cfg.BaseURL, &http.Client{Timeout: cfg.ProbeInterval}),
		logger: logger.WithComponent("supervisor"),
		state:  StateUnchecked,
	}
}

func (s *Supervisor) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Owned reports whether the running service was started by this supervisor.
func (s *Supervisor) Owned() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cmd != nil
}

func (s *Supervisor) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
	s.logger.Debug("Supervisor state changed", "state", state.String())
}

// Ensure returns once the service answers its liveness probe. If it is not
// already running, Ensure starts it and polls up to ProbeAttempts times.
func (s *Supervisor) Ensure(ctx context.Context) error {
	s.setState(StateProbing)
	if err := s.api.Ping(ctx); err == nil {
		s.logger.Info("Server is already running", "url", s.cfg.BaseURL)
		s.setState(StateRunning)
		return nil
	}

	s.setState(StateStarting)
	if err := s.start(); err != nil {
		s.setState(StateFailed)
		return &StartupError{Reason: "could not launch process", Output: s.output(), Err: err}
	}
	s.logger.Info("Starting server", "command", strings.Join(s.cfg.Command, " "))

	timer := time.NewTimer(s.cfg.ProbeInterval)
	defer timer.Stop()

	for attempt := 1; attempt <= s.cfg.ProbeAttempts; attempt++ {
		select {
		case <-ctx.Done():
			s.terminate()
			s.setState(StateFailed)
			return &StartupError{Reason: "cancelled", Output: s.output(), Err: ctx.Err()}
		case <-s.exited:
			s.terminate()
			s.setState(StateFailed)
			return &StartupError{Reason: "process exited early", Output: s.output(), Err: s.waitErr}
		case <-timer.C:
		}

		if err := s.api.Ping(ctx); err == nil {
			s.logger.Info("Server started successfully", "attempts", attempt)
			s.setState(StateRunning)
			return nil
		}
		timer.Reset(s.cfg.ProbeInterval)
	}

	s.terminate()
	s.setState(StateFailed)
	return &StartupError{
		Reason: fmt.Sprintf("not reachable after %d attempts", s.cfg.ProbeAttempts),
		Output: s.output(),
	}
}

// Shutdown stops the service if this supervisor started it. A service that
// was already running is left alone.
func (s *Supervisor) Shutdown() error {
	if !s.Owned() {
		return nil
	}
	err := s.terminate()
	s.setState(StateUnchecked)
	return err
}

func (s *Supervisor) start() error {
	if len(s.cfg.Command) == 0 {
		return errors.New("no server command configured")
	}

	cmd := exec.Command(s.cfg.Command[0], s.cfg.Command[1:]...)

	var logFile *os.File
	if s.cfg.LogPath != "" {
		f, err := os.Create(s.cfg.LogPath)
		if err != nil {
			return fmt.Errorf("create server log: %w", err)
		}
		logFile = f
		cmd.Stdout = logFile
		cmd.Stderr = logFile
	}
	if len(s.cfg.Env) > 0 {
		cmd.Env = append(os.Environ(), s.cfg.Env...)
	}

	if err := cmd.Start(); err != nil {
		if logFile != nil {
			logFile.Close()
		}
		return err
	}

	exited := make(chan struct{})
	s.mu.Lock()
	s.cmd = cmd
	s.logFile = logFile
	s.exited = exited
	s.mu.Unlock()

	// Reap the child so it never lingers as a zombie
	go func() {
		err := cmd.Wait()
		s.mu.Lock()
		s.waitErr = err
		s.mu.Unlock()
		close(exited)
	}()
	return nil
}

// terminate asks the owned process to stop, killing it after ShutdownGrace.
func (s *Supervisor) terminate() error {
	s.mu.Lock()
	cmd, exited, logFile := s.cmd, s.exited, s.logFile
	s.cmd, s.logFile = nil, nil
	s.mu.Unlock()

	if cmd == nil {
		return nil
	}
	if logFile != nil {
		defer logFile.Close()
	}

	select {
	case <-exited:
		return nil
	default:
	}

	if err := cmd.Process.Signal(syscall.SIGTERM); err != nil {
		cmd.Process.Kill()
	}

	grace := time.NewTimer(s.cfg.ShutdownGrace)
	defer grace.Stop()

	select {
	case <-exited:
		s.logger.Info("Server stopped")
		return nil
	case <-grace.C:
		s.logger.Warn("Server ignored SIGTERM, killing it")
		if err := cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			return fmt.Errorf("kill server: %w", err)
		}
		<-exited
		return nil
	}
}

func (s *Supervisor) output() string {
	if s.cfg.LogPath == "" {
		return ""
	}
	data, err := os.ReadFile(s.cfg.LogPath)
	if err != nil {
		return ""
	}
	return string(data)
}
